package utils

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myusername/intralism-score-checker/pkg/models"
)

func sampleProfile() *models.PlayerProfile {
	return &models.PlayerProfile{
		Link:             "https://intralism.khb-soft.ru/?page=profile&id=3",
		ID:               3,
		Name:             "Player",
		GlobalRank:       3,
		TotalGlobalRank:  5000,
		CountryRank:      models.UnknownRank,
		TotalCountryRank: 40,
		Country:          "Finland",
		Points:           149.49,
		RealPoints:       149.5,
		MaximumPoints:    220,
		Difference:       70.51,
		TotalMaps:        3,
		RankUpPoints:     10.6334,
		TimeChecked:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Scores: []models.ScoreRecord{
			{MapName: "Ten", MapID: 10, Score: 1000, Accuracy: 99.4567, Miss: 2, Points: 99.5, MaximumPoints: 100, BrokenStatus: models.NotBroken, Difference: 0.5},
			{MapName: `Twenty, "remix"`, MapID: 20, Score: 500, Accuracy: 100, Points: 49.99, MaximumPoints: 50, BrokenStatus: models.Broken, Difference: 0.01},
			{MapName: "Thirty", MapID: 30, MaximumPoints: 70, BrokenStatus: models.Unknown, Difference: 70},
		},
	}
}

func TestDisplayProfile(t *testing.T) {
	var buf bytes.Buffer
	DisplayProfile(&buf, sampleProfile())
	out := buf.String()

	assert.Contains(t, out, "Player (#3)")
	assert.Contains(t, out, "Rank-up points: 10.6334")
	assert.Contains(t, out, `Twenty, "remix" (broken)`)

	// Largest gap first
	assert.Less(t, strings.Index(out, "Thirty"), strings.Index(out, "Ten "))
	assert.Less(t, strings.Index(out, "Ten "), strings.Index(out, "Twenty"))
}

func TestSaveScoresToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.csv")
	require.NoError(t, SaveScoresToCSV(sampleProfile(), path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")

	require.Len(t, lines, 4)
	assert.Equal(t, "MapID,Map,Score,Accuracy,Miss,Points,MaximumPoints,BrokenStatus,Difference", lines[0])
	assert.Equal(t, "10,Ten,1000,99.4567,2,99.5,100,Not Broken,0.5", lines[1])
	assert.Equal(t, `20,"Twenty, ""remix""",500,100,0,49.99,50,Broken,0.01`, lines[2])
	assert.Equal(t, "30,Thirty,0,0,0,0,70,Idk,70", lines[3])

	// Reads back to the same names and values
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, `Twenty, "remix"`, records[2][1])
	assert.Equal(t, "99.4567", records[1][3])
}

func TestSaveScoresToCSV_WriteFailure(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}

	err := SaveScoresToCSV(sampleProfile(), "/dev/full")
	assert.Error(t, err)
}

func TestSaveScoresToCSV_BadPath(t *testing.T) {
	err := SaveScoresToCSV(sampleProfile(), filepath.Join(t.TempDir(), "missing", "scores.csv"))
	assert.Error(t, err)
}

func TestSaveProfileToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "3.json")
	require.NoError(t, SaveProfileToJSON(sampleProfile(), path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, "Player", decoded["name"])
	assert.Equal(t, float64(-1), decoded["countryrank"])
	assert.Equal(t, 10.6334, decoded["rankuppoints"])

	scores := decoded["scores"].([]any)
	require.Len(t, scores, 3)
	assert.Equal(t, float64(0), scores[1].(map[string]any)["brokenstatus"])
	assert.Equal(t, float64(2), scores[2].(map[string]any)["brokenstatus"])

	var profile models.PlayerProfile
	require.NoError(t, json.Unmarshal(content, &profile))
	assert.Equal(t, sampleProfile(), &profile)
}

func TestSaveProfileToJSON_BadPath(t *testing.T) {
	err := SaveProfileToJSON(sampleProfile(), filepath.Join(t.TempDir(), "missing", "3.json"))
	assert.Error(t, err)
}
