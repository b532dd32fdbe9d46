// Package utils provides output helpers for the score checker
package utils

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/myusername/intralism-score-checker/pkg/models"
)

// DisplayProfile prints a player's summary followed by the maps sorted by
// missing points, largest first
func DisplayProfile(w io.Writer, profile *models.PlayerProfile) {
	fmt.Fprintf(w, "\n=========== %s (#%d) ===========\n", profile.Name, profile.GlobalRank)
	fmt.Fprintf(w, "Link:           %s\n", profile.Link)
	fmt.Fprintf(w, "Country:        %s (#%d / %d)\n", profile.Country, profile.CountryRank, profile.TotalCountryRank)
	fmt.Fprintf(w, "Global rank:    #%d / %d\n", profile.GlobalRank, profile.TotalGlobalRank)
	fmt.Fprintf(w, "Points:         %.2f / %.2f (real %.2f, missing %.2f)\n",
		profile.Points, profile.MaximumPoints, profile.RealPoints, profile.Difference)
	fmt.Fprintf(w, "Rank-up points: %.4f\n", profile.RankUpPoints)
	fmt.Fprintf(w, "Accuracy:       %.4f%% avg, %d x 100%%\n", profile.AverageAccuracy, profile.HundredPlays)
	fmt.Fprintf(w, "Misses:         %.2f avg over %d maps\n", profile.AverageMisses, profile.TotalMaps)

	fmt.Fprintf(w, "\n%-40s | %-10s | %-9s | %-5s | %-8s | %-8s | %-8s\n",
		"Map", "Score", "Accuracy", "Miss", "Points", "Max", "Diff")
	fmt.Fprintf(w, "%-40s | %-10s | %-9s | %-5s | %-8s | %-8s | %-8s\n",
		strings.Repeat("-", 40), strings.Repeat("-", 10), strings.Repeat("-", 9),
		strings.Repeat("-", 5), strings.Repeat("-", 8), strings.Repeat("-", 8),
		strings.Repeat("-", 8))

	scores := make([]models.ScoreRecord, len(profile.Scores))
	copy(scores, profile.Scores)
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Difference > scores[j].Difference
	})

	for _, score := range scores {
		name := score.MapName
		if score.BrokenStatus == models.Broken {
			name += " (broken)"
		}
		fmt.Fprintf(w, "%-40.40s | %10d | %8.2f%% | %5d | %8.2f | %8.2f | %8.2f\n",
			name, score.Score, score.Accuracy, score.Miss, score.Points, score.MaximumPoints, score.Difference)
	}

	fmt.Fprintln(w, strings.Repeat("=", 104))
}

// SaveScoresToCSV saves the per-map scores of a profile to a CSV file
func SaveScoresToCSV(profile *models.PlayerProfile, filename string) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	w := csv.NewWriter(f)

	// Write CSV header
	if err := w.Write([]string{"MapID", "Map", "Score", "Accuracy", "Miss", "Points", "MaximumPoints", "BrokenStatus", "Difference"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, score := range profile.Scores {
		record := []string{
			strconv.FormatInt(score.MapID, 10),
			score.MapName,
			strconv.Itoa(score.Score),
			formatFloat(score.Accuracy),
			strconv.Itoa(score.Miss),
			formatFloat(score.Points),
			formatFloat(score.MaximumPoints),
			score.BrokenStatus.String(),
			formatFloat(score.Difference),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write score data: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush scores: %w", err)
	}
	return nil
}

// formatFloat writes the shortest representation that reads back exactly
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SaveProfileToJSON writes the profile record to a JSON file
func SaveProfileToJSON(profile *models.PlayerProfile, filename string) error {
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
