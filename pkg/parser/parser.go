// Package parser turns scraped score tables into per-map records and player statistics
package parser

import (
	"math"
	"strings"

	"github.com/myusername/intralism-score-checker/pkg/models"
)

// Modifiers that disqualify a score from ranked statistics
var disallowedModifiers = map[string]bool{
	"Random":  true,
	"Hidden":  true,
	"Relax":   true,
	"Endless": true,
}

// IsDisallowedModifier reports whether a modifier label excludes a score
func IsDisallowedModifier(label string) bool {
	return disallowedModifiers[strings.TrimSpace(label)]
}

// Normalize seeds one record per catalogue map and overwrites it with the
// player's result from the score table. Rows played with a disallowed
// modifier or on unknown maps are skipped; an unparseable row aborts.
func Normalize(entries []models.MapEntry, rows []models.Row) ([]models.ScoreRecord, error) {
	const op = "parser.Normalize"

	records := make([]models.ScoreRecord, len(entries))
	index := make(map[int64]int, len(entries))
	for i, entry := range entries {
		records[i] = models.NewScoreRecord(entry)
		index[entry.ID] = i
	}

	for n, row := range rows {
		if len(row.Cells) < models.ScoreCellCount {
			return nil, models.NewError(op, models.ErrDataFormat,
				"score row %d: expected %d cells, got %d", n, models.ScoreCellCount, len(row.Cells))
		}

		if IsDisallowedModifier(row.Cells[models.ScoreCellModifier]) {
			continue
		}

		mapID, err := LinkID(row.Cells[models.ScoreCellMapLink])
		if err != nil {
			return nil, models.WrapError(op, models.ErrDataFormat, err, "score row %d", n)
		}
		i, ok := index[mapID]
		if !ok {
			continue
		}

		if err := applyRow(&records[i], row.Cells); err != nil {
			return nil, models.WrapError(op, models.ErrDataFormat, err, "score row %d (map %d)", n, mapID)
		}
	}

	return records, nil
}

func applyRow(record *models.ScoreRecord, cells []string) error {
	score, err := ParseInt(cells[models.ScoreCellScore])
	if err != nil {
		return err
	}
	accuracy, err := ParsePercent(cells[models.ScoreCellAccuracy])
	if err != nil {
		return err
	}
	miss, err := ParseInt(cells[models.ScoreCellMiss])
	if err != nil {
		return err
	}
	points, err := ParseFloat(cells[models.ScoreCellPoints])
	if err != nil {
		return err
	}

	record.Score = score
	record.Accuracy = accuracy
	record.Miss = miss
	record.Points = points
	return nil
}

// brokenPenalty is taken off a perfect score on a broken map
const brokenPenalty = 0.01

// AggregateStats holds player-level statistics over all score records
type AggregateStats struct {
	Points          float64
	RealPoints      float64
	MaximumPoints   float64
	Difference      float64
	AverageAccuracy float64
	AverageMisses   float64
	HundredPlays    int
	NotPlayed       int
	TotalMaps       int
}

// Aggregate computes player statistics in one pass. It updates each record's
// Points (broken-map penalty) and Difference in place.
func Aggregate(records []models.ScoreRecord) AggregateStats {
	var (
		stats         AggregateStats
		totalAccuracy float64
		totalMisses   int
	)
	stats.TotalMaps = len(records)

	for i := range records {
		record := &records[i]

		stats.RealPoints += record.Points
		stats.MaximumPoints += record.MaximumPoints

		if record.BrokenStatus == models.Broken && record.Points == record.MaximumPoints {
			record.Points = Round(record.Points-brokenPenalty, 2)
		}
		stats.Points += record.Points

		record.Difference = Round(record.MaximumPoints-record.Points, 2)
		stats.Difference += record.Difference

		if record.Accuracy == 100 {
			stats.HundredPlays++
		}
		if record.Score == 0 {
			stats.NotPlayed++
		}

		totalAccuracy += record.Accuracy
		totalMisses += record.Miss
	}

	if played := stats.TotalMaps - stats.NotPlayed; played > 0 {
		stats.AverageAccuracy = Round(totalAccuracy/float64(played), 4)
		stats.AverageMisses = Round(float64(totalMisses)/float64(played), 2)
	}

	stats.Difference = Round(stats.Difference, 2)
	stats.RealPoints = Round(stats.RealPoints, 2)
	stats.Points = Round(stats.Points, 2)
	stats.MaximumPoints = Round(stats.MaximumPoints, 2)

	return stats
}

// Round rounds x to the given number of decimals, halves away from zero
func Round(x float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(x*scale) / scale
}
