// Package models contains data structures for Intralism player profiles
package models

import (
	"context"
	"time"
)

// Sentinel values for fields the ranking site may not report.
const (
	// UnknownRank marks a global or country rank the site shows as a placeholder
	UnknownRank = -1
	// UnknownRankUpPoints is reported as rank-up points when the global rank is unknown
	UnknownRankUpPoints = 0.01
)

// MapEntry is a ranked map from the local catalogue
type MapEntry struct {
	ID            int64
	Link          string
	Name          string
	MaximumPoints float64
	BrokenStatus  BrokenStatus
}

// ScoreRecord holds a player's result on one catalogue map
type ScoreRecord struct {
	MapName       string       `json:"mapname"`
	MapLink       string       `json:"maplink"`
	MapID         int64        `json:"mapid"`
	Score         int          `json:"score"`
	Accuracy      float64      `json:"accuracy"`
	Miss          int          `json:"miss"`
	Points        float64      `json:"points"`
	MaximumPoints float64      `json:"maximumpoints"`
	BrokenStatus  BrokenStatus `json:"brokenstatus"`
	Difference    float64      `json:"difference"`
}

// NewScoreRecord seeds an unplayed record for a catalogue map
func NewScoreRecord(entry MapEntry) ScoreRecord {
	return ScoreRecord{
		MapName:       entry.Name,
		MapLink:       entry.Link,
		MapID:         entry.ID,
		MaximumPoints: entry.MaximumPoints,
		BrokenStatus:  entry.BrokenStatus,
	}
}

// PlayerProfile is the computed ranking profile of one player
type PlayerProfile struct {
	Link             string        `json:"link"`
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	PictureLink      string        `json:"picturelink"`
	Scores           []ScoreRecord `json:"scores"`
	GlobalRank       int           `json:"globalrank"`
	TotalGlobalRank  int           `json:"totalglobalrank"`
	CountryRank      int           `json:"countryrank"`
	TotalCountryRank int           `json:"totalcountryrank"`
	Country          string        `json:"country"`
	AverageMisses    float64       `json:"averagemisses"`
	AverageAccuracy  float64       `json:"averageaccuracy"`
	Points           float64       `json:"points"`
	RealPoints       float64       `json:"realpoints"`
	MaximumPoints    float64       `json:"maximumpoints"`
	Difference       float64       `json:"difference"`
	HundredPlays     int           `json:"hundredplays"`
	TotalMaps        int           `json:"totalmaps"`
	RankUpPoints     float64       `json:"rankuppoints"`
	TimeChecked      time.Time     `json:"timechecked"`
}

// Row is one row of a table scraped from the ranking site
type Row struct {
	ID    string
	Link  string
	Cells []string
}

// Score table column order expected by the core
const (
	ScoreCellMapLink = iota
	ScoreCellModifier
	ScoreCellScore
	ScoreCellAccuracy
	ScoreCellMiss
	ScoreCellPoints
	ScoreCellCount
)

// ProfilePage holds the raw text fields and score table of a profile page
type ProfilePage struct {
	Name             string
	PictureLink      string
	Country          string
	GlobalRank       string
	TotalGlobalRank  string
	CountryRank      string
	TotalCountryRank string
	Scores           []Row
}

// Gateway fetches structured tables from the ranking site
type Gateway interface {
	FetchProfilePage(ctx context.Context, link string) (*ProfilePage, error)
	// FetchRankPage returns the rows of a 1-indexed global rank page
	FetchRankPage(ctx context.Context, page int) ([]Row, error)
	// SearchPlayer returns the profile link of the first search result
	SearchPlayer(ctx context.Context, query string) (string, error)
}
