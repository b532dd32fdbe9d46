// Package rank locates players on the paginated global rank table
package rank

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/myusername/intralism-score-checker/pkg/models"
	"github.com/myusername/intralism-score-checker/pkg/parser"
)

const (
	// PageSize is the number of players on one rank page
	PageSize = 100
	// PointsCell is the index of the points cell in a rank row
	PointsCell = 3
)

// Resolver computes the points a player needs to move up one global rank
type Resolver struct {
	gateway models.Gateway
	logger  zerolog.Logger
}

// NewResolver creates a Resolver reading rank pages through gateway
func NewResolver(gateway models.Gateway, logger zerolog.Logger) *Resolver {
	return &Resolver{gateway: gateway, logger: logger}
}

// RankUpPoints returns the point gap between the player at globalRank and the
// player directly above. rankedPoints is the player's own total, used when the
// player opens a page and is therefore not on the page that gets fetched.
func (r *Resolver) RankUpPoints(ctx context.Context, globalRank int, playerID int64, rankedPoints float64) (float64, error) {
	const op = "rank.RankUpPoints"

	switch {
	case globalRank == models.UnknownRank:
		return models.UnknownRankUpPoints, nil
	case globalRank == 1:
		return 0, nil
	case globalRank < 1:
		return 0, models.NewError(op, models.ErrInvalidInput, "global rank %d", globalRank)
	}

	firstOnPage := globalRank%PageSize == 1
	page := (globalRank-1)/PageSize + 1
	if firstOnPage {
		page--
	}

	r.logger.Debug().
		Int("global_rank", globalRank).
		Int("page", page).
		Bool("first_on_page", firstOnPage).
		Msg("fetching rank page")

	rows, err := r.gateway.FetchRankPage(ctx, page)
	if err != nil {
		return 0, err
	}

	var before, current *models.Row
	currentPoints := rankedPoints
	if firstOnPage {
		if len(rows) == 0 {
			return 0, models.NewError(op, models.ErrRankRowNotFound, "rank page %d is empty", page)
		}
		before = &rows[len(rows)-1]
	} else {
		before, current = scan(rows, playerID)
		if current == nil {
			return 0, models.NewError(op, models.ErrRankRowNotFound,
				"player %d not on rank page %d (rank %d)", playerID, page, globalRank)
		}
		if before == nil {
			return 0, models.NewError(op, models.ErrRankRowNotFound,
				"player %d has no preceding row on rank page %d", playerID, page)
		}
		if currentPoints, err = rowPoints(*current); err != nil {
			return 0, models.WrapError(op, models.ErrDataFormat, err, "points of player %d", playerID)
		}
	}

	beforePoints, err := rowPoints(*before)
	if err != nil {
		return 0, models.WrapError(op, models.ErrDataFormat, err, "points of row %q", before.ID)
	}

	return parser.Round(beforePoints-currentPoints, 4), nil
}

// scan folds over rows carrying the previous row until the player's row is
// found. It returns (previous, found), found being nil when the player is
// not on the page.
func scan(rows []models.Row, playerID int64) (previous, found *models.Row) {
	for i := range rows {
		if rowMatches(rows[i], playerID) {
			return previous, &rows[i]
		}
		previous = &rows[i]
	}
	return nil, nil
}

// rowMatches compares the trailing digits of the row id with the player id
func rowMatches(row models.Row, playerID int64) bool {
	start := len(row.ID)
	for start > 0 && row.ID[start-1] >= '0' && row.ID[start-1] <= '9' {
		start--
	}
	if start == len(row.ID) {
		return false
	}
	id, err := strconv.ParseInt(row.ID[start:], 10, 64)
	return err == nil && id == playerID
}

func rowPoints(row models.Row) (float64, error) {
	if len(row.Cells) <= PointsCell {
		return 0, models.NewError("rank.rowPoints", models.ErrDataFormat,
			"row %q has %d cells", row.ID, len(row.Cells))
	}
	return parser.ParseFloat(row.Cells[PointsCell])
}

// PlayerLink returns the profile link of the player holding globalRank
func PlayerLink(ctx context.Context, gateway models.Gateway, globalRank int) (string, error) {
	const op = "rank.PlayerLink"

	if globalRank < 1 {
		return "", models.NewError(op, models.ErrInvalidInput, "global rank %d", globalRank)
	}

	page := (globalRank-1)/PageSize + 1
	index := (globalRank - 1) % PageSize

	rows, err := gateway.FetchRankPage(ctx, page)
	if err != nil {
		return "", err
	}
	if index >= len(rows) {
		return "", models.NewError(op, models.ErrNotFound,
			"rank %d: page %d has only %d rows", globalRank, page, len(rows))
	}
	if rows[index].Link == "" {
		return "", models.NewError(op, models.ErrDataFormat, "rank %d: row has no profile link", globalRank)
	}
	return rows[index].Link, nil
}
