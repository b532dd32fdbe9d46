// Package profile builds a player's ranking profile from the map catalogue and
// the ranking site.
package profile

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/myusername/intralism-score-checker/pkg/models"
	"github.com/myusername/intralism-score-checker/pkg/parser"
	"github.com/myusername/intralism-score-checker/pkg/rank"
)

// Builder assembles PlayerProfiles. It holds no mutable state and may be
// shared between goroutines as long as its gateway is.
type Builder struct {
	catalogue []models.MapEntry
	gateway   models.Gateway
	resolver  *rank.Resolver
	logger    zerolog.Logger
	now       func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the builder's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithClock replaces the clock used to stamp TimeChecked.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBuilder creates a Builder over a read-only catalogue.
func NewBuilder(catalogue []models.MapEntry, gateway models.Gateway, opts ...Option) *Builder {
	b := &Builder{
		catalogue: catalogue,
		gateway:   gateway,
		logger:    zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.resolver = rank.NewResolver(gateway, b.logger)
	return b
}

// Build resolves the player's profile link and computes the full profile.
// Any failure aborts the build; no partial profile is returned.
func (b *Builder) Build(ctx context.Context, identity Identity) (*models.PlayerProfile, error) {
	logger := b.logger.With().
		Str("build_id", uuid.NewString()).
		Stringer("identity", identity).
		Logger()

	link, err := identity.resolve(ctx, b.gateway)
	if err != nil {
		logger.Error().Err(err).Msg("failed to resolve player")
		return nil, err
	}

	profile, err := b.buildFromLink(ctx, link, logger)
	if err != nil {
		logger.Error().Err(err).Str("link", link).Msg("failed to build profile")
		return nil, err
	}

	logger.Info().
		Int64("player_id", profile.ID).
		Str("name", profile.Name).
		Float64("points", profile.Points).
		Int("global_rank", profile.GlobalRank).
		Msg("profile built")
	return profile, nil
}

func (b *Builder) buildFromLink(ctx context.Context, link string, logger zerolog.Logger) (*models.PlayerProfile, error) {
	const op = "profile.Build"

	playerID, err := parser.LinkID(link)
	if err != nil {
		return nil, models.WrapError(op, models.ErrDataFormat, err, "player link")
	}

	page, err := b.gateway.FetchProfilePage(ctx, link)
	if err != nil {
		return nil, err
	}

	profile := &models.PlayerProfile{
		Link:        link,
		ID:          playerID,
		Name:        strings.TrimSpace(page.Name),
		PictureLink: page.PictureLink,
		Country:     strings.TrimSpace(page.Country),
		GlobalRank:  parser.ParseRank(page.GlobalRank, models.UnknownRank),
		CountryRank: parser.ParseRank(page.CountryRank, models.UnknownRank),
		TotalMaps:   len(b.catalogue),
	}
	if profile.TotalGlobalRank, err = parser.ParseTotal(page.TotalGlobalRank); err != nil {
		return nil, models.WrapError(op, models.ErrDataFormat, err, "total global rank %q", page.TotalGlobalRank)
	}
	if profile.TotalCountryRank, err = parser.ParseTotal(page.TotalCountryRank); err != nil {
		return nil, models.WrapError(op, models.ErrDataFormat, err, "total country rank %q", page.TotalCountryRank)
	}

	logger.Debug().
		Int("score_rows", len(page.Scores)).
		Int("catalogue_maps", len(b.catalogue)).
		Msg("normalizing scores")

	scores, err := parser.Normalize(b.catalogue, page.Scores)
	if err != nil {
		return nil, err
	}

	stats := parser.Aggregate(scores)
	profile.Scores = scores
	profile.Points = stats.Points
	profile.RealPoints = stats.RealPoints
	profile.MaximumPoints = stats.MaximumPoints
	profile.Difference = stats.Difference
	profile.AverageAccuracy = stats.AverageAccuracy
	profile.AverageMisses = stats.AverageMisses
	profile.HundredPlays = stats.HundredPlays

	profile.RankUpPoints, err = b.resolver.RankUpPoints(ctx, profile.GlobalRank, playerID, profile.Points)
	if err != nil {
		return nil, err
	}

	profile.TimeChecked = b.now()
	return profile, nil
}
