// Package main is the entry point for the intralism-score-checker application
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/myusername/intralism-score-checker/internal/config"
	"github.com/myusername/intralism-score-checker/internal/logger"
	"github.com/myusername/intralism-score-checker/internal/utils"
	"github.com/myusername/intralism-score-checker/pkg/catalogue"
	"github.com/myusername/intralism-score-checker/pkg/metrics"
	"github.com/myusername/intralism-score-checker/pkg/models"
	"github.com/myusername/intralism-score-checker/pkg/profile"
	"github.com/myusername/intralism-score-checker/pkg/scraper"
)

// Version is set during build using ldflags
var (
	version = "dev"
)

// identityFlag collects -link, -rank and -search values in command-line order
type identityFlag struct {
	identities *[]profile.Identity
	build      func(string) (profile.Identity, error)
}

func (f identityFlag) String() string { return "" }

func (f identityFlag) Set(value string) error {
	identity, err := f.build(value)
	if err != nil {
		return err
	}
	*f.identities = append(*f.identities, identity)
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	var identities []profile.Identity

	// Define command-line flags
	versionFlag := flag.Bool("version", false, "Print version information and exit")
	outputFlag := flag.String("output", "", "Output directory for JSON and CSV files (default: print only)")
	catalogueFlag := flag.String("catalogue", "", "Path to the ranked map CSV (overrides config)")
	snapshotFlag := flag.String("snapshots", "", "Directory to save fetched pages in (overrides config)")
	metricsFlag := flag.String("metrics-file", "", "Write Prometheus metrics to this textfile")
	flag.Var(identityFlag{&identities, func(v string) (profile.Identity, error) {
		return profile.ByLink(v), nil
	}}, "link", "Profile link of a player (repeatable)")
	flag.Var(identityFlag{&identities, func(v string) (profile.Identity, error) {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("rank must be a number: %w", err)
		}
		return profile.ByRank(n), nil
	}}, "rank", "Global rank of a player (repeatable)")
	flag.Var(identityFlag{&identities, func(v string) (profile.Identity, error) {
		return profile.BySearch(v), nil
	}}, "search", "Name to search for; the first result is used (repeatable)")
	flag.Parse()

	// Print version and exit if requested
	if *versionFlag {
		fmt.Printf("intralism-score-checker version %s\n", version)
		return 0
	}

	if len(identities) == 0 {
		fmt.Fprintln(os.Stderr, "at least one of -link, -rank or -search is required")
		flag.Usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	if *catalogueFlag != "" {
		cfg.CataloguePath = *catalogueFlag
	}
	if *snapshotFlag != "" {
		cfg.SnapshotDir = *snapshotFlag
	}

	level, levelErr := logger.ParseLevel(cfg.LogLevel)
	log := logger.NewWithWriter(os.Stderr, level)
	if levelErr != nil {
		log.Warn().Err(levelErr).Str("log_level", cfg.LogLevel).Msg("invalid log_level; falling back to info")
	}
	log.Info().Str("version", version).Int("players", len(identities)).Msg("score checker starting")

	entries, err := catalogue.Load(cfg.CataloguePath, cfg.MapLinkPrefix)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.CataloguePath).Msg("failed to load catalogue")
		return 1
	}
	if len(entries) == 0 {
		log.Warn().Str("path", cfg.CataloguePath).Msg("catalogue is empty; profiles will have no maps")
	}
	log.Info().Int("maps", len(entries)).Msg("catalogue loaded")

	metricsManager := metrics.NewManager()
	client := scraper.NewClient(cfg.BaseURL,
		scraper.WithTimeout(cfg.RequestTimeout),
		scraper.WithUserAgent(cfg.UserAgent),
		scraper.WithSnapshotDir(cfg.SnapshotDir),
		scraper.WithMetrics(metricsManager),
		scraper.WithLogger(log.With().Str("component", "scraper").Logger()),
	)
	builder := profile.NewBuilder(entries, client, profile.WithLogger(log))

	profiles, buildErr := buildAll(ctx, builder, identities, cfg.Concurrency, metricsManager)

	for _, p := range profiles {
		if p == nil {
			continue
		}
		utils.DisplayProfile(os.Stdout, p)
		if *outputFlag != "" {
			if err := saveProfile(p, *outputFlag); err != nil {
				log.Error().Err(err).Int64("player_id", p.ID).Msg("failed to save profile")
				buildErr = errors.Join(buildErr, err)
			}
		}
	}

	if *metricsFlag != "" {
		if err := metricsManager.WriteTextfile(*metricsFlag); err != nil {
			log.Warn().Err(err).Str("path", *metricsFlag).Msg("failed to write metrics")
		}
	}

	if buildErr != nil {
		log.Error().Err(buildErr).Msg("score checker finished with errors")
		return 1
	}
	log.Info().Msg("score checker finished")
	return 0
}

// buildAll builds one profile per identity, at most limit at a time. Builds
// are independent: a failure leaves a nil profile in its slot and the others
// still run.
func buildAll(ctx context.Context, builder *profile.Builder, identities []profile.Identity, limit int, m *metrics.Manager) ([]*models.PlayerProfile, error) {
	profiles := make([]*models.PlayerProfile, len(identities))
	errs := make([]error, len(identities))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, identity := range identities {
		g.Go(func() error {
			p, err := builder.Build(ctx, identity)
			m.ObserveProfile(err)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", identity, err)
				return nil
			}
			profiles[i] = p
			return nil
		})
	}
	_ = g.Wait()

	return profiles, errors.Join(errs...)
}

func saveProfile(p *models.PlayerProfile, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	base := filepath.Join(outputDir, strconv.FormatInt(p.ID, 10))
	if err := utils.SaveProfileToJSON(p, base+".json"); err != nil {
		return err
	}
	return utils.SaveScoresToCSV(p, base+"_scores.csv")
}
