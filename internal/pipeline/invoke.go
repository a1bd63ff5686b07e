package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/glaudinekorrie/twitter-data-intelligence/internal/normalize"
	"github.com/glaudinekorrie/twitter-data-intelligence/internal/sentiment"
	"github.com/glaudinekorrie/twitter-data-intelligence/internal/source"
	"github.com/glaudinekorrie/twitter-data-intelligence/internal/store"
	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/database"
	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/logging"
	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/models"
)

// InvokeConfig is the self-contained configuration for a one-shot run,
// e.g. from an external scheduler. Long-lived services construct an
// Orchestrator directly instead and reuse its connections.
type InvokeConfig struct {
	Keyword  string
	MaxCount int

	// MockMode swaps the live source for the deterministic generator
	MockMode bool
	MockSeed uint64

	// DBTarget selects the relational store (Postgres URL or SQLite path)
	DBTarget string

	// BearerToken authenticates the live source; ignored in mock mode
	BearerToken string

	FetchTimeout time.Duration
	SourceRetry  source.RetryConfig
}

// Execute is the pipeline's one-shot entry point: it builds the source
// adapter and store from the config, runs one pipeline cycle, and tears
// everything down again.
func Execute(ctx context.Context, cfg InvokeConfig, logger logging.Logger) (models.RunSummary, error) {
	if cfg.Keyword == "" {
		return models.RunSummary{}, fmt.Errorf("keyword is required")
	}
	if cfg.MaxCount <= 0 {
		return models.RunSummary{}, fmt.Errorf("max count must be positive")
	}

	var adapter source.Adapter
	if cfg.MockMode {
		adapter = source.NewMockAdapter(source.MockConfig{Seed: cfg.MockSeed})
	} else {
		client, err := source.NewTwitterClient(source.TwitterConfig{
			BearerToken: cfg.BearerToken,
			Timeout:     cfg.FetchTimeout,
			Retry:       cfg.SourceRetry,
		}, logger)
		if err != nil {
			return models.RunSummary{}, err
		}
		adapter = client
	}

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DBTarget
	db, err := database.Connect(dbCfg, logger)
	if err != nil {
		return models.RunSummary{}, &Error{Kind: KindStoreUnavailable, State: models.RunIdle, Err: err}
	}
	defer func() { _ = db.Close() }()

	st := store.New(db, database.DialectFor(cfg.DBTarget), logger)
	if err := st.Migrate(ctx); err != nil {
		return models.RunSummary{}, &Error{Kind: KindStoreUnavailable, State: models.RunIdle, Err: err}
	}

	orch := New(adapter, sentiment.NewScorer(), normalize.New(logger), st, logger, nil)
	return orch.Run(ctx, Config{
		Keyword:      cfg.Keyword,
		MaxCount:     cfg.MaxCount,
		FetchTimeout: cfg.FetchTimeout,
	})
}
