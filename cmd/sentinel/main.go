package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/glaudinekorrie/twitter-data-intelligence/internal/handlers"
	"github.com/glaudinekorrie/twitter-data-intelligence/internal/metrics"
	"github.com/glaudinekorrie/twitter-data-intelligence/internal/normalize"
	"github.com/glaudinekorrie/twitter-data-intelligence/internal/pipeline"
	"github.com/glaudinekorrie/twitter-data-intelligence/internal/sentiment"
	"github.com/glaudinekorrie/twitter-data-intelligence/internal/source"
	"github.com/glaudinekorrie/twitter-data-intelligence/internal/store"
	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/config"
	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/database"
	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/logging"
	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/models"
	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/monitoring"
	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/server"
	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("sentinel")

	// Load environment variables
	config.LoadEnv(logger)

	info := version.GetInfo()
	logger.WithFields(logging.Fields{
		"version":    info.Version,
		"commit":     version.GetShortCommit(),
		"build_date": info.BuildDate,
	}).Info("Starting Sentinel (Sentiment Pipeline API)")

	dbURL := config.RequireEnv("DATABASE_URL")
	bearerToken := config.GetEnv("TWITTER_BEARER_TOKEN", "")
	mockMode := config.GetEnvBool("MOCK_MODE", false)
	fetchTimeout := config.GetEnvDuration("FETCH_TIMEOUT", 60*time.Second)

	// "sentinel run <keyword>" executes one pipeline cycle and exits.
	// Periodic ingestion is cron or a workflow engine shelling out to this.
	if len(os.Args) > 1 && os.Args[1] == "run" {
		runOnce(logger, dbURL, bearerToken, mockMode, fetchTimeout)
		return
	}

	// Connect to database
	dbConfig := database.DefaultConfig()
	dbConfig.URL = dbURL
	db := database.MustConnect(dbConfig, logger)
	defer func() { _ = db.Close() }()

	st := store.New(db, database.DialectFor(dbURL), logger)
	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer migrateCancel()
	if err := st.Migrate(migrateCtx); err != nil {
		logger.WithError(err).Fatal("Failed to run schema migration")
	}

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("sentinel", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("sentinel", version.Version, version.GitCommit)

	// Add health checks
	healthChecker.AddCheck("database", monitoring.DatabaseHealthCheck(db))
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"DATABASE_URL": dbURL,
	}))

	// Create custom pipeline metrics
	serviceMetrics := &metrics.Metrics{
		PipelineRuns:     metricsCollector.NewCounter("pipeline_runs_total", "Pipeline runs by final status", []string{"status"}),
		StageDuration:    metricsCollector.NewHistogram("pipeline_stage_duration_seconds", "Pipeline stage duration", []string{"stage"}, nil),
		PostsProcessed:   metricsCollector.NewCounter("pipeline_posts_total", "Posts processed by outcome", []string{"outcome"}),
		AnalyticsQueries: metricsCollector.NewCounter("analytics_queries_total", "Analytics queries executed", []string{"query_type", "status"}),
		QueryDuration:    metricsCollector.NewHistogram("analytics_query_duration_seconds", "Analytics query duration", []string{"query_type"}, nil),
	}

	scorer := sentiment.NewScorer()
	normalizer := normalize.New(logger)

	// Runs triggered over HTTP share the service's store connection; only
	// the source adapter is chosen per request.
	runFn := func(ctx context.Context, cfg pipeline.InvokeConfig) (models.RunSummary, error) {
		var adapter source.Adapter
		if cfg.MockMode || mockMode {
			adapter = source.NewMockAdapter(source.MockConfig{Seed: cfg.MockSeed})
		} else {
			if bearerToken == "" {
				return models.RunSummary{}, fmt.Errorf("TWITTER_BEARER_TOKEN is required for live fetches")
			}
			client, err := source.NewTwitterClient(source.TwitterConfig{
				BearerToken: bearerToken,
				Timeout:     fetchTimeout,
				Retry:       source.DefaultRetryConfig(),
			}, logger)
			if err != nil {
				return models.RunSummary{}, err
			}
			adapter = client
		}

		orch := pipeline.New(adapter, scorer, normalizer, st, logger, serviceMetrics)
		return orch.Run(ctx, pipeline.Config{
			Keyword:      cfg.Keyword,
			MaxCount:     cfg.MaxCount,
			FetchTimeout: fetchTimeout,
		})
	}

	// Initialize handlers
	handlers.Init(st, runFn, logger, serviceMetrics)

	// Setup router with unified monitoring
	router := server.SetupServiceRouter(logger, "sentinel", healthChecker, metricsCollector)

	// API routes
	{
		router.POST("/pipeline/runs", handlers.TriggerPipelineRun)
		router.GET("/analytics/sentiment", handlers.GetSentimentCounts)
		router.GET("/analytics/trend", handlers.GetSentimentTrend)
		router.GET("/posts", handlers.ListPosts)
		router.GET("/stats", handlers.GetStoreStats)
		router.GET("/export/posts", handlers.ExportPosts)
	}

	// Start server with graceful shutdown
	serverConfig := server.DefaultConfig("sentinel", "18010")
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server startup failed")
	}
}

func runOnce(logger logging.Logger, dbURL, bearerToken string, mockMode bool, fetchTimeout time.Duration) {
	keyword := config.GetEnv("PIPELINE_KEYWORD", "")
	if len(os.Args) > 2 {
		keyword = os.Args[2]
	}
	if keyword == "" {
		logger.Fatal("Usage: sentinel run <keyword> (or set PIPELINE_KEYWORD)")
	}

	summary, err := pipeline.Execute(context.Background(), pipeline.InvokeConfig{
		Keyword:      keyword,
		MaxCount:     config.GetEnvInt("PIPELINE_MAX_COUNT", 100),
		MockMode:     mockMode,
		MockSeed:     uint64(config.GetEnvInt("MOCK_SEED", 42)),
		DBTarget:     dbURL,
		BearerToken:  bearerToken,
		FetchTimeout: fetchTimeout,
		SourceRetry:  source.DefaultRetryConfig(),
	}, logger)
	if err != nil {
		logger.WithError(err).WithField("run_id", summary.RunID).Fatal("Pipeline run failed")
	}

	logger.WithFields(logging.Fields{
		"run_id":  summary.RunID,
		"keyword": summary.Keyword,
		"fetched": summary.Fetched,
		"scored":  summary.Scored,
		"loaded":  summary.Loaded,
		"dropped": summary.Dropped,
	}).Info("Pipeline run complete")
}
