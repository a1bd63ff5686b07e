// Package pipeline sequences the extract, score, normalize and load stages
// of one ingestion run. Each stage hands an immutable batch to the next;
// nothing is persisted until the loading stage runs.
package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/glaudinekorrie/twitter-data-intelligence/internal/metrics"
	"github.com/glaudinekorrie/twitter-data-intelligence/internal/source"
	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/logging"
	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/models"
)

// Scorer scores post text. A per-post failure drops that post only.
type Scorer interface {
	Score(text string) (models.SentimentScore, error)
}

// Normalizer maps a scored post onto the stored shape
type Normalizer interface {
	Normalize(p models.ScoredPost) (models.StoredPost, error)
}

// Loader persists a batch of normalized records. The error is non-nil only
// on total store unavailability.
type Loader interface {
	Upsert(ctx context.Context, records []models.StoredPost) (loaded, failed int, err error)
}

// Config parameterizes a single run. It is passed explicitly per
// invocation; there is no process-wide default.
type Config struct {
	Keyword  string
	MaxCount int

	// FetchTimeout bounds the source adapter call. Zero means the
	// caller's context is the only bound.
	FetchTimeout time.Duration

	// ScoreWorkers bounds scoring/normalizing parallelism. Both stages
	// are pure per-post, so fan-out is safe. Defaults to 4.
	ScoreWorkers int
}

// Orchestrator wires the pipeline stages together. Safe for concurrent
// runs: stages share no mutable state and storage-level idempotency makes
// overlapping keywords converge.
type Orchestrator struct {
	source     source.Adapter
	scorer     Scorer
	normalizer Normalizer
	loader     Loader
	logger     logging.Logger
	metrics    *metrics.Metrics
}

// New creates an orchestrator. metrics may be nil.
func New(src source.Adapter, scorer Scorer, normalizer Normalizer, loader Loader, logger logging.Logger, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		source:     src,
		scorer:     scorer,
		normalizer: normalizer,
		loader:     loader,
		logger:     logger,
		metrics:    m,
	}
}

// Run executes one fetch→score→load cycle and reports its summary. The
// summary carries counts even when the run degrades partially; only total
// source or store unavailability aborts it.
func (o *Orchestrator) Run(ctx context.Context, cfg Config) (models.RunSummary, error) {
	summary := models.RunSummary{
		RunID:   uuid.New().String(),
		Keyword: cfg.Keyword,
		State:   models.RunIdle,
		Started: time.Now().UTC(),
	}
	log := o.logger.WithFields(logging.Fields{
		"run_id":  summary.RunID,
		"keyword": cfg.Keyword,
	})

	// Fetching
	o.transition(&summary, models.RunFetching, log)
	raws, err := o.fetch(ctx, cfg)
	if err != nil {
		return o.fail(summary, KindSourceUnavailable, err, log)
	}
	summary.Fetched = len(raws)

	// Reject malformed records at the boundary before they enter scoring
	valid := raws[:0:len(raws)]
	for _, raw := range raws {
		if err := source.Validate(raw); err != nil {
			summary.Dropped++
			log.WithError(err).Warn("Dropping invalid post from source")
			continue
		}
		valid = append(valid, raw)
	}

	// Scoring
	o.transition(&summary, models.RunScoring, log)
	records, dropped, err := o.scoreAll(ctx, cfg, valid, log)
	if err != nil {
		// Run abandoned mid-flight; scored data is discarded with no
		// persisted side effect.
		summary.State = models.RunFailed
		summary.Error = err.Error()
		summary.Finished = time.Now().UTC()
		o.countRun("cancelled")
		return summary, err
	}
	summary.Dropped += dropped
	summary.Scored = len(records)

	// Loading
	o.transition(&summary, models.RunLoading, log)
	loadStart := time.Now()
	loaded, loadFailed, err := o.loader.Upsert(ctx, records)
	o.observeStage("loading", loadStart)
	if err != nil {
		return o.fail(summary, KindStoreUnavailable, err, log)
	}
	summary.Loaded = loaded
	o.countPosts("loaded", loaded)
	if loadFailed > 0 {
		o.countPosts("load_failed", loadFailed)
		log.WithFields(logging.Fields{
			"failed": loadFailed,
			"kind":   KindPartialLoadFailure,
		}).Warn("Some records failed to persist")
	}

	o.transition(&summary, models.RunDone, log)
	summary.Finished = time.Now().UTC()
	o.countRun("done")

	log.WithFields(logging.Fields{
		"fetched": summary.Fetched,
		"scored":  summary.Scored,
		"loaded":  summary.Loaded,
		"dropped": summary.Dropped,
	}).Info("Pipeline run complete")

	return summary, nil
}

func (o *Orchestrator) fetch(ctx context.Context, cfg Config) ([]models.RawPost, error) {
	fetchCtx := ctx
	if cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, cfg.FetchTimeout)
		defer cancel()
	}

	start := time.Now()
	raws, err := o.source.Fetch(fetchCtx, cfg.Keyword, cfg.MaxCount)
	o.observeStage("fetching", start)
	if err != nil {
		return nil, err
	}
	o.countPosts("fetched", len(raws))
	return raws, nil
}

// scoreAll scores and normalizes posts with bounded parallelism,
// preserving input order. Per-post failures are dropped and counted; only
// context cancellation aborts the stage.
func (o *Orchestrator) scoreAll(ctx context.Context, cfg Config, raws []models.RawPost, log *logrus.Entry) ([]models.StoredPost, int, error) {
	workers := cfg.ScoreWorkers
	if workers <= 0 {
		workers = 4
	}

	start := time.Now()
	defer func() { o.observeStage("scoring", start) }()

	results := make([]*models.StoredPost, len(raws))
	var droppedCount atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, raw := range raws {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			score, err := o.scorer.Score(raw.Text)
			if err != nil {
				droppedCount.Add(1)
				log.WithError(err).WithFields(logging.Fields{
					"external_id": raw.ExternalID,
					"kind":        KindScoringFailure,
				}).Warn("Dropping post that failed scoring")
				return nil
			}

			record, err := o.normalizer.Normalize(models.ScoredPost{RawPost: raw, Sentiment: score})
			if err != nil {
				droppedCount.Add(1)
				log.WithError(err).WithField("external_id", raw.ExternalID).
					Warn("Dropping post that failed normalization")
				return nil
			}

			results[i] = &record
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	records := make([]models.StoredPost, 0, len(raws))
	for _, r := range results {
		if r != nil {
			records = append(records, *r)
		}
	}
	o.countPosts("scored", len(records))
	return records, int(droppedCount.Load()), nil
}

func (o *Orchestrator) transition(summary *models.RunSummary, next models.RunState, log *logrus.Entry) {
	log.WithFields(logging.Fields{
		"from": summary.State,
		"to":   next,
	}).Debug("Pipeline state transition")
	summary.State = next
}

func (o *Orchestrator) fail(summary models.RunSummary, kind ErrorKind, err error, log *logrus.Entry) (models.RunSummary, error) {
	pErr := &Error{Kind: kind, State: summary.State, Err: err}
	summary.Error = string(kind)
	summary.State = models.RunFailed
	summary.Finished = time.Now().UTC()

	log.WithError(err).WithField("kind", kind).Error("Pipeline run failed")
	o.countRun("failed")

	return summary, pErr
}

func (o *Orchestrator) observeStage(stage string, start time.Time) {
	if o.metrics != nil {
		o.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}

func (o *Orchestrator) countRun(status string) {
	if o.metrics != nil {
		o.metrics.PipelineRuns.WithLabelValues(status).Inc()
	}
}

func (o *Orchestrator) countPosts(outcome string, n int) {
	if o.metrics != nil && n > 0 {
		o.metrics.PostsProcessed.WithLabelValues(outcome).Add(float64(n))
	}
}
