package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/glaudinekorrie/twitter-data-intelligence/internal/export"
	"github.com/glaudinekorrie/twitter-data-intelligence/internal/metrics"
	"github.com/glaudinekorrie/twitter-data-intelligence/internal/pipeline"
	"github.com/glaudinekorrie/twitter-data-intelligence/internal/store"
	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/api/common"
	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/api/sentinel"
	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/logging"
)

const (
	defaultRunMaxCount = 100
	maxRunMaxCount     = 1000
	defaultExportLimit = 10000
)

// RunFunc executes one pipeline run. main wires it to pipeline.Execute so
// handlers stay testable without a live source or database.
type RunFunc func(ctx context.Context, cfg pipeline.InvokeConfig) (sentinel.RunResponse, error)

var (
	db             *store.Store
	runPipeline    RunFunc
	logger         logging.Logger
	serviceMetrics *metrics.Metrics
)

// Init initializes the handlers package with the store, run entry point and metrics
func Init(s *store.Store, run RunFunc, log logging.Logger, m *metrics.Metrics) {
	db = s
	runPipeline = run
	logger = log
	serviceMetrics = m
}

// TriggerPipelineRun starts one synchronous fetch→score→load cycle and
// returns its summary. Scheduling is the caller's concern; this endpoint
// is what cron or a workflow engine hits.
func TriggerPipelineRun(c *gin.Context) {
	var req sentinel.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Keyword == "" {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{Error: "keyword is required"})
		return
	}
	if req.MaxCount <= 0 {
		req.MaxCount = defaultRunMaxCount
	}
	if req.MaxCount > maxRunMaxCount {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{Error: fmt.Sprintf("max_count cannot exceed %d", maxRunMaxCount)})
		return
	}

	summary, err := runPipeline(c.Request.Context(), pipeline.InvokeConfig{
		Keyword:  req.Keyword,
		MaxCount: req.MaxCount,
		MockMode: req.MockMode,
		MockSeed: req.MockSeed,
	})
	if err != nil {
		kind, _ := pipeline.KindOf(err)
		status := http.StatusInternalServerError
		switch kind {
		case pipeline.KindSourceUnavailable:
			status = http.StatusBadGateway
		case pipeline.KindStoreUnavailable:
			status = http.StatusServiceUnavailable
		}
		logger.WithError(err).WithFields(logging.Fields{
			"keyword": req.Keyword,
			"kind":    kind,
		}).Error("Pipeline run failed")
		c.JSON(status, common.ErrorResponse{
			Error: "Pipeline run failed",
			Code:  string(kind),
			Details: map[string]interface{}{
				"run_id": summary.RunID,
				"state":  summary.State,
			},
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetSentimentCounts returns post counts grouped by sentiment category,
// optionally restricted to a [start,end) window on the created timestamp
// and to a single ingestion keyword (brand-mention breakdowns)
func GetSentimentCounts(c *gin.Context) {
	start := time.Now()
	defer func() {
		if serviceMetrics != nil {
			serviceMetrics.QueryDuration.WithLabelValues("sentiment_counts").Observe(time.Since(start).Seconds())
		}
	}()

	window, ok := parseWindow(c)
	if !ok {
		countQuery("sentiment_counts", "error")
		return
	}

	keyword := c.Query("keyword")
	counts, err := db.CountByCategory(c.Request.Context(), window, keyword)
	if err != nil {
		countQuery("sentiment_counts", "error")
		logger.WithError(err).Error("Failed to count posts by sentiment")
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{Error: "Failed to fetch sentiment counts"})
		return
	}
	countQuery("sentiment_counts", "success")

	resp := sentinel.SentimentCountsResponse{Keyword: keyword, Counts: counts}
	if window != nil {
		resp.Start = &window.Start
		resp.End = &window.End
	}
	c.JSON(http.StatusOK, resp)
}

// GetSentimentTrend returns time-bucketed sentiment counts. The window
// defaults to the trailing 24 hours, bucket to hour.
func GetSentimentTrend(c *gin.Context) {
	start := time.Now()
	defer func() {
		if serviceMetrics != nil {
			serviceMetrics.QueryDuration.WithLabelValues("sentiment_trend").Observe(time.Since(start).Seconds())
		}
	}()

	bucket := store.TrendBucket(c.DefaultQuery("bucket", string(store.BucketHour)))
	if bucket != store.BucketHour && bucket != store.BucketDay {
		countQuery("sentiment_trend", "error")
		c.JSON(http.StatusBadRequest, common.ErrorResponse{Error: "bucket must be 'hour' or 'day'"})
		return
	}

	window, ok := parseWindow(c)
	if !ok {
		countQuery("sentiment_trend", "error")
		return
	}
	if window == nil {
		now := time.Now().UTC()
		window = &store.TimeWindow{Start: now.Add(-24 * time.Hour), End: now}
	}

	points, err := db.Trend(c.Request.Context(), *window, bucket)
	if err != nil {
		countQuery("sentiment_trend", "error")
		logger.WithError(err).Error("Failed to fetch sentiment trend")
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{Error: "Failed to fetch sentiment trend"})
		return
	}
	countQuery("sentiment_trend", "success")

	c.JSON(http.StatusOK, sentinel.TrendResponse{Bucket: string(bucket), Points: points})
}

// ListPosts returns stored posts, newest window first
func ListPosts(c *gin.Context) {
	window, ok := parseWindow(c)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{Error: "Invalid limit"})
		return
	}

	posts, err := db.ListPosts(c.Request.Context(), window, c.Query("keyword"), limit)
	if err != nil {
		logger.WithError(err).Error("Failed to list posts")
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{Error: "Failed to list posts"})
		return
	}
	if posts == nil {
		posts = sentinel.PostsResponse{}
	}
	c.JSON(http.StatusOK, posts)
}

// GetStoreStats summarizes the persisted corpus
func GetStoreStats(c *gin.Context) {
	stats, err := db.Stats(c.Request.Context())
	if err != nil {
		logger.WithError(err).Error("Failed to fetch store stats")
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{Error: "Failed to fetch stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportPosts streams the stored posts as a flat file. CSV and Parquet
// carry the same columns in the same order, surrogate keys excluded.
func ExportPosts(c *gin.Context) {
	format := export.Format(c.DefaultQuery("format", string(export.FormatCSV)))
	if format != export.FormatCSV && format != export.FormatParquet {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{Error: "format must be 'csv' or 'parquet'"})
		return
	}

	window, ok := parseWindow(c)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultExportLimit)))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{Error: "Invalid limit"})
		return
	}

	posts, err := db.ListPosts(c.Request.Context(), window, c.Query("keyword"), limit)
	if err != nil {
		logger.WithError(err).Error("Failed to fetch posts for export")
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{Error: "Failed to fetch posts"})
		return
	}

	filename := "posts-" + time.Now().UTC().Format("20060102T150405Z")
	switch format {
	case export.FormatCSV:
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", `attachment; filename="`+filename+`.csv"`)
		err = export.WriteCSV(c.Writer, posts)
	case export.FormatParquet:
		c.Header("Content-Type", "application/octet-stream")
		c.Header("Content-Disposition", `attachment; filename="`+filename+`.parquet"`)
		err = export.WriteParquet(c.Writer, posts)
	}
	if err != nil {
		// Headers are already sent; all we can do is log
		logger.WithError(err).WithField("format", format).Error("Failed to write export")
	}
}

// parseWindow reads optional start/end RFC3339 query parameters. Both must
// be present to form a window; a malformed pair writes the error response
// and returns ok=false.
func parseWindow(c *gin.Context) (*store.TimeWindow, bool) {
	startRaw := c.Query("start")
	endRaw := c.Query("end")
	if startRaw == "" && endRaw == "" {
		return nil, true
	}
	if startRaw == "" || endRaw == "" {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{Error: "start and end must be provided together"})
		return nil, false
	}

	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{Error: "Invalid start format, want RFC3339"})
		return nil, false
	}
	end, err := time.Parse(time.RFC3339, endRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{Error: "Invalid end format, want RFC3339"})
		return nil, false
	}
	if !end.After(start) {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{Error: "end must be after start"})
		return nil, false
	}
	return &store.TimeWindow{Start: start, End: end}, true
}

func countQuery(queryType, status string) {
	if serviceMetrics != nil {
		serviceMetrics.AnalyticsQueries.WithLabelValues(queryType, status).Inc()
	}
}
