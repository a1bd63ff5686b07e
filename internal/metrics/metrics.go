package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds all Prometheus metrics for the sentiment pipeline service
type Metrics struct {
	PipelineRuns     *prometheus.CounterVec   // labels: status
	StageDuration    *prometheus.HistogramVec // labels: stage
	PostsProcessed   *prometheus.CounterVec   // labels: outcome
	AnalyticsQueries *prometheus.CounterVec   // labels: query_type, status
	QueryDuration    *prometheus.HistogramVec // labels: query_type
}
