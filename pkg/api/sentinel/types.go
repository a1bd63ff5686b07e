package sentinel

import (
	"time"

	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/models"
)

// RunRequest is the body of POST /pipeline/runs
type RunRequest struct {
	Keyword  string `json:"keyword"`
	MaxCount int    `json:"max_count"`
	MockMode bool   `json:"mock_mode"`
	MockSeed uint64 `json:"mock_seed"`
}

// RunResponse represents the response from TriggerPipelineRun
type RunResponse = models.RunSummary

// SentimentCountsResponse represents the response from GetSentimentCounts
type SentimentCountsResponse struct {
	Keyword string                 `json:"keyword,omitempty"`
	Start   *time.Time             `json:"start,omitempty"`
	End     *time.Time             `json:"end,omitempty"`
	Counts  []models.CategoryCount `json:"counts"`
}

// TrendResponse represents the response from GetSentimentTrend
type TrendResponse struct {
	Bucket string              `json:"bucket"`
	Points []models.TrendPoint `json:"points"`
}

// StatsResponse represents the response from GetStoreStats
type StatsResponse = models.StoreStats

// PostsResponse represents the response from ListPosts
type PostsResponse = []models.StoredPost
