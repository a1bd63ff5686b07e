package models

import "time"

// SentimentCategory is the discretized sentiment band of a post
type SentimentCategory string

const (
	SentimentNegative SentimentCategory = "negative"
	SentimentNeutral  SentimentCategory = "neutral"
	SentimentPositive SentimentCategory = "positive"
)

// Valid reports whether the category is one of the known bands
func (c SentimentCategory) Valid() bool {
	switch c {
	case SentimentNegative, SentimentNeutral, SentimentPositive:
		return true
	}
	return false
}

// RawPost is an unvalidated post record as returned by a source adapter.
// External IDs are unique per source; everything else is taken as-is and
// validated at the adapter boundary.
type RawPost struct {
	ExternalID  string    `json:"external_id"`
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	DisplayName string    `json:"display_name"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
	LikeCount   int       `json:"like_count"`
	RepostCount int       `json:"repost_count"`
	ReplyCount  int       `json:"reply_count"`
	Language    string    `json:"language"`
	Keyword     string    `json:"keyword"`
}

// SentimentScore is the scorer output for a single text
type SentimentScore struct {
	Polarity     float64           `json:"polarity"`
	Subjectivity float64           `json:"subjectivity"`
	Category     SentimentCategory `json:"category"`
}

// ScoredPost pairs a raw post with its sentiment score. It only lives
// within a single pipeline run.
type ScoredPost struct {
	RawPost
	Sentiment SentimentScore `json:"sentiment"`
}

// StoredPost is the canonical persisted record, uniquely keyed by external
// ID. ID and IngestedAt are assigned by the database loader.
type StoredPost struct {
	ID           int64             `json:"id"`
	ExternalID   string            `json:"external_id"`
	AuthorID     string            `json:"author_id"`
	AuthorName   string            `json:"author_name"`
	DisplayName  string            `json:"display_name"`
	Text         string            `json:"text"`
	CreatedAt    time.Time         `json:"created_at"`
	LikeCount    int               `json:"like_count"`
	RepostCount  int               `json:"repost_count"`
	ReplyCount   int               `json:"reply_count"`
	Language     string            `json:"language"`
	Keyword      string            `json:"keyword"`
	Polarity     float64           `json:"polarity"`
	Subjectivity float64           `json:"subjectivity"`
	Category     SentimentCategory `json:"sentiment_category"`
	IngestedAt   time.Time         `json:"ingested_at"`
}

// RunState is the orchestrator state for a pipeline run
type RunState string

const (
	RunIdle     RunState = "idle"
	RunFetching RunState = "fetching"
	RunScoring  RunState = "scoring"
	RunLoading  RunState = "loading"
	RunDone     RunState = "done"
	RunFailed   RunState = "failed"
)

// RunSummary reports the outcome of one pipeline run. Counts are reported
// even on partial degradation; Loaded is zero when the run aborts before
// the loading stage completes.
type RunSummary struct {
	RunID    string    `json:"run_id"`
	Keyword  string    `json:"keyword"`
	State    RunState  `json:"state"`
	Fetched  int       `json:"fetched"`
	Scored   int       `json:"scored"`
	Loaded   int       `json:"loaded"`
	Dropped  int       `json:"dropped"`
	Error    string    `json:"error,omitempty"`
	Started  time.Time `json:"started_at"`
	Finished time.Time `json:"finished_at"`
}

// CategoryCount is one row of a sentiment aggregation
type CategoryCount struct {
	Category SentimentCategory `json:"category"`
	Count    int64             `json:"count"`
}

// TrendPoint is one time bucket of a sentiment trend aggregation
type TrendPoint struct {
	Bucket   time.Time         `json:"bucket"`
	Category SentimentCategory `json:"category"`
	Count    int64             `json:"count"`
}

// StoreStats summarizes the persisted corpus for dashboards
type StoreStats struct {
	TotalPosts    int64     `json:"total_posts"`
	UniqueAuthors int64     `json:"unique_authors"`
	AvgLikes      float64   `json:"avg_likes"`
	AvgReposts    float64   `json:"avg_reposts"`
	EarliestPost  time.Time `json:"earliest_post"`
	LatestPost    time.Time `json:"latest_post"`
}
