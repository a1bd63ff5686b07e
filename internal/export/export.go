// Package export serializes stored posts to flat tabular formats for bulk
// handoff to downstream tooling.
//
// Both formats share the same schema: the StoredPost fields minus the
// surrogate key, in this fixed column order:
//
//	external_id, author_id, author_name, display_name, content,
//	created_at, like_count, repost_count, reply_count, language, keyword,
//	polarity, subjectivity, sentiment_category, ingested_at
//
// Exporting and re-importing a result set reproduces the same logical rows;
// surrogate keys are assigned again at load time.
package export

import (
	"time"

	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/models"
)

// Format identifies an export serialization
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// Columns is the documented flat-file column order
var Columns = []string{
	"external_id", "author_id", "author_name", "display_name", "content",
	"created_at", "like_count", "repost_count", "reply_count", "language",
	"keyword", "polarity", "subjectivity", "sentiment_category", "ingested_at",
}

// record is the flat row shape shared by both formats
type record struct {
	ExternalID   string    `parquet:"external_id"`
	AuthorID     string    `parquet:"author_id"`
	AuthorName   string    `parquet:"author_name"`
	DisplayName  string    `parquet:"display_name"`
	Content      string    `parquet:"content"`
	CreatedAt    time.Time `parquet:"created_at,timestamp(nanosecond)"`
	LikeCount    int32     `parquet:"like_count"`
	RepostCount  int32     `parquet:"repost_count"`
	ReplyCount   int32     `parquet:"reply_count"`
	Language     string    `parquet:"language"`
	Keyword      string    `parquet:"keyword"`
	Polarity     float64   `parquet:"polarity"`
	Subjectivity float64   `parquet:"subjectivity"`
	Category     string    `parquet:"sentiment_category"`
	IngestedAt   time.Time `parquet:"ingested_at,timestamp(nanosecond)"`
}

func toRecord(p models.StoredPost) record {
	return record{
		ExternalID:   p.ExternalID,
		AuthorID:     p.AuthorID,
		AuthorName:   p.AuthorName,
		DisplayName:  p.DisplayName,
		Content:      p.Text,
		CreatedAt:    p.CreatedAt.UTC(),
		LikeCount:    int32(p.LikeCount),
		RepostCount:  int32(p.RepostCount),
		ReplyCount:   int32(p.ReplyCount),
		Language:     p.Language,
		Keyword:      p.Keyword,
		Polarity:     p.Polarity,
		Subjectivity: p.Subjectivity,
		Category:     string(p.Category),
		IngestedAt:   p.IngestedAt.UTC(),
	}
}

func fromRecord(r record) models.StoredPost {
	return models.StoredPost{
		ExternalID:   r.ExternalID,
		AuthorID:     r.AuthorID,
		AuthorName:   r.AuthorName,
		DisplayName:  r.DisplayName,
		Text:         r.Content,
		CreatedAt:    r.CreatedAt.UTC(),
		LikeCount:    int(r.LikeCount),
		RepostCount:  int(r.RepostCount),
		ReplyCount:   int(r.ReplyCount),
		Language:     r.Language,
		Keyword:      r.Keyword,
		Polarity:     r.Polarity,
		Subjectivity: r.Subjectivity,
		Category:     models.SentimentCategory(r.Category),
		IngestedAt:   r.IngestedAt.UTC(),
	}
}
