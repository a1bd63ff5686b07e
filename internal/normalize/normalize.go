package normalize

import (
	"fmt"
	"strings"

	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/logging"
	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/models"
)

// Normalizer maps raw source fields plus scorer output into the canonical
// stored record. Data-quality coercions (negative counters, non-UTC
// timestamps) are logged as warnings and corrected, never fatal.
type Normalizer struct {
	logger logging.Logger
}

// New creates a normalizer
func New(logger logging.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize validates a scored post and flattens it into the canonical
// stored record. The ingestion timestamp is left zero; the database loader
// assigns it at write time so the function stays pure.
func (n *Normalizer) Normalize(p models.ScoredPost) (models.StoredPost, error) {
	externalID := strings.TrimSpace(p.ExternalID)
	if externalID == "" {
		return models.StoredPost{}, fmt.Errorf("scored post has empty external id (keyword %q)", p.Keyword)
	}
	if p.CreatedAt.IsZero() {
		return models.StoredPost{}, fmt.Errorf("scored post %s has no created timestamp", externalID)
	}
	if !p.Sentiment.Category.Valid() {
		return models.StoredPost{}, fmt.Errorf("scored post %s has invalid sentiment category %q", externalID, p.Sentiment.Category)
	}

	return models.StoredPost{
		ExternalID:   externalID,
		AuthorID:     strings.TrimSpace(p.AuthorID),
		AuthorName:   strings.TrimSpace(p.AuthorName),
		DisplayName:  strings.TrimSpace(p.DisplayName),
		Text:         strings.ToValidUTF8(p.Text, "�"),
		CreatedAt:    p.CreatedAt.UTC(),
		LikeCount:    n.clampCounter(externalID, "like_count", p.LikeCount),
		RepostCount:  n.clampCounter(externalID, "repost_count", p.RepostCount),
		ReplyCount:   n.clampCounter(externalID, "reply_count", p.ReplyCount),
		Language:     p.Language,
		Keyword:      p.Keyword,
		Polarity:     p.Sentiment.Polarity,
		Subjectivity: p.Sentiment.Subjectivity,
		Category:     p.Sentiment.Category,
	}, nil
}

// clampCounter coerces a negative engagement counter to zero and logs a
// data-quality warning
func (n *Normalizer) clampCounter(externalID, field string, value int) int {
	if value >= 0 {
		return value
	}
	if n.logger != nil {
		n.logger.WithFields(logging.Fields{
			"external_id": externalID,
			"field":       field,
			"value":       value,
		}).Warn("Negative engagement counter clamped to zero")
	}
	return 0
}
