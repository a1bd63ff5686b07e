package normalize

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/models"
)

func testRawPost() models.RawPost {
	return models.RawPost{
		ExternalID:  "1844091800000000001",
		AuthorID:    "99001122",
		AuthorName:  "acmewatcher",
		DisplayName: "Acme Watcher",
		Text:        "Loving the new Acme gadget!",
		CreatedAt:   time.Date(2026, 8, 20, 14, 30, 0, 0, time.FixedZone("CEST", 2*3600)),
		LikeCount:   12,
		RepostCount: 3,
		ReplyCount:  1,
		Language:    "en",
		Keyword:     "acme",
	}
}

func testScoredPost() models.ScoredPost {
	return models.ScoredPost{
		RawPost:   testRawPost(),
		Sentiment: models.SentimentScore{Polarity: 0.6, Subjectivity: 0.4, Category: models.SentimentPositive},
	}
}

func TestNormalize(t *testing.T) {
	n := New(logrus.New())

	stored, err := n.Normalize(testScoredPost())
	require.NoError(t, err)

	assert.Equal(t, "1844091800000000001", stored.ExternalID)
	assert.Equal(t, "acme", stored.Keyword)
	assert.Equal(t, 0.6, stored.Polarity)
	assert.Equal(t, models.SentimentPositive, stored.Category)
	assert.True(t, stored.IngestedAt.IsZero(), "ingested_at is assigned by the loader")
}

func TestNormalizeConvertsToUTC(t *testing.T) {
	n := New(logrus.New())

	stored, err := n.Normalize(testScoredPost())
	require.NoError(t, err)

	assert.Equal(t, time.UTC, stored.CreatedAt.Location())
	assert.Equal(t, time.Date(2026, 8, 20, 12, 30, 0, 0, time.UTC), stored.CreatedAt)
}

func TestNormalizeRejectsEmptyExternalID(t *testing.T) {
	n := New(logrus.New())

	p := testScoredPost()
	p.ExternalID = "   "
	_, err := n.Normalize(p)
	assert.Error(t, err)
}

func TestNormalizeRejectsZeroTimestamp(t *testing.T) {
	n := New(logrus.New())

	p := testScoredPost()
	p.CreatedAt = time.Time{}
	_, err := n.Normalize(p)
	assert.Error(t, err)
}

func TestNormalizeClampsNegativeCounters(t *testing.T) {
	logger, hook := test.NewNullLogger()
	n := New(logger)

	p := testScoredPost()
	p.LikeCount = -5
	p.RepostCount = -1

	stored, err := n.Normalize(p)
	require.NoError(t, err, "negative counters are a warning, not a failure")

	assert.Equal(t, 0, stored.LikeCount)
	assert.Equal(t, 0, stored.RepostCount)
	assert.Equal(t, 1, stored.ReplyCount)

	var warnings int
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings++
		}
	}
	assert.Equal(t, 2, warnings, "one warning per clamped counter")
}

func TestNormalizePure(t *testing.T) {
	n := New(logrus.New())

	first, err := n.Normalize(testScoredPost())
	require.NoError(t, err)
	second, err := n.Normalize(testScoredPost())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
