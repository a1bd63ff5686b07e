package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/models"
)

func samplePosts() []models.StoredPost {
	created := time.Date(2026, 8, 20, 12, 30, 0, 0, time.UTC)
	ingested := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	return []models.StoredPost{
		{
			ID:           1,
			ExternalID:   "1844091800000000001",
			AuthorID:     "99",
			AuthorName:   "acmewatcher",
			DisplayName:  "Acme Watcher",
			Text:         "Loving the new Acme gadget!",
			CreatedAt:    created,
			LikeCount:    12,
			RepostCount:  3,
			ReplyCount:   1,
			Language:     "en",
			Keyword:      "acme",
			Polarity:     0.6249,
			Subjectivity: 0.45,
			Category:     models.SentimentPositive,
			IngestedAt:   ingested,
		},
		{
			ID:           2,
			ExternalID:   "1844091800000000002",
			AuthorID:     "100",
			AuthorName:   "grumpybuyer",
			DisplayName:  "Grumpy Buyer",
			Text:         "Text with, commas and \"quotes\" and\nnewlines",
			CreatedAt:    created.Add(time.Hour),
			LikeCount:    0,
			RepostCount:  0,
			ReplyCount:   4,
			Language:     "en",
			Keyword:      "acme",
			Polarity:     -0.7,
			Subjectivity: 0.9,
			Category:     models.SentimentNegative,
			IngestedAt:   ingested,
		},
	}
}

// stripIDs zeroes surrogate keys, which are excluded from the export schema
func stripIDs(posts []models.StoredPost) []models.StoredPost {
	out := make([]models.StoredPost, len(posts))
	copy(out, posts)
	for i := range out {
		out[i].ID = 0
	}
	return out
}

func TestCSVRoundTrip(t *testing.T) {
	posts := samplePosts()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, posts))

	back, err := ReadCSV(&buf)
	require.NoError(t, err)

	assert.Equal(t, stripIDs(posts), back)
}

func TestCSVHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	firstLine := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Equal(t, strings.Join(Columns, ","), firstLine)
}

func TestCSVRejectsWrongHeader(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b,c\n"))
	assert.Error(t, err)
}

func TestParquetRoundTrip(t *testing.T) {
	posts := samplePosts()

	var buf bytes.Buffer
	require.NoError(t, WriteParquet(&buf, posts))

	back, err := ReadParquet(&buf)
	require.NoError(t, err)

	assert.Equal(t, stripIDs(posts), back)
}

func TestParquetRoundTripKeepsSubMillisecondTimes(t *testing.T) {
	posts := samplePosts()
	posts[0].CreatedAt = time.Date(2026, 8, 20, 12, 30, 0, 123456789, time.UTC)
	posts[0].IngestedAt = time.Date(2026, 8, 25, 10, 0, 0, 123456000, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteParquet(&buf, posts))

	back, err := ReadParquet(&buf)
	require.NoError(t, err)

	assert.Equal(t, stripIDs(posts), back)
}

func TestParquetRoundTripEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteParquet(&buf, nil))

	back, err := ReadParquet(&buf)
	require.NoError(t, err)
	assert.Empty(t, back)
}
