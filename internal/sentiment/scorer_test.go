package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/models"
)

func TestScoreBounds(t *testing.T) {
	scorer := NewScorer()

	texts := []string{
		"Loving my new Tesla! Amazing experience, best car ever!",
		"Really disappointed. Terrible customer service, never again.",
		"Just bought a new laptop. We'll see how it goes.",
		"the quick brown fox jumps over the lazy dog",
		"!!!",
		"AMAZING AMAZING AMAZING AMAZING",
		"worst worst worst worst awful horrible",
	}

	for _, text := range texts {
		score, err := scorer.Score(text)
		require.NoError(t, err, "text: %s", text)
		assert.GreaterOrEqual(t, score.Polarity, -1.0, "polarity lower bound: %s", text)
		assert.LessOrEqual(t, score.Polarity, 1.0, "polarity upper bound: %s", text)
		assert.GreaterOrEqual(t, score.Subjectivity, 0.0, "subjectivity lower bound: %s", text)
		assert.LessOrEqual(t, score.Subjectivity, 1.0, "subjectivity upper bound: %s", text)
		assert.True(t, score.Category.Valid(), "category: %s", text)
	}
}

func TestScoreEmptyText(t *testing.T) {
	scorer := NewScorer()

	for _, text := range []string{"", "   ", "\t\n", "  \n  "} {
		score, err := scorer.Score(text)
		require.NoError(t, err)
		assert.Equal(t, 0.0, score.Polarity)
		assert.Equal(t, 0.0, score.Subjectivity)
		assert.Equal(t, models.SentimentNeutral, score.Category)
	}
}

func TestScoreDeterministic(t *testing.T) {
	scorer := NewScorer()

	text := "Best service ever! Highly recommend to everyone."
	first, err := scorer.Score(text)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := scorer.Score(text)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestScoreInvalidUTF8(t *testing.T) {
	scorer := NewScorer()

	// Invalid byte sequence embedded in otherwise fine text must be
	// sanitized, never surfaced as an error.
	score, err := scorer.Score("great product \xff\xfe would buy again")
	require.NoError(t, err)
	assert.True(t, score.Category.Valid())
}

func TestCategorizeBoundaries(t *testing.T) {
	cases := []struct {
		polarity float64
		want     models.SentimentCategory
	}{
		{0.0, models.SentimentNeutral},
		{0.1, models.SentimentNeutral},
		{-0.1, models.SentimentNeutral},
		{0.1000001, models.SentimentPositive},
		{-0.1000001, models.SentimentNegative},
		{1.0, models.SentimentPositive},
		{-1.0, models.SentimentNegative},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, Categorize(c.polarity), "polarity %v", c.polarity)
	}
}

func TestScorePolaritySigns(t *testing.T) {
	scorer := NewScorer()

	pos, err := scorer.Score("I love this, it is wonderful and amazing!")
	require.NoError(t, err)
	assert.Greater(t, pos.Polarity, 0.0)

	neg, err := scorer.Score("I hate this, it is horrible and disgusting!")
	require.NoError(t, err)
	assert.Less(t, neg.Polarity, 0.0)
}
