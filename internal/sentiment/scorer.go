package sentiment

import (
	"strings"

	"github.com/jonreiter/govader"

	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/models"
)

// Category thresholds. Polarity strictly above the positive threshold is
// positive, strictly below the negative threshold is negative, everything
// else (including exactly +-0.1) is neutral.
const (
	PositiveThreshold = 0.1
	NegativeThreshold = -0.1
)

// Scorer scores post text with the VADER lexicon. It is deterministic and
// makes no network calls; construction loads the lexicon, so one Scorer
// should be reused across posts. Safe for concurrent use.
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewScorer creates a sentiment scorer
func NewScorer() *Scorer {
	return &Scorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Score computes polarity, subjectivity and the discretized category for a
// text. Empty or whitespace-only text scores as neutral with zero polarity
// and subjectivity; this is a defined default, not an error. Invalid UTF-8
// is sanitized before scoring.
func (s *Scorer) Score(text string) (models.SentimentScore, error) {
	cleaned := strings.TrimSpace(strings.ToValidUTF8(text, "�"))
	if cleaned == "" {
		return models.SentimentScore{Category: models.SentimentNeutral}, nil
	}

	scores := s.analyzer.PolarityScores(cleaned)

	polarity := clamp(scores.Compound, -1, 1)
	// VADER's positive/negative/neutral proportions sum to one; the
	// non-neutral share stands in for TextBlob-style subjectivity.
	subjectivity := clamp(scores.Positive+scores.Negative, 0, 1)

	return models.SentimentScore{
		Polarity:     polarity,
		Subjectivity: subjectivity,
		Category:     Categorize(polarity),
	}, nil
}

// Categorize maps a polarity value onto a sentiment band
func Categorize(polarity float64) models.SentimentCategory {
	switch {
	case polarity > PositiveThreshold:
		return models.SentimentPositive
	case polarity < NegativeThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
