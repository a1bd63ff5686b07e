package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/models"
)

// Canned post templates per sentiment leaning. %s is the brand/keyword.
var mockTemplates = [][]string{
	{
		"Loving my new %s product! Amazing experience!",
		"%s is changing the game! So impressed!",
		"Best service from %s ever! Highly recommend!",
	},
	{
		"Really disappointed with %s. Terrible experience.",
		"%s customer service is awful. Never again!",
		"Worst purchase ever from %s. Stay away!",
	},
	{
		"Just bought a %s product. We'll see how it goes.",
		"Reading about %s's new features. Interesting.",
		"Saw %s mentioned in the news today.",
	},
}

// MockConfig configures the deterministic mock adapter
type MockConfig struct {
	// Seed drives every generated field; the same seed, keyword and count
	// always produce the same posts.
	Seed uint64
	// BaseTime anchors generated created timestamps. Defaults to a fixed
	// date rather than the wall clock so whole records stay reproducible.
	BaseTime time.Time
}

// MockAdapter generates deterministic fake posts without touching the
// network. External IDs are a pure function of keyword and position, so
// repeated mock runs exercise the loader's upsert path.
type MockAdapter struct {
	cfg MockConfig
}

// NewMockAdapter creates a mock source adapter
func NewMockAdapter(cfg MockConfig) *MockAdapter {
	if cfg.BaseTime.IsZero() {
		cfg.BaseTime = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	}
	return &MockAdapter{cfg: cfg}
}

// Fetch generates maxCount fake posts mentioning the keyword
func (m *MockAdapter) Fetch(ctx context.Context, keyword string, maxCount int) ([]models.RawPost, error) {
	if keyword == "" {
		return nil, fmt.Errorf("keyword is required")
	}
	if maxCount <= 0 {
		return nil, fmt.Errorf("max count must be positive, got %d", maxCount)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Fresh faker per call keeps output a function of (seed, keyword, count)
	faker := gofakeit.New(m.cfg.Seed)
	brand := strings.Title(strings.ToLower(keyword)) //nolint:staticcheck // keywords are plain ASCII brand names

	posts := make([]models.RawPost, 0, maxCount)
	for i := 0; i < maxCount; i++ {
		templates := mockTemplates[faker.Number(0, len(mockTemplates)-1)]
		text := fmt.Sprintf(templates[faker.Number(0, len(templates)-1)], brand)

		created := m.cfg.BaseTime.Add(-time.Duration(faker.Number(0, 720)) * time.Hour)

		posts = append(posts, models.RawPost{
			ExternalID:  fmt.Sprintf("mock-%s-%06d", strings.ToLower(keyword), i),
			AuthorID:    fmt.Sprintf("user-%04d", faker.Number(1000, 9999)),
			AuthorName:  faker.Username(),
			DisplayName: faker.Name(),
			Text:        text,
			CreatedAt:   created.UTC(),
			LikeCount:   faker.Number(0, 5000),
			RepostCount: faker.Number(0, 1000),
			ReplyCount:  faker.Number(0, 100),
			Language:    "en",
			Keyword:     keyword,
		})
	}

	return posts, nil
}
