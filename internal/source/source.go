// Package source provides post source adapters. The live adapter speaks the
// Twitter v2 recent-search API; the mock adapter generates deterministic
// posts for development and tests. Both return the same RawPost shape so the
// pipeline never needs to know which origin it is reading from.
package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/models"
)

// Adapter yields raw post records matching a keyword query
type Adapter interface {
	Fetch(ctx context.Context, keyword string, maxCount int) ([]models.RawPost, error)
}

// RetryConfig makes the adapter retry behavior an explicit parameter
// rather than ambient behavior buried in helpers.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryConfig returns the standard adapter retry policy
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   10 * time.Second,
	}
}

// Validate checks a raw record at the adapter boundary. Records failing
// validation never enter the pipeline; callers count them as dropped.
func Validate(raw models.RawPost) error {
	if strings.TrimSpace(raw.ExternalID) == "" {
		return fmt.Errorf("post has empty external id")
	}
	if strings.TrimSpace(raw.Text) == "" {
		return fmt.Errorf("post %s has empty text", raw.ExternalID)
	}
	if raw.CreatedAt.IsZero() {
		return fmt.Errorf("post %s has no created timestamp", raw.ExternalID)
	}
	return nil
}
