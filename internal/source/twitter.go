package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/logging"
	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/models"
)

const (
	defaultAPIBaseURL = "https://api.twitter.com/2"

	// Twitter caps max_results for recent search at 100 per request
	maxResultsPerRequest = 100
)

// TwitterClient fetches posts from the Twitter v2 recent-search endpoint
type TwitterClient struct {
	baseURL     string
	bearerToken string
	httpClient  *http.Client
	executor    failsafe.Executor[*http.Response]
	logger      logging.Logger
}

// TwitterConfig configures the live Twitter adapter
type TwitterConfig struct {
	BearerToken string
	BaseURL     string // override for tests; defaults to the public API
	Timeout     time.Duration
	Retry       RetryConfig
}

// NewTwitterClient creates a live Twitter source adapter with the given
// retry policy. Retries cover network errors, 5xx responses and 429
// rate-limit responses.
func NewTwitterClient(cfg TwitterConfig, logger logging.Logger) (*TwitterClient, error) {
	if cfg.BearerToken == "" {
		return nil, fmt.Errorf("twitter bearer token is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultAPIBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	retry := retrypolicy.NewBuilder[*http.Response]().
		WithBackoff(cfg.Retry.BaseDelay, cfg.Retry.MaxDelay).
		WithMaxRetries(cfg.Retry.MaxRetries).
		WithJitterFactor(0.1).
		HandleIf(func(resp *http.Response, err error) bool {
			if err != nil {
				return true
			}
			if resp == nil {
				return true
			}
			switch resp.StatusCode {
			case http.StatusInternalServerError,
				http.StatusBadGateway,
				http.StatusServiceUnavailable,
				http.StatusGatewayTimeout,
				http.StatusTooManyRequests:
				return true
			default:
				return false
			}
		}).
		Build()

	return &TwitterClient{
		baseURL:     cfg.BaseURL,
		bearerToken: cfg.BearerToken,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		executor:    failsafe.With(retry),
		logger:      logger,
	}, nil
}

// searchResponse mirrors the subset of the v2 recent-search payload we use
type searchResponse struct {
	Data []struct {
		ID            string    `json:"id"`
		Text          string    `json:"text"`
		AuthorID      string    `json:"author_id"`
		CreatedAt     time.Time `json:"created_at"`
		Lang          string    `json:"lang"`
		PublicMetrics struct {
			RetweetCount int `json:"retweet_count"`
			ReplyCount   int `json:"reply_count"`
			LikeCount    int `json:"like_count"`
		} `json:"public_metrics"`
	} `json:"data"`
	Includes struct {
		Users []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Username string `json:"username"`
		} `json:"users"`
	} `json:"includes"`
	Errors []struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// Fetch searches recent posts matching the keyword. The caller bounds the
// call with ctx; timeout or retry exhaustion surfaces as an error that the
// pipeline maps to SourceUnavailable.
func (c *TwitterClient) Fetch(ctx context.Context, keyword string, maxCount int) ([]models.RawPost, error) {
	if keyword == "" {
		return nil, fmt.Errorf("keyword is required")
	}
	if maxCount <= 0 {
		return nil, fmt.Errorf("max count must be positive, got %d", maxCount)
	}
	if maxCount > maxResultsPerRequest {
		maxCount = maxResultsPerRequest
	}

	params := url.Values{}
	params.Set("query", keyword+" -is:retweet")
	params.Set("max_results", strconv.Itoa(maxCount))
	params.Set("tweet.fields", "created_at,public_metrics,lang,author_id")
	params.Set("expansions", "author_id")
	params.Set("user.fields", "name,username")

	endpoint := c.baseURL + "/tweets/search/recent?" + params.Encode()

	resp, err := c.executor.WithContext(ctx).Get(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
		return c.httpClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("twitter search failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("twitter search returned %d: %s", resp.StatusCode, string(body))
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode twitter response: %w", err)
	}

	// Index expansion users by id for author lookups
	users := make(map[string]struct{ name, username string }, len(payload.Includes.Users))
	for _, u := range payload.Includes.Users {
		users[u.ID] = struct{ name, username string }{u.Name, u.Username}
	}

	posts := make([]models.RawPost, 0, len(payload.Data))
	for _, tweet := range payload.Data {
		author := users[tweet.AuthorID]
		posts = append(posts, models.RawPost{
			ExternalID:  tweet.ID,
			AuthorID:    tweet.AuthorID,
			AuthorName:  author.username,
			DisplayName: author.name,
			Text:        tweet.Text,
			CreatedAt:   tweet.CreatedAt.UTC(),
			LikeCount:   tweet.PublicMetrics.LikeCount,
			RepostCount: tweet.PublicMetrics.RetweetCount,
			ReplyCount:  tweet.PublicMetrics.ReplyCount,
			Language:    tweet.Lang,
			Keyword:     keyword,
		})
	}

	c.logger.WithFields(logging.Fields{
		"keyword": keyword,
		"fetched": len(posts),
	}).Info("Fetched posts from Twitter")

	return posts, nil
}
