package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/models"
)

func TestCountByCategory(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"sentiment_category", "count"}).
		AddRow("negative", 4).
		AddRow("neutral", 10).
		AddRow("positive", 6)

	mock.ExpectQuery(`SELECT sentiment_category, COUNT\(\*\) FROM posts GROUP BY sentiment_category`).
		WillReturnRows(rows)

	counts, err := s.CountByCategory(context.Background(), nil, "")
	if err != nil {
		t.Fatalf("CountByCategory: %v", err)
	}
	if len(counts) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(counts))
	}
	if counts[1].Category != models.SentimentNeutral || counts[1].Count != 10 {
		t.Fatalf("unexpected neutral row: %+v", counts[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCountByCategoryWindowed(t *testing.T) {
	s, mock := newMockStore(t)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"sentiment_category", "count"}).
		AddRow("positive", 2)

	// Inclusive start, exclusive end
	mock.ExpectQuery(`FROM posts WHERE created_at >= \$1 AND created_at < \$2 GROUP BY`).
		WithArgs(start, end).
		WillReturnRows(rows)

	counts, err := s.CountByCategory(context.Background(), &TimeWindow{Start: start, End: end}, "")
	if err != nil {
		t.Fatalf("CountByCategory: %v", err)
	}
	if len(counts) != 1 || counts[0].Count != 2 {
		t.Fatalf("unexpected counts: %+v", counts)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCountByCategoryKeywordFiltered(t *testing.T) {
	s, mock := newMockStore(t)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 8, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"sentiment_category", "count"}).
		AddRow("negative", 1).
		AddRow("positive", 7)

	mock.ExpectQuery(`FROM posts WHERE created_at >= \$1 AND created_at < \$2 AND keyword = \$3 GROUP BY`).
		WithArgs(start, end, "acme").
		WillReturnRows(rows)

	counts, err := s.CountByCategory(context.Background(), &TimeWindow{Start: start, End: end}, "acme")
	if err != nil {
		t.Fatalf("CountByCategory: %v", err)
	}
	if len(counts) != 2 || counts[1].Count != 7 {
		t.Fatalf("unexpected counts: %+v", counts)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestTrend(t *testing.T) {
	s, mock := newMockStore(t)

	day1 := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"bucket", "sentiment_category", "count"}).
		AddRow(day1, "negative", 1).
		AddRow(day1, "positive", 3).
		AddRow(day2, "positive", 5)

	mock.ExpectQuery(`SELECT date_trunc\('day', created_at\) AS bucket, sentiment_category, COUNT\(\*\)`).
		WithArgs(day1, day2.Add(24*time.Hour)).
		WillReturnRows(rows)

	points, err := s.Trend(context.Background(), TimeWindow{Start: day1, End: day2.Add(24 * time.Hour)}, BucketDay)
	if err != nil {
		t.Fatalf("Trend: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if !points[2].Bucket.Equal(day2) || points[2].Count != 5 {
		t.Fatalf("unexpected last point: %+v", points[2])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestTrendRejectsUnknownBucket(t *testing.T) {
	s, _ := newMockStore(t)

	_, err := s.Trend(context.Background(), TimeWindow{}, TrendBucket("week"))
	if err == nil {
		t.Fatal("expected error for unsupported bucket")
	}
}

func TestListPosts(t *testing.T) {
	s, mock := newMockStore(t)

	created := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	ingested := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "external_id", "author_id", "author_name", "display_name", "content",
		"created_at", "like_count", "repost_count", "reply_count", "language", "keyword",
		"polarity", "subjectivity", "sentiment_category", "ingested_at",
	}).AddRow(
		int64(1), "ext-1", "42", "watcher", "Watcher", "some text",
		created, 3, 1, 0, "en", "acme",
		0.4, 0.2, "positive", ingested,
	)

	mock.ExpectQuery(`FROM posts ORDER BY created_at, external_id LIMIT 50`).
		WillReturnRows(rows)

	posts, err := s.ListPosts(context.Background(), nil, "", 50)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(posts))
	}
	if posts[0].ExternalID != "ext-1" || posts[0].Category != models.SentimentPositive {
		t.Fatalf("unexpected post: %+v", posts[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListPostsKeywordFiltered(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{
		"id", "external_id", "author_id", "author_name", "display_name", "content",
		"created_at", "like_count", "repost_count", "reply_count", "language", "keyword",
		"polarity", "subjectivity", "sentiment_category", "ingested_at",
	}).AddRow(
		int64(2), "ext-2", "43", "buyer", "Buyer", "brand mention",
		time.Date(2026, 8, 20, 13, 0, 0, 0, time.UTC), 0, 0, 2, "en", "acme",
		-0.3, 0.5, "negative", time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
	)

	mock.ExpectQuery(`FROM posts WHERE keyword = \$1 ORDER BY created_at, external_id LIMIT 10`).
		WithArgs("acme").
		WillReturnRows(rows)

	posts, err := s.ListPosts(context.Background(), nil, "acme", 10)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 1 || posts[0].Keyword != "acme" {
		t.Fatalf("unexpected posts: %+v", posts)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStats(t *testing.T) {
	s, mock := newMockStore(t)

	earliest := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	latest := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"count", "authors", "avg_likes", "avg_reposts", "earliest", "latest"}).
		AddRow(int64(120), int64(48), 14.5, 3.25, earliest, latest)

	mock.ExpectQuery(`SELECT COUNT\(\*\),`).WillReturnRows(rows)

	stats, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalPosts != 120 || stats.UniqueAuthors != 48 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if !stats.LatestPost.Equal(latest) {
		t.Fatalf("unexpected latest: %v", stats.LatestPost)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
