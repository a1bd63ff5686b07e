package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/database"
	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/logging"
	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/models"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp),
		sqlmock.MonitorPingsOption(true),
	)
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	s := New(db, database.DialectPostgres, logging.NewLogger())
	s.now = func() time.Time { return time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC) }
	return s, mock
}

func storedPost(externalID string, likes int) models.StoredPost {
	return models.StoredPost{
		ExternalID:   externalID,
		AuthorID:     "42",
		AuthorName:   "watcher",
		DisplayName:  "Watcher",
		Text:         "some post text",
		CreatedAt:    time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		LikeCount:    likes,
		RepostCount:  2,
		ReplyCount:   1,
		Language:     "en",
		Keyword:      "acme",
		Polarity:     0.5,
		Subjectivity: 0.3,
		Category:     models.SentimentPositive,
	}
}

func TestUpsertBatch(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectPing()
	for i := 0; i < 3; i++ {
		mock.ExpectExec(`INSERT INTO posts .*ON CONFLICT \(external_id\) DO UPDATE SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	loaded, failed, err := s.Upsert(context.Background(), []models.StoredPost{
		storedPost("a", 1), storedPost("b", 2), storedPost("c", 3),
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if loaded != 3 || failed != 0 {
		t.Fatalf("expected 3 loaded, 0 failed; got %d/%d", loaded, failed)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpsertSameIDTwiceUpdates(t *testing.T) {
	s, mock := newMockStore(t)

	// Re-ingesting an external id must route through the conflict-update
	// arm, never a second insert.
	mock.ExpectPing()
	mock.ExpectExec(`ON CONFLICT \(external_id\) DO UPDATE SET\s+like_count = EXCLUDED\.like_count`).
		WithArgs(
			"dup", "42", "watcher", "Watcher", "some post text",
			sqlmock.AnyArg(), 10, 2, 1, "en", "acme",
			0.5, 0.3, "positive", sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	loaded, failed, err := s.Upsert(context.Background(), []models.StoredPost{storedPost("dup", 10)})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if loaded != 1 || failed != 0 {
		t.Fatalf("expected 1 loaded, got %d/%d", loaded, failed)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpsertPartialFailureContinues(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectPing()
	mock.ExpectExec(`INSERT INTO posts`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO posts`).WillReturnError(errors.New("value too long"))
	mock.ExpectExec(`INSERT INTO posts`).WillReturnResult(sqlmock.NewResult(0, 1))

	loaded, failed, err := s.Upsert(context.Background(), []models.StoredPost{
		storedPost("a", 1), storedPost("b", 2), storedPost("c", 3),
	})
	if err != nil {
		t.Fatalf("partial failure must not fail the batch: %v", err)
	}
	if loaded != 2 {
		t.Fatalf("expected 2 loaded, got %d", loaded)
	}
	if failed != 1 {
		t.Fatalf("expected 1 failed, got %d", failed)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpsertStoreUnavailable(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	loaded, _, err := s.Upsert(context.Background(), []models.StoredPost{storedPost("a", 1)})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if loaded != 0 {
		t.Fatalf("nothing should be loaded, got %d", loaded)
	}
}

func TestUpsertEmptyBatch(t *testing.T) {
	s, _ := newMockStore(t)

	loaded, failed, err := s.Upsert(context.Background(), nil)
	if err != nil || loaded != 0 || failed != 0 {
		t.Fatalf("empty batch should be a no-op, got %d/%d/%v", loaded, failed, err)
	}
}

func TestMigrate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS posts`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
