// Package store persists scored posts and serves the aggregation queries
// behind the dashboard endpoints. One table, unique on external id; loads
// are idempotent per-row upserts.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/database"
	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/logging"
	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/models"
)

// ErrStoreUnavailable reports total store unavailability, as opposed to a
// per-record failure inside an otherwise healthy batch.
var ErrStoreUnavailable = errors.New("store unavailable")

// Store wraps a relational connection with the post schema
type Store struct {
	db      *sql.DB
	dialect database.Dialect
	logger  logging.Logger
	now     func() time.Time
}

// New creates a store over an established connection
func New(db *sql.DB, dialect database.Dialect, logger logging.Logger) *Store {
	return &Store{db: db, dialect: dialect, logger: logger, now: time.Now}
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS posts (
	id BIGSERIAL PRIMARY KEY,
	external_id TEXT NOT NULL UNIQUE,
	author_id TEXT NOT NULL DEFAULT '',
	author_name TEXT NOT NULL DEFAULT '',
	display_name TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	like_count INTEGER NOT NULL DEFAULT 0,
	repost_count INTEGER NOT NULL DEFAULT 0,
	reply_count INTEGER NOT NULL DEFAULT 0,
	language TEXT NOT NULL DEFAULT 'en',
	keyword TEXT NOT NULL DEFAULT '',
	polarity DOUBLE PRECISION NOT NULL DEFAULT 0,
	subjectivity DOUBLE PRECISION NOT NULL DEFAULT 0,
	sentiment_category TEXT NOT NULL DEFAULT 'neutral',
	ingested_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts (created_at);
CREATE INDEX IF NOT EXISTS idx_posts_sentiment ON posts (sentiment_category);
CREATE INDEX IF NOT EXISTS idx_posts_keyword ON posts (keyword);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	external_id TEXT NOT NULL UNIQUE,
	author_id TEXT NOT NULL DEFAULT '',
	author_name TEXT NOT NULL DEFAULT '',
	display_name TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	like_count INTEGER NOT NULL DEFAULT 0,
	repost_count INTEGER NOT NULL DEFAULT 0,
	reply_count INTEGER NOT NULL DEFAULT 0,
	language TEXT NOT NULL DEFAULT 'en',
	keyword TEXT NOT NULL DEFAULT '',
	polarity REAL NOT NULL DEFAULT 0,
	subjectivity REAL NOT NULL DEFAULT 0,
	sentiment_category TEXT NOT NULL DEFAULT 'neutral',
	ingested_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts (created_at);
CREATE INDEX IF NOT EXISTS idx_posts_sentiment ON posts (sentiment_category);
CREATE INDEX IF NOT EXISTS idx_posts_keyword ON posts (keyword);
`

// Migrate applies the post schema
func (s *Store) Migrate(ctx context.Context) error {
	schema := postgresSchema
	if s.dialect == database.DialectSQLite {
		schema = sqliteSchema
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	s.logger.WithField("dialect", s.dialect).Info("Database schema applied")
	return nil
}

const upsertQuery = `
INSERT INTO posts (
	external_id, author_id, author_name, display_name, content, created_at,
	like_count, repost_count, reply_count, language, keyword,
	polarity, subjectivity, sentiment_category, ingested_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
ON CONFLICT (external_id) DO UPDATE SET
	like_count = EXCLUDED.like_count,
	repost_count = EXCLUDED.repost_count,
	reply_count = EXCLUDED.reply_count,
	polarity = EXCLUDED.polarity,
	subjectivity = EXCLUDED.subjectivity,
	sentiment_category = EXCLUDED.sentiment_category,
	ingested_at = EXCLUDED.ingested_at`

// Upsert persists a batch of normalized records. Each record is attempted;
// a failure on one record is logged and excluded from the loaded count,
// and the batch continues. The returned error is non-nil only when the
// store itself is unreachable, in which case nothing further is attempted.
func (s *Store) Upsert(ctx context.Context, records []models.StoredPost) (loaded, failed int, err error) {
	if len(records) == 0 {
		return 0, 0, nil
	}

	if err := s.db.PingContext(ctx); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	query := database.Rebind(s.dialect, upsertQuery)
	ingestedAt := s.now().UTC()

	for _, rec := range records {
		_, execErr := s.db.ExecContext(ctx, query,
			rec.ExternalID, rec.AuthorID, rec.AuthorName, rec.DisplayName,
			rec.Text, rec.CreatedAt, rec.LikeCount, rec.RepostCount,
			rec.ReplyCount, rec.Language, rec.Keyword,
			rec.Polarity, rec.Subjectivity, string(rec.Category), ingestedAt,
		)
		if execErr == nil {
			loaded++
			continue
		}

		// A dead connection or cancelled context dooms the rest of the
		// batch; surface it instead of failing every remaining record.
		if errors.Is(execErr, driver.ErrBadConn) || ctx.Err() != nil {
			return loaded, failed, fmt.Errorf("%w: %v", ErrStoreUnavailable, execErr)
		}

		failed++
		s.logger.WithError(execErr).WithFields(logging.Fields{
			"external_id": rec.ExternalID,
			"keyword":     rec.Keyword,
		}).Error("Failed to persist post, continuing batch")
	}

	return loaded, failed, nil
}

// Ping reports whether the store is reachable
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// DB exposes the underlying connection for health checks
func (s *Store) DB() *sql.DB {
	return s.db
}
