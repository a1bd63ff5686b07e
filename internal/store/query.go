package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/database"
	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/models"
)

// TimeWindow filters rows by created timestamp, inclusive start and
// exclusive end.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// TrendBucket selects the granularity of a trend aggregation
type TrendBucket string

const (
	BucketHour TrendBucket = "hour"
	BucketDay  TrendBucket = "day"
)

// whereClause builds the shared filter over the created-timestamp window
// and the ingestion keyword. Either filter may be absent.
func whereClause(window *TimeWindow, keyword string) (string, []interface{}) {
	conds := []string{}
	args := []interface{}{}
	if window != nil {
		conds = append(conds, fmt.Sprintf(`created_at >= $%d AND created_at < $%d`, len(args)+1, len(args)+2))
		args = append(args, window.Start, window.End)
	}
	if keyword != "" {
		conds = append(conds, fmt.Sprintf(`keyword = $%d`, len(args)+1))
		args = append(args, keyword)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(conds, ` AND `), args
}

// CountByCategory counts stored posts grouped by sentiment category,
// optionally restricted to a time window on the created timestamp and to
// a single ingestion keyword.
func (s *Store) CountByCategory(ctx context.Context, window *TimeWindow, keyword string) ([]models.CategoryCount, error) {
	where, args := whereClause(window, keyword)
	query := `SELECT sentiment_category, COUNT(*) FROM posts` + where
	query += ` GROUP BY sentiment_category ORDER BY sentiment_category`

	rows, err := s.db.QueryContext(ctx, database.Rebind(s.dialect, query), args...)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var counts []models.CategoryCount
	for rows.Next() {
		var c models.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("count by category scan: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// bucketExpr returns the dialect-specific expression that truncates
// created_at to the requested bucket
func (s *Store) bucketExpr(bucket TrendBucket) string {
	if s.dialect == database.DialectSQLite {
		if bucket == BucketHour {
			return `strftime('%Y-%m-%dT%H:00:00Z', created_at)`
		}
		return `strftime('%Y-%m-%dT00:00:00Z', created_at)`
	}
	return fmt.Sprintf(`date_trunc('%s', created_at)`, bucket)
}

// Trend counts posts per sentiment category per time bucket within a
// window. Buckets with no posts are simply absent from the result.
func (s *Store) Trend(ctx context.Context, window TimeWindow, bucket TrendBucket) ([]models.TrendPoint, error) {
	if bucket != BucketHour && bucket != BucketDay {
		return nil, fmt.Errorf("unsupported trend bucket %q", bucket)
	}

	expr := s.bucketExpr(bucket)
	query := fmt.Sprintf(`
		SELECT %s AS bucket, sentiment_category, COUNT(*)
		FROM posts
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY bucket, sentiment_category
		ORDER BY bucket, sentiment_category`, expr)

	rows, err := s.db.QueryContext(ctx, database.Rebind(s.dialect, query), window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("trend query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var points []models.TrendPoint
	for rows.Next() {
		var (
			rawBucket interface{}
			p         models.TrendPoint
		)
		if err := rows.Scan(&rawBucket, &p.Category, &p.Count); err != nil {
			return nil, fmt.Errorf("trend scan: %w", err)
		}
		if p.Bucket, err = coerceTime(rawBucket); err != nil {
			return nil, fmt.Errorf("trend bucket: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// coerceTime handles the bucket column coming back as a native timestamp
// (Postgres) or an RFC3339 string (SQLite strftime)
func coerceTime(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return time.Parse(time.RFC3339, t)
	case []byte:
		return time.Parse(time.RFC3339, string(t))
	default:
		return time.Time{}, fmt.Errorf("unexpected bucket type %T", v)
	}
}

const selectColumns = `id, external_id, author_id, author_name, display_name, content,
	created_at, like_count, repost_count, reply_count, language, keyword,
	polarity, subjectivity, sentiment_category, ingested_at`

// ListPosts returns stored posts ordered by created timestamp, optionally
// windowed and filtered by ingestion keyword, for export and inspection.
// A non-positive limit means no limit.
func (s *Store) ListPosts(ctx context.Context, window *TimeWindow, keyword string, limit int) ([]models.StoredPost, error) {
	where, args := whereClause(window, keyword)
	query := `SELECT ` + selectColumns + ` FROM posts` + where
	query += ` ORDER BY created_at, external_id`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.db.QueryContext(ctx, database.Rebind(s.dialect, query), args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var posts []models.StoredPost
	for rows.Next() {
		var p models.StoredPost
		if err := rows.Scan(
			&p.ID, &p.ExternalID, &p.AuthorID, &p.AuthorName, &p.DisplayName,
			&p.Text, &p.CreatedAt, &p.LikeCount, &p.RepostCount, &p.ReplyCount,
			&p.Language, &p.Keyword, &p.Polarity, &p.Subjectivity, &p.Category,
			&p.IngestedAt,
		); err != nil {
			return nil, fmt.Errorf("list posts scan: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Stats summarizes the persisted corpus
func (s *Store) Stats(ctx context.Context) (models.StoreStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(DISTINCT author_id),
		       COALESCE(AVG(like_count), 0),
		       COALESCE(AVG(repost_count), 0),
		       COALESCE(MIN(created_at), $1),
		       COALESCE(MAX(created_at), $2)
		FROM posts`

	epoch := time.Unix(0, 0).UTC()
	var stats models.StoreStats
	var earliest, latest interface{}
	err := s.db.QueryRowContext(ctx, database.Rebind(s.dialect, query), epoch, epoch).Scan(
		&stats.TotalPosts, &stats.UniqueAuthors,
		&stats.AvgLikes, &stats.AvgReposts,
		&earliest, &latest,
	)
	if err != nil {
		return models.StoreStats{}, fmt.Errorf("store stats: %w", err)
	}
	if stats.EarliestPost, err = coerceTimestamp(earliest); err != nil {
		return models.StoreStats{}, err
	}
	if stats.LatestPost, err = coerceTimestamp(latest); err != nil {
		return models.StoreStats{}, err
	}
	return stats, nil
}

// coerceTimestamp is like coerceTime but tolerant of driver-native
// timestamp strings that are not strict RFC3339
func coerceTimestamp(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseLooseTime(t)
	case []byte:
		return parseLooseTime(string(t))
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
	}
}

func parseLooseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
