package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/logging"
)

// Conn represents a relational database connection
type Conn = *sql.DB

// ErrNoRows is returned when a query returns no rows
var ErrNoRows = sql.ErrNoRows

// Dialect identifies the SQL dialect behind a connection
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// Config holds database configuration
type Config struct {
	// URL is the database target. postgres:// and postgresql:// URLs select
	// the Postgres driver; anything else is treated as a SQLite path or DSN.
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Connection retry policy
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultConfig returns default database configuration
func DefaultConfig() Config {
	return Config{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		MaxRetries:      3,
		RetryDelay:      2 * time.Second,
	}
}

// DialectFor resolves the SQL dialect for a database target URL
func DialectFor(url string) Dialect {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

func driverFor(d Dialect) string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// sqliteDSN pins _time_format=sqlite so time.Time values are stored in
// SQLite's own text format and strftime/date functions can read them
func sqliteDSN(url string) string {
	if strings.Contains(url, "_time_format=") {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "_time_format=sqlite"
}

// Connect establishes a database connection with the given configuration.
// The initial open+ping is retried with backoff so services survive a store
// that comes up slightly after they do.
func Connect(cfg Config, logger logging.Logger) (Conn, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	dialect := DialectFor(cfg.URL)
	url := cfg.URL
	if dialect == DialectSQLite {
		url = sqliteDSN(url)
	}

	retry := retrypolicy.NewBuilder[*sql.DB]().
		WithBackoff(cfg.RetryDelay, 30*time.Second).
		WithMaxRetries(cfg.MaxRetries).
		OnRetry(func(e failsafe.ExecutionEvent[*sql.DB]) {
			logger.WithError(e.LastError()).WithFields(logging.Fields{
				"dialect": dialect,
				"attempt": e.Attempts(),
			}).Warn("Database connection failed, retrying")
		}).
		Build()

	db, err := failsafe.With(retry).Get(func() (*sql.DB, error) {
		db, err := sql.Open(driverFor(dialect), url)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.PingContext(context.Background()); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return db, nil
	})
	if err != nil {
		return nil, err
	}

	// Set connection pool settings. SQLite gets a single writer to avoid
	// SQLITE_BUSY under concurrent pipeline runs.
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	logger.WithFields(logging.Fields{
		"dialect":           dialect,
		"max_open_conns":    cfg.MaxOpenConns,
		"conn_max_lifetime": cfg.ConnMaxLifetime,
	}).Info("Database connected")

	return db, nil
}

// MustConnect is like Connect but exits on error
func MustConnect(cfg Config, logger logging.Logger) Conn {
	db, err := Connect(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	return db
}

// Rebind rewrites $N placeholders to ? for drivers that only bind
// positionally. Queries in this codebase are written in Postgres style.
func Rebind(dialect Dialect, query string) string {
	if dialect == DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		if query[i] == '$' && i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
			b.WriteByte('?')
			for i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
				i++
			}
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
