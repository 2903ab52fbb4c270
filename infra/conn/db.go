package conn

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mstgnz/bluepay/infra/logger"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

const connectAttempts = 5

type DB struct {
	*sql.DB
	Driver string
}

// Open connects to the database and verifies the connection, retrying a few times
// so the service survives a database that starts after it.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	switch driver {
	case DriverSQLite:
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
		dsn = sqliteDSN(dsn)
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		database, err := sql.Open(driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("open %s database: %w", driver, err)
		}
		configurePool(database, driver)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = database.PingContext(pingCtx)
		cancel()
		if err == nil {
			logger.Info("Database connected", logger.LogContext{Fields: map[string]any{"driver": driver}})
			return &DB{DB: database, Driver: driver}, nil
		}

		lastErr = err
		_ = database.Close()
		logger.Warn("Failed to ping database", logger.LogContext{Fields: map[string]any{
			"driver":  driver,
			"attempt": attempt,
			"error":   err.Error(),
		}})

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
		}
	}

	return nil, fmt.Errorf("connect to %s database after %d attempts: %w", driver, connectAttempts, lastErr)
}

func configurePool(database *sql.DB, driver string) {
	if driver == DriverSQLite {
		// a single writer avoids SQLITE_BUSY between pooled connections
		database.SetMaxOpenConns(1)
		database.SetConnMaxLifetime(0)
		return
	}
	database.SetMaxOpenConns(25)
	database.SetMaxIdleConns(5)
	database.SetConnMaxLifetime(5 * time.Minute)
	database.SetConnMaxIdleTime(2 * time.Minute)
}

func sqliteDSN(path string) string {
	if path == ":memory:" || strings.Contains(path, "?") {
		return path
	}
	return path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=20000&_foreign_keys=on"
}

func ensureDir(path string) error {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// Rebind rewrites ? placeholders into the driver's bind style
func (db *DB) Rebind(query string) string {
	if db.Driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CloseDatabase closes the connection pool
func (db *DB) CloseDatabase() {
	if err := db.DB.Close(); err != nil {
		logger.Warn("Failed to close database connection", logger.LogContext{Fields: map[string]any{"error": err.Error()}})
		return
	}
	logger.Info("Database connection closed")
}
