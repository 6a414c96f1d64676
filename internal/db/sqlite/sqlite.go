// Package sqlite opens the product catalog database and bootstraps its
// schema.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	name            TEXT NOT NULL,
	url             TEXT NOT NULL DEFAULT '',
	main_accords    TEXT NOT NULL DEFAULT '',
	longevity       TEXT NOT NULL DEFAULT '',
	sillage         TEXT NOT NULL DEFAULT '',
	gender          TEXT NOT NULL DEFAULT '',
	suitable_season TEXT NOT NULL DEFAULT '',
	suitable_time   TEXT NOT NULL DEFAULT '',
	description     TEXT NOT NULL DEFAULT '',
	positive_rate   REAL NOT NULL DEFAULT 0
);
`

// Open opens (creating if needed) the catalog database at path and
// ensures the schema exists. WAL mode keeps concurrent readers cheap.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return conn, nil
}

// WaitForReady polls Ping until the database responds or timeout expires.
func WaitForReady(ctx context.Context, conn *sql.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := conn.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
