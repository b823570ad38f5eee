// Package dbtest opens throwaway SQLite databases for store tests.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"mocktest/internal/db"
)

// Open returns a schema-initialized SQLite database under t.TempDir.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	conn, err := db.OpenWithConfig(ctx, db.DriverSQLite, dsn, db.Config{MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}
