// Package dbtest opens throwaway migrated sqlite databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"integritywatch/pkg/database"
)

func Open(tb testing.TB) *sql.DB {
	tb.Helper()

	db, err := database.Open(database.Config{Path: filepath.Join(tb.TempDir(), "test.db")})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(context.Background(), db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	return db
}
