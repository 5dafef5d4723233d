package services

import (
	"context"
	"path/filepath"
	"testing"

	"project-tracker/app/database"
)

// NewTestSQLStore creates a migrated SQLite store in a temporary directory.
// The store is closed when the test completes.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    store := services.NewTestSQLStore(t)
//	    // use store...
//	}
func NewTestSQLStore(t testing.TB) *SQLStore {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, database.DialectSQLite, filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(ctx, db, database.DialectSQLite); err != nil {
		_ = db.Close()
		t.Fatalf("migrate test db: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return NewSQLStore(db, database.DialectSQLite)
}
