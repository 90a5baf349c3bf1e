package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kbukum/authentic/internal/logger"
	"github.com/kbukum/authentic/internal/storage"
)

// newTestDB opens a throwaway SQLite database with the schema migrated. The
// busy timeout keeps concurrent-writer tests from hitting SQLITE_BUSY.
func newTestDB(t *testing.T) *storage.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := storage.Open(context.Background(), storage.Config{
		DSN:         dsn,
		AutoMigrate: true,
		LogLevel:    "silent",
	}, logger.NewDefault("test"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestUser(t *testing.T, db *storage.DB, email string) *storage.User {
	t.Helper()

	user, err := NewUserStore(db).FindOrCreateByGoogleID(context.Background(), Profile{
		GoogleID: "google-" + email,
		Email:    email,
		Name:     "Test User",
	})
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}
