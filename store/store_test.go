package store

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"gamelounge/feed"
)

// openTestDB opens a throwaway SQLite database on disk. The busy timeout
// keeps concurrent writers waiting instead of failing with SQLITE_BUSY.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "lounge.db") + "?_busy_timeout=5000"
	db, err := Open(dsn)
	require.NoError(t, err)
	return db
}

func openTestBadger(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestHub(t *testing.T) *feed.Hub {
	t.Helper()
	return feed.NewHub(testLogger(), 64)
}

func testLogger() *slog.Logger {
	return slog.Default()
}
