package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/roster/dataset"
)

// TestNewDB_CreatesDirectory verifies that NewDB creates the parent directory if missing.
func TestNewDB_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "nested", "produce.db")

	db, err := NewDB(dbPath)
	require.NoError(t, err, "NewDB should succeed even with nested non-existent directories")
	defer db.Close()

	info, err := os.Stat(filepath.Dir(dbPath))
	require.NoError(t, err, "Directory should exist after NewDB")
	require.True(t, info.IsDir(), "Should be a directory")

	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0700), info.Mode().Perm(), "Directory should have 0700 permissions")
	}
}

// TestNewDB_RunsMigrations verifies that NewDB creates the produce table.
func TestNewDB_RunsMigrations(t *testing.T) {
	db, err := NewDB(InMemory)
	require.NoError(t, err, "NewDB should succeed")
	defer db.Close()

	var tableName string
	err = db.conn.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='produce'",
	).Scan(&tableName)
	require.NoError(t, err, "produce table should exist after migrations")
	require.Equal(t, "produce", tableName)
}

// TestNewDB_MigrationsIdempotent verifies that reopening an existing database succeeds.
func TestNewDB_MigrationsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "produce.db")

	db1, err := NewDB(dbPath)
	require.NoError(t, err, "First NewDB should succeed")
	require.NoError(t, db1.Seed(context.Background(), dataset.Default()))
	require.NoError(t, db1.Close())

	db2, err := NewDB(dbPath)
	require.NoError(t, err, "Second NewDB should succeed on an already-migrated database")
	defer db2.Close()

	var count int
	require.NoError(t, db2.conn.QueryRow("SELECT COUNT(*) FROM produce").Scan(&count))
	require.Equal(t, len(dataset.Default()), count, "seeded rows should survive reopening")
}

// TestSeed_ReplacesExistingRows verifies that Seed clears previous contents.
func TestSeed_ReplacesExistingRows(t *testing.T) {
	db, err := NewDB(InMemory)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.Seed(ctx, dataset.Default()))
	require.NoError(t, db.Seed(ctx, []dataset.Item{
		{ID: "x-1", Name: "Fig", Color: "purple", Family: "mulberry", Weight: 50, Price: 8.5, Stock: 9},
	}))

	var count int
	require.NoError(t, db.conn.QueryRow("SELECT COUNT(*) FROM produce").Scan(&count))
	require.Equal(t, 1, count)

	var name string
	require.NoError(t, db.conn.QueryRow("SELECT name FROM produce WHERE id = 'x-1'").Scan(&name))
	require.Equal(t, "Fig", name)
}
