// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/localnerve/carscan-store/internal/database"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// OpenSQLite opens a file-backed SQLite database in a temporary directory.
// A file is used instead of :memory: so every pooled connection sees the same data.
func OpenSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.OpenLocal(filepath.Join(t.TempDir(), "carscan.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

// OpenRemoteSQLite opens a SQLite database migrated with the remote document tables
func OpenRemoteSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	db := OpenSQLite(t)
	require.NoError(t, database.AutoMigrate(db))
	return db
}
