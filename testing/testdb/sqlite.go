// Package testdb opens throwaway migrated databases for tests.
package testdb

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rpupo63/project-showcase/database"
)

// Open returns a migrated SQLite database in t's temp dir, closed on cleanup.
func Open(t testing.TB) database.Database {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.sqlite")
	db, err := gorm.Open(database.SQLiteDialector(path), database.GormConfig(zerolog.Nop()))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	d := database.New(db)
	require.NoError(t, d.Migrate())
	t.Cleanup(func() {
		_ = d.Close()
	})
	return d
}
