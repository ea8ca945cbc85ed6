// Package testkit holds shared test fixtures: a migrated in-memory database
// and helpers for driving HTTP handlers with JSON bodies.
package testkit

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	_ "github.com/shashiranjanraj/groupcart/database/migrations"
	"github.com/shashiranjanraj/groupcart/pkg/database"
	"github.com/shashiranjanraj/groupcart/pkg/logger"
	"github.com/shashiranjanraj/groupcart/pkg/migration"
)

// DB opens a fresh in-memory SQLite database with every migration applied.
// It is closed when the test ends.
func DB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err, "testkit: open sqlite")
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, migration.New(db, nil, logger.Discard()).Run(), "testkit: migrate")
	return db
}
