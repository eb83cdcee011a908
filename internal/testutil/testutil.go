package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/mathdoku/internal/db"
	"github.com/vytor/mathdoku/internal/logger"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The pool is capped at one connection so every query sees the same database.
func NewTestDB(t *testing.T) *sql.DB {
	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	log := logger.New(logger.WithLevel(logger.ERROR))
	require.NoError(t, db.Migrate(context.Background(), sqlDB, log), "failed to apply migrations")

	return sqlDB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// InsertGrid stores a grid of the given size and returns its id.
func InsertGrid(t *testing.T, sqlDB *sql.DB, gridSize int) int64 {
	res, err := sqlDB.Exec(`INSERT INTO grids (grid_size, created_at) VALUES (?, ?)`,
		gridSize, time.Now().UTC().Format("2006-01-02 15:04:05.000000000"))
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// IncludedAttempts returns the ids of the attempts of gridID that count
// towards reports.
func IncludedAttempts(t *testing.T, sqlDB *sql.DB, gridID int64) []int64 {
	rows, err := sqlDB.Query(`SELECT id FROM statistics WHERE grid_id = ? AND include_in_statistics = 1 ORDER BY id`, gridID)
	require.NoError(t, err)
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	return ids
}
