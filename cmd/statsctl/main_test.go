package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/mathdoku/internal/db"
	"github.com/vytor/mathdoku/internal/models"
	"github.com/vytor/mathdoku/internal/repository/sqlite"
)

type seeded struct {
	gridID int64
	first  int64
	replay int64
	dbPath string
}

func seed(t *testing.T) seeded {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stats.db")
	database, err := db.Open(path)
	require.NoError(t, err)
	defer database.Close()

	ctx := context.Background()
	grid, err := sqlite.NewGridRepository(database.DB).Insert(ctx, 4)
	require.NoError(t, err)

	repo := sqlite.NewStatisticsRepository(database.DB)
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	first, err := repo.Insert(ctx, models.NewGridStatistics(*grid, 0, now))
	require.NoError(t, err)
	first.ElapsedTime = 5000
	first.LastMove = now.Add(5 * time.Second)
	first.Finished = true
	require.NoError(t, repo.Update(ctx, *first))

	replay, err := repo.Insert(ctx, models.NewGridStatistics(*grid, 1, now))
	require.NoError(t, err)

	return seeded{gridID: grid.ID, first: first.ID, replay: replay.ID, dbPath: path}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCumulativeCmd_JSON(t *testing.T) {
	s := seed(t)

	out, err := run(t, "cumulative", "--db", s.dbPath, "--min", "4", "--max", "4", "--json")
	require.NoError(t, err)

	var c models.CumulativeStatistics
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.Equal(t, 1, c.CountStarted)
	assert.Equal(t, 1, c.CountFinished)
	assert.Equal(t, int64(5000), c.SumElapsedTime)
}

func TestCumulativeCmd_NoData(t *testing.T) {
	s := seed(t)

	_, err := run(t, "cumulative", "--db", s.dbPath, "--min", "7", "--max", "9")
	assert.Error(t, err)
}

func TestHistoricCmd_Table(t *testing.T) {
	s := seed(t)

	out, err := run(t, "historic", "--db", s.dbPath, "--min", "4", "--max", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "SERIES")
	assert.Contains(t, out, "SOLVED")
	assert.NotContains(t, out, "UNFINISHED")
}

func TestIncludeCmd_SwitchesReportedAttempt(t *testing.T) {
	s := seed(t)

	out, err := run(t, "include", "--db", s.dbPath, fmt.Sprint(s.gridID), fmt.Sprint(s.replay))
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("grid %d now counts attempt %d", s.gridID, s.replay))

	out, err = run(t, "historic", "--db", s.dbPath, "--min", "4", "--max", "4", "--series", "UNFINISHED", "--json")
	require.NoError(t, err)
	var rows []models.HistoricRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, s.replay, rows[0].StatisticsID)
}

func TestIncludeCmd_Errors(t *testing.T) {
	s := seed(t)

	_, err := run(t, "include", "--db", s.dbPath, "x", "1")
	assert.Error(t, err)

	_, err = run(t, "include", "--db", s.dbPath, fmt.Sprint(s.gridID), "9999")
	assert.Error(t, err)
}

func TestHistoricCmd_UnknownSeries(t *testing.T) {
	s := seed(t)

	_, err := run(t, "historic", "--db", s.dbPath, "--series", "LOST")
	assert.Error(t, err)
}
