package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/mathdoku/internal/models"
	"github.com/vytor/mathdoku/internal/repository/sqlite"
	"github.com/vytor/mathdoku/internal/services"
	"github.com/vytor/mathdoku/internal/testutil"
)

// playSession drives the services over a real store for one grid.
type playSession struct {
	ctx     context.Context
	grids   services.GridService
	stats   services.StatisticsService
	grid    *models.Grid
	loaded  int64
	created []*models.GridStatistics
}

type playStep func(t *testing.T, p *playSession)

func startAttempt(t *testing.T, p *playSession) {
	id, err := p.grids.StartSolvingAttempt(p.ctx, p.grid.ID)
	require.NoError(t, err)
	p.loaded = id
}

func createStats(withLoaded bool) playStep {
	return func(t *testing.T, p *playSession) {
		grid := *p.grid
		if withLoaded {
			grid.SolvingAttemptID = p.loaded
		}
		created, err := p.stats.CreateStatistics(p.ctx, grid)
		require.NoError(t, err)
		p.created = append(p.created, created)
	}
}

func include(i int) playStep {
	return func(t *testing.T, p *playSession) {
		require.NoError(t, p.stats.SetIncludedAttempt(p.ctx, p.grid.ID, p.created[i].ID))
	}
}

func TestCreateStatistics_AtMostOneIncludedAttempt(t *testing.T) {
	tests := []struct {
		name         string
		steps        []playStep
		wantIncluded int
	}{
		{
			name:         "retried create without attempts",
			steps:        []playStep{createStats(false), createStats(false)},
			wantIncluded: 0,
		},
		{
			name:         "retried create with the same loaded attempt",
			steps:        []playStep{startAttempt, createStats(true), createStats(true)},
			wantIncluded: 0,
		},
		{
			name: "replays after a switch",
			steps: []playStep{
				startAttempt, createStats(true),
				startAttempt, createStats(true),
				include(1),
				startAttempt, createStats(true),
			},
			wantIncluded: 1,
		},
		{
			name: "switch back then replay",
			steps: []playStep{
				startAttempt, createStats(true),
				startAttempt, createStats(true),
				include(1), include(0),
				createStats(false),
			},
			wantIncluded: 0,
		},
		{
			name: "retry after a switch",
			steps: []playStep{
				createStats(false), createStats(false),
				include(1),
				createStats(false),
			},
			wantIncluded: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sqlDB := testutil.NewTestDB(t)
			defer testutil.MustClose(t, sqlDB)

			gridRepo := sqlite.NewGridRepository(sqlDB)
			attemptRepo := sqlite.NewSolvingAttemptRepository(sqlDB)
			p := &playSession{
				ctx:   context.Background(),
				grids: services.NewGridService(gridRepo, attemptRepo),
				stats: services.NewStatisticsService(sqlite.NewStatisticsRepository(sqlDB), attemptRepo),
			}
			grid, err := p.grids.CreateGrid(p.ctx, 4)
			require.NoError(t, err)
			p.grid = grid

			for i, step := range tt.steps {
				step(t, p)
				assert.LessOrEqual(t, len(testutil.IncludedAttempts(t, sqlDB, grid.ID)), 1, "after step %d", i)
			}

			assert.Equal(t, []int64{p.created[tt.wantIncluded].ID}, testutil.IncludedAttempts(t, sqlDB, grid.ID))

			c, err := p.stats.GetCumulativeStatistics(p.ctx, 4, 4)
			require.NoError(t, err)
			assert.Equal(t, 1, c.CountStarted)
		})
	}
}
