package services_test

import (
	"context"
	"database/sql"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/mathdoku/internal/errors"
	"github.com/vytor/mathdoku/internal/models"
	"github.com/vytor/mathdoku/internal/repository"
	"github.com/vytor/mathdoku/internal/services"
	"github.com/vytor/mathdoku/internal/testutil/mocks"
)

var now = time.Date(2024, 5, 4, 10, 30, 0, 0, time.UTC)

func newStatisticsService() (services.StatisticsService, *mocks.MockStatisticsRepository, *mocks.MockSolvingAttemptRepository) {
	statsRepo := new(mocks.MockStatisticsRepository)
	attemptRepo := new(mocks.MockSolvingAttemptRepository)
	svc := services.NewStatisticsService(statsRepo, attemptRepo, services.WithClock(func() time.Time { return now }))
	return svc, statsRepo, attemptRepo
}

func TestCreateStatistics_ReplayOrdinal(t *testing.T) {
	tests := []struct {
		name             string
		attempts         int
		solvingAttemptID int64
		wantReplay       int
		wantIncluded     bool
	}{
		{"first play with loaded attempt", 1, 7, 0, true},
		{"first play without loaded attempt", 0, 0, 0, true},
		{"second play with loaded attempt", 2, 8, 1, false},
		{"replay without loaded attempt", 2, 0, 2, false},
		{"loaded attempt not yet counted", 0, 9, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc, statsRepo, attemptRepo := newStatisticsService()
			grid := models.Grid{ID: 3, GridSize: 5, SolvingAttemptID: tt.solvingAttemptID}

			if tt.solvingAttemptID > 0 {
				attemptRepo.On("GridForAttempt", ctx, tt.solvingAttemptID).Return(int64(3), nil)
			}
			attemptRepo.On("CountForGrid", ctx, int64(3)).Return(tt.attempts, nil)
			statsRepo.On("Insert", ctx, mock.MatchedBy(func(gs models.GridStatistics) bool {
				return gs.Replay == tt.wantReplay &&
					gs.IncludedInStatistics == tt.wantIncluded &&
					gs.CellsEmpty == 25 &&
					gs.FirstMove.Equal(now) && gs.LastMove.Equal(now)
			})).Return(&models.GridStatistics{ID: 11, GridID: 3, Replay: tt.wantReplay}, nil)

			created, err := svc.CreateStatistics(ctx, grid)
			require.NoError(t, err)
			assert.Equal(t, int64(11), created.ID)
			statsRepo.AssertExpectations(t)
			attemptRepo.AssertExpectations(t)
		})
	}
}

func TestCreateStatistics_InvalidGrid(t *testing.T) {
	svc, _, _ := newStatisticsService()

	_, err := svc.CreateStatistics(context.Background(), models.Grid{ID: 0, GridSize: 4})
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))

	_, err = svc.CreateStatistics(context.Background(), models.Grid{ID: 1, GridSize: 0})
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
}

func TestCreateStatistics_ForeignSolvingAttempt(t *testing.T) {
	ctx := context.Background()
	svc, statsRepo, attemptRepo := newStatisticsService()

	attemptRepo.On("GridForAttempt", ctx, int64(404)).Return(int64(0), sql.ErrNoRows)
	attemptRepo.On("GridForAttempt", ctx, int64(8)).Return(int64(2), nil)
	attemptRepo.On("GridForAttempt", ctx, int64(9)).Return(int64(0), stderrors.New("database is locked"))

	_, err := svc.CreateStatistics(ctx, models.Grid{ID: 1, GridSize: 4, SolvingAttemptID: 404})
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))

	_, err = svc.CreateStatistics(ctx, models.Grid{ID: 1, GridSize: 4, SolvingAttemptID: 8})
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))

	_, err = svc.CreateStatistics(ctx, models.Grid{ID: 1, GridSize: 4, SolvingAttemptID: 9})
	assert.True(t, errors.IsStorage(err))

	attemptRepo.AssertNotCalled(t, "CountForGrid", mock.Anything, mock.Anything)
	statsRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCreateStatistics_StorageFailure(t *testing.T) {
	ctx := context.Background()
	svc, statsRepo, attemptRepo := newStatisticsService()

	attemptRepo.On("CountForGrid", ctx, int64(1)).Return(0, nil)
	statsRepo.On("Insert", ctx, mock.Anything).Return(nil, stderrors.New("disk full"))

	created, err := svc.CreateStatistics(ctx, models.Grid{ID: 1, GridSize: 4})
	assert.Nil(t, created)
	assert.True(t, errors.IsStorage(err))
}

func TestGetStatistics_ErrorMapping(t *testing.T) {
	ctx := context.Background()
	svc, statsRepo, _ := newStatisticsService()

	statsRepo.On("Get", ctx, int64(1)).Return(nil, sql.ErrNoRows)
	statsRepo.On("Get", ctx, int64(2)).Return(nil, stderrors.New("database is locked"))
	statsRepo.On("Get", ctx, int64(3)).Return(&models.GridStatistics{ID: 3}, nil)

	_, err := svc.GetStatistics(ctx, 1)
	assert.True(t, errors.IsNotFound(err))

	_, err = svc.GetStatistics(ctx, 2)
	assert.True(t, errors.IsStorage(err))

	stats, err := svc.GetStatistics(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.ID)
}

func TestGetMostRecentStatistics_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, statsRepo, _ := newStatisticsService()
	statsRepo.On("MostRecentForGrid", ctx, int64(5)).Return(nil, sql.ErrNoRows)

	stats, err := svc.GetMostRecentStatistics(ctx, 5)
	assert.Nil(t, stats)
	assert.True(t, errors.IsNotFound(err))
}

func TestUpdateStatistics(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		svc, statsRepo, _ := newStatisticsService()
		stats := models.GridStatistics{ID: 4, FirstMove: now, LastMove: now.Add(time.Minute), ElapsedTime: 60_000}
		statsRepo.On("Update", ctx, stats).Return(nil)

		require.NoError(t, svc.UpdateStatistics(ctx, stats))
		statsRepo.AssertExpectations(t)
	})

	t.Run("stale id", func(t *testing.T) {
		svc, statsRepo, _ := newStatisticsService()
		stats := models.GridStatistics{ID: 4, FirstMove: now, LastMove: now}
		statsRepo.On("Update", ctx, stats).Return(sql.ErrNoRows)

		assert.True(t, errors.IsNotFound(svc.UpdateStatistics(ctx, stats)))
	})

	t.Run("negative counter", func(t *testing.T) {
		svc, statsRepo, _ := newStatisticsService()
		stats := models.GridStatistics{ID: 4, FirstMove: now, LastMove: now, ActionUndos: -1}

		assert.True(t, errors.HasCode(svc.UpdateStatistics(ctx, stats), errors.ErrCodeValidation))
		statsRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("missing id", func(t *testing.T) {
		svc, statsRepo, _ := newStatisticsService()

		assert.True(t, errors.HasCode(svc.UpdateStatistics(ctx, models.GridStatistics{}), errors.ErrCodeValidation))
		statsRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestSetIncludedAttempt(t *testing.T) {
	ctx := context.Background()
	svc, statsRepo, _ := newStatisticsService()

	statsRepo.On("SetIncludedAttempt", ctx, int64(1), int64(10)).Return(nil)
	statsRepo.On("SetIncludedAttempt", ctx, int64(1), int64(99)).Return(sql.ErrNoRows)

	require.NoError(t, svc.SetIncludedAttempt(ctx, 1, 10))
	assert.True(t, errors.IsNotFound(svc.SetIncludedAttempt(ctx, 1, 99)))
}

func TestGetCumulativeStatistics(t *testing.T) {
	ctx := context.Background()

	t.Run("no data", func(t *testing.T) {
		svc, statsRepo, _ := newStatisticsService()
		statsRepo.On("CumulativeStatistics", ctx, 4, 9).Return(nil, repository.ErrNoData)

		stats, err := svc.GetCumulativeStatistics(ctx, 4, 9)
		assert.Nil(t, stats)
		assert.True(t, errors.IsNoData(err))
	})

	t.Run("inverted range", func(t *testing.T) {
		svc, statsRepo, _ := newStatisticsService()

		_, err := svc.GetCumulativeStatistics(ctx, 9, 4)
		assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
		statsRepo.AssertNotCalled(t, "CumulativeStatistics", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ok", func(t *testing.T) {
		svc, statsRepo, _ := newStatisticsService()
		want := &models.CumulativeStatistics{CountStarted: 3, SumElapsedTime: 60}
		statsRepo.On("CumulativeStatistics", ctx, 4, 4).Return(want, nil)

		got, err := svc.GetCumulativeStatistics(ctx, 4, 4)
		require.NoError(t, err)
		assert.Same(t, want, got)
	})
}

func TestGetHistoricStatistics(t *testing.T) {
	ctx := context.Background()

	t.Run("storage failure", func(t *testing.T) {
		svc, statsRepo, _ := newStatisticsService()
		statsRepo.On("HistoricStatistics", ctx, 4, 9).Return(nil, stderrors.New("boom"))

		_, err := svc.GetHistoricStatistics(ctx, 4, 9)
		assert.True(t, errors.IsStorage(err))
	})

	t.Run("empty is valid", func(t *testing.T) {
		svc, statsRepo, _ := newStatisticsService()
		statsRepo.On("HistoricStatistics", ctx, 4, 9).Return(models.NewHistoricStatistics(nil), nil)

		h, err := svc.GetHistoricStatistics(ctx, 4, 9)
		require.NoError(t, err)
		assert.Zero(t, h.Len())
	})

	t.Run("zero min", func(t *testing.T) {
		svc, _, _ := newStatisticsService()

		_, err := svc.GetHistoricStatistics(ctx, 0, 9)
		assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
	})
}
