package services_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/mathdoku/internal/errors"
	"github.com/vytor/mathdoku/internal/models"
	"github.com/vytor/mathdoku/internal/services"
	"github.com/vytor/mathdoku/internal/testutil/mocks"
)

func TestCreateGrid(t *testing.T) {
	ctx := context.Background()
	gridRepo := new(mocks.MockGridRepository)
	svc := services.NewGridService(gridRepo, new(mocks.MockSolvingAttemptRepository))

	gridRepo.On("Insert", ctx, 6).Return(&models.Grid{ID: 1, GridSize: 6}, nil)

	grid, err := svc.CreateGrid(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(1), grid.ID)

	_, err = svc.CreateGrid(ctx, 0)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
	gridRepo.AssertNumberOfCalls(t, "Insert", 1)
}

func TestStartSolvingAttempt(t *testing.T) {
	ctx := context.Background()
	gridRepo := new(mocks.MockGridRepository)
	attemptRepo := new(mocks.MockSolvingAttemptRepository)
	svc := services.NewGridService(gridRepo, attemptRepo)

	gridRepo.On("Get", ctx, int64(2)).Return(&models.Grid{ID: 2, GridSize: 4}, nil)
	gridRepo.On("Get", ctx, int64(404)).Return(nil, sql.ErrNoRows)
	attemptRepo.On("Insert", ctx, int64(2)).Return(int64(17), nil)

	id, err := svc.StartSolvingAttempt(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)

	_, err = svc.StartSolvingAttempt(ctx, 404)
	assert.True(t, errors.IsNotFound(err))
	attemptRepo.AssertNotCalled(t, "Insert", mock.Anything, int64(404))
}
