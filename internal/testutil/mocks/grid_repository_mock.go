package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/mathdoku/internal/models"
)

// MockGridRepository is a mock implementation of repository.GridRepository
type MockGridRepository struct {
	mock.Mock
}

func (m *MockGridRepository) Insert(ctx context.Context, gridSize int) (*models.Grid, error) {
	args := m.Called(ctx, gridSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Grid), args.Error(1)
}

func (m *MockGridRepository) Get(ctx context.Context, id int64) (*models.Grid, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Grid), args.Error(1)
}

// MockSolvingAttemptRepository is a mock implementation of repository.SolvingAttemptRepository
type MockSolvingAttemptRepository struct {
	mock.Mock
}

func (m *MockSolvingAttemptRepository) Insert(ctx context.Context, gridID int64) (int64, error) {
	args := m.Called(ctx, gridID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSolvingAttemptRepository) CountForGrid(ctx context.Context, gridID int64) (int, error) {
	args := m.Called(ctx, gridID)
	return args.Int(0), args.Error(1)
}

func (m *MockSolvingAttemptRepository) GridForAttempt(ctx context.Context, attemptID int64) (int64, error) {
	args := m.Called(ctx, attemptID)
	return args.Get(0).(int64), args.Error(1)
}
