package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/mathdoku/internal/models"
)

// MockStatisticsRepository is a mock implementation of repository.StatisticsRepository
type MockStatisticsRepository struct {
	mock.Mock
}

func (m *MockStatisticsRepository) Insert(ctx context.Context, stats models.GridStatistics) (*models.GridStatistics, error) {
	args := m.Called(ctx, stats)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GridStatistics), args.Error(1)
}

func (m *MockStatisticsRepository) Get(ctx context.Context, id int64) (*models.GridStatistics, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GridStatistics), args.Error(1)
}

func (m *MockStatisticsRepository) MostRecentForGrid(ctx context.Context, gridID int64) (*models.GridStatistics, error) {
	args := m.Called(ctx, gridID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GridStatistics), args.Error(1)
}

func (m *MockStatisticsRepository) Update(ctx context.Context, stats models.GridStatistics) error {
	args := m.Called(ctx, stats)
	return args.Error(0)
}

func (m *MockStatisticsRepository) SetIncludedAttempt(ctx context.Context, gridID, statisticsID int64) error {
	args := m.Called(ctx, gridID, statisticsID)
	return args.Error(0)
}

func (m *MockStatisticsRepository) CumulativeStatistics(ctx context.Context, minGridSize, maxGridSize int) (*models.CumulativeStatistics, error) {
	args := m.Called(ctx, minGridSize, maxGridSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CumulativeStatistics), args.Error(1)
}

func (m *MockStatisticsRepository) HistoricStatistics(ctx context.Context, minGridSize, maxGridSize int) (*models.HistoricStatistics, error) {
	args := m.Called(ctx, minGridSize, maxGridSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HistoricStatistics), args.Error(1)
}
