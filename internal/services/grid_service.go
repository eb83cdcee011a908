package services

import (
	"context"

	"github.com/vytor/mathdoku/internal/errors"
	"github.com/vytor/mathdoku/internal/logger"
	"github.com/vytor/mathdoku/internal/models"
	"github.com/vytor/mathdoku/internal/repository"
)

// GridService handles the grids and solving attempts statistics refer to
type GridService interface {
	CreateGrid(ctx context.Context, gridSize int) (*models.Grid, error)
	GetGrid(ctx context.Context, id int64) (*models.Grid, error)
	StartSolvingAttempt(ctx context.Context, gridID int64) (int64, error)
}

type gridService struct {
	gridRepo    repository.GridRepository
	attemptRepo repository.SolvingAttemptRepository
}

// NewGridService creates a new GridService
func NewGridService(gridRepo repository.GridRepository, attemptRepo repository.SolvingAttemptRepository) GridService {
	return &gridService{
		gridRepo:    gridRepo,
		attemptRepo: attemptRepo,
	}
}

func (s *gridService) CreateGrid(ctx context.Context, gridSize int) (*models.Grid, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating grid: grid_size=%d", gridSize)

	if gridSize < 1 {
		return nil, errors.NewValidationError("grid_size", "must be positive")
	}

	grid, err := s.gridRepo.Insert(ctx, gridSize)
	if err != nil {
		log.Error("failed to create grid: %v", err)
		return nil, errors.NewStorageError(err)
	}
	log.Info("grid created: id=%d, grid_size=%d", grid.ID, grid.GridSize)
	return grid, nil
}

func (s *gridService) GetGrid(ctx context.Context, id int64) (*models.Grid, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting grid: id=%d", id)

	grid, err := s.gridRepo.Get(ctx, id)
	if err != nil {
		return nil, translate(log, err, "grid", id)
	}
	return grid, nil
}

// StartSolvingAttempt records a new play of the grid and returns its id.
func (s *gridService) StartSolvingAttempt(ctx context.Context, gridID int64) (int64, error) {
	log := logger.FromContext(ctx)

	if _, err := s.GetGrid(ctx, gridID); err != nil {
		return 0, err
	}

	id, err := s.attemptRepo.Insert(ctx, gridID)
	if err != nil {
		log.Error("failed to start solving attempt: %v", err)
		return 0, errors.NewStorageError(err)
	}
	log.Debug("solving attempt started: id=%d, grid_id=%d", id, gridID)
	return id, nil
}
