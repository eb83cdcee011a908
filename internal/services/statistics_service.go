package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/vytor/mathdoku/internal/errors"
	"github.com/vytor/mathdoku/internal/logger"
	"github.com/vytor/mathdoku/internal/models"
	"github.com/vytor/mathdoku/internal/repository"
)

// StatisticsService handles grid statistics business logic
type StatisticsService interface {
	CreateStatistics(ctx context.Context, grid models.Grid) (*models.GridStatistics, error)
	GetStatistics(ctx context.Context, id int64) (*models.GridStatistics, error)
	GetMostRecentStatistics(ctx context.Context, gridID int64) (*models.GridStatistics, error)
	UpdateStatistics(ctx context.Context, stats models.GridStatistics) error
	SetIncludedAttempt(ctx context.Context, gridID, statisticsID int64) error
	GetCumulativeStatistics(ctx context.Context, minGridSize, maxGridSize int) (*models.CumulativeStatistics, error)
	GetHistoricStatistics(ctx context.Context, minGridSize, maxGridSize int) (*models.HistoricStatistics, error)
}

// StatisticsOption configures a StatisticsService.
type StatisticsOption func(*statisticsService)

// WithClock replaces the time source used to stamp new statistics.
func WithClock(now func() time.Time) StatisticsOption {
	return func(s *statisticsService) {
		s.now = now
	}
}

type statisticsService struct {
	statsRepo   repository.StatisticsRepository
	attemptRepo repository.SolvingAttemptRepository
	now         func() time.Time
}

// NewStatisticsService creates a new StatisticsService
func NewStatisticsService(statsRepo repository.StatisticsRepository, attemptRepo repository.SolvingAttemptRepository, opts ...StatisticsOption) StatisticsService {
	s := &statisticsService{
		statsRepo:   statsRepo,
		attemptRepo: attemptRepo,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateStatistics stores the statistics of a new solving attempt of grid.
// The attempt currently loaded on the grid, if any, must belong to grid and is
// not counted as a previous play when deriving the replay ordinal. Only the
// first statistics of a grid are included in the reports; the store keeps a
// later replay-0 record, as left by a retried request, excluded.
func (s *statisticsService) CreateStatistics(ctx context.Context, grid models.Grid) (*models.GridStatistics, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating statistics: grid_id=%d, grid_size=%d, solving_attempt_id=%d", grid.ID, grid.GridSize, grid.SolvingAttemptID)

	if grid.ID <= 0 {
		return nil, errors.NewValidationError("grid_id", "must be positive")
	}
	if grid.GridSize <= 0 {
		return nil, errors.NewValidationError("grid_size", "must be positive")
	}

	if grid.SolvingAttemptID > 0 {
		owner, err := s.attemptRepo.GridForAttempt(ctx, grid.SolvingAttemptID)
		switch {
		case stderrors.Is(err, sql.ErrNoRows):
			return nil, errors.NewValidationError("solving_attempt_id", fmt.Sprintf("attempt %d does not exist", grid.SolvingAttemptID))
		case err != nil:
			log.Error("failed to look up solving attempt: %v", err)
			return nil, errors.NewStorageError(err)
		case owner != grid.ID:
			return nil, errors.NewValidationError("solving_attempt_id", fmt.Sprintf("attempt %d belongs to grid %d", grid.SolvingAttemptID, owner))
		}
	}

	attempts, err := s.attemptRepo.CountForGrid(ctx, grid.ID)
	if err != nil {
		log.Error("failed to count solving attempts: %v", err)
		return nil, errors.NewStorageError(err)
	}
	replay := attempts
	if grid.SolvingAttemptID > 0 {
		replay--
	}
	replay = max(replay, 0)

	created, err := s.statsRepo.Insert(ctx, models.NewGridStatistics(grid, replay, s.now()))
	if err != nil {
		log.Error("failed to create statistics: %v", err)
		return nil, errors.NewStorageError(err)
	}
	log.Info("statistics created: id=%d, grid_id=%d, replay=%d", created.ID, created.GridID, created.Replay)
	return created, nil
}

func (s *statisticsService) GetStatistics(ctx context.Context, id int64) (*models.GridStatistics, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting statistics: id=%d", id)

	stats, err := s.statsRepo.Get(ctx, id)
	if err != nil {
		return nil, translate(log, err, "statistics", id)
	}
	return stats, nil
}

func (s *statisticsService) GetMostRecentStatistics(ctx context.Context, gridID int64) (*models.GridStatistics, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting most recent statistics: grid_id=%d", gridID)

	stats, err := s.statsRepo.MostRecentForGrid(ctx, gridID)
	if err != nil {
		return nil, translate(log, err, "statistics for grid", gridID)
	}
	return stats, nil
}

func (s *statisticsService) UpdateStatistics(ctx context.Context, stats models.GridStatistics) error {
	log := logger.FromContext(ctx)
	log.Debug("updating statistics: id=%d", stats.ID)

	if stats.ID <= 0 {
		return errors.NewValidationError("id", "must be positive")
	}
	if err := stats.Validate(); err != nil {
		return errors.NewValidationError("statistics", err.Error())
	}

	if err := s.statsRepo.Update(ctx, stats); err != nil {
		return translate(log, err, "statistics", stats.ID)
	}
	return nil
}

func (s *statisticsService) SetIncludedAttempt(ctx context.Context, gridID, statisticsID int64) error {
	log := logger.FromContext(ctx)
	log.Debug("setting included attempt: grid_id=%d, statistics_id=%d", gridID, statisticsID)

	if err := s.statsRepo.SetIncludedAttempt(ctx, gridID, statisticsID); err != nil {
		return translate(log, err, "statistics for grid", fmt.Sprintf("%d/%d", gridID, statisticsID))
	}
	log.Info("included attempt of grid %d is now %d", gridID, statisticsID)
	return nil
}

func (s *statisticsService) GetCumulativeStatistics(ctx context.Context, minGridSize, maxGridSize int) (*models.CumulativeStatistics, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting cumulative statistics: min=%d, max=%d", minGridSize, maxGridSize)

	if err := validateRange(minGridSize, maxGridSize); err != nil {
		return nil, err
	}

	stats, err := s.statsRepo.CumulativeStatistics(ctx, minGridSize, maxGridSize)
	if err != nil {
		return nil, translate(log, err, "cumulative statistics", fmt.Sprintf("grid sizes %d-%d", minGridSize, maxGridSize))
	}
	return stats, nil
}

func (s *statisticsService) GetHistoricStatistics(ctx context.Context, minGridSize, maxGridSize int) (*models.HistoricStatistics, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting historic statistics: min=%d, max=%d", minGridSize, maxGridSize)

	if err := validateRange(minGridSize, maxGridSize); err != nil {
		return nil, err
	}

	stats, err := s.statsRepo.HistoricStatistics(ctx, minGridSize, maxGridSize)
	if err != nil {
		log.Error("failed to get historic statistics: %v", err)
		return nil, errors.NewStorageError(err)
	}
	return stats, nil
}

func validateRange(minGridSize, maxGridSize int) error {
	if minGridSize < 1 {
		return errors.NewValidationError("min", "must be at least 1")
	}
	if minGridSize > maxGridSize {
		return errors.NewValidationError("max", fmt.Sprintf("must not be below min (%d)", minGridSize))
	}
	return nil
}

// translate maps a repository error onto the application error taxonomy.
func translate(log *logger.Logger, err error, resource string, id any) error {
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		log.Debug("%s not found: %v", resource, id)
		return errors.NewNotFoundError(resource, id)
	case stderrors.Is(err, repository.ErrNoData):
		log.Debug("no data for %s %v", resource, id)
		return errors.NewNoDataError(fmt.Sprintf("%s %v", resource, id))
	default:
		log.Error("storage failure for %s %v: %v", resource, id, err)
		return errors.NewStorageError(err)
	}
}
