package repository

import (
	"context"
	"errors"

	"github.com/vytor/mathdoku/internal/models"
)

// ErrNoData is returned by aggregate reports when no row matched the filter.
var ErrNoData = errors.New("no data")

// GridRepository handles grid data access
type GridRepository interface {
	Insert(ctx context.Context, gridSize int) (*models.Grid, error)
	Get(ctx context.Context, id int64) (*models.Grid, error)
}

// SolvingAttemptRepository handles solving attempt data access
type SolvingAttemptRepository interface {
	Insert(ctx context.Context, gridID int64) (int64, error)
	CountForGrid(ctx context.Context, gridID int64) (int, error)
	GridForAttempt(ctx context.Context, attemptID int64) (int64, error)
}

// StatisticsRepository handles statistics data access. Lookups that match no
// row return sql.ErrNoRows.
type StatisticsRepository interface {
	Insert(ctx context.Context, stats models.GridStatistics) (*models.GridStatistics, error)
	Get(ctx context.Context, id int64) (*models.GridStatistics, error)
	MostRecentForGrid(ctx context.Context, gridID int64) (*models.GridStatistics, error)
	Update(ctx context.Context, stats models.GridStatistics) error
	SetIncludedAttempt(ctx context.Context, gridID, statisticsID int64) error
	CumulativeStatistics(ctx context.Context, minGridSize, maxGridSize int) (*models.CumulativeStatistics, error)
	HistoricStatistics(ctx context.Context, minGridSize, maxGridSize int) (*models.HistoricStatistics, error)
}
