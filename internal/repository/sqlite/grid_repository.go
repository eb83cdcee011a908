package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/mathdoku/internal/logger"
	"github.com/vytor/mathdoku/internal/models"
	"github.com/vytor/mathdoku/internal/repository"
)

const (
	gridsTable           = "grids"
	solvingAttemptsTable = "solving_attempts"
)

type gridRepository struct {
	db *sql.DB
}

// NewGridRepository creates a new GridRepository implementation
func NewGridRepository(db *sql.DB) repository.GridRepository {
	return &gridRepository{db: db}
}

func (r *gridRepository) Insert(ctx context.Context, gridSize int) (*models.Grid, error) {
	log := logger.FromContext(ctx).WithPrefix("grid_repo")
	log.Debug("inserting grid: grid_size=%d", gridSize)

	now := time.Now()
	res, err := r.db.ExecContext(ctx, `INSERT INTO grids (grid_size, created_at) VALUES (?, ?)`, gridSize, formatTime(now))
	if err != nil {
		log.Error("failed to insert grid: %v", err)
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get grid id: %v", err)
		return nil, err
	}
	log.Debug("grid inserted: id=%d", id)
	return &models.Grid{ID: id, GridSize: gridSize, CreatedAt: now.UTC()}, nil
}

func (r *gridRepository) Get(ctx context.Context, id int64) (*models.Grid, error) {
	log := logger.FromContext(ctx).WithPrefix("grid_repo")
	log.Debug("getting grid: id=%d", id)

	var g models.Grid
	var createdAt string
	err := r.db.QueryRowContext(ctx, `SELECT id, grid_size, created_at FROM grids WHERE id = ?`, id).
		Scan(&g.ID, &g.GridSize, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("grid not found: id=%d", id)
		} else {
			log.Error("failed to get grid: %v", err)
		}
		return nil, err
	}
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		log.Error("failed to decode grid: %v", err)
		return nil, err
	}
	return &g, nil
}

type solvingAttemptRepository struct {
	db *sql.DB
}

// NewSolvingAttemptRepository creates a new SolvingAttemptRepository implementation
func NewSolvingAttemptRepository(db *sql.DB) repository.SolvingAttemptRepository {
	return &solvingAttemptRepository{db: db}
}

func (r *solvingAttemptRepository) Insert(ctx context.Context, gridID int64) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")
	log.Debug("inserting solving attempt: grid_id=%d", gridID)

	res, err := r.db.ExecContext(ctx, `INSERT INTO solving_attempts (grid_id, created_at) VALUES (?, ?)`, gridID, formatTime(time.Now()))
	if err != nil {
		log.Error("failed to insert solving attempt: %v", err)
		return 0, err
	}
	return res.LastInsertId()
}

func (r *solvingAttemptRepository) CountForGrid(ctx context.Context, gridID int64) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")

	query, args, err := sqlBuilder.Select("COUNT(*)").
		From(solvingAttemptsTable).
		Where("grid_id = ?", gridID).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Error("failed to count solving attempts: %v", err)
		return 0, err
	}
	log.Debug("grid %d has %d solving attempts", gridID, count)
	return count, nil
}

// GridForAttempt returns the id of the grid attemptID was started on.
func (r *solvingAttemptRepository) GridForAttempt(ctx context.Context, attemptID int64) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")

	query, args, err := sqlBuilder.Select("grid_id").
		From(solvingAttemptsTable).
		Where(squirrel.Eq{"id": attemptID}).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var gridID int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&gridID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("solving attempt not found: id=%d", attemptID)
		} else {
			log.Error("failed to get solving attempt: %v", err)
		}
		return 0, err
	}
	return gridID, nil
}
