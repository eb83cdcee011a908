package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/mathdoku/internal/logger"
	"github.com/vytor/mathdoku/internal/models"
	"github.com/vytor/mathdoku/internal/repository"
)

const statisticsTable = "statistics"

// Column names of the statistics table.
const (
	colID                             = "id"
	colGridID                         = "grid_id"
	colReplay                         = "replay"
	colFirstMove                      = "first_move"
	colLastMove                       = "last_move"
	colElapsedTime                    = "elapsed_time"
	colCheatPenaltyTime               = "cheat_penalty_time"
	colCellsFilled                    = "cells_filled"
	colCellsEmpty                     = "cells_empty"
	colCellsRevealed                  = "cells_revealed"
	colUserValuesReplaced             = "user_value_replaced"
	colPossibles                      = "possibles"
	colActionUndos                    = "action_undos"
	colActionClearCell                = "action_clear_cells"
	colActionClearGrid                = "action_clear_grid"
	colActionRevealCell               = "action_reveal_cell"
	colActionRevealOperator           = "action_reveal_operators"
	colActionCheckProgress            = "action_check_progress"
	colCheckProgressInvalidCellsFound = "check_progress_invalid_cells_found"
	colActionRevealSolution           = "action_reveal_solution"
	colSolvedManually                 = "solved_manually"
	colFinished                       = "finished"
	colIncludeInStatistics            = "include_in_statistics"

	colGridSize = "grid_size"
)

var statisticsColumns = []string{
	colID, colGridID, colReplay, colFirstMove, colLastMove,
	colElapsedTime, colCheatPenaltyTime,
	colCellsFilled, colCellsEmpty, colCellsRevealed, colUserValuesReplaced, colPossibles,
	colActionUndos, colActionClearCell, colActionClearGrid, colActionRevealCell,
	colActionRevealOperator, colActionCheckProgress, colCheckProgressInvalidCellsFound,
	colActionRevealSolution, colSolvedManually, colFinished, colIncludeInStatistics,
}

type statisticsRepository struct {
	db *sql.DB
}

// NewStatisticsRepository creates a new StatisticsRepository implementation
func NewStatisticsRepository(db *sql.DB) repository.StatisticsRepository {
	return &statisticsRepository{db: db}
}

func scanStatistics(row squirrel.RowScanner) (*models.GridStatistics, error) {
	var s models.GridStatistics
	var firstMove, lastMove string
	err := row.Scan(
		&s.ID, &s.GridID, &s.Replay, &firstMove, &lastMove,
		&s.ElapsedTime, &s.CheatPenaltyTime,
		&s.CellsFilled, &s.CellsEmpty, &s.CellsRevealed, &s.UserValuesReplaced, &s.Possibles,
		&s.ActionUndos, &s.ActionClearCell, &s.ActionClearGrid, &s.ActionRevealCell,
		&s.ActionRevealOperator, &s.ActionCheckProgress, &s.CheckProgressInvalidCellsFound,
		&s.SolutionRevealed, &s.SolvedManually, &s.Finished, &s.IncludedInStatistics,
	)
	if err != nil {
		return nil, err
	}
	if s.FirstMove, err = parseTime(firstMove); err != nil {
		return nil, err
	}
	if s.LastMove, err = parseTime(lastMove); err != nil {
		return nil, err
	}
	return &s, nil
}

// Insert stores s and returns the stored record. A record asking to be
// included is stored excluded when its grid already has an included attempt.
func (r *statisticsRepository) Insert(ctx context.Context, s models.GridStatistics) (*models.GridStatistics, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("inserting statistics: grid_id=%d, replay=%d, included=%t", s.GridID, s.Replay, s.IncludedInStatistics)

	var created *models.GridStatistics
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		if s.IncludedInStatistics {
			included, err := hasIncludedAttempt(ctx, tx, s.GridID)
			if err != nil {
				return err
			}
			if included {
				log.Debug("grid %d already has an included attempt, storing replay=%d excluded", s.GridID, s.Replay)
				s.IncludedInStatistics = false
			}
		}

		insert, insertArgs, err := sqlBuilder.Insert(statisticsTable).
			Columns(statisticsColumns[1:]...).
			Values(
				s.GridID, s.Replay, formatTime(s.FirstMove), formatTime(s.LastMove),
				s.ElapsedTime, s.CheatPenaltyTime,
				s.CellsFilled, s.CellsEmpty, s.CellsRevealed, s.UserValuesReplaced, s.Possibles,
				s.ActionUndos, s.ActionClearCell, s.ActionClearGrid, s.ActionRevealCell,
				s.ActionRevealOperator, s.ActionCheckProgress, s.CheckProgressInvalidCellsFound,
				s.SolutionRevealed, s.SolvedManually, s.Finished, s.IncludedInStatistics,
			).
			ToSql()
		if err != nil {
			return err
		}
		logQuery(log, insert, insertArgs)

		res, err := tx.ExecContext(ctx, insert, insertArgs...)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if id <= 0 {
			return fmt.Errorf("insert statistics for grid %d returned no row", s.GridID)
		}

		query, args, err := sqlBuilder.Select(statisticsColumns...).
			From(statisticsTable).
			Where(squirrel.Eq{colID: id}).
			ToSql()
		if err != nil {
			return err
		}
		created, err = scanStatistics(tx.QueryRowContext(ctx, query, args...))
		return err
	})
	if err != nil {
		log.Error("failed to insert statistics: %v", err)
		return nil, err
	}
	log.Debug("statistics inserted: id=%d, included=%t", created.ID, created.IncludedInStatistics)
	return created, nil
}

func hasIncludedAttempt(ctx context.Context, tx *sql.Tx, gridID int64) (bool, error) {
	query, args, err := sqlBuilder.Select("COUNT(*)").
		From(statisticsTable).
		Where(squirrel.Eq{colGridID: gridID, colIncludeInStatistics: true}).
		ToSql()
	if err != nil {
		return false, err
	}

	var count int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *statisticsRepository) Get(ctx context.Context, id int64) (*models.GridStatistics, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("getting statistics: id=%d", id)

	return r.queryOne(ctx, log, sqlBuilder.Select(statisticsColumns...).
		From(statisticsTable).
		Where(squirrel.Eq{colID: id}))
}

func (r *statisticsRepository) MostRecentForGrid(ctx context.Context, gridID int64) (*models.GridStatistics, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("getting most recent statistics: grid_id=%d", gridID)

	return r.queryOne(ctx, log, sqlBuilder.Select(statisticsColumns...).
		From(statisticsTable).
		Where(squirrel.Eq{colGridID: gridID}).
		OrderBy(colID+" DESC").
		Limit(1))
}

func (r *statisticsRepository) queryOne(ctx context.Context, log *logger.Logger, q squirrel.SelectBuilder) (*models.GridStatistics, error) {
	query, args, err := q.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	logQuery(log, query, args)

	s, err := scanStatistics(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("statistics not found")
		} else {
			log.Error("failed to get statistics: %v", err)
		}
		return nil, err
	}
	return s, nil
}

// Update writes the play data of s. The grid, the replay ordinal and the
// inclusion flag are not persisted: include_in_statistics is written only by
// Insert and SetIncludedAttempt.
func (r *statisticsRepository) Update(ctx context.Context, s models.GridStatistics) error {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("updating statistics: id=%d", s.ID)

	query, args, err := sqlBuilder.Update(statisticsTable).
		Set(colFirstMove, formatTime(s.FirstMove)).
		Set(colLastMove, formatTime(s.LastMove)).
		Set(colElapsedTime, s.ElapsedTime).
		Set(colCheatPenaltyTime, s.CheatPenaltyTime).
		Set(colCellsFilled, s.CellsFilled).
		Set(colCellsEmpty, s.CellsEmpty).
		Set(colCellsRevealed, s.CellsRevealed).
		Set(colUserValuesReplaced, s.UserValuesReplaced).
		Set(colPossibles, s.Possibles).
		Set(colActionUndos, s.ActionUndos).
		Set(colActionClearCell, s.ActionClearCell).
		Set(colActionClearGrid, s.ActionClearGrid).
		Set(colActionRevealCell, s.ActionRevealCell).
		Set(colActionRevealOperator, s.ActionRevealOperator).
		Set(colActionCheckProgress, s.ActionCheckProgress).
		Set(colCheckProgressInvalidCellsFound, s.CheckProgressInvalidCellsFound).
		Set(colActionRevealSolution, s.SolutionRevealed).
		Set(colSolvedManually, s.SolvedManually).
		Set(colFinished, s.Finished).
		Where(squirrel.Eq{colID: s.ID}).
		ToSql()
	if err != nil {
		log.Error("failed to build update: %v", err)
		return err
	}
	logQuery(log, query, args)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update statistics: %v", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		log.Error("failed to read affected rows: %v", err)
		return err
	}
	if n != 1 {
		log.Warn("update matched %d rows for statistics id=%d", n, s.ID)
		return sql.ErrNoRows
	}
	return nil
}

// SetIncludedAttempt makes statisticsID the only included attempt of gridID.
// The flag is flipped by a single UPDATE so no reader sees a grid with zero or
// two included attempts.
func (r *statisticsRepository) SetIncludedAttempt(ctx context.Context, gridID, statisticsID int64) error {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("setting included attempt: grid_id=%d, statistics_id=%d", gridID, statisticsID)

	query, args, err := sqlBuilder.Update(statisticsTable).
		Set(colIncludeInStatistics, squirrel.Case().
			When(squirrel.Eq{colID: statisticsID}, "1").
			Else("0")).
		Where(squirrel.Eq{colGridID: gridID}).
		Where(squirrel.Or{
			squirrel.Eq{colID: statisticsID},
			squirrel.Eq{colIncludeInStatistics: true},
		}).
		ToSql()
	if err != nil {
		log.Error("failed to build update: %v", err)
		return err
	}
	logQuery(log, query, args)

	err = tx(ctx, r.db, func(tx *sql.Tx) error {
		ownerQuery, ownerArgs, err := sqlBuilder.Select(colGridID).
			From(statisticsTable).
			Where(squirrel.Eq{colID: statisticsID}).
			ToSql()
		if err != nil {
			return err
		}
		var owner int64
		if err := tx.QueryRowContext(ctx, ownerQuery, ownerArgs...).Scan(&owner); err != nil {
			return err
		}
		if owner != gridID {
			return fmt.Errorf("statistics %d belongs to grid %d, not %d: %w", statisticsID, owner, gridID, sql.ErrNoRows)
		}
		_, err = tx.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("attempt %d not found for grid %d", statisticsID, gridID)
		} else {
			log.Error("failed to set included attempt: %v", err)
		}
		return err
	}
	return nil
}
