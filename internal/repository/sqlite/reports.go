package sqlite

import (
	"context"
	"fmt"
	"sync"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/mathdoku/internal/logger"
	"github.com/vytor/mathdoku/internal/models"
	"github.com/vytor/mathdoku/internal/projection"
	"github.com/vytor/mathdoku/internal/repository"
)

// Keys of the historic projection that are not derived from an aggregation.
const (
	keyStatisticsID                     = "statistics_id"
	keySeries                           = "series"
	keyElapsedTimeExcludingCheatPenalty = "elapsed_time_excluding_cheat_penalty"
)

var cumulativeProjection = sync.OnceValue(func() *projection.Projection {
	p := projection.New()
	p.Put(projection.Min, gridsTable, colGridSize)
	p.Put(projection.Max, gridsTable, colGridSize)

	p.Put(projection.Min, statisticsTable, colFirstMove)
	p.Put(projection.Max, statisticsTable, colLastMove)

	for _, col := range []string{colElapsedTime, colCheatPenaltyTime} {
		p.Put(projection.Sum, statisticsTable, col)
		p.Put(projection.Min, statisticsTable, col)
		p.Put(projection.Avg, statisticsTable, col)
		p.Put(projection.Max, statisticsTable, col)
	}

	for _, col := range []string{
		colPossibles, colActionUndos, colActionClearCell, colActionClearGrid,
		colActionRevealCell, colActionRevealOperator, colActionCheckProgress,
		colCheckProgressInvalidCellsFound,
	} {
		p.Put(projection.Sum, statisticsTable, col)
	}

	p.Put(projection.CountIfTrue, statisticsTable, colActionRevealSolution)
	p.Put(projection.CountIfTrue, statisticsTable, colSolvedManually)
	p.Put(projection.CountIfTrue, statisticsTable, colFinished)
	p.Put(projection.Count, statisticsTable, colID)
	return p.Freeze()
})

var historicProjection = sync.OnceValue(func() *projection.Projection {
	p := projection.New()
	p.PutAs(keyStatisticsID, statisticsTable, colID)
	p.PutAs(colGridID, statisticsTable, colGridID)
	p.PutAs(colGridSize, gridsTable, colGridSize)
	p.PutExpr(keySeries, squirrel.Case().
		When(squirrel.Eq{projection.Ref(statisticsTable, colFinished): false},
			squirrel.Expr("?", string(models.SeriesUnfinished))).
		When(squirrel.Eq{projection.Ref(statisticsTable, colActionRevealSolution): true},
			squirrel.Expr("?", string(models.SeriesSolutionRevealed))).
		Else(squirrel.Expr("?", string(models.SeriesSolved))))
	p.PutExpr(keyElapsedTimeExcludingCheatPenalty, squirrel.Expr(fmt.Sprintf("%s - %s",
		projection.Ref(statisticsTable, colElapsedTime),
		projection.Ref(statisticsTable, colCheatPenaltyTime))))

	for _, col := range []string{
		colCheatPenaltyTime, colElapsedTime,
		colCellsFilled, colCellsEmpty, colCellsRevealed, colUserValuesReplaced, colPossibles,
		colActionUndos, colActionClearCell, colActionClearGrid, colActionRevealCell,
		colActionRevealOperator, colActionCheckProgress, colCheckProgressInvalidCellsFound,
	} {
		p.Put(projection.None, statisticsTable, col)
	}
	return p.Freeze()
})

// includedInRange joins each statistics record to its grid and keeps the
// included records whose grid size lies in [minGridSize, maxGridSize].
func includedInRange(sb squirrel.SelectBuilder, minGridSize, maxGridSize int) squirrel.SelectBuilder {
	return sb.From(gridsTable).
		InnerJoin(fmt.Sprintf("%s ON %s = %s", statisticsTable,
			projection.Ref(gridsTable, colID), projection.Ref(statisticsTable, colGridID))).
		Where(squirrel.Expr(projection.Ref(gridsTable, colGridSize)+" BETWEEN ? AND ?", minGridSize, maxGridSize)).
		Where(squirrel.Eq{projection.Ref(statisticsTable, colIncludeInStatistics): true})
}

func (r *statisticsRepository) CumulativeStatistics(ctx context.Context, minGridSize, maxGridSize int) (*models.CumulativeStatistics, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("building cumulative statistics: grid_size=[%d,%d]", minGridSize, maxGridSize)

	p := cumulativeProjection()
	query, args, err := includedInRange(p.Select(sqlBuilder), minGridSize, maxGridSize).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	logQuery(log, query, args)

	row, err := p.Scan(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		log.Error("failed to query cumulative statistics: %v", err)
		return nil, err
	}

	count, _ := row.Int(projection.Key(projection.Count, colID))
	if count == 0 {
		log.Debug("no included statistics in grid_size=[%d,%d]", minGridSize, maxGridSize)
		return nil, repository.ErrNoData
	}

	c := models.CumulativeStatistics{CountStarted: count}
	c.MinGridSize, _ = row.Int(projection.Key(projection.Min, colGridSize))
	c.MaxGridSize, _ = row.Int(projection.Key(projection.Max, colGridSize))

	c.SumElapsedTime, _ = row.Int64(projection.Key(projection.Sum, colElapsedTime))
	c.MinElapsedTime, _ = row.Int64(projection.Key(projection.Min, colElapsedTime))
	c.AvgElapsedTime, _ = row.Float64(projection.Key(projection.Avg, colElapsedTime))
	c.MaxElapsedTime, _ = row.Int64(projection.Key(projection.Max, colElapsedTime))

	c.SumCheatPenaltyTime, _ = row.Int64(projection.Key(projection.Sum, colCheatPenaltyTime))
	c.MinCheatPenaltyTime, _ = row.Int64(projection.Key(projection.Min, colCheatPenaltyTime))
	c.AvgCheatPenaltyTime, _ = row.Float64(projection.Key(projection.Avg, colCheatPenaltyTime))
	c.MaxCheatPenaltyTime, _ = row.Int64(projection.Key(projection.Max, colCheatPenaltyTime))

	c.SumPossibles, _ = row.Int(projection.Key(projection.Sum, colPossibles))
	c.SumActionUndos, _ = row.Int(projection.Key(projection.Sum, colActionUndos))
	c.SumActionClearCell, _ = row.Int(projection.Key(projection.Sum, colActionClearCell))
	c.SumActionClearGrid, _ = row.Int(projection.Key(projection.Sum, colActionClearGrid))
	c.SumActionRevealCell, _ = row.Int(projection.Key(projection.Sum, colActionRevealCell))
	c.SumActionRevealOperator, _ = row.Int(projection.Key(projection.Sum, colActionRevealOperator))
	c.SumActionCheckProgress, _ = row.Int(projection.Key(projection.Sum, colActionCheckProgress))
	c.SumCheckProgressInvalidCellsFound, _ = row.Int(projection.Key(projection.Sum, colCheckProgressInvalidCellsFound))

	c.CountSolutionRevealed, _ = row.Int(projection.Key(projection.CountIfTrue, colActionRevealSolution))
	c.CountSolvedManually, _ = row.Int(projection.Key(projection.CountIfTrue, colSolvedManually))
	c.CountFinished, _ = row.Int(projection.Key(projection.CountIfTrue, colFinished))

	c.MinFirstMove, _ = row.Time(projection.Key(projection.Min, colFirstMove), timeLayout)
	c.MaxLastMove, _ = row.Time(projection.Key(projection.Max, colLastMove), timeLayout)

	if err := row.Err(); err != nil {
		log.Error("failed to decode cumulative statistics: %v", err)
		return nil, err
	}

	log.Debug("cumulative statistics over %d attempts", c.CountStarted)
	return &c, nil
}

func (r *statisticsRepository) HistoricStatistics(ctx context.Context, minGridSize, maxGridSize int) (*models.HistoricStatistics, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("building historic statistics: grid_size=[%d,%d]", minGridSize, maxGridSize)

	p := historicProjection()
	query, args, err := includedInRange(p.Select(sqlBuilder), minGridSize, maxGridSize).
		OrderBy(projection.Ref(statisticsTable, colGridID), projection.Ref(statisticsTable, colID)).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	logQuery(log, query, args)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query historic statistics: %v", err)
		return nil, err
	}
	defer rows.Close()

	var result []models.HistoricRow
	for rows.Next() {
		row, err := p.Scan(rows)
		if err != nil {
			log.Error("failed to scan historic row: %v", err)
			return nil, err
		}
		h, err := decodeHistoricRow(row)
		if err != nil {
			log.Error("failed to decode historic row: %v", err)
			return nil, err
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		log.Error("failed to iterate historic rows: %v", err)
		return nil, err
	}

	log.Debug("historic statistics: %d rows", len(result))
	return models.NewHistoricStatistics(result), nil
}

func decodeHistoricRow(row *projection.Row) (models.HistoricRow, error) {
	var h models.HistoricRow
	col := func(name string) string { return projection.Key(projection.None, name) }

	h.StatisticsID, _ = row.Int64(keyStatisticsID)
	h.GridID, _ = row.Int64(colGridID)
	h.GridSize, _ = row.Int(colGridSize)
	h.ElapsedTimeExcludingCheatPenalty, _ = row.Int64(keyElapsedTimeExcludingCheatPenalty)
	h.CheatPenaltyTime, _ = row.Int64(col(colCheatPenaltyTime))
	h.ElapsedTime, _ = row.Int64(col(colElapsedTime))

	h.CellsFilled, _ = row.Int(col(colCellsFilled))
	h.CellsEmpty, _ = row.Int(col(colCellsEmpty))
	h.CellsRevealed, _ = row.Int(col(colCellsRevealed))
	h.UserValuesReplaced, _ = row.Int(col(colUserValuesReplaced))
	h.Possibles, _ = row.Int(col(colPossibles))
	h.ActionUndos, _ = row.Int(col(colActionUndos))
	h.ActionClearCell, _ = row.Int(col(colActionClearCell))
	h.ActionClearGrid, _ = row.Int(col(colActionClearGrid))
	h.ActionRevealCell, _ = row.Int(col(colActionRevealCell))
	h.ActionRevealOperator, _ = row.Int(col(colActionRevealOperator))
	h.ActionCheckProgress, _ = row.Int(col(colActionCheckProgress))
	h.CheckProgressInvalidCellsFound, _ = row.Int(col(colCheckProgressInvalidCellsFound))

	label, _ := row.String(keySeries)
	if err := row.Err(); err != nil {
		return h, err
	}
	series, err := models.ParseSeries(label)
	if err != nil {
		return h, err
	}
	h.Series = series
	return h, nil
}
