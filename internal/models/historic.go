package models

import (
	"encoding/json"
	"fmt"
	"iter"
)

// Series classifies the outcome of a solving attempt.
type Series string

const (
	SeriesUnfinished       Series = "UNFINISHED"
	SeriesSolutionRevealed Series = "SOLUTION_REVEALED"
	SeriesSolved           Series = "SOLVED"
)

// AllSeries lists the series in display order.
var AllSeries = []Series{SeriesUnfinished, SeriesSolutionRevealed, SeriesSolved}

// ParseSeries converts a stored label back into a Series.
func ParseSeries(s string) (Series, error) {
	for _, series := range AllSeries {
		if string(series) == s {
			return series, nil
		}
	}
	return "", fmt.Errorf("unknown series %q", s)
}

// HistoricRow is one included attempt in a historic report.
type HistoricRow struct {
	StatisticsID                     int64  `json:"statistics_id"`
	GridID                           int64  `json:"grid_id"`
	GridSize                         int    `json:"grid_size"`
	Series                           Series `json:"series"`
	ElapsedTimeExcludingCheatPenalty int64  `json:"elapsed_time_excluding_cheat_penalty"`
	CheatPenaltyTime                 int64  `json:"cheat_penalty_time"`
	ElapsedTime                      int64  `json:"elapsed_time"`

	CellsFilled                    int `json:"cells_filled"`
	CellsEmpty                     int `json:"cells_empty"`
	CellsRevealed                  int `json:"cells_revealed"`
	UserValuesReplaced             int `json:"user_values_replaced"`
	Possibles                      int `json:"possibles"`
	ActionUndos                    int `json:"action_undos"`
	ActionClearCell                int `json:"action_clear_cell"`
	ActionClearGrid                int `json:"action_clear_grid"`
	ActionRevealCell               int `json:"action_reveal_cell"`
	ActionRevealOperator           int `json:"action_reveal_operator"`
	ActionCheckProgress            int `json:"action_check_progress"`
	CheckProgressInvalidCellsFound int `json:"check_progress_invalid_cells_found"`
}

// HistoricStatistics is the ordered result of a historic report. Rows are
// grouped by grid and keep the order in which the store returned them.
type HistoricStatistics struct {
	rows []HistoricRow
}

// NewHistoricStatistics wraps rows in their reporting order.
func NewHistoricStatistics(rows []HistoricRow) *HistoricStatistics {
	return &HistoricStatistics{rows: rows}
}

// Len returns the number of rows.
func (h *HistoricStatistics) Len() int {
	return len(h.rows)
}

// All yields every row in order.
func (h *HistoricStatistics) All() iter.Seq[HistoricRow] {
	return func(yield func(HistoricRow) bool) {
		for _, row := range h.rows {
			if !yield(row) {
				return
			}
		}
	}
}

// Series yields only the rows classified as series.
func (h *HistoricStatistics) Series(series Series) iter.Seq[HistoricRow] {
	return func(yield func(HistoricRow) bool) {
		for row := range h.All() {
			if row.Series == series && !yield(row) {
				return
			}
		}
	}
}

// SeriesCounts returns the number of rows per series. Every series is
// present in the result, possibly with a zero count.
func (h *HistoricStatistics) SeriesCounts() map[Series]int {
	counts := make(map[Series]int, len(AllSeries))
	for _, series := range AllSeries {
		counts[series] = 0
	}
	for row := range h.All() {
		counts[row.Series]++
	}
	return counts
}

func (h *HistoricStatistics) MarshalJSON() ([]byte, error) {
	rows := h.rows
	if rows == nil {
		rows = []HistoricRow{}
	}
	return json.Marshal(struct {
		Rows         []HistoricRow  `json:"rows"`
		SeriesCounts map[Series]int `json:"series_counts"`
	}{rows, h.SeriesCounts()})
}
