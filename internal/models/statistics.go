package models

import (
	"fmt"
	"time"
)

// GridStatistics holds the statistics of one solving attempt of a grid.
// Times are in milliseconds.
type GridStatistics struct {
	ID     int64 `json:"id"`
	GridID int64 `json:"grid_id"`
	Replay int   `json:"replay"`

	FirstMove time.Time `json:"first_move"`
	LastMove  time.Time `json:"last_move"`

	ElapsedTime      int64 `json:"elapsed_time"`
	CheatPenaltyTime int64 `json:"cheat_penalty_time"`

	CellsFilled        int `json:"cells_filled"`
	CellsEmpty         int `json:"cells_empty"`
	CellsRevealed      int `json:"cells_revealed"`
	UserValuesReplaced int `json:"user_values_replaced"`
	Possibles          int `json:"possibles"`

	ActionUndos                    int `json:"action_undos"`
	ActionClearCell                int `json:"action_clear_cell"`
	ActionClearGrid                int `json:"action_clear_grid"`
	ActionRevealCell               int `json:"action_reveal_cell"`
	ActionRevealOperator           int `json:"action_reveal_operator"`
	ActionCheckProgress            int `json:"action_check_progress"`
	CheckProgressInvalidCellsFound int `json:"check_progress_invalid_cells_found"`

	SolutionRevealed bool `json:"solution_revealed"`
	SolvedManually   bool `json:"solved_manually"`
	Finished         bool `json:"finished"`

	// IncludedInStatistics marks the single attempt of a grid that counts
	// towards cumulative and historic reports.
	IncludedInStatistics bool `json:"included_in_statistics"`
}

// NewGridStatistics returns the initial statistics of a new solving attempt.
// Only the first attempt on a grid (replay 0) starts out included.
func NewGridStatistics(grid Grid, replay int, now time.Time) GridStatistics {
	return GridStatistics{
		GridID:               grid.ID,
		Replay:               replay,
		FirstMove:            now,
		LastMove:             now,
		CellsEmpty:           grid.Cells(),
		IncludedInStatistics: replay == 0,
	}
}

// ElapsedTimeExcludingCheatPenalty returns the time actually spent playing.
func (s GridStatistics) ElapsedTimeExcludingCheatPenalty() int64 {
	return s.ElapsedTime - s.CheatPenaltyTime
}

// Validate checks the invariants the store does not enforce.
func (s GridStatistics) Validate() error {
	if s.LastMove.Before(s.FirstMove) {
		return fmt.Errorf("last_move %s is before first_move %s", s.LastMove, s.FirstMove)
	}
	counters := []struct {
		name  string
		value int64
	}{
		{"elapsed_time", s.ElapsedTime},
		{"cheat_penalty_time", s.CheatPenaltyTime},
		{"cells_filled", int64(s.CellsFilled)},
		{"cells_empty", int64(s.CellsEmpty)},
		{"cells_revealed", int64(s.CellsRevealed)},
		{"user_values_replaced", int64(s.UserValuesReplaced)},
		{"possibles", int64(s.Possibles)},
		{"action_undos", int64(s.ActionUndos)},
		{"action_clear_cell", int64(s.ActionClearCell)},
		{"action_clear_grid", int64(s.ActionClearGrid)},
		{"action_reveal_cell", int64(s.ActionRevealCell)},
		{"action_reveal_operator", int64(s.ActionRevealOperator)},
		{"action_check_progress", int64(s.ActionCheckProgress)},
		{"check_progress_invalid_cells_found", int64(s.CheckProgressInvalidCellsFound)},
	}
	for _, c := range counters {
		if c.value < 0 {
			return fmt.Errorf("%s must not be negative, got %d", c.name, c.value)
		}
	}
	return nil
}
