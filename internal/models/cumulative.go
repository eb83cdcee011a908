package models

import "time"

// CumulativeStatistics aggregates the included attempts of all grids within
// a grid size range.
type CumulativeStatistics struct {
	MinGridSize int `json:"min_grid_size"`
	MaxGridSize int `json:"max_grid_size"`

	MinFirstMove time.Time `json:"min_first_move"`
	MaxLastMove  time.Time `json:"max_last_move"`

	SumElapsedTime int64   `json:"sum_elapsed_time"`
	MinElapsedTime int64   `json:"min_elapsed_time"`
	AvgElapsedTime float64 `json:"avg_elapsed_time"`
	MaxElapsedTime int64   `json:"max_elapsed_time"`

	SumCheatPenaltyTime int64   `json:"sum_cheat_penalty_time"`
	MinCheatPenaltyTime int64   `json:"min_cheat_penalty_time"`
	AvgCheatPenaltyTime float64 `json:"avg_cheat_penalty_time"`
	MaxCheatPenaltyTime int64   `json:"max_cheat_penalty_time"`

	SumPossibles                      int `json:"sum_possibles"`
	SumActionUndos                    int `json:"sum_action_undos"`
	SumActionClearCell                int `json:"sum_action_clear_cell"`
	SumActionClearGrid                int `json:"sum_action_clear_grid"`
	SumActionRevealCell               int `json:"sum_action_reveal_cell"`
	SumActionRevealOperator           int `json:"sum_action_reveal_operator"`
	SumActionCheckProgress            int `json:"sum_action_check_progress"`
	SumCheckProgressInvalidCellsFound int `json:"sum_check_progress_invalid_cells_found"`

	CountSolutionRevealed int `json:"count_solution_revealed"`
	CountSolvedManually   int `json:"count_solved_manually"`
	CountFinished         int `json:"count_finished"`
	CountStarted          int `json:"count_started"`
}

// CountUnfinished returns the number of included attempts not yet finished.
func (c CumulativeStatistics) CountUnfinished() int {
	return c.CountStarted - c.CountFinished
}
