package models

import "time"

// Grid is the part of a puzzle grid the statistics layer needs to know about.
// SolvingAttemptID is the attempt currently loaded for play, 0 when none is.
type Grid struct {
	ID               int64     `json:"id"`
	GridSize         int       `json:"grid_size"`
	SolvingAttemptID int64     `json:"solving_attempt_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Cells returns the number of cells in the grid.
func (g Grid) Cells() int {
	return g.GridSize * g.GridSize
}
