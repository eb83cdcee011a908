package api

import (
	"net/http"

	"github.com/vytor/mathdoku/internal/logger"
)

type createGridRequest struct {
	GridSize int `json:"grid_size"`
}

type solvingAttemptResponse struct {
	SolvingAttemptID int64 `json:"solving_attempt_id"`
	GridID           int64 `json:"grid_id"`
}

func (s *Server) handleCreateGrid(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req createGridRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	log.Debug("creating grid: grid_size=%d", req.GridSize)

	grid, err := s.GridService.CreateGrid(r.Context(), req.GridSize)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, grid)
}

func (s *Server) handleStartSolvingAttempt(w http.ResponseWriter, r *http.Request) {
	gridID, err := idParam(r, "gridID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	id, err := s.GridService.StartSolvingAttempt(r.Context(), gridID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, solvingAttemptResponse{SolvingAttemptID: id, GridID: gridID})
}
