package api

import (
	"net/http"

	"github.com/vytor/mathdoku/internal/logger"
	"github.com/vytor/mathdoku/internal/models"
)

type createStatisticsRequest struct {
	// SolvingAttemptID is the attempt currently loaded on the grid, 0 if none.
	SolvingAttemptID int64 `json:"solving_attempt_id"`
}

type includedAttemptRequest struct {
	StatisticsID int64 `json:"statistics_id"`
}

func (s *Server) handleCreateStatistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	gridID, err := idParam(r, "gridID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req createStatisticsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	grid, err := s.GridService.GetGrid(ctx, gridID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	grid.SolvingAttemptID = req.SolvingAttemptID

	stats, err := s.StatisticsService.CreateStatistics(ctx, *grid)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, stats)
}

func (s *Server) handleMostRecentStatistics(w http.ResponseWriter, r *http.Request) {
	gridID, err := idParam(r, "gridID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	stats, err := s.StatisticsService.GetMostRecentStatistics(r.Context(), gridID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

func (s *Server) handleSetIncludedAttempt(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	gridID, err := idParam(r, "gridID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req includedAttemptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	log.Debug("switching included attempt: grid_id=%d, statistics_id=%d", gridID, req.StatisticsID)

	if err := s.StatisticsService.SetIncludedAttempt(r.Context(), gridID, req.StatisticsID); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetStatistics(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	stats, err := s.StatisticsService.GetStatistics(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

// handleUpdateStatistics replaces the play data of a record. The record id is
// taken from the path; grid, replay and inclusion in the body are ignored.
func (s *Server) handleUpdateStatistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var stats models.GridStatistics
	if err := decodeJSON(w, r, &stats); err != nil {
		handleError(w, r, err)
		return
	}
	stats.ID = id

	if err := s.StatisticsService.UpdateStatistics(ctx, stats); err != nil {
		handleError(w, r, err)
		return
	}

	updated, err := s.StatisticsService.GetStatistics(ctx, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, updated)
}

func (s *Server) reportRange(r *http.Request) (int, int, error) {
	minGridSize, err := intQuery(r, "min", s.MinGridSize)
	if err != nil {
		return 0, 0, err
	}
	maxGridSize, err := intQuery(r, "max", s.MaxGridSize)
	if err != nil {
		return 0, 0, err
	}
	return minGridSize, maxGridSize, nil
}

func (s *Server) handleCumulativeStatistics(w http.ResponseWriter, r *http.Request) {
	minGridSize, maxGridSize, err := s.reportRange(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	stats, err := s.StatisticsService.GetCumulativeStatistics(r.Context(), minGridSize, maxGridSize)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

func (s *Server) handleHistoricStatistics(w http.ResponseWriter, r *http.Request) {
	minGridSize, maxGridSize, err := s.reportRange(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	stats, err := s.StatisticsService.GetHistoricStatistics(r.Context(), minGridSize, maxGridSize)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}
