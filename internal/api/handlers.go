package api

import (
	"database/sql"
	"time"

	"github.com/vytor/mathdoku/internal/services"
)

const defaultRequestTimeout = 15 * time.Second

// Server exposes the grid and statistics services over HTTP.
type Server struct {
	GridService       services.GridService
	StatisticsService services.StatisticsService
	DB                *sql.DB

	// Report range used when a request omits min or max.
	MinGridSize int
	MaxGridSize int

	RequestTimeout time.Duration
}

func (s *Server) requestTimeout() time.Duration {
	if s.RequestTimeout <= 0 {
		return defaultRequestTimeout
	}
	return s.RequestTimeout
}
