package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Group(func(r chi.Router) {
		r.Use(timeoutMiddleware(s.requestTimeout()))

		r.Post("/grids", s.handleCreateGrid)
		r.Route("/grids/{gridID}", func(r chi.Router) {
			r.Post("/attempts", s.handleStartSolvingAttempt)
			r.Post("/statistics", s.handleCreateStatistics)
			r.Get("/statistics/latest", s.handleMostRecentStatistics)
			r.Put("/included-attempt", s.handleSetIncludedAttempt)
		})

		r.Get("/statistics/cumulative", s.handleCumulativeStatistics)
		r.Get("/statistics/historic", s.handleHistoricStatistics)
		r.Get("/statistics/{id}", s.handleGetStatistics)
		r.Put("/statistics/{id}", s.handleUpdateStatistics)
	})
	return r
}
