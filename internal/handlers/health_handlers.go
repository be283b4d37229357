package handlers

import (
	"net/http"
)

// HandleHealth reports liveness plus a metrics snapshot.
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requests, errors, dropped, uptime := s.Metrics.Snapshot()
		writeJSON(w, map[string]interface{}{
			"status":            "ok",
			"uptimeSeconds":     int64(uptime.Seconds()),
			"requests":          requests,
			"errors":            errors,
			"droppedDeliveries": dropped,
		})
	}
}
