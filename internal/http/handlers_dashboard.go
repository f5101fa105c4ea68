package http

import (
	"net/http"
	"time"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.dashboard.GetDashboard(r.Context(), userIDFrom(r), time.Now().UTC())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}
