package http

import (
	"net/http"
	"strings"

	"bilancio/internal/core"
	"bilancio/internal/services"
)

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := services.ReportRequest{
		Kind: strings.TrimSpace(query.Get("kind")),
	}
	if v := strings.TrimSpace(query.Get("start")); v != "" {
		if d, err := core.ParseDate(v); err == nil {
			req.Start = d
		}
	}
	if v := strings.TrimSpace(query.Get("end")); v != "" {
		if d, err := core.ParseDate(v); err == nil {
			req.End = d
		}
	}

	rep, err := s.reports.Generate(r.Context(), userID(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.reports.Dashboard(r.Context(), userID(r), r.PathValue("yearMonth"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
