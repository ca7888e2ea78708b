package http

import (
	"net/http"
)

// handleSummary returns totals, period buckets and category breakdowns.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q, err := parseReportQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, "summary", err)
		return
	}
	report, err := s.app.Reports.Summary(r.Context(), q)
	if err != nil {
		writeError(w, r, "summary", err)
		return
	}
	NewJSONResponse().Body(report).Write(w)
}
