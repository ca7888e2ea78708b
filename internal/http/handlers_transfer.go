package http

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"

	"budget/internal/interchange"
	applog "budget/internal/log"
)

var contentTypes = map[interchange.Format]string{
	interchange.FormatJSON: "application/json",
	interchange.FormatCSV:  "text/csv; charset=utf-8",
}

// requestFormat reads ?format=, falling back to the Content-Type of the body.
func requestFormat(r *http.Request) (interchange.Format, error) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && mt == "text/csv" {
			return interchange.FormatCSV, nil
		}
	}
	f, err := interchange.ParseFormat(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return f, nil
}

// handleExport sends every transaction as a downloadable file.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	f, err := requestFormat(r)
	if err != nil {
		writeError(w, r, applog.OpExport, err)
		return
	}
	var buf bytes.Buffer
	if _, err := s.app.Transfer.Export(r.Context(), &buf, f); err != nil {
		writeError(w, r, applog.OpExport, err)
		return
	}
	filename := fmt.Sprintf("budget-%s.%s", s.now().Format("2006-01-02"), f)
	NewJSONResponse().
		Header("Content-Type", contentTypes[f]).
		Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename)).
		Raw(buf.Bytes()).
		Write(w)
}

type importResponse struct {
	Imported int `json:"imported"`
}

// handleImport replaces every stored transaction with the request body.
// Nothing changes unless the whole payload is valid.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	f, err := requestFormat(r)
	if err != nil {
		writeError(w, r, applog.OpImport, err)
		return
	}
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	n, err := s.app.Transfer.Import(r.Context(), body, f)
	if err != nil {
		writeError(w, r, applog.OpImport, err)
		return
	}
	NewJSONResponse().Body(importResponse{Imported: n}).Write(w)
}
