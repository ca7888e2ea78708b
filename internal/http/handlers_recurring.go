package http

import (
	"net/http"

	"budget/internal/core"
	applog "budget/internal/log"
)

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	defs, err := s.app.Recurring.List(r.Context())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	if defs == nil {
		defs = []core.RecurringDefinition{}
	}
	NewJSONResponse().Body(defs).Write(w)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req recurringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	def, err := req.definition()
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	created, err := s.app.Recurring.Create(r.Context(), def)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(created).Write(w)
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	if err := s.app.Recurring.Delete(r.Context(), id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// handleCatchUp posts every recurring income owed as of now.
func (s *Server) handleCatchUp(w http.ResponseWriter, r *http.Request) {
	res, err := s.app.Recurring.ProcessDue(r.Context(), s.now())
	if err != nil {
		writeError(w, r, applog.OpCatchUp, err)
		return
	}
	NewJSONResponse().Body(res).Write(w)
}
