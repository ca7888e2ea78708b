package http

import (
	"context"
	"net/http"
	"time"

	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/services"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Write(w)
}

// handleReady checks the record store with a short deadline.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			ErrorResponse(http.StatusServiceUnavailable, "store unavailable").Write(w)
			return
		}
	}
	NewJSONResponse().Body(map[string]string{"status": "ready"}).Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.app.Transactions.List(r.Context())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	NewJSONResponse().Body(txs).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	tx, err := s.app.Transactions.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	NewJSONResponse().Body(tx).Write(w)
}

// handleCreateTransaction stores one transaction, or its installments when
// a split frequency is given. The response lists every stored line.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	in, err := req.createInput()
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	created, err := s.app.Transactions.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(created).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	tx, err := req.transaction()
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	tx.ID = id
	updated, err := s.app.Transactions.Update(r.Context(), tx)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	NewJSONResponse().Body(updated).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	if err := s.app.Transactions.Delete(r.Context(), id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

type planResponse struct {
	Total core.Money             `json:"total"`
	Lines []core.InstallmentLine `json:"lines"`
}

// handlePlanInstallments previews a plan without storing anything.
func (s *Server) handlePlanInstallments(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "plan", err)
		return
	}
	planReq, err := req.planRequest()
	if err != nil {
		writeError(w, r, "plan", err)
		return
	}
	lines, err := services.PlanInstallments(planReq)
	if err != nil {
		writeError(w, r, "plan", err)
		return
	}
	NewJSONResponse().Body(planResponse{Total: planReq.TotalAmount, Lines: lines}).Write(w)
}
