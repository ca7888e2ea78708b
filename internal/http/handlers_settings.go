package http

import (
	"net/http"

	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/services"
)

type settingsResponse struct {
	Currency   string   `json:"currency"`
	DarkMode   bool     `json:"dark_mode"`
	HasPIN     bool     `json:"has_pin"`
	Currencies []string `json:"currencies"`
}

func newSettingsResponse(st core.Settings) settingsResponse {
	return settingsResponse{
		Currency:   st.Currency,
		DarkMode:   st.DarkMode,
		HasPIN:     st.HasPIN(),
		Currencies: core.SupportedCurrencies,
	}
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.app.Settings.Get(r.Context())
	if err != nil {
		writeError(w, r, "settings", err)
		return
	}
	NewJSONResponse().Body(newSettingsResponse(st)).Write(w)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	st, err := s.app.Settings.Update(r.Context(), services.SettingsUpdate{
		Currency: req.Currency,
		DarkMode: req.DarkMode,
	})
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	NewJSONResponse().Body(newSettingsResponse(st)).Write(w)
}

func (s *Server) handleSetPIN(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "set_pin", err)
		return
	}
	if err := s.app.Settings.SetPIN(r.Context(), req.Current, req.PIN, req.Confirm); err != nil {
		writeError(w, r, "set_pin", err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleRemovePIN(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "remove_pin", err)
		return
	}
	if err := s.app.Settings.RemovePIN(r.Context(), req.Current); err != nil {
		writeError(w, r, "remove_pin", err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// handleVerifyPIN answers 200 for a matching PIN and 401 otherwise.
func (s *Server) handleVerifyPIN(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "verify_pin", err)
		return
	}
	if err := s.app.Settings.VerifyPIN(r.Context(), req.PIN); err != nil {
		writeError(w, r, "verify_pin", err)
		return
	}
	NewJSONResponse().Body(map[string]bool{"valid": true}).Write(w)
}
