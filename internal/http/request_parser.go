package http

// This file implements utilities for decoding and validating HTTP request
// data: JSON bodies, path ids, dates and report queries.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"budget/internal/core"
	"budget/internal/services"
)

// maxBodyBytes bounds JSON request bodies. Imports use maxImportBytes.
const (
	maxBodyBytes   = 1 << 20
	maxImportBytes = 32 << 20
)

// decodeJSON reads a single JSON object from the request body into dst.
// Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: empty body", errBadRequest)
		case errors.As(err, &maxErr):
			return fmt.Errorf("%w: body larger than %d bytes", errBadRequest, maxErr.Limit)
		}
		// Domain types report their own validation errors while decoding.
		if statusFor(err) == http.StatusUnprocessableEntity {
			return err
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON object", errBadRequest)
	}
	return nil
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errBadRequest, raw)
	}
	return id, nil
}

// parseOptionalDate returns the zero time for an empty value.
func parseOptionalDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return core.ParseDate(s)
}

// parseReportQuery reads period, from and to. A calendar-date "to" covers
// the whole day.
func parseReportQuery(q url.Values) (core.ReportQuery, error) {
	period, err := core.ParsePeriod(q.Get("period"))
	if err != nil {
		return core.ReportQuery{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	from, err := parseOptionalDate(q.Get("from"))
	if err != nil {
		return core.ReportQuery{}, fmt.Errorf("%w: from: %v", errBadRequest, err)
	}
	toRaw := strings.TrimSpace(q.Get("to"))
	to, err := parseOptionalDate(toRaw)
	if err != nil {
		return core.ReportQuery{}, fmt.Errorf("%w: to: %v", errBadRequest, err)
	}
	if len(toRaw) == len(core.DateLayout) {
		to = core.AddDays(to, 1).Add(-time.Nanosecond)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return core.ReportQuery{}, fmt.Errorf("%w: to before from", errBadRequest)
	}
	return core.ReportQuery{Period: period, From: from, To: to}, nil
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// transactionRequest is the body of POST and PUT /api/transactions.
type transactionRequest struct {
	Type         string     `json:"type"`
	Amount       core.Money `json:"amount"`
	Category     string     `json:"category"`
	Date         string     `json:"date"`
	Notes        string     `json:"notes"`
	Split        string     `json:"split"`
	Installments int        `json:"installments"`
	CustomEnd    string     `json:"custom_end"`
}

func (req transactionRequest) transaction() (core.Transaction, error) {
	kind, err := core.ParseKind(req.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Kind:     kind,
		Amount:   req.Amount,
		Category: sanitizeInput(req.Category),
		Date:     date,
		Notes:    sanitizeInput(req.Notes),
	}, nil
}

func (req transactionRequest) createInput() (services.CreateTransactionInput, error) {
	tx, err := req.transaction()
	if err != nil {
		return services.CreateTransactionInput{}, err
	}
	in := services.CreateTransactionInput{Transaction: tx, Installments: req.Installments}
	if in.Split, err = core.ParseSplitFrequency(req.Split); err != nil {
		return services.CreateTransactionInput{}, err
	}
	if in.CustomEnd, err = parseOptionalDate(req.CustomEnd); err != nil {
		return services.CreateTransactionInput{}, err
	}
	return in, nil
}

// planRequest is the body of POST /api/installments/plan.
type planRequest struct {
	Amount       core.Money `json:"amount"`
	Installments int        `json:"installments"`
	StartDate    string     `json:"start_date"`
	Split        string     `json:"split"`
	CustomEnd    string     `json:"custom_end"`
}

func (req planRequest) planRequest() (core.InstallmentPlanRequest, error) {
	split, err := core.ParseSplitFrequency(req.Split)
	if err != nil {
		return core.InstallmentPlanRequest{}, err
	}
	start, err := core.ParseDate(req.StartDate)
	if err != nil {
		return core.InstallmentPlanRequest{}, err
	}
	end, err := parseOptionalDate(req.CustomEnd)
	if err != nil {
		return core.InstallmentPlanRequest{}, err
	}
	return core.InstallmentPlanRequest{
		TotalAmount: req.Amount,
		Count:       req.Installments,
		StartDate:   start,
		Frequency:   split,
		CustomEnd:   end,
	}, nil
}

// recurringRequest is the body of POST /api/recurring.
type recurringRequest struct {
	Name      string     `json:"name"`
	Amount    core.Money `json:"amount"`
	StartDate string     `json:"start_date"`
	Frequency string     `json:"frequency"`
}

func (req recurringRequest) definition() (core.RecurringDefinition, error) {
	freq, err := core.ParseFrequency(req.Frequency)
	if err != nil {
		return core.RecurringDefinition{}, err
	}
	start, err := core.ParseDate(req.StartDate)
	if err != nil {
		return core.RecurringDefinition{}, err
	}
	return core.RecurringDefinition{
		Name:      sanitizeInput(req.Name),
		Amount:    req.Amount,
		StartDate: start,
		Frequency: freq,
	}, nil
}

type settingsRequest struct {
	Currency *string `json:"currency"`
	DarkMode *bool   `json:"dark_mode"`
}

type pinRequest struct {
	Current string `json:"current"`
	PIN     string `json:"pin"`
	Confirm string `json:"confirm"`
}
