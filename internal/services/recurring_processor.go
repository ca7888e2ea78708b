package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/storage"
)

// ProcessResult summarizes one catch-up run.
type ProcessResult struct {
	Checked  int `json:"checked"`
	Posted   int `json:"posted"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
	Advanced int `json:"advanced"`
}

// RecurringProcessor manages recurring definitions and posts the incomes
// they owe.
type RecurringProcessor struct {
	repo         storage.RecurringRepository
	transactions *TransactionService
	group        singleflight.Group
}

func NewRecurringProcessor(repo storage.RecurringRepository, transactions *TransactionService) *RecurringProcessor {
	return &RecurringProcessor{
		repo:         repo,
		transactions: transactions,
	}
}

func (p *RecurringProcessor) Create(ctx context.Context, def core.RecurringDefinition) (core.RecurringDefinition, error) {
	def.ID = 0
	def.Name = strings.TrimSpace(def.Name)
	def.StartDate = def.StartDate.Truncate(core.TimestampPrecision)
	def.LastPosted = def.LastPosted.Truncate(core.TimestampPrecision)
	if err := def.Validate(); err != nil {
		return core.RecurringDefinition{}, fmt.Errorf("validate recurring definition: %w", err)
	}
	created, err := p.repo.CreateRecurring(ctx, def)
	if err != nil {
		return core.RecurringDefinition{}, fmt.Errorf("save recurring definition: %w", err)
	}
	slog.InfoContext(ctx, "Recurring definition created",
		"definition_id", created.ID,
		"name", created.Name,
		"amount_cents", created.Amount.Cents,
		"frequency", created.Frequency)
	return created, nil
}

func (p *RecurringProcessor) List(ctx context.Context) ([]core.RecurringDefinition, error) {
	defs, err := p.repo.ListRecurring(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recurring definitions: %w", err)
	}
	return defs, nil
}

func (p *RecurringProcessor) Delete(ctx context.Context, id int64) error {
	if err := p.repo.DeleteRecurring(ctx, id); err != nil {
		return fmt.Errorf("delete recurring definition: %w", err)
	}
	slog.InfoContext(ctx, "Recurring definition deleted", "definition_id", id)
	return nil
}

// ProcessDue catches every definition up to now. Concurrent calls share a
// single run.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (ProcessResult, error) {
	v, err, shared := p.group.Do("catch-up", func() (any, error) {
		return p.processDue(ctx, now)
	})
	if shared {
		slog.DebugContext(ctx, "Joined running catch-up")
	}
	res, _ := v.(ProcessResult)
	return res, err
}

func (p *RecurringProcessor) processDue(ctx context.Context, now time.Time) (ProcessResult, error) {
	var res ProcessResult
	if p.repo == nil {
		return res, fmt.Errorf("processor not properly initialized")
	}

	defs, err := p.repo.ListRecurring(ctx)
	if err != nil {
		return res, fmt.Errorf("list recurring definitions: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring definitions",
		"total", len(defs),
		"processing_date", now.Format(core.DateLayout))

	for _, def := range defs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Checked++

		posted, err := p.catchUpOne(ctx, def, now)
		switch {
		case errors.Is(err, core.ErrConflict):
			slog.WarnContext(ctx, "Recurring definition changed during catch-up, skipping",
				"definition_id", def.ID)
			res.Skipped++
		case err != nil:
			slog.ErrorContext(ctx, "Failed to catch up recurring definition",
				"definition_id", def.ID,
				"name", def.Name,
				"frequency", def.Frequency,
				"error", err)
			res.Failed++
		case posted > 0:
			res.Posted += posted
			res.Advanced++
		}
	}

	slog.InfoContext(ctx, "Recurring processing complete",
		"checked", res.Checked,
		"posted", res.Posted,
		"skipped", res.Skipped,
		"failed", res.Failed)

	return res, nil
}

func (p *RecurringProcessor) catchUpOne(ctx context.Context, def core.RecurringDefinition, now time.Time) (int, error) {
	result, err := CatchUp(def, now)
	if err != nil {
		return 0, err
	}
	if len(result.Postings) == 0 {
		return 0, nil
	}

	created, err := p.repo.PostRecurring(ctx, def.ID, def.LastPosted, result.Postings, result.LastPosted)
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Posted recurring income",
		"definition_id", def.ID,
		"name", def.Name,
		"postings", len(created),
		"amount_cents", def.Amount.Cents,
		"last_posted", result.LastPosted.Format(core.DateLayout))

	if p.transactions != nil {
		p.transactions.Announce(ctx, created, amqp.SourceRecurring)
	}
	return len(created), nil
}
