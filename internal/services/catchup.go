package services

import (
	"fmt"
	"time"

	"budget/internal/core"
)

// CatchUpResult is the outcome of replaying elapsed periods for one definition.
type CatchUpResult struct {
	// Postings are income transactions without ids, in ascending date order.
	Postings []core.Transaction
	// LastPosted is the date of the last posting, or the definition's
	// unchanged LastPosted when nothing was due.
	LastPosted time.Time
}

// CatchUp computes the postings needed to bring def up to date at now.
//
// A cursor starts at LastPosted and advances one period at a time; every
// advanced cursor that is not after now becomes one posting. A definition
// that was never posted gets its first posting on StartDate. Calling CatchUp
// again with the returned LastPosted and the same now yields no postings.
//
// CatchUp is pure; persisting the postings together with LastPosted is up
// to the caller.
func CatchUp(def core.RecurringDefinition, now time.Time) (CatchUpResult, error) {
	unchanged := CatchUpResult{LastPosted: def.LastPosted}

	stepper, err := GetPeriodStepper(def.Frequency)
	if err != nil {
		return unchanged, err
	}
	if err := def.Amount.Validate(); err != nil {
		return unchanged, fmt.Errorf("recurring definition %d: %w", def.ID, err)
	}
	if def.StartDate.IsZero() {
		return unchanged, fmt.Errorf("recurring definition %d: %w", def.ID, core.ErrInvalidDate)
	}

	due := def.StartDate
	if def.Posted() {
		due = stepper.Next(def.LastPosted)
	}

	notes := fmt.Sprintf("Recurring %s income", def.Frequency.Label())
	result := unchanged
	for !due.After(now) {
		result.Postings = append(result.Postings, core.Transaction{
			Kind:     core.Income,
			Amount:   def.Amount,
			Category: def.Name,
			Date:     due,
			Notes:    notes,
		})
		result.LastPosted = due

		next := stepper.Next(due)
		if !next.After(due) {
			return unchanged, fmt.Errorf("recurring definition %d: %w: period does not advance", def.ID, core.ErrInvalidFrequency)
		}
		due = next
	}
	return result, nil
}
