// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for recurrence periods.
// Each frequency has its own stepper that advances a date by one period.
package services

import (
	"fmt"
	"time"

	"budget/internal/core"
)

// PeriodStepper is the strategy interface for a recurrence period.
type PeriodStepper interface {
	// Next returns t moved forward by one period.
	Next(t time.Time) time.Time
}

type DailyStepper struct{}

func (DailyStepper) Next(t time.Time) time.Time { return core.AddDays(t, 1) }

type WeeklyStepper struct{}

func (WeeklyStepper) Next(t time.Time) time.Time { return core.AddDays(t, 7) }

// MonthlyStepper clamps to the last day of shorter months (Jan 31 -> Feb 29).
// The clamped day carries forward: Feb 29 -> Mar 29.
type MonthlyStepper struct{}

func (MonthlyStepper) Next(t time.Time) time.Time { return core.AddMonths(t, 1) }

// YearlyStepper moves Feb 29 to Feb 28 in non-leap years.
type YearlyStepper struct{}

func (YearlyStepper) Next(t time.Time) time.Time { return core.AddYears(t, 1) }

// periodSteppers maps frequencies to their steppers.
var periodSteppers = map[core.Frequency]PeriodStepper{
	core.Daily:   DailyStepper{},
	core.Weekly:  WeeklyStepper{},
	core.Monthly: MonthlyStepper{},
	core.Yearly:  YearlyStepper{},
}

// GetPeriodStepper returns the stepper for a frequency, or an error wrapping
// core.ErrInvalidFrequency.
func GetPeriodStepper(frequency core.Frequency) (PeriodStepper, error) {
	stepper, ok := periodSteppers[frequency]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidFrequency, frequency)
	}
	return stepper, nil
}

// RegisterPeriodStepper installs a stepper for a new frequency. Not safe for
// concurrent use with GetPeriodStepper; call it during init.
func RegisterPeriodStepper(frequency core.Frequency, stepper PeriodStepper) {
	periodSteppers[frequency] = stepper
}
