package services

import (
	"errors"
	"testing"
	"time"

	"budget/internal/core"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestPeriodStepper_Next(t *testing.T) {
	tests := []struct {
		name      string
		frequency core.Frequency
		from      time.Time
		want      time.Time
	}{
		{"daily across leap day", core.Daily, d(2024, 2, 28), d(2024, 2, 29)},
		{"daily into March", core.Daily, d(2024, 2, 29), d(2024, 3, 1)},
		{"weekly", core.Weekly, d(2024, 1, 29), d(2024, 2, 5)},
		{"monthly - plain", core.Monthly, d(2024, 1, 10), d(2024, 2, 10)},
		{"monthly - 31st clamps in February", core.Monthly, d(2024, 1, 31), d(2024, 2, 29)},
		{"monthly - clamped day carries forward", core.Monthly, d(2024, 2, 29), d(2024, 3, 29)},
		{"monthly - 31st in April", core.Monthly, d(2024, 3, 31), d(2024, 4, 30)},
		{"monthly - across year end", core.Monthly, d(2024, 12, 31), d(2025, 1, 31)},
		{"yearly - leap day on non-leap year", core.Yearly, d(2024, 2, 29), d(2025, 2, 28)},
		{"yearly - plain", core.Yearly, d(2025, 6, 1), d(2026, 6, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stepper, err := GetPeriodStepper(tt.frequency)
			if err != nil {
				t.Fatalf("GetPeriodStepper(%s): %v", tt.frequency, err)
			}
			if got := stepper.Next(tt.from); !got.Equal(tt.want) {
				t.Errorf("Next(%s) = %s, want %s", tt.from.Format(core.DateLayout), got.Format(core.DateLayout), tt.want.Format(core.DateLayout))
			}
		})
	}
}

func TestGetPeriodStepper_Unknown(t *testing.T) {
	if _, err := GetPeriodStepper("fortnightly"); !errors.Is(err, core.ErrInvalidFrequency) {
		t.Fatalf("expected ErrInvalidFrequency, got %v", err)
	}
}

type fortnightlyStepper struct{}

func (fortnightlyStepper) Next(t time.Time) time.Time { return core.AddDays(t, 14) }

func TestRegisterPeriodStepper(t *testing.T) {
	const fortnightly core.Frequency = "fortnightly"
	RegisterPeriodStepper(fortnightly, fortnightlyStepper{})
	t.Cleanup(func() { delete(periodSteppers, fortnightly) })

	def := core.RecurringDefinition{
		ID:        1,
		Name:      "Allowance",
		Amount:    core.Money{Cents: 1000},
		StartDate: d(2024, 1, 1),
		Frequency: fortnightly,
	}
	res, err := CatchUp(def, d(2024, 1, 31))
	if err != nil {
		t.Fatalf("CatchUp: %v", err)
	}
	if len(res.Postings) != 3 || !res.LastPosted.Equal(d(2024, 1, 29)) {
		t.Fatalf("unexpected result: %d postings, last %s", len(res.Postings), res.LastPosted)
	}
}
