package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"budget/internal/core"
)

// PlanInstallments splits req.TotalAmount into req.Count dated lines.
//
// Every line but the last carries TotalAmount/Count rounded half away from
// zero to the cent; the last line absorbs the remainder, so the amounts always
// sum to TotalAmount exactly. When rounding up would leave the last line at or
// below zero (0.15 over 10 lines) the share is rounded down instead. Totals
// smaller than one cent per line are rejected, as are counts above
// core.MaxInstallments.
//
// Due dates by frequency:
//   - SplitNone: a single line at StartDate, Count is ignored.
//   - SplitDaily: StartDate + i days.
//   - SplitMonthly: StartDate + i months, clamped to month end.
//   - SplitSemester: StartDate + 6i months, clamped to month end.
//   - SplitCustom: Count points evenly spaced from StartDate to CustomEnd, both included.
func PlanInstallments(req core.InstallmentPlanRequest) ([]core.InstallmentLine, error) {
	if err := req.TotalAmount.Validate(); err != nil {
		return nil, fmt.Errorf("%w: total amount must be positive", core.ErrInvalidPlanRequest)
	}
	if req.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: start date is required", core.ErrInvalidPlanRequest)
	}

	count := req.Count
	if req.Frequency == core.SplitNone {
		count = 1
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: count must be at least 1", core.ErrInvalidPlanRequest)
	}
	if count > core.MaxInstallments {
		return nil, fmt.Errorf("%w: at most %d installments", core.ErrInvalidPlanRequest, core.MaxInstallments)
	}

	dueDate, err := dueDateFunc(req, count)
	if err != nil {
		return nil, err
	}

	share := req.TotalAmount.Decimal().Div(decimal.NewFromInt(int64(count)))
	per, err := core.MoneyFromDecimal(share)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidPlanRequest, err)
	}
	if per.Cents*int64(count-1) >= req.TotalAmount.Cents {
		per, _ = core.MoneyFromDecimal(share.RoundFloor(2))
	}
	if per.Cents <= 0 {
		return nil, fmt.Errorf("%w: %s cannot be split into %d installments", core.ErrInvalidPlanRequest, req.TotalAmount, count)
	}
	last := core.Money{Cents: req.TotalAmount.Cents - per.Cents*int64(count-1)}

	lines := make([]core.InstallmentLine, count)
	for i := range lines {
		amount := per
		if i == count-1 {
			amount = last
		}
		lines[i] = core.InstallmentLine{Amount: amount, DueDate: dueDate(i)}
	}
	return lines, nil
}

func dueDateFunc(req core.InstallmentPlanRequest, count int) (func(i int) time.Time, error) {
	start := req.StartDate
	switch req.Frequency {
	case core.SplitNone:
		return func(int) time.Time { return start }, nil
	case core.SplitDaily:
		return func(i int) time.Time { return core.AddDays(start, i) }, nil
	case core.SplitMonthly:
		return func(i int) time.Time { return core.AddMonths(start, i) }, nil
	case core.SplitSemester:
		return func(i int) time.Time { return core.AddMonths(start, 6*i) }, nil
	case core.SplitCustom:
		end := req.CustomEnd
		if count < 2 {
			return nil, fmt.Errorf("%w: custom split needs at least 2 installments", core.ErrInvalidPlanRequest)
		}
		if end.IsZero() || !end.After(start) {
			return nil, fmt.Errorf("%w: custom end must be after start", core.ErrInvalidPlanRequest)
		}
		interval := end.Sub(start) / time.Duration(count-1)
		return func(i int) time.Time {
			if i == count-1 {
				return end
			}
			return start.Add(interval * time.Duration(i))
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown split frequency %q", core.ErrInvalidPlanRequest, req.Frequency)
	}
}
