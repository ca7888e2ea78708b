package core

import (
	"fmt"
	"strings"
	"time"
)

// Report granularities.
const (
	PeriodDaily    Period = "daily"
	PeriodMonthly  Period = "monthly"
	PeriodSemester Period = "semester"
)

type Period string

func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PeriodMonthly, nil
	}
	switch p := Period(s); p {
	case PeriodDaily, PeriodMonthly, PeriodSemester:
		return p, nil
	}
	return "", fmt.Errorf("unknown report period %q", s)
}

// BucketStart returns the first instant of the period containing t.
func (p Period) BucketStart(t time.Time) time.Time {
	t = t.UTC()
	switch p {
	case PeriodDaily:
		return StartOfDay(t)
	case PeriodSemester:
		m := time.January
		if t.Month() >= time.July {
			m = time.July
		}
		return time.Date(t.Year(), m, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// Label renders a bucket start the way reports display it.
func (p Period) Label(start time.Time) string {
	switch p {
	case PeriodDaily:
		return start.Format("02 Jan 2006")
	case PeriodSemester:
		if start.Month() < time.July {
			return fmt.Sprintf("Jan-Jun %d", start.Year())
		}
		return fmt.Sprintf("Jul-Dec %d", start.Year())
	default:
		return start.Format("Jan 2006")
	}
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Kind   Kind   `json:"type"`
	Amount Money  `json:"amount"`
}

type Totals struct {
	Income  Money `json:"income"`
	Expense Money `json:"expense"`
	Net     Money `json:"net"`
}

// PeriodBucket holds the income and expense sums of one report period.
type PeriodBucket struct {
	Label   string    `json:"label"`
	Start   time.Time `json:"start"`
	Income  Money     `json:"income"`
	Expense Money     `json:"expense"`
}

type ReportQuery struct {
	Period Period
	From   time.Time // inclusive, zero = unbounded
	To     time.Time // inclusive, zero = unbounded
}

// Key identifies the query in caches.
func (q ReportQuery) Key() string {
	return fmt.Sprintf("%s|%d|%d", q.Period, q.From.UnixNano(), q.To.UnixNano())
}

// Contains reports whether t falls inside the query range.
func (q ReportQuery) Contains(t time.Time) bool {
	if !q.From.IsZero() && t.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && t.After(q.To) {
		return false
	}
	return true
}

type Report struct {
	Period     Period           `json:"period"`
	Totals     Totals           `json:"totals"`
	Buckets    []PeriodBucket   `json:"buckets"`
	Categories []CategoryAmount `json:"categories"`
}
