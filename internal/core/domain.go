package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// MaxNotesLength bounds Transaction.Notes in bytes.
const MaxNotesLength = 500

// MaxInstallments bounds the number of lines a single plan may produce.
const MaxInstallments = 1000

// Recurrence frequencies for recurring definitions.
const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// Split frequencies for installment plans.
const (
	SplitNone     SplitFrequency = "none"
	SplitDaily    SplitFrequency = "daily"
	SplitMonthly  SplitFrequency = "monthly"
	SplitSemester SplitFrequency = "semester"
	SplitCustom   SplitFrequency = "custom"
)

type (
	Kind           string
	Frequency      string
	SplitFrequency string

	Transaction struct {
		ID       int64     `json:"id"`
		Kind     Kind      `json:"type"`
		Amount   Money     `json:"amount"`
		Category string    `json:"category"`
		Date     time.Time `json:"date"`
		Notes    string    `json:"notes"`
	}

	// RecurringDefinition describes an income posted once per period.
	// A zero LastPosted means the definition was never posted.
	RecurringDefinition struct {
		ID         int64     `json:"id"`
		Name       string    `json:"name"`
		Amount     Money     `json:"amount"`
		StartDate  time.Time `json:"start_date"`
		Frequency  Frequency `json:"frequency"`
		LastPosted time.Time `json:"last_posted"`
	}

	InstallmentPlanRequest struct {
		TotalAmount Money
		Count       int
		StartDate   time.Time
		Frequency   SplitFrequency
		CustomEnd   time.Time // only read for SplitCustom
	}

	InstallmentLine struct {
		Amount  Money     `json:"amount"`
		DueDate time.Time `json:"due_date"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidKind        = errors.New("invalid transaction type")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptyName          = errors.New("empty name")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidFrequency   = errors.New("invalid frequency")
	ErrInvalidPlanRequest = errors.New("invalid installment plan request")
	ErrNotesTooLong       = errors.New("notes too long")
	ErrNameTooLong        = errors.New("name too long")
	ErrMissingColumns     = errors.New("missing required columns")
	ErrMalformedRecord    = errors.New("malformed record")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflicting update")
)

func (k Kind) IsValid() bool {
	return k == Income || k == Expense
}

// ParseKind accepts "income" or "expense" in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

func (f Frequency) IsValid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// Label returns the capitalized frequency name used in posting notes.
func (f Frequency) Label() string {
	if f == "" {
		return ""
	}
	s := string(f)
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseFrequency accepts the recurrence names in any case ("Monthly", "monthly").
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
	}
	return f, nil
}

func (f SplitFrequency) IsValid() bool {
	switch f {
	case SplitNone, SplitDaily, SplitMonthly, SplitSemester, SplitCustom:
		return true
	}
	return false
}

// ParseSplitFrequency maps an empty string to SplitNone.
func ParseSplitFrequency(s string) (SplitFrequency, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SplitNone, nil
	}
	f := SplitFrequency(s)
	if !f.IsValid() {
		return "", fmt.Errorf("%w: unknown split frequency %q", ErrInvalidPlanRequest, s)
	}
	return f, nil
}

// TimestampPrecision is the finest date resolution kept on stored records,
// matching the millisecond timestamps of the export formats.
const TimestampPrecision = time.Millisecond

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Normalize trims the category, folds CR and CRLF line breaks in the notes
// to LF and truncates the date to TimestampPrecision.
func (t Transaction) Normalize() Transaction {
	t.Category = strings.TrimSpace(t.Category)
	t.Notes = lineBreaks.Replace(t.Notes)
	t.Date = t.Date.Truncate(TimestampPrecision)
	return t
}

func (t Transaction) Validate() error {
	if !t.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, t.Kind)
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(t.Notes) > MaxNotesLength {
		return fmt.Errorf("%w: max %d characters", ErrNotesTooLong, MaxNotesLength)
	}
	return nil
}

func (d RecurringDefinition) Validate() error {
	if len(strings.TrimSpace(d.Name)) == 0 {
		return ErrEmptyName
	}
	if len(d.Name) > 200 {
		return fmt.Errorf("%w: max 200 characters", ErrNameTooLong)
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if d.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidDate)
	}
	if !d.Frequency.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, d.Frequency)
	}
	return nil
}

// Posted reports whether the definition has been posted at least once.
func (d RecurringDefinition) Posted() bool {
	return !d.LastPosted.IsZero()
}
