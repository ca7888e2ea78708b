// Package interchange reads and writes transaction exports.
//
// Both formats carry the fields id, type, amount, category, date and notes.
// Dates are written as UTC ISO-8601 timestamps with millisecond precision
// (2024-01-31T00:00:00.000Z).
package interchange

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"budget/internal/core"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// TimestampLayout is the date layout used in exports.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Columns is the CSV header, in order.
var Columns = []string{"id", "type", "amount", "category", "date", "notes"}

// requiredColumns must be present in an imported CSV header.
var requiredColumns = []string{"id", "type", "amount", "category", "date"}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	case "":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

// FormatFromFilename guesses the format from a file extension, defaulting to JSON.
func FormatFromFilename(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return FormatCSV
	}
	return FormatJSON
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

func Encode(w io.Writer, f Format, txs []core.Transaction) error {
	switch f {
	case FormatCSV:
		return EncodeCSV(w, txs)
	case FormatJSON:
		return EncodeJSON(w, txs)
	}
	return fmt.Errorf("unsupported format %q", f)
}

// Decode parses and validates a complete export. It fails on the first bad
// record and returns nothing in that case.
func Decode(r io.Reader, f Format) ([]core.Transaction, error) {
	switch f {
	case FormatCSV:
		return DecodeCSV(r)
	case FormatJSON:
		return DecodeJSON(r)
	}
	return nil, fmt.Errorf("unsupported format %q", f)
}

func formatTimestamp(tx core.Transaction) string {
	return tx.Date.UTC().Format(TimestampLayout)
}

func malformed(i int, format string, args ...any) error {
	return fmt.Errorf("%w: record %d: %s", core.ErrMalformedRecord, i+1, fmt.Sprintf(format, args...))
}

// buildTransaction turns raw field values into a validated transaction.
func buildTransaction(i int, id int64, kind, amount, category, date, notes string) (core.Transaction, error) {
	k, err := core.ParseKind(kind)
	if err != nil {
		return core.Transaction{}, malformed(i, "type %q", kind)
	}
	m, err := core.ParseMoney(amount)
	if err != nil {
		return core.Transaction{}, malformed(i, "amount %q", amount)
	}
	when, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, malformed(i, "date %q", date)
	}
	tx := core.Transaction{
		ID:       id,
		Kind:     k,
		Amount:   m,
		Category: strings.TrimSpace(category),
		Date:     when,
		Notes:    notes,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, malformed(i, "%v", err)
	}
	return tx, nil
}
