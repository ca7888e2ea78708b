package interchange

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"budget/internal/core"
)

// EncodeCSV writes the header row and one row per transaction. Non-empty
// notes are always double-quoted with inner quotes doubled; other fields
// are quoted only when they contain a separator, quote or line break.
func EncodeCSV(w io.Writer, txs []core.Transaction) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(Columns, ","))
	bw.WriteByte('\n')

	for _, tx := range txs {
		fields := []string{
			strconv.FormatInt(tx.ID, 10),
			string(tx.Kind),
			tx.Amount.String(),
			quoteIfNeeded(tx.Category),
			formatTimestamp(tx),
			"",
		}
		if tx.Notes != "" {
			fields[5] = quote(tx.Notes)
		}
		bw.WriteString(strings.Join(fields, ","))
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}

// DecodeCSV reads a CSV export. Columns are matched by header name, so
// their order is free; id, type, amount, category and date are required.
func DecodeCSV(r io.Reader) ([]core.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", core.ErrMissingColumns)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", core.ErrMalformedRecord, err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		index[h] = i
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrMissingColumns, strings.Join(missing, ", "))
	}

	field := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var out []core.Transaction
	for i := 0; ; i++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed(i, "%v", err)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}

		var id int64
		if s := strings.TrimSpace(field(row, "id")); s != "" {
			if id, err = strconv.ParseInt(s, 10, 64); err != nil {
				return nil, malformed(i, "id %q", s)
			}
		}
		tx, err := buildTransaction(i, id,
			field(row, "type"),
			field(row, "amount"),
			field(row, "category"),
			field(row, "date"),
			field(row, "notes"))
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}
