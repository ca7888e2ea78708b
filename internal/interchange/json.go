package interchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"budget/internal/core"
)

type jsonRecord struct {
	ID       int64      `json:"id"`
	Type     core.Kind  `json:"type"`
	Amount   core.Money `json:"amount"`
	Category string     `json:"category"`
	Date     string     `json:"date"`
	Notes    string     `json:"notes"`
}

// rawRecord keeps scalar fields undecoded so numbers and strings are both accepted.
type rawRecord struct {
	ID       json.RawMessage `json:"id"`
	Type     *string         `json:"type"`
	Amount   json.RawMessage `json:"amount"`
	Category *string         `json:"category"`
	Date     *string         `json:"date"`
	Notes    *string         `json:"notes"`
}

// EncodeJSON writes txs as an indented JSON array.
func EncodeJSON(w io.Writer, txs []core.Transaction) error {
	records := make([]jsonRecord, len(txs))
	for i, tx := range txs {
		records[i] = jsonRecord{
			ID:       tx.ID,
			Type:     tx.Kind,
			Amount:   tx.Amount,
			Category: tx.Category,
			Date:     formatTimestamp(tx),
			Notes:    tx.Notes,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// DecodeJSON reads a JSON array of transactions.
func DecodeJSON(r io.Reader) ([]core.Transaction, error) {
	var raws []rawRecord
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array of transactions: %v", core.ErrMalformedRecord, err)
	}

	out := make([]core.Transaction, 0, len(raws))
	for i, raw := range raws {
		if raw.Type == nil || raw.Category == nil || raw.Date == nil || len(raw.Amount) == 0 {
			return nil, fmt.Errorf("%w: record %d needs type, amount, category and date", core.ErrMissingColumns, i+1)
		}
		id, err := parseJSONID(raw.ID)
		if err != nil {
			return nil, malformed(i, "id %s", raw.ID)
		}
		notes := ""
		if raw.Notes != nil {
			notes = *raw.Notes
		}
		tx, err := buildTransaction(i, id, *raw.Type, unquote(raw.Amount), *raw.Category, *raw.Date, notes)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func unquote(b json.RawMessage) string {
	return strings.Trim(string(bytes.TrimSpace(b)), `"`)
}

func parseJSONID(b json.RawMessage) (int64, error) {
	s := unquote(b)
	if s == "" || s == "null" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
