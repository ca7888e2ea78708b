package interchange

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"budget/internal/core"
)

func sample() []core.Transaction {
	return []core.Transaction{
		{ID: 1, Kind: core.Expense, Amount: core.Money{Cents: 1250}, Category: "Food", Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Notes: `lunch with "Sam", Alex`},
		{ID: 2, Kind: core.Income, Amount: core.Money{Cents: 500000}, Category: "Salary", Date: time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)},
		{ID: 3, Kind: core.Expense, Amount: core.Money{Cents: 1}, Category: "Fees, bank", Date: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), Notes: "line one\nline two"},
		{ID: 4, Kind: core.Expense, Amount: core.Money{Cents: 3333}, Category: "Phone", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Notes: `""`},
	}
}

func assertSameTransactions(t *testing.T, got, want []core.Transaction) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d transactions, want %d", len(got), len(want))
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.ID != w.ID || g.Kind != w.Kind || g.Amount != w.Amount || g.Category != w.Category || g.Notes != w.Notes || !g.Date.Equal(w.Date) {
			t.Errorf("transaction %d:\n got  %+v\n want %+v", i, g, w)
		}
	}
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, sample()); err != nil {
		t.Fatalf("EncodeCSV: %v", err)
	}
	got, err := DecodeCSV(&buf)
	if err != nil {
		t.Fatalf("DecodeCSV: %v", err)
	}
	assertSameTransactions(t, got, sample())
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, sample()); err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	got, err := DecodeJSON(&buf)
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	assertSameTransactions(t, got, sample())
}

func TestEncodeCSVLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, sample()[:2]); err != nil {
		t.Fatalf("EncodeCSV: %v", err)
	}
	want := "id,type,amount,category,date,notes\n" +
		`1,expense,12.50,Food,2024-01-05T00:00:00.000Z,"lunch with ""Sam"", Alex"` + "\n" +
		"2,income,5000.00,Salary,2024-01-01T09:30:00.000Z,\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestEncodeJSONFields(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, sample()[1:2]); err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	for _, frag := range []string{`"id": 2`, `"type": "income"`, `"amount": 5000.00`, `"category": "Salary"`, `"date": "2024-01-01T09:30:00.000Z"`, `"notes": ""`} {
		if !strings.Contains(buf.String(), frag) {
			t.Errorf("json output missing %s:\n%s", frag, buf.String())
		}
	}
}

func TestDecodeCSV(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
		wantN   int
	}{
		{
			name:  "columns in any order, float amount, bare date",
			in:    "date,amount,type,category,id\n2024-01-01,12.5,expense,Food,\n",
			wantN: 1,
		},
		{
			name:  "byte order mark and blank lines",
			in:    "\ufeffid,type,amount,category,date,notes\n\n1,income,10,Gift,2024-01-01T00:00:00.000Z,\n",
			wantN: 1,
		},
		{
			name:    "missing date column",
			in:      "id,type,amount,category,notes\n1,income,10,Gift,\n",
			wantErr: core.ErrMissingColumns,
		},
		{
			name:    "empty file",
			in:      "",
			wantErr: core.ErrMissingColumns,
		},
		{
			name:    "bad amount",
			in:      "id,type,amount,category,date\n1,income,ten,Gift,2024-01-01\n",
			wantErr: core.ErrMalformedRecord,
		},
		{
			name:    "negative amount",
			in:      "id,type,amount,category,date\n1,income,-5,Gift,2024-01-01\n",
			wantErr: core.ErrMalformedRecord,
		},
		{
			name:    "unknown type",
			in:      "id,type,amount,category,date\n1,transfer,5,Gift,2024-01-01\n",
			wantErr: core.ErrMalformedRecord,
		},
		{
			name:    "bad date",
			in:      "id,type,amount,category,date\n1,income,5,Gift,yesterday\n",
			wantErr: core.ErrMalformedRecord,
		},
		{
			name:    "unterminated quote",
			in:      "id,type,amount,category,date,notes\n1,income,5,Gift,2024-01-01,\"oops\n",
			wantErr: core.ErrMalformedRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeCSV(strings.NewReader(tt.in))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if got != nil {
					t.Fatalf("expected no transactions on error, got %d", len(got))
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeCSV: %v", err)
			}
			if len(got) != tt.wantN {
				t.Fatalf("got %d transactions, want %d", len(got), tt.wantN)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	got, err := DecodeJSON(strings.NewReader(`[{"id": "7", "type": "Income", "amount": "1250.5", "category": "Gift", "date": "2024-01-01T10:00:00.000Z"}]`))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if got[0].ID != 7 || got[0].Kind != core.Income || got[0].Amount.Cents != 125050 {
		t.Fatalf("unexpected transaction %+v", got[0])
	}

	if _, err := DecodeJSON(strings.NewReader(`{"id": 1}`)); !errors.Is(err, core.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord for non-array, got %v", err)
	}
	if _, err := DecodeJSON(strings.NewReader(`[{"id": 1, "type": "income", "amount": 5}]`)); !errors.Is(err, core.ErrMissingColumns) {
		t.Fatalf("expected ErrMissingColumns, got %v", err)
	}
	if _, err := DecodeJSON(strings.NewReader(`[{"id": 1.5, "type": "income", "amount": 5, "category": "a", "date": "2024-01-01"}]`)); !errors.Is(err, core.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord for fractional id, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("CSV"); err != nil || f != FormatCSV {
		t.Fatalf("ParseFormat(CSV) = %q, %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatJSON {
		t.Fatalf("ParseFormat('') = %q, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatal("expected error for xml")
	}
	if FormatFromFilename("backup.CSV") != FormatCSV || FormatFromFilename("backup.json") != FormatJSON {
		t.Fatal("FormatFromFilename mismatch")
	}
}
