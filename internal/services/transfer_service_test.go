package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"budget/internal/core"
	"budget/internal/interchange"
	"budget/internal/storage/memory"
)

func TestTransferService_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := memory.New()
	seedReportData(t, src)
	src.CreateTransactions(ctx, []core.Transaction{{
		Kind: core.Expense, Amount: core.Money{Cents: 1999}, Category: "Books", Date: d(2024, 3, 3),
		Notes: `"Go in Action", second hand, cover torn`,
	}})

	for _, f := range []interchange.Format{interchange.FormatCSV, interchange.FormatJSON} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			n, err := NewTransferService(src, nil).Export(ctx, &buf, f)
			if err != nil || n != 6 {
				t.Fatalf("Export = %d, %v", n, err)
			}

			dst := memory.New()
			inv := &countingInvalidator{}
			svc := NewTransferService(dst, NewTransactionService(dst, nil, inv))
			if n, err := svc.Import(ctx, &buf, f); err != nil || n != 6 {
				t.Fatalf("Import = %d, %v", n, err)
			}
			if inv.n != 1 {
				t.Fatalf("import did not invalidate caches")
			}

			want, _ := src.ListTransactions(ctx)
			got, _ := dst.ListTransactions(ctx)
			if len(got) != len(want) {
				t.Fatalf("got %d transactions, want %d", len(got), len(want))
			}
			for i := range want {
				g, w := got[i], want[i]
				if g.ID != w.ID || g.Kind != w.Kind || g.Amount != w.Amount || g.Category != w.Category || !g.Date.Equal(w.Date) || g.Notes != w.Notes {
					t.Errorf("transaction %d: got %+v want %+v", i, g, w)
				}
			}
		})
	}
}

func TestTransferService_RoundTripAfterNormalize(t *testing.T) {
	ctx := context.Background()
	src := memory.New()
	created, err := NewTransactionService(src, nil).Create(ctx, CreateTransactionInput{
		Transaction: core.Transaction{
			Kind:     core.Expense,
			Amount:   core.Money{Cents: 4200},
			Category: "Repairs",
			Date:     time.Date(2024, 5, 6, 7, 8, 9, 123456789, time.UTC),
			Notes:    "line one\r\nline two\rline three",
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	stored := created[0]
	if stored.Notes != "line one\nline two\nline three" {
		t.Fatalf("notes = %q", stored.Notes)
	}
	if stored.Date.Nanosecond() != 123000000 {
		t.Fatalf("date kept sub-millisecond precision: %s", stored.Date)
	}

	for _, f := range []interchange.Format{interchange.FormatCSV, interchange.FormatJSON} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			if _, err := NewTransferService(src, nil).Export(ctx, &buf, f); err != nil {
				t.Fatalf("Export: %v", err)
			}
			dst := memory.New()
			if _, err := NewTransferService(dst, nil).Import(ctx, &buf, f); err != nil {
				t.Fatalf("Import: %v", err)
			}
			got, _ := dst.ListTransactions(ctx)
			if len(got) != 1 || got[0].Notes != stored.Notes || !got[0].Date.Equal(stored.Date) {
				t.Fatalf("round trip changed the transaction: got %+v want %+v", got, stored)
			}
		})
	}
}

func TestTransferService_FailedImportKeepsData(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seedReportData(t, store)
	svc := NewTransferService(store, nil)

	tests := []struct {
		name string
		body string
		want error
	}{
		{"missing columns", "id,type,amount\n1,income,5\n", core.ErrMissingColumns},
		{"bad record after good ones", "id,type,amount,category,date\n1,income,5,a,2024-01-01\n2,income,x,a,2024-01-01\n", core.ErrMalformedRecord},
		{"duplicate ids", "id,type,amount,category,date\n1,income,5,a,2024-01-01\n1,income,6,a,2024-01-02\n", core.ErrMalformedRecord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Import(ctx, strings.NewReader(tt.body), interchange.FormatCSV)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if list, _ := store.ListTransactions(ctx); len(list) != 5 {
				t.Fatalf("store changed after failed import: %d transactions", len(list))
			}
		})
	}
}
