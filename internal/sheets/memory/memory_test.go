package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"budget/internal/core"
)

func TestMemoryStoreAppend(t *testing.T) {
	s := New()
	tx := core.Transaction{
		ID:       1,
		Kind:     core.Income,
		Amount:   core.Money{Cents: 250000},
		Category: "Salary",
		Date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Notes:    "Recurring Monthly income",
	}

	ref, err := s.AppendTransaction(context.Background(), tx)
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	rows := s.Rows()
	if len(rows) != 1 || rows[0][1] != "2024-01-01" || rows[0][4] != "2500.00" {
		t.Fatalf("unexpected rows %v", rows)
	}

	if _, err := s.AppendTransaction(context.Background(), core.Transaction{}); err == nil {
		t.Fatal("expected validation error")
	}

	boom := errors.New("quota exceeded")
	s.FailWith(boom)
	if _, err := s.AppendTransaction(context.Background(), tx); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if len(s.Rows()) != 1 {
		t.Fatal("failed append stored a row")
	}
}
