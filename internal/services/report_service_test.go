package services

import (
	"context"
	"testing"
	"time"

	"budget/internal/cache"
	"budget/internal/core"
	"budget/internal/storage/memory"
)

func seedReportData(t *testing.T, store *memory.Store) {
	t.Helper()
	_, err := store.CreateTransactions(context.Background(), []core.Transaction{
		{Kind: core.Income, Amount: core.Money{Cents: 500000}, Category: "Salary", Date: d(2024, 1, 1)},
		{Kind: core.Expense, Amount: core.Money{Cents: 12000}, Category: "Food", Date: d(2024, 1, 15)},
		{Kind: core.Expense, Amount: core.Money{Cents: 3000}, Category: "Food", Date: d(2024, 2, 3)},
		{Kind: core.Expense, Amount: core.Money{Cents: 90000}, Category: "Rent", Date: d(2024, 7, 1)},
		{Kind: core.Income, Amount: core.Money{Cents: 500000}, Category: "Salary", Date: d(2024, 7, 1)},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestReportService_Summary(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seedReportData(t, store)
	svc := NewReportService(store, nil)

	r, err := svc.Summary(ctx, core.ReportQuery{Period: core.PeriodMonthly})
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if r.Totals.Income.Cents != 1000000 || r.Totals.Expense.Cents != 105000 || r.Totals.Net.Cents != 895000 {
		t.Fatalf("unexpected totals %+v", r.Totals)
	}
	labels := []string{"Jan 2024", "Feb 2024", "Jul 2024"}
	if len(r.Buckets) != len(labels) {
		t.Fatalf("buckets = %+v", r.Buckets)
	}
	for i, l := range labels {
		if r.Buckets[i].Label != l {
			t.Errorf("bucket %d = %q, want %q", i, r.Buckets[i].Label, l)
		}
	}
	if r.Buckets[0].Income.Cents != 500000 || r.Buckets[0].Expense.Cents != 12000 {
		t.Errorf("January bucket = %+v", r.Buckets[0])
	}
	if r.Categories[0].Name != "Rent" || r.Categories[1].Name != "Food" || r.Categories[1].Amount.Cents != 15000 {
		t.Errorf("categories = %+v", r.Categories)
	}

	sem, _ := svc.Summary(ctx, core.ReportQuery{Period: core.PeriodSemester})
	if len(sem.Buckets) != 2 || sem.Buckets[0].Label != "Jan-Jun 2024" || sem.Buckets[1].Label != "Jul-Dec 2024" {
		t.Fatalf("semester buckets = %+v", sem.Buckets)
	}

	ranged, _ := svc.Summary(ctx, core.ReportQuery{Period: core.PeriodDaily, From: d(2024, 1, 10), To: d(2024, 2, 28)})
	if len(ranged.Buckets) != 2 || ranged.Buckets[0].Label != "15 Jan 2024" || ranged.Totals.Income.Cents != 0 {
		t.Fatalf("ranged report = %+v", ranged)
	}
}

func TestReportService_CacheInvalidation(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seedReportData(t, store)
	svc := NewReportService(store, cache.NewLRUCache[core.Report](8, time.Minute))
	txs := NewTransactionService(store, nil, svc)

	q := core.ReportQuery{Period: core.PeriodMonthly}
	before, _ := svc.Summary(ctx, q)

	if _, err := txs.Create(ctx, CreateTransactionInput{Transaction: core.Transaction{
		Kind: core.Expense, Amount: core.Money{Cents: 100}, Category: "Coffee", Date: d(2024, 1, 2),
	}}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	after, _ := svc.Summary(ctx, q)
	if after.Totals.Expense.Cents != before.Totals.Expense.Cents+100 {
		t.Fatalf("stale report after write: %d -> %d", before.Totals.Expense.Cents, after.Totals.Expense.Cents)
	}
}

func TestReportService_EmptyStore(t *testing.T) {
	r, err := NewReportService(memory.New(), nil).Summary(context.Background(), core.ReportQuery{})
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if r.Period != core.PeriodMonthly || r.Buckets == nil || r.Categories == nil || r.Totals.Net.Cents != 0 {
		t.Fatalf("unexpected empty report %+v", r)
	}
}
