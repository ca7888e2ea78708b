package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"budget/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "budget.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSQLiteTransactionsCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	created, err := repo.CreateTransactions(ctx, []core.Transaction{
		{Kind: core.Expense, Amount: core.Money{Cents: 1250}, Category: "Food", Date: day(2024, 1, 5), Notes: `said "hi", left`},
		{Kind: core.Income, Amount: core.Money{Cents: 500000}, Category: "Salary", Date: day(2024, 1, 1)},
	})
	if err != nil {
		t.Fatalf("CreateTransactions: %v", err)
	}
	if len(created) != 2 || created[0].ID == 0 || created[1].ID == created[0].ID {
		t.Fatalf("unexpected ids: %+v", created)
	}

	list, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(list) != 2 || list[0].Category != "Food" {
		t.Fatalf("expected newest first, got %+v", list)
	}
	if list[0].Notes != `said "hi", left` || !list[0].Date.Equal(day(2024, 1, 5)) {
		t.Fatalf("round trip lost data: %+v", list[0])
	}

	upd := created[0]
	upd.Amount = core.Money{Cents: 999}
	if err := repo.UpdateTransaction(ctx, upd); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	got, err := repo.GetTransaction(ctx, upd.ID)
	if err != nil || got.Amount.Cents != 999 {
		t.Fatalf("GetTransaction = %+v, %v", got, err)
	}

	if err := repo.DeleteTransaction(ctx, upd.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if _, err := repo.GetTransaction(ctx, upd.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteTransaction(ctx, upd.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSQLiteReplaceTransactionsIsAtomic(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.CreateTransactions(ctx, []core.Transaction{
		{Kind: core.Expense, Amount: core.Money{Cents: 100}, Category: "Old", Date: day(2023, 5, 1)},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Duplicate primary keys make the second insert fail; the old row must survive.
	bad := []core.Transaction{
		{ID: 7, Kind: core.Income, Amount: core.Money{Cents: 1}, Category: "A", Date: day(2024, 1, 1)},
		{ID: 7, Kind: core.Income, Amount: core.Money{Cents: 2}, Category: "B", Date: day(2024, 1, 2)},
	}
	if err := repo.ReplaceTransactions(ctx, bad); err == nil {
		t.Fatalf("expected error for duplicate ids")
	}
	list, _ := repo.ListTransactions(ctx)
	if len(list) != 1 || list[0].Category != "Old" {
		t.Fatalf("store changed after failed replace: %+v", list)
	}

	good := []core.Transaction{
		{ID: 42, Kind: core.Income, Amount: core.Money{Cents: 1}, Category: "A", Date: day(2024, 1, 1)},
	}
	if err := repo.ReplaceTransactions(ctx, good); err != nil {
		t.Fatalf("ReplaceTransactions: %v", err)
	}
	got, err := repo.GetTransaction(ctx, 42)
	if err != nil || got.Category != "A" {
		t.Fatalf("imported id not kept: %+v, %v", got, err)
	}
}

func TestSQLitePostRecurring(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	def, err := repo.CreateRecurring(ctx, core.RecurringDefinition{
		Name:      "Salary",
		Amount:    core.Money{Cents: 100000},
		StartDate: day(2024, 1, 1),
		Frequency: core.Monthly,
	})
	if err != nil {
		t.Fatalf("CreateRecurring: %v", err)
	}

	postings := []core.Transaction{
		{Kind: core.Income, Amount: def.Amount, Category: def.Name, Date: day(2024, 1, 1)},
		{Kind: core.Income, Amount: def.Amount, Category: def.Name, Date: day(2024, 2, 1)},
	}
	created, err := repo.PostRecurring(ctx, def.ID, time.Time{}, postings, day(2024, 2, 1))
	if err != nil {
		t.Fatalf("PostRecurring: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(created))
	}

	stored, err := repo.GetRecurring(ctx, def.ID)
	if err != nil || !stored.LastPosted.Equal(day(2024, 2, 1)) {
		t.Fatalf("last posted not updated: %+v, %v", stored, err)
	}

	// Stale expectation: nothing is written.
	if _, err := repo.PostRecurring(ctx, def.ID, time.Time{}, postings[:1], day(2024, 1, 1)); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	list, _ := repo.ListTransactions(ctx)
	if len(list) != 2 {
		t.Fatalf("conflicting post wrote transactions: %d", len(list))
	}

	if _, err := repo.PostRecurring(ctx, 999, time.Time{}, nil, day(2024, 1, 1)); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteSettings(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	s, err := repo.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s != core.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", s)
	}

	want := core.Settings{Currency: "EUR", DarkMode: false, PINHash: "hash"}
	if err := repo.SaveSettings(ctx, want); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	got, err := repo.LoadSettings(ctx)
	if err != nil || got != want {
		t.Fatalf("LoadSettings = %+v, %v", got, err)
	}
}
