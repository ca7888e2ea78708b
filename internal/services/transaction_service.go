package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/storage"
)

// EventPublisher announces stored transactions. *amqp.Client implements it.
type EventPublisher interface {
	PublishTransactionPosted(ctx context.Context, tx core.Transaction, source string) error
}

// Invalidator is notified whenever stored transactions change.
type Invalidator interface {
	Invalidate()
}

// CreateTransactionInput is a transaction to record, optionally split into installments.
type CreateTransactionInput struct {
	Transaction  core.Transaction
	Split        core.SplitFrequency
	Installments int
	CustomEnd    time.Time
}

// TransactionService orchestrates transaction writes across the store and the event bus.
type TransactionService struct {
	repo         storage.TransactionRepository
	publisher    EventPublisher
	invalidators []Invalidator
}

func NewTransactionService(repo storage.TransactionRepository, publisher EventPublisher, invalidators ...Invalidator) *TransactionService {
	return &TransactionService{
		repo:         repo,
		publisher:    publisher,
		invalidators: invalidators,
	}
}

// Create validates and stores in. With a split frequency other than none the
// amount is planned into installments and every line is stored in one write.
func (s *TransactionService) Create(ctx context.Context, in CreateTransactionInput) ([]core.Transaction, error) {
	base := in.Transaction.Normalize()
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("validate transaction: %w", err)
	}

	split := in.Split
	if split == "" {
		split = core.SplitNone
	}

	txs := []core.Transaction{base}
	source := amqp.SourceManual
	if split != core.SplitNone {
		lines, err := PlanInstallments(core.InstallmentPlanRequest{
			TotalAmount: base.Amount,
			Count:       in.Installments,
			StartDate:   base.Date,
			Frequency:   split,
			CustomEnd:   in.CustomEnd,
		})
		if err != nil {
			return nil, err
		}
		txs = installmentTransactions(base, lines)
		for _, tx := range txs {
			if err := tx.Validate(); err != nil {
				return nil, fmt.Errorf("validate installment: %w", err)
			}
		}
		source = amqp.SourceInstallment
	}

	created, err := s.repo.CreateTransactions(ctx, txs)
	if err != nil {
		return nil, fmt.Errorf("save transactions: %w", err)
	}

	slog.InfoContext(ctx, "Transactions recorded",
		"count", len(created),
		"kind", base.Kind,
		"category", base.Category,
		"amount_cents", base.Amount.Cents,
		"split", split)

	s.Announce(ctx, created, source)
	return created, nil
}

func installmentTransactions(base core.Transaction, lines []core.InstallmentLine) []core.Transaction {
	n := len(lines)
	txs := make([]core.Transaction, n)
	for i, l := range lines {
		tx := base
		tx.Amount = l.Amount
		tx.Date = l.DueDate
		tx.Notes = installmentNote(base.Notes, i+1, n)
		txs[i] = tx
	}
	return txs
}

func installmentNote(notes string, i, n int) string {
	if notes = strings.TrimSpace(notes); notes != "" {
		return fmt.Sprintf("%s (Installment %d/%d)", notes, i, n)
	}
	return fmt.Sprintf("Installment %d/%d", i, n)
}

func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *TransactionService) Get(ctx context.Context, id int64) (core.Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *TransactionService) Update(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx = tx.Normalize()
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}
	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction updated", "id", tx.ID, "amount_cents", tx.Amount.Cents)
	s.invalidate()
	return tx, nil
}

func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	s.invalidate()
	return nil
}

// Announce publishes txs and invalidates dependent caches. Publish failures
// are logged; the transactions are already stored.
func (s *TransactionService) Announce(ctx context.Context, txs []core.Transaction, source string) {
	s.invalidate()
	if s.publisher == nil || len(txs) == 0 {
		return
	}
	for _, tx := range txs {
		if err := s.publisher.PublishTransactionPosted(ctx, tx, source); err != nil {
			slog.ErrorContext(ctx, "Failed to publish transaction event",
				"id", tx.ID,
				"source", source,
				"error", err)
			if errors.Is(err, amqp.ErrCircuitOpen) {
				return
			}
		}
	}
}

func (s *TransactionService) invalidate() {
	for _, inv := range s.invalidators {
		inv.Invalidate()
	}
}
