// Package storage defines the record store used by the services and its
// SQLite implementation.
package storage

import (
	"context"
	"time"

	"budget/internal/core"
)

// TransactionRepository stores Transaction records.
type TransactionRepository interface {
	// CreateTransactions inserts every transaction in one store transaction
	// and returns them with their assigned ids. Nothing is written on error.
	CreateTransactions(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error)
	// ListTransactions returns all transactions, newest first.
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, tx core.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error
	ClearTransactions(ctx context.Context) error
	// ReplaceTransactions atomically clears the store and loads txs keeping
	// their ids. A zero id gets a fresh one.
	ReplaceTransactions(ctx context.Context, txs []core.Transaction) error
}

// RecurringRepository stores RecurringDefinition records.
type RecurringRepository interface {
	CreateRecurring(ctx context.Context, def core.RecurringDefinition) (core.RecurringDefinition, error)
	ListRecurring(ctx context.Context) ([]core.RecurringDefinition, error)
	GetRecurring(ctx context.Context, id int64) (core.RecurringDefinition, error)
	UpdateRecurring(ctx context.Context, def core.RecurringDefinition) error
	DeleteRecurring(ctx context.Context, id int64) error
	// PostRecurring inserts postings and moves the definition's last posted
	// date to newLastPosted in a single store transaction. It fails with
	// core.ErrConflict when the stored last posted date no longer equals
	// expectedLastPosted (zero time meaning never posted).
	PostRecurring(ctx context.Context, id int64, expectedLastPosted time.Time, postings []core.Transaction, newLastPosted time.Time) ([]core.Transaction, error)
}

// SettingsRepository persists the single settings record.
type SettingsRepository interface {
	// LoadSettings returns core.DefaultSettings when nothing was saved yet.
	LoadSettings(ctx context.Context) (core.Settings, error)
	SaveSettings(ctx context.Context, s core.Settings) error
}

// Repository is the complete record store.
type Repository interface {
	TransactionRepository
	RecurringRepository
	SettingsRepository
	Ping(ctx context.Context) error
	Close() error
}
