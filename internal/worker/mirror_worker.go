package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"budget/internal/amqp"
	"budget/internal/cache"
	applog "budget/internal/log"
	"budget/internal/sheets"
)

// Consumer delivers transaction events until ctx is done. *amqp.Client implements it.
type Consumer interface {
	ConsumeTransactions(ctx context.Context, handler amqp.Handler) error
}

// MirrorWorker appends every announced transaction to a spreadsheet.
type MirrorWorker struct {
	sheets sheets.TransactionAppender
	// seen remembers recently mirrored message ids so redeliveries are skipped.
	seen   cache.Cache[string]
	logger *applog.StructuredLogger
}

func NewMirrorWorker(appender sheets.TransactionAppender, dedupeSize int, dedupeTTL time.Duration) *MirrorWorker {
	if dedupeSize <= 0 {
		dedupeSize = 1024
	}
	if dedupeTTL <= 0 {
		dedupeTTL = 24 * time.Hour
	}
	return &MirrorWorker{
		sheets: appender,
		seen:   cache.NewLRUCache[string](dedupeSize, dedupeTTL),
		logger: applog.NewStructuredLogger(applog.New(applog.Config{
			Handler:   slog.Default().Handler(),
			Component: applog.ComponentWorker,
		})),
	}
}

// Run consumes events from c until ctx is cancelled.
func (w *MirrorWorker) Run(ctx context.Context, c Consumer) error {
	slog.InfoContext(ctx, "Mirror worker started")
	err := c.ConsumeTransactions(ctx, w.HandleTransactionPosted)
	slog.InfoContext(ctx, "Mirror worker stopped")
	return err
}

// HandleTransactionPosted mirrors a single event. A returned error makes the
// broker redeliver the message.
func (w *MirrorWorker) HandleTransactionPosted(ctx context.Context, msg *amqp.TransactionPostedMessage) error {
	if _, ok := w.seen.Get(msg.MessageID); ok {
		slog.DebugContext(ctx, "Skipping already mirrored message", "message_id", msg.MessageID)
		return nil
	}

	tx := msg.Transaction
	fields := func() applog.LogFields {
		return applog.NewFields().
			WithTransaction(tx.ID, string(tx.Kind), tx.Category, tx.Amount.Cents).
			WithComponent(applog.ComponentWorker)
	}

	ref, err := w.sheets.AppendTransaction(ctx, tx)
	if err != nil {
		f := fields()
		f["message_id"] = msg.MessageID
		f[applog.FieldSource] = msg.Source
		w.logger.LogError(ctx, "Failed to mirror transaction", err, applog.ComponentWorker, "mirror", f)
		return fmt.Errorf("append to sheets: %w", err)
	}
	w.seen.Set(msg.MessageID, ref)

	f := fields()
	f["message_id"] = msg.MessageID
	f[applog.FieldSource] = msg.Source
	f[applog.FieldSheetsRef] = ref
	slog.InfoContext(ctx, "Mirrored transaction", f.ToSlice()...)
	return nil
}
