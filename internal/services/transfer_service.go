package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"budget/internal/core"
	"budget/internal/interchange"
	"budget/internal/storage"
)

// TransferService exports and imports the whole transaction store.
type TransferService struct {
	repo         storage.TransactionRepository
	transactions *TransactionService
}

func NewTransferService(repo storage.TransactionRepository, transactions *TransactionService) *TransferService {
	return &TransferService{repo: repo, transactions: transactions}
}

// Export writes every transaction to w and returns how many were written.
func (s *TransferService) Export(ctx context.Context, w io.Writer, f interchange.Format) (int, error) {
	txs, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}
	if err := interchange.Encode(w, f, txs); err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "Transactions exported", "count", len(txs), "format", f)
	return len(txs), nil
}

// Import replaces all transactions with the content of r. The payload is
// parsed and validated in full first; the store is only touched when every
// record is good, and then in a single atomic replace.
func (s *TransferService) Import(ctx context.Context, r io.Reader, f interchange.Format) (int, error) {
	txs, err := interchange.Decode(r, f)
	if err != nil {
		return 0, fmt.Errorf("import %s: %w", f, err)
	}

	seen := make(map[int64]struct{}, len(txs))
	for i, tx := range txs {
		txs[i] = tx.Normalize()
		if tx.ID == 0 {
			continue
		}
		if _, dup := seen[tx.ID]; dup {
			return 0, fmt.Errorf("import %s: %w: record %d repeats id %d", f, core.ErrMalformedRecord, i+1, tx.ID)
		}
		seen[tx.ID] = struct{}{}
	}

	if err := s.repo.ReplaceTransactions(ctx, txs); err != nil {
		return 0, fmt.Errorf("import %s: %w", f, err)
	}
	if s.transactions != nil {
		s.transactions.invalidate()
	}

	slog.InfoContext(ctx, "Transactions imported", "count", len(txs), "format", f)
	return len(txs), nil
}
