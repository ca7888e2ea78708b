package memory

import (
	"context"
	"fmt"
	"sync"

	"budget/internal/core"
	"budget/internal/sheets"
)

// Store is an in-memory sheet used when no spreadsheet is configured.
type Store struct {
	mu   sync.Mutex
	rows [][]any
	err  error
}

var _ sheets.TransactionAppender = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// FailWith makes every following append return err; nil clears it.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// AppendTransaction stores the row and returns a synthetic row reference.
func (s *Store) AppendTransaction(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.rows = append(s.rows, sheets.Row(tx))
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of the appended rows.
func (s *Store) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]any(nil), s.rows...)
}
