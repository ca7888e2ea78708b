// Package memory is an in-process implementation of storage.Repository.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"budget/internal/core"
	"budget/internal/storage"
)

type Store struct {
	mu        sync.Mutex
	txs       map[int64]core.Transaction
	defs      map[int64]core.RecurringDefinition
	settings  *core.Settings
	nextTx    int64
	nextDef   int64
	closed    bool
	failNextN int
}

var _ storage.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		txs:     map[int64]core.Transaction{},
		defs:    map[int64]core.RecurringDefinition{},
		nextTx:  1,
		nextDef: 1,
	}
}

// FailNext makes the next n mutating calls fail with core.ErrStoreUnavailable.
func (s *Store) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNextN = n
}

// check must be called with mu held.
func (s *Store) check() error {
	if s.closed {
		return fmt.Errorf("%w: store closed", core.ErrStoreUnavailable)
	}
	if s.failNextN > 0 {
		s.failNextN--
		return fmt.Errorf("%w: injected failure", core.ErrStoreUnavailable)
	}
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("%w: store closed", core.ErrStoreUnavailable)
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Store) insertLocked(txs []core.Transaction, keepIDs bool) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	for i, t := range txs {
		if !keepIDs || t.ID <= 0 {
			t.ID = s.nextTx
		}
		if t.ID >= s.nextTx {
			s.nextTx = t.ID + 1
		}
		s.txs[t.ID] = t
		out[i] = t
	}
	return out
}

func (s *Store) CreateTransactions(_ context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.insertLocked(txs, false), nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("%w: store closed", core.ErrStoreUnavailable)
	}
	out := make([]core.Transaction, 0, len(s.txs))
	for _, t := range s.txs {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	if _, ok := s.txs[t.ID]; !ok {
		return fmt.Errorf("transaction %d: %w", t.ID, core.ErrNotFound)
	}
	s.txs[t.ID] = t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	if _, ok := s.txs[id]; !ok {
		return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	delete(s.txs, id)
	return nil
}

func (s *Store) ClearTransactions(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	s.txs = map[int64]core.Transaction{}
	return nil
}

func (s *Store) ReplaceTransactions(_ context.Context, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	seen := make(map[int64]struct{}, len(txs))
	for _, t := range txs {
		if t.ID <= 0 {
			continue
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("replace transactions: duplicate id %d", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	s.txs = map[int64]core.Transaction{}
	s.nextTx = 1
	// Explicit ids first so fresh ones never collide with them.
	for _, t := range txs {
		if t.ID > 0 && t.ID >= s.nextTx {
			s.nextTx = t.ID + 1
		}
	}
	s.insertLocked(txs, true)
	return nil
}

func (s *Store) CreateRecurring(_ context.Context, d core.RecurringDefinition) (core.RecurringDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return core.RecurringDefinition{}, err
	}
	d.ID = s.nextDef
	s.nextDef++
	s.defs[d.ID] = d
	return d, nil
}

func (s *Store) ListRecurring(_ context.Context) ([]core.RecurringDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("%w: store closed", core.ErrStoreUnavailable)
	}
	out := make([]core.RecurringDefinition, 0, len(s.defs))
	for _, d := range s.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetRecurring(_ context.Context, id int64) (core.RecurringDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.defs[id]
	if !ok {
		return core.RecurringDefinition{}, fmt.Errorf("recurring definition %d: %w", id, core.ErrNotFound)
	}
	return d, nil
}

func (s *Store) UpdateRecurring(_ context.Context, d core.RecurringDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	if _, ok := s.defs[d.ID]; !ok {
		return fmt.Errorf("recurring definition %d: %w", d.ID, core.ErrNotFound)
	}
	s.defs[d.ID] = d
	return nil
}

func (s *Store) DeleteRecurring(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	if _, ok := s.defs[id]; !ok {
		return fmt.Errorf("recurring definition %d: %w", id, core.ErrNotFound)
	}
	delete(s.defs, id)
	return nil
}

func (s *Store) PostRecurring(_ context.Context, id int64, expectedLastPosted time.Time, postings []core.Transaction, newLastPosted time.Time) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	d, ok := s.defs[id]
	if !ok {
		return nil, fmt.Errorf("recurring definition %d: %w", id, core.ErrNotFound)
	}
	if !d.LastPosted.Equal(expectedLastPosted) {
		return nil, fmt.Errorf("recurring definition %d: %w", id, core.ErrConflict)
	}
	created := s.insertLocked(postings, false)
	d.LastPosted = newLastPosted
	s.defs[id] = d
	return created, nil
}

func (s *Store) LoadSettings(_ context.Context) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		return core.DefaultSettings(), nil
	}
	return *s.settings, nil
}

func (s *Store) SaveSettings(_ context.Context, st core.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	s.settings = &st
	return nil
}
