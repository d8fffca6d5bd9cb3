// Package ledger owns the in-memory set of transactions and its persistence.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// Store keeps expenses and incomes in insertion order. No two records in
// the store share a (date, category, kind) triple.
type Store struct {
	mu       sync.Mutex
	expenses []core.Transaction
	incomes  []core.Transaction
	revision int64

	persister Persister
	notifier  SaveNotifier
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier publishes a notification after every successful save.
func WithNotifier(n SaveNotifier) Option {
	return func(s *Store) {
		s.notifier = n
	}
}

func New(p Persister, opts ...Option) *Store {
	s := &Store{persister: p}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add merges tx into an existing record with the same key by summing the
// amounts, or appends it to the collection for its kind.
func (s *Store) Add(tx core.Transaction) error {
	if !tx.Kind.Valid() {
		return fmt.Errorf("add %q: %w", tx.Kind, core.ErrUnknownKind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.merge(tx)
	s.revision++
	return nil
}

func (s *Store) merge(tx core.Transaction) {
	key := tx.Key()
	for _, coll := range [][]core.Transaction{s.expenses, s.incomes} {
		for i := range coll {
			if coll[i].Key() == key {
				coll[i].Amount = coll[i].Amount.Add(tx.Amount)
				return
			}
		}
	}
	switch tx.Kind {
	case core.Expense:
		s.expenses = append(s.expenses, tx)
	case core.Income:
		s.incomes = append(s.incomes, tx)
	}
}

// Save writes expenses then incomes through the persister, replacing
// whatever was stored before.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.all()
	if err := s.persister.Save(ctx, all); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	slog.InfoContext(ctx, "Ledger saved",
		applog.FieldComponent, applog.ComponentLedger,
		applog.FieldRecords, len(all),
		applog.FieldRevision, s.revision)

	if s.notifier != nil {
		if err := s.notifier.PublishLedgerSaved(ctx, s.revision, len(all)); err != nil {
			slog.ErrorContext(ctx, "Failed to publish ledger saved notification",
				applog.FieldComponent, applog.ComponentLedger,
				applog.FieldError, err)
		}
	}
	return nil
}

// Load replaces the in-memory collections with the persisted records.
// Duplicate keys in the persisted data are merged.
func (s *Store) Load(ctx context.Context) error {
	txs, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	for _, tx := range txs {
		if !tx.Kind.Valid() {
			return fmt.Errorf("load ledger: %q: %w", tx.Kind, core.ErrUnknownKind)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses, s.incomes = nil, nil
	for _, tx := range txs {
		s.merge(tx)
	}
	s.revision++
	slog.InfoContext(ctx, "Ledger loaded",
		applog.FieldComponent, applog.ComponentLedger,
		applog.FieldRecords, len(txs),
		applog.FieldExpenses, len(s.expenses),
		applog.FieldIncomes, len(s.incomes))
	return nil
}

// Expenses returns a copy of the expense collection.
func (s *Store) Expenses() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.expenses...)
}

// Incomes returns a copy of the income collection.
func (s *Store) Incomes() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.incomes...)
}

// All returns a copy of every record, expenses first.
func (s *Store) All() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.all()
}

// Snapshot returns copies of both collections and the revision they
// belong to, taken atomically.
func (s *Store) Snapshot() (expenses, incomes []core.Transaction, revision int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.expenses...),
		append([]core.Transaction(nil), s.incomes...),
		s.revision
}

// Revision changes whenever the store content may have changed.
func (s *Store) Revision() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

func (s *Store) all() []core.Transaction {
	out := make([]core.Transaction, 0, len(s.expenses)+len(s.incomes))
	out = append(out, s.expenses...)
	return append(out, s.incomes...)
}
