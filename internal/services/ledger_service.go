package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	applog "fintrack/internal/log"
)

// ErrInvalidInput wraps every parse failure of user supplied fields.
var ErrInvalidInput = errors.New("invalid input")

// TransactionInput is the raw text of one add request.
type TransactionInput struct {
	Amount   string
	Category string
	Date     string
	Kind     string
}

// LedgerService turns user input into stored and persisted transactions.
type LedgerService struct {
	store *ledger.Store
}

func NewLedgerService(store *ledger.Store) *LedgerService {
	return &LedgerService{store: store}
}

// Parse validates in without touching the store.
func Parse(in TransactionInput) (core.Transaction, error) {
	kind, err := core.ParseKind(in.Kind)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: kind %q: %w", ErrInvalidInput, in.Kind, err)
	}
	tx, err := core.NewTransaction(in.Amount, in.Category, in.Date, kind)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return tx, nil
}

// Record adds the parsed transaction and saves the ledger. Invalid input
// leaves the store untouched. A save failure is returned after the record
// has been merged in memory, so a later save can still persist it.
func (s *LedgerService) Record(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	tx, err := Parse(in)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.Add(tx); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	slog.InfoContext(ctx, "Transaction recorded",
		applog.FieldComponent, applog.ComponentLedger,
		applog.FieldOperation, applog.OpCreate,
		applog.FieldAmount, core.FormatAmount(tx.Amount),
		applog.FieldCategory, tx.Category,
		applog.FieldDate, tx.Date.String(),
		applog.FieldKind, tx.Kind.String())

	return tx, s.store.Save(ctx)
}

// Transactions returns expenses followed by incomes.
func (s *LedgerService) Transactions() []core.Transaction {
	return s.store.All()
}
