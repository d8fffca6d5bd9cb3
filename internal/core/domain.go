package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the only accepted textual layout for transaction dates.
const DateLayout = "2006-01-02"

const (
	Expense Kind = "expense"
	Income  Kind = "income"
)

type (
	// Kind tells expenses and incomes apart. The zero value is not a valid kind.
	Kind string

	Date struct {
		time.Time
	}

	Transaction struct {
		Amount   decimal.Decimal
		Category string
		Date     Date
		Kind     Kind
	}

	// Key identifies a record for the merge-on-insert rule.
	Key struct {
		Date     string
		Category string
		Kind     Kind
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrUnknownKind   = errors.New("unknown transaction kind")
)

// Legacy labels written by the original desktop tracker.
var legacyKinds = map[string]Kind{
	"Расход": Expense,
	"Доход":  Income,
}

// ParseKind accepts the persisted literals and the legacy localized labels.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	switch Kind(strings.ToLower(s)) {
	case Expense:
		return Expense, nil
	case Income:
		return Income, nil
	}
	if k, ok := legacyKinds[s]; ok {
		return k, nil
	}
	return "", ErrUnknownKind
}

// Valid reports whether k is one of the two variants.
func (k Kind) Valid() bool {
	return k == Expense || k == Income
}

func (k Kind) String() string {
	return string(k)
}

// ParseDate parses a YYYY-MM-DD string into a UTC calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// InMonth reports whether d falls in the calendar month of ref.
func (d Date) InMonth(ref time.Time) bool {
	y, m, _ := d.Date()
	ry, rm, _ := ref.Date()
	return y == ry && m == rm
}

// NewTransaction builds a transaction from raw form input. Nothing is
// returned unless amount, date and kind all parse.
func NewTransaction(amount, category, date string, kind Kind) (Transaction, error) {
	amt, err := ParseAmount(amount)
	if err != nil {
		return Transaction{}, err
	}
	d, err := ParseDate(date)
	if err != nil {
		return Transaction{}, err
	}
	if !kind.Valid() {
		return Transaction{}, ErrUnknownKind
	}
	return Transaction{
		Amount:   amt,
		Category: category,
		Date:     d,
		Kind:     kind,
	}, nil
}

func (t Transaction) Key() Key {
	return Key{Date: t.Date.String(), Category: t.Category, Kind: t.Kind}
}
