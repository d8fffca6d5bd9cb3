package core

import (
	"fmt"
	"strings"
)

// Header is the fixed first row of every persisted ledger.
var Header = []string{"amount", "category", "date", "type"}

// Record returns the persisted row for t, in Header column order.
func (t Transaction) Record() []string {
	return []string{FormatAmount(t.Amount), t.Category, t.Date.String(), t.Kind.String()}
}

// ParseRecord is the inverse of Transaction.Record.
func ParseRecord(row []string) (Transaction, error) {
	if len(row) != len(Header) {
		return Transaction{}, fmt.Errorf("record has %d fields, want %d", len(row), len(Header))
	}
	kind, err := ParseKind(row[3])
	if err != nil {
		return Transaction{}, fmt.Errorf("type %q: %w", row[3], err)
	}
	t, err := NewTransaction(row[0], row[1], row[2], kind)
	if err != nil {
		return Transaction{}, fmt.Errorf("record %v: %w", row, err)
	}
	return t, nil
}

// IsHeader reports whether row is the Header row.
func IsHeader(row []string) bool {
	if len(row) != len(Header) {
		return false
	}
	for i, h := range Header {
		if strings.TrimSpace(strings.TrimPrefix(row[i], "\ufeff")) != h {
			return false
		}
	}
	return true
}
