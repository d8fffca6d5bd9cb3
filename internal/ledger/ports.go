package ledger

import (
	"context"

	"fintrack/internal/core"
)

// Ports for outbound adapters.
type (
	// Persister stores the complete ledger. Save always replaces prior content.
	Persister interface {
		Save(ctx context.Context, txs []core.Transaction) error
		// Load returns the persisted records in saved order. A ledger that
		// was never saved yields no records and no error.
		Load(ctx context.Context) ([]core.Transaction, error)
	}

	// SaveNotifier is told about every successful save.
	SaveNotifier interface {
		PublishLedgerSaved(ctx context.Context, revision int64, records int) error
	}
)
