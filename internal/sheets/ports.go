package sheets

import (
	"context"

	"bilancio/internal/core"
)

// Ports for outbound ledger adapters.
type (
	LedgerWriter interface {
		Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}

	// LedgerRemover clears a previously exported transaction row.
	LedgerRemover interface {
		Remove(ctx context.Context, txID string) error
	}
)
