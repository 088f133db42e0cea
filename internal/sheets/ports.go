package sheets

import (
	"context"

	"github.com/PierreBrethes/life-map-back/internal/core"
)

// Ports for outbound spreadsheet adapters.
type (
	// LedgerMirror appends a copy of a ledger entry to the spreadsheet and
	// returns a row reference.
	LedgerMirror interface {
		AppendEntry(ctx context.Context, e core.LedgerEntry) (rowRef string, err error)
	}
)
