// Package ports defines interfaces for external service communication.
package ports

import (
	"context"

	"github.com/ersonp/chara/internal/domain/entities"
)

// LedgerWriter persists a one-shot export of a character's ledger.
type LedgerWriter interface {
	// Write stores the document. Implementations must not retain it.
	Write(ctx context.Context, doc entities.ExportDocument) error
}
