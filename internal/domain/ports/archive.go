package ports

import "context"

// ArchiveManager handles archive storage lifecycle operations.
// This is separate from LedgerWriter because file writers have no schema.
type ArchiveManager interface {
	// EnsureSchema creates the archive tables if they don't exist.
	EnsureSchema(ctx context.Context) error
}
