package mocks

import "context"

// ArchiveManager is a mock implementation of ports.ArchiveManager.
type ArchiveManager struct {
	EnsureErr error

	// Call tracking
	EnsureSchemaCallCount int
}

// EnsureSchema returns the configured error.
func (m *ArchiveManager) EnsureSchema(ctx context.Context) error {
	m.EnsureSchemaCallCount++
	return m.EnsureErr
}
