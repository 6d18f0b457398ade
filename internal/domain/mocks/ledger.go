// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"

	"github.com/ersonp/chara/internal/domain/entities"
)

// LedgerWriter is a mock implementation of ports.LedgerWriter.
type LedgerWriter struct {
	Docs []entities.ExportDocument
	Err  error
}

// Write records the document or returns the configured error.
func (m *LedgerWriter) Write(_ context.Context, doc entities.ExportDocument) error {
	if m.Err != nil {
		return m.Err
	}
	m.Docs = append(m.Docs, doc)
	return nil
}
