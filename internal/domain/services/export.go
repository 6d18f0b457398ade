package services

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/ersonp/chara/internal/domain/entities"
	"github.com/ersonp/chara/internal/domain/ports"
)

// ExportService writes one-shot ledger exports.
type ExportService struct {
	now func() time.Time
}

// NewExportService creates a new ExportService.
func NewExportService() *ExportService {
	return &ExportService{now: time.Now}
}

// WithClock sets the clock used for the saved_at timestamp.
func (s *ExportService) WithClock(now func() time.Time) *ExportService {
	s.now = now
	return s
}

// Document builds the export document for p.
func (s *ExportService) Document(p entities.Persona) entities.ExportDocument {
	return entities.NewExportDocument(p, s.now().Format(entities.TimestampLayout))
}

// Save exports p through w. Failures are logged and reported as false.
func (s *ExportService) Save(ctx context.Context, p entities.Persona, w ports.LedgerWriter) bool {
	doc := s.Document(p)
	if err := w.Write(ctx, doc); err != nil {
		logx.Errorf("export %s: %v", p.Name(), err)
		return false
	}
	logx.Infof("export %s: saved %d conversations", p.Name(), doc.TotalConversations)
	return true
}
