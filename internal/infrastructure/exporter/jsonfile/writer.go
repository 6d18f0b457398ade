// Package jsonfile writes ledger exports as indented JSON documents.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ersonp/chara/internal/domain/entities"
	"github.com/ersonp/chara/internal/infrastructure/config"
)

// Writer implements ports.LedgerWriter by writing one JSON file per export.
type Writer struct {
	path string
}

// NewWriter creates a Writer that writes to path, truncating any existing file.
func NewWriter(path string) (*Writer, error) {
	if path == "" {
		return nil, errors.New("export path is required")
	}
	return &Writer{path: path}, nil
}

// Path returns the output file path.
func (w *Writer) Path() string {
	return w.path
}

// Write encodes doc into the output file.
func (w *Writer) Write(ctx context.Context, doc entities.ExportDocument) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}

	f, err := os.OpenFile(w.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing file: %w", cerr)
		}
	}()

	if err := Encode(f, doc); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}

// Encode writes doc to w as indented JSON. Non-ASCII text is kept verbatim.
func Encode(w io.Writer, doc entities.ExportDocument) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(doc)
}

// Read decodes an export document previously written by Write.
func Read(path string) (entities.ExportDocument, error) {
	var doc entities.ExportDocument

	f, err := os.Open(path)
	if err != nil {
		return doc, fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return doc, fmt.Errorf("parsing export: %w", err)
	}
	if doc.TotalConversations == 0 {
		doc.TotalConversations = len(doc.Conversations)
	}
	// the model is not serialized; recover it from the latest exchange
	if doc.Model == "" && len(doc.Conversations) > 0 {
		doc.Model = doc.Conversations[len(doc.Conversations)-1].Model
	}
	return doc, nil
}

// DefaultFileName returns conversation_<name>_<YYYYMMDD>.json.
func DefaultFileName(name string, t time.Time) string {
	return fmt.Sprintf("conversation_%s_%s.json", config.SanitizeFileName(name), t.Format("20060102"))
}
