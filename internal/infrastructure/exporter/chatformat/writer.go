// Package chatformat writes ledger exports as OpenAI chat-completion
// transcripts, one JSON line per export.
package chatformat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sashabaranov/go-openai"

	"github.com/ersonp/chara/internal/domain/entities"
)

// Record is one transcript line.
type Record struct {
	Messages []openai.ChatCompletionMessage `json:"messages"`
}

// Writer implements ports.LedgerWriter. Exports are appended to a JSONL file,
// so several characters can share one transcript file.
type Writer struct {
	path string
}

// NewWriter creates a Writer appending to path.
func NewWriter(path string) (*Writer, error) {
	if path == "" {
		return nil, errors.New("transcript path is required")
	}
	return &Writer{path: path}, nil
}

// Path returns the output file path.
func (w *Writer) Path() string {
	return w.path
}

// Write appends doc as a single transcript line.
func (w *Writer) Write(ctx context.Context, doc entities.ExportDocument) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating transcript directory: %w", err)
		}
	}

	f, err := os.OpenFile(w.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing file: %w", cerr)
		}
	}()

	if err := Encode(f, doc); err != nil {
		return fmt.Errorf("encoding transcript: %w", err)
	}
	return nil
}

// Encode writes doc to w as one transcript line.
func Encode(w io.Writer, doc entities.ExportDocument) error {
	return json.NewEncoder(w).Encode(Record{Messages: ToMessages(doc)})
}

// ToMessages converts an export into chat messages: the system prompt first,
// then one user and one assistant message per exchange.
func ToMessages(doc entities.ExportDocument) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, 1+2*len(doc.Conversations))
	if doc.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: doc.SystemPrompt,
		})
	}

	for _, e := range doc.Conversations {
		messages = append(messages,
			openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: e.User,
			},
			openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: e.Assistant,
			},
		)
	}
	return messages
}
