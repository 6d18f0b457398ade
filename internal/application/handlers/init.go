// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/chara/internal/domain/ports"
	"github.com/ersonp/chara/internal/infrastructure/config"
)

// InitHandler handles workspace initialization.
type InitHandler struct {
	archive ports.ArchiveManager
}

// NewInitHandler creates a new init handler. archive may be nil when no
// SQLite archive is wanted.
func NewInitHandler(archive ports.ArchiveManager) *InitHandler {
	return &InitHandler{
		archive: archive,
	}
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath    string
	CharacterName string
	ArchiveReady  bool
}

// Handle writes the default config and prepares the archive.
func (h *InitHandler) Handle(ctx context.Context, basePath string) (*InitResult, error) {
	if config.Exists(basePath) {
		return nil, fmt.Errorf("chara already initialized in %s", basePath)
	}

	if err := config.WriteDefault(basePath); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if h.archive != nil {
		if err := h.archive.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("creating archive schema: %w", err)
		}
	}

	return &InitResult{
		ConfigPath:    config.ConfigFilePath(basePath),
		CharacterName: cfg.Character.Name,
		ArchiveReady:  h.archive != nil,
	}, nil
}
