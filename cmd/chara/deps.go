package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ersonp/chara/internal/application/handlers"
	"github.com/ersonp/chara/internal/domain/entities"
	"github.com/ersonp/chara/internal/domain/ports"
	"github.com/ersonp/chara/internal/domain/services"
	"github.com/ersonp/chara/internal/infrastructure/config"
	"github.com/ersonp/chara/internal/infrastructure/exporter/chatformat"
	"github.com/ersonp/chara/internal/infrastructure/exporter/jsonfile"
	"github.com/ersonp/chara/internal/infrastructure/parsers"
	"github.com/ersonp/chara/internal/infrastructure/relationaldb/sqlite"
)

// Deps holds high-level dependencies for commands.
type Deps struct {
	BasePath     string
	Config       *config.Config
	Roster       *config.Roster
	Exports      *services.ExportService
	BatchHandler *handlers.BatchHandler
}

// withDeps loads config and builds dependencies, then calls the provided function.
func withDeps(fn func(*Deps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Log.SetupLogging(); err != nil {
		return err
	}

	roster, err := config.LoadRoster(cwd)
	if err != nil {
		return fmt.Errorf("loading roster: %w", err)
	}

	deps := &Deps{
		BasePath:     cwd,
		Config:       cfg,
		Roster:       roster,
		Exports:      services.NewExportService(),
		BatchHandler: handlers.NewBatchHandler(services.NewBatchProcessor(), services.NewRegistry()),
	}

	return fn(deps)
}

// withArchive opens the SQLite archive, ensures its schema and closes it afterwards.
func withArchive(ctx context.Context, cfg config.SQLiteConfig, fn func(*sqlite.Repository) error) error {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating archive directory: %w", err)
		}
	}

	repo, err := sqlite.NewRepository(cfg)
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	return fn(repo)
}

// withLedgerWriter builds the writer for format and calls fn with it.
// output is a file path for json and openai; an empty output picks a default.
func withLedgerWriter(ctx context.Context, d *Deps, format, output, characterName string, fn func(ports.LedgerWriter) error) error {
	switch format {
	case "json":
		if output == "" {
			output = filepath.Join(d.Config.Export.Dir, jsonfile.DefaultFileName(characterName, time.Now()))
		}
		w, err := jsonfile.NewWriter(output)
		if err != nil {
			return err
		}
		return fn(w)
	case "openai":
		if output == "" {
			output = filepath.Join(d.Config.Export.Dir, "transcripts.jsonl")
		}
		w, err := chatformat.NewWriter(output)
		if err != nil {
			return err
		}
		return fn(w)
	case "sqlite":
		cfg := d.Config.Export.SQLite
		if output != "" {
			cfg.Path = output
		}
		return withArchive(ctx, cfg, func(repo *sqlite.Repository) error {
			return fn(repo)
		})
	default:
		return fmt.Errorf("invalid format %q, valid formats: %v", format, validSaveFormats)
	}
}

// describeWriter names the destination of a writer for user output.
func describeWriter(w ports.LedgerWriter) string {
	type pather interface{ Path() string }
	if p, ok := w.(pather); ok {
		return p.Path()
	}
	return fmt.Sprintf("%T", w)
}

// buildPersona creates a character from a configuration record using the same
// defaults and validation as batch creation.
func buildPersona(raw parsers.RawCharacter, opts ...entities.Option) (entities.Persona, []services.BatchError, error) {
	result := services.NewBatchProcessor(opts...).Create([]parsers.RawCharacter{raw})
	if len(result.Characters) == 0 {
		if len(result.Errors) > 0 {
			return nil, result.Errors, fmt.Errorf("creating character: %s", result.Errors[0].Message)
		}
		return nil, nil, fmt.Errorf("creating character %q", raw.Name)
	}
	return result.Characters[0], result.Errors, nil
}
