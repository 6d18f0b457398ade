// Package sqlite provides a SQLite archive for ledger exports.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/chara/internal/domain/entities"
	"github.com/ersonp/chara/internal/infrastructure/config"
)

// generateUUID returns a new UUID string.
func generateUUID() string {
	return uuid.New().String()
}

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// ExportRecord is one archived export, without its exchanges.
type ExportRecord struct {
	ID                 string
	CharacterName      string
	SystemPrompt       string
	Model              string
	TotalConversations int
	SavedAt            string
	ArchivedAt         time.Time
}

// ArchivedExchange is an exchange together with the export it belongs to.
type ArchivedExchange struct {
	ExportID      string
	CharacterName string
	Seq           int
	Exchange      entities.Exchange
}

// Repository implements ports.LedgerWriter using SQLite. Every Write stores
// an immutable snapshot; nothing is ever updated in place.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Each connection to :memory: is a separate database
	if cfg.Path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- One row per export snapshot
	CREATE TABLE IF NOT EXISTS exports (
		id TEXT PRIMARY KEY,
		character_name TEXT NOT NULL,
		system_prompt TEXT NOT NULL,
		model TEXT NOT NULL,
		total_conversations INTEGER NOT NULL,
		saved_at TEXT NOT NULL,
		archived_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_exports_character ON exports(character_name);

	-- Ledger entries of an export, in ledger order
	CREATE TABLE IF NOT EXISTS exchanges (
		id TEXT PRIMARY KEY,
		export_id TEXT NOT NULL REFERENCES exports(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		timestamp TEXT NOT NULL,
		user_text TEXT NOT NULL,
		assistant_text TEXT NOT NULL,
		model TEXT NOT NULL,
		UNIQUE(export_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_exchanges_export ON exchanges(export_id);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Write archives doc and its exchanges in a single transaction.
func (r *Repository) Write(ctx context.Context, doc entities.ExportDocument) error {
	_, err := r.Archive(ctx, doc)
	return err
}

// Archive stores doc and returns the new export ID.
func (r *Repository) Archive(ctx context.Context, doc entities.ExportDocument) (_ string, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	exportID := generateUUID()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO exports (id, character_name, system_prompt, model, total_conversations, saved_at, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		exportID,
		doc.CharacterName,
		doc.SystemPrompt,
		doc.Model,
		doc.TotalConversations,
		doc.SavedAt,
		timeNow(),
	)
	if err != nil {
		return "", fmt.Errorf("saving export: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO exchanges (id, export_id, seq, timestamp, user_text, assistant_text, model)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("preparing exchange insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range doc.Conversations {
		if _, err = stmt.ExecContext(ctx, generateUUID(), exportID, i, e.Timestamp, e.User, e.Assistant, e.Model); err != nil {
			return "", fmt.Errorf("saving exchange %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("committing export: %w", err)
	}
	return exportID, nil
}

// ListExports lists archived exports, newest first. An empty characterName
// lists every character.
func (r *Repository) ListExports(ctx context.Context, characterName string, limit int) ([]ExportRecord, error) {
	query := `
		SELECT id, character_name, system_prompt, model, total_conversations, saved_at, archived_at
		FROM exports
		WHERE (? = '' OR character_name = ?)
		ORDER BY archived_at DESC, rowid DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, characterName, characterName, limit)
	if err != nil {
		return nil, fmt.Errorf("querying exports: %w", err)
	}
	defer rows.Close()

	result := make([]ExportRecord, 0)
	for rows.Next() {
		var rec ExportRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.CharacterName,
			&rec.SystemPrompt,
			&rec.Model,
			&rec.TotalConversations,
			&rec.SavedAt,
			&rec.ArchivedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning export: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// FindExport loads one export document by ID. Returns nil if absent.
func (r *Repository) FindExport(ctx context.Context, exportID string) (*entities.ExportDocument, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT character_name, system_prompt, model, total_conversations, saved_at
		FROM exports
		WHERE id = ?
	`, exportID)

	var doc entities.ExportDocument
	err := row.Scan(
		&doc.CharacterName,
		&doc.SystemPrompt,
		&doc.Model,
		&doc.TotalConversations,
		&doc.SavedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning export: %w", err)
	}

	doc.Conversations, err = r.FindExchanges(ctx, exportID)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindExchanges returns the exchanges of an export in ledger order.
func (r *Repository) FindExchanges(ctx context.Context, exportID string) ([]entities.Exchange, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT timestamp, user_text, assistant_text, model
		FROM exchanges
		WHERE export_id = ?
		ORDER BY seq ASC
	`, exportID)
	if err != nil {
		return nil, fmt.Errorf("querying exchanges: %w", err)
	}
	defer rows.Close()

	result := make([]entities.Exchange, 0)
	for rows.Next() {
		var e entities.Exchange
		if err := rows.Scan(&e.Timestamp, &e.User, &e.Assistant, &e.Model); err != nil {
			return nil, fmt.Errorf("scanning exchange: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// SearchExchanges finds archived exchanges whose user or assistant text
// contains keyword.
func (r *Repository) SearchExchanges(ctx context.Context, keyword string, limit int) ([]ArchivedExchange, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT x.export_id, e.character_name, x.seq, x.timestamp, x.user_text, x.assistant_text, x.model
		FROM exchanges x
		JOIN exports e ON e.id = x.export_id
		WHERE instr(x.user_text, ?) > 0 OR instr(x.assistant_text, ?) > 0
		ORDER BY e.archived_at ASC, e.rowid ASC, x.seq ASC
		LIMIT ?
	`, keyword, keyword, limit)
	if err != nil {
		return nil, fmt.Errorf("searching exchanges: %w", err)
	}
	defer rows.Close()

	result := make([]ArchivedExchange, 0)
	for rows.Next() {
		var a ArchivedExchange
		if err := rows.Scan(
			&a.ExportID,
			&a.CharacterName,
			&a.Seq,
			&a.Exchange.Timestamp,
			&a.Exchange.User,
			&a.Exchange.Assistant,
			&a.Exchange.Model,
		); err != nil {
			return nil, fmt.Errorf("scanning exchange: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// DeleteExport deletes an export and its exchanges.
func (r *Repository) DeleteExport(ctx context.Context, exportID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM exports WHERE id = ?`, exportID)
	if err != nil {
		return fmt.Errorf("deleting export: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("export not found: %s", exportID)
	}
	return nil
}

// CountExports returns the number of archived exports.
func (r *Repository) CountExports(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exports`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting exports: %w", err)
	}
	return count, nil
}
