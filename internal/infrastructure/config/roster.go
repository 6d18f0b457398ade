package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ersonp/chara/internal/infrastructure/parsers"
)

// Roster holds saved character configuration records (read/write).
type Roster struct {
	Characters []parsers.RawCharacter `yaml:"characters,omitempty"`
}

// LoadRoster loads the roster from the .chara directory.
func LoadRoster(basePath string) (*Roster, error) {
	data, err := os.ReadFile(RosterFilePath(basePath))
	if os.IsNotExist(err) {
		// Return empty roster if file doesn't exist
		return &Roster{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading roster file: %w", err)
	}

	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing roster file: %w", err)
	}

	for i := range r.Characters {
		r.Characters[i].LineNum = i + 1
	}

	return &r, nil
}

// Save writes the roster to the roster file.
// The file may hold credentials, so it is written owner-only.
func (r *Roster) Save(basePath string) error {
	configDir := filepath.Join(basePath, DefaultConfigDir)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling roster: %w", err)
	}

	if err := os.WriteFile(RosterFilePath(basePath), data, 0600); err != nil {
		return fmt.Errorf("writing roster file: %w", err)
	}

	return nil
}

// Put adds a record, replacing any record with the same name.
func (r *Roster) Put(record parsers.RawCharacter) {
	record.LineNum = 0
	for i := range r.Characters {
		if r.Characters[i].Name == record.Name {
			r.Characters[i] = record
			return
		}
	}
	r.Characters = append(r.Characters, record)
}

// Remove deletes the record called name and reports whether it existed.
func (r *Roster) Remove(name string) bool {
	for i := range r.Characters {
		if r.Characters[i].Name == name {
			r.Characters = append(r.Characters[:i], r.Characters[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the record called name.
func (r *Roster) Get(name string) (*parsers.RawCharacter, error) {
	if len(r.Characters) == 0 {
		return nil, errors.New("no characters in roster")
	}

	for i := range r.Characters {
		if r.Characters[i].Name == name {
			record := r.Characters[i]
			return &record, nil
		}
	}

	var b strings.Builder
	for i, n := range r.Names() {
		if i > 0 {
			b.WriteString(", ")
		}
		if i >= 5 {
			b.WriteString("...")
			break
		}
		b.WriteString(n)
	}
	return nil, fmt.Errorf("character %q not in roster (available: %s)", name, b.String())
}

// Names returns the record names, sorted.
func (r *Roster) Names() []string {
	names := make([]string, 0, len(r.Characters))
	for i := range r.Characters {
		names = append(names, r.Characters[i].Name)
	}
	sort.Strings(names)
	return names
}

// RosterExists checks if a roster file exists in the given path.
func RosterExists(basePath string) bool {
	_, err := os.Stat(RosterFilePath(basePath))
	return err == nil
}
