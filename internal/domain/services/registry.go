// Package services contains the domain services that operate on characters.
package services

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ersonp/chara/internal/domain/entities"
)

// Registry errors.
var (
	ErrDuplicateName = errors.New("character name already exists")
	ErrNotFound      = errors.New("character not found")
)

// RegistryEntry is a lightweight projection of a registered character.
type RegistryEntry struct {
	Name          string        `json:"name"`
	Kind          entities.Kind `json:"type"`
	Conversations int           `json:"conversations"`
	Model         string        `json:"model"`
}

// Registry keeps characters keyed by unique name.
type Registry struct {
	characters map[string]entities.Persona
	mu         sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		characters: make(map[string]entities.Persona),
	}
}

// Add registers p under its name.
func (r *Registry) Add(p entities.Persona) (string, error) {
	if entities.IsNil(p) {
		return "", fmt.Errorf("%w: cannot register a nil character", entities.ErrTypeMismatch)
	}
	name := p.Name()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.characters[name]; ok {
		return "", fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	r.characters[name] = p
	return fmt.Sprintf("character %s added", name), nil
}

// Remove unregisters the character called name.
func (r *Registry) Remove(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.characters[name]; !ok {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(r.characters, name)
	return fmt.Sprintf("character %s removed", name), nil
}

// Get returns the character called name, or nil if not found.
func (r *Registry) Get(name string) entities.Persona {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.characters[name]
}

// Len returns the number of registered characters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.characters)
}

// List returns a projection of every character, sorted by name.
func (r *Registry) List() []RegistryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]RegistryEntry, 0, len(r.characters))
	for _, p := range r.characters {
		result = append(result, RegistryEntry{
			Name:          p.Name(),
			Kind:          p.Kind(),
			Conversations: p.Len(),
			Model:         p.Model(),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}
