package handlers

import (
	"fmt"
	"os"

	"github.com/ersonp/chara/internal/domain/entities"
	"github.com/ersonp/chara/internal/domain/services"
	"github.com/ersonp/chara/internal/infrastructure/parsers"
)

// BatchHandler creates characters from configuration files and registers them.
type BatchHandler struct {
	processor *services.BatchProcessor
	registry  *services.Registry
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(processor *services.BatchProcessor, registry *services.Registry) *BatchHandler {
	return &BatchHandler{
		processor: processor,
		registry:  registry,
	}
}

// LoadResult contains the result of loading a configuration file.
type LoadResult struct {
	Registered []string
	Duplicates []string
	Errors     []services.BatchError
}

// HandleFile parses filePath and registers every character it yields.
// format may be empty or "auto" to pick the parser by file extension.
func (h *BatchHandler) HandleFile(filePath, format string) (*LoadResult, error) {
	var parser parsers.Parser
	if format == "" || format == "auto" {
		parser = parsers.ForFile(filePath)
	} else {
		parser = parsers.ForFormat(format)
	}

	if parser == nil {
		return nil, fmt.Errorf("unsupported format for file: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	records, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}

	return h.HandleRecords(records), nil
}

// HandleRecords creates and registers characters from parsed records.
// Names already in the registry are reported as duplicates.
func (h *BatchHandler) HandleRecords(records []parsers.RawCharacter) *LoadResult {
	created := h.processor.Create(records)

	result := &LoadResult{Errors: created.Errors}
	for _, p := range created.Characters {
		if _, err := h.registry.Add(p); err != nil {
			result.Duplicates = append(result.Duplicates, p.Name())
			continue
		}
		result.Registered = append(result.Registered, p.Name())
	}
	return result
}

// HandleSpeak sends message to the named characters, or to every registered
// character when names is empty. Unknown names yield failed results.
func (h *BatchHandler) HandleSpeak(message string, names ...string) []services.SpeakResult {
	if len(names) == 0 {
		for _, entry := range h.registry.List() {
			names = append(names, entry.Name)
		}
	}

	results := make([]services.SpeakResult, 0, len(names))
	for _, name := range names {
		p := h.registry.Get(name)
		if p == nil {
			results = append(results, services.SpeakResult{
				Name: name,
				Err:  fmt.Errorf("%w: %q", services.ErrNotFound, name),
			})
			continue
		}
		results = append(results, h.processor.Speak([]entities.Persona{p}, message)...)
	}
	return results
}

// HandleList returns the registered characters.
func (h *BatchHandler) HandleList() []services.RegistryEntry {
	return h.registry.List()
}

// HandleRemove unregisters the character called name.
func (h *BatchHandler) HandleRemove(name string) (string, error) {
	return h.registry.Remove(name)
}

// Registry returns the underlying registry.
func (h *BatchHandler) Registry() *services.Registry {
	return h.registry
}
