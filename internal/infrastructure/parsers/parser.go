// Package parsers provides parsers for character configuration records.
package parsers

import (
	"io"
	"path/filepath"
	"strings"
)

// RawCharacter is a character configuration record before validation.
type RawCharacter struct {
	Name     string `json:"name" yaml:"name"`
	Prompt   string `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Model    string `json:"model,omitempty" yaml:"model,omitempty"`
	Advanced bool   `json:"advanced,omitempty" yaml:"advanced,omitempty"`
	Role     string `json:"role,omitempty" yaml:"role,omitempty"`
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	LineNum  int    `json:"-" yaml:"-"` // Record position in source file (set by parser)
}

// Parser defines the interface for parsing configuration records.
type Parser interface {
	Parse(r io.Reader) ([]RawCharacter, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "csv", "yaml".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		return &CSVParser{}
	case "yaml", "yml":
		return &YAMLParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return nil
	}
	return ForFormat(ext)
}
