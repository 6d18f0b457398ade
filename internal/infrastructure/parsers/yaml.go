package parsers

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLParser parses configuration records from a YAML sequence.
type YAMLParser struct{}

// Parse reads YAML from the reader and returns parsed records.
func (p *YAMLParser) Parse(r io.Reader) ([]RawCharacter, error) {
	var records []RawCharacter

	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&records); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	for i := range records {
		records[i].LineNum = i + 1
	}

	return records, nil
}
