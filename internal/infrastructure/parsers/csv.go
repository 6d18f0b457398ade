package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSVParser parses configuration records from CSV with a header row.
type CSVParser struct{}

// Parse reads CSV from the reader and returns parsed records.
// Expected columns: name, prompt, model, advanced, role, api_key
func (p *CSVParser) Parse(r io.Reader) ([]RawCharacter, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	colIndex, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, colIndex)
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.TrimSpace(col)] = i
	}

	if _, ok := colIndex["name"]; !ok {
		return nil, fmt.Errorf("missing required column: name")
	}

	return colIndex, nil
}

// readRecords reads all data rows and converts them to RawCharacters.
func (p *CSVParser) readRecords(reader *csv.Reader, colIndex map[string]int) ([]RawCharacter, error) {
	var records []RawCharacter
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		record, err := p.parseRecord(row, colIndex, lineNum)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

// parseRecord converts a CSV row to a RawCharacter.
func (p *CSVParser) parseRecord(row []string, colIndex map[string]int, lineNum int) (RawCharacter, error) {
	record := RawCharacter{
		Name:    getColumn(row, colIndex, "name"),
		Prompt:  getColumn(row, colIndex, "prompt"),
		Model:   getColumn(row, colIndex, "model"),
		Role:    getColumn(row, colIndex, "role"),
		APIKey:  getColumn(row, colIndex, "api_key"),
		LineNum: lineNum,
	}

	advStr := getColumn(row, colIndex, "advanced")
	if advStr != "" {
		adv, err := strconv.ParseBool(advStr)
		if err != nil {
			return RawCharacter{}, fmt.Errorf("line %d: invalid advanced value %q: %w", lineNum, advStr, err)
		}
		record.Advanced = adv
	}

	return record, nil
}

// getColumn safely retrieves a column value from a row.
func getColumn(row []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(row) {
		return row[idx]
	}
	return ""
}
