package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/chara/internal/domain/entities"
	"github.com/ersonp/chara/internal/infrastructure/parsers"
)

func testDocument() entities.ExportDocument {
	return entities.ExportDocument{
		CharacterName:      "范西蒙",
		SystemPrompt:       "乐于助人",
		TotalConversations: 2,
		SavedAt:            "2026-10-18T10:00:00+08:00",
		Conversations: []entities.Exchange{
			{Timestamp: "2026-10-18T09:00:00+08:00", User: "你好", Assistant: "嗨！很高兴见到你", Model: "gpt-3.5-turbo"},
			{Timestamp: "2026-10-18T09:01:00+08:00", User: "a, \"b\"", Assistant: "x|y", Model: "gpt-3.5-turbo"},
		},
	}
}

func TestFormatDocument_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatDocument(&buf, testDocument(), "json"))

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "范西蒙", parsed["character_name"])
	assert.Equal(t, float64(2), parsed["total_conversations"])
}

func TestFormatCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatCSV(&buf, testDocument()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	// Check header
	assert.Equal(t, "timestamp,user,assistant,model", lines[0])
	assert.Contains(t, lines[1], "你好")
	// CSV should properly escape commas and quotes
	assert.Contains(t, lines[2], `"a, ""b"""`)
}

func TestFormatMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatMarkdown(&buf, testDocument()))

	result := buf.String()
	assert.Contains(t, result, "# Conversation with 范西蒙")
	assert.Contains(t, result, "total: 2 conversations")
	assert.Contains(t, result, "| Time | User | Reply |")
	assert.Contains(t, result, "| 2026-10-18T09:00:00+08:00 | 你好 | 嗨！很高兴见到你 |")
	assert.Contains(t, result, `x\|y`)
}

func TestFormatDocument_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, formatDocument(&buf, testDocument(), "xml"))
}

func TestWriteDocument_ToFile(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.csv")
	var stdout bytes.Buffer

	require.NoError(t, writeDocument(&stdout, testDocument(), "csv", output))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "timestamp,user"))
	assert.Contains(t, stdout.String(), "Exported 2 conversations to "+output)
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "plain", expected: "plain"},
		{input: "a|b", expected: `a\|b`},
		{input: "line1\nline2", expected: "line1 line2"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, escapeMarkdown(tt.input))
		})
	}
}

func TestRosterHelpers(t *testing.T) {
	assert.Equal(t, "-", rosterRole(parsers.RawCharacter{Role: "tutor"}))
	assert.Equal(t, "assistant", rosterRole(parsers.RawCharacter{Advanced: true}))
	assert.Equal(t, "reviewer", rosterRole(parsers.RawCharacter{Advanced: true, Role: "reviewer"}))
	assert.Equal(t, entities.DefaultModel, rosterModel(parsers.RawCharacter{}))
	assert.Equal(t, "gpt-4", rosterModel(parsers.RawCharacter{Model: "gpt-4"}))

	var buf bytes.Buffer
	printRosterRecord(&buf, &parsers.RawCharacter{Name: "alice", APIKey: "sk-1234567890abcdefghijk"})
	assert.Contains(t, buf.String(), "Name:       alice")
	assert.Contains(t, buf.String(), "Credential: sk-*****************hijk")
	assert.NotContains(t, buf.String(), "1234567890")
}

func TestBuildPersona(t *testing.T) {
	p, diags, err := buildPersona(parsers.RawCharacter{Name: "导师", Advanced: true, Role: "tutor"})
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, entities.KindAdvanced, p.Kind())
	assert.Equal(t, entities.DefaultPrompt, p.SystemPrompt())

	p, diags, err = buildPersona(parsers.RawCharacter{Name: "alice", APIKey: "nope"})
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "alice", p.Name())

	_, _, err = buildPersona(parsers.RawCharacter{Name: strings.Repeat("名", entities.MaxNameLength+1)})
	require.Error(t, err)

	_, _, err = buildPersona(parsers.RawCharacter{})
	require.Error(t, err)
}
