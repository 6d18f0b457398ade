package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/chara/internal/infrastructure/parsers"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple name",
			input:    "alice",
			expected: "alice",
		},
		{
			name:     "chinese preserved",
			input:    "范西蒙",
			expected: "范西蒙",
		},
		{
			name:     "spaces to underscores",
			input:    "范 西蒙",
			expected: "范_西蒙",
		},
		{
			name:     "path separators replaced",
			input:    "a/b\\c:d",
			expected: "a_b_c_d",
		},
		{
			name:     "consecutive unsafe chars collapsed",
			input:    "a  **  b",
			expected: "a_b",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  bob  ",
			expected: "bob",
		},
		{
			name:     "empty string returns default",
			input:    "",
			expected: "character",
		},
		{
			name:     "only unsafe chars returns default",
			input:    "???",
			expected: "character",
		},
		{
			name:     "dots trimmed",
			input:    "..",
			expected: "character",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFileName(tt.input))
		})
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CHARA_NAME", "CHARA_PROMPT", "CHARA_MODEL", "CHARA_ROLE", "CHARA_API_KEY",
		"CHARA_EXPORT_DIR", "CHARA_EXPORT_FORMAT", "CHARA_SQLITE_PATH",
		"CHARA_LOG_LEVEL", "CHARA_LOG_ENCODING", "OPENAI_API_KEY",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Character, cfg.Character)
	assert.Equal(t, "json", cfg.Export.Format)
	assert.Equal(t, filepath.Join(dir, DefaultConfigDir, DefaultArchiveFile), cfg.Export.SQLite.Path)
	assert.False(t, Exists(dir))
}

func TestLoad_FromFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	content := `character:
  name: 导师
  role: tutor
export:
  format: openai
  sqlite:
    path: /tmp/chara.db
`
	require.NoError(t, os.MkdirAll(ConfigDir(dir), 0755))
	require.NoError(t, os.WriteFile(ConfigFilePath(dir), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.True(t, Exists(dir))
	assert.Equal(t, "导师", cfg.Character.Name)
	assert.Equal(t, "tutor", cfg.Character.Role)
	// unset fields keep their defaults
	assert.Equal(t, Default().Character.Model, cfg.Character.Model)
	assert.Equal(t, "openai", cfg.Export.Format)
	assert.Equal(t, "/tmp/chara.db", cfg.Export.SQLite.Path)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(ConfigDir(dir), 0755))
	require.NoError(t, os.WriteFile(ConfigFilePath(dir), []byte("character: [broken"), 0644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, WriteDefault(dir))

	t.Setenv("CHARA_NAME", "env-name")
	t.Setenv("CHARA_EXPORT_FORMAT", "sqlite")
	t.Setenv("OPENAI_API_KEY", "sk-fallback-key-0123456789")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "env-name", cfg.Character.Name)
	assert.Equal(t, "sqlite", cfg.Export.Format)
	assert.Equal(t, "sk-fallback-key-0123456789", cfg.Character.APIKey)
}

func TestLoad_CharaKeyWinsOverOpenAIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHARA_API_KEY", "sk-chara-key-0123456789ab")
	t.Setenv("OPENAI_API_KEY", "sk-fallback-key-0123456789")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "sk-chara-key-0123456789ab", cfg.Character.APIKey)
}

func TestWriteDefault(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, WriteDefault(dir))
	assert.True(t, Exists(dir))

	err := WriteDefault(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestWrite_RoundTrip(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg := Default()
	cfg.Character.Name = "reviewer-bot"
	cfg.Character.Role = "reviewer"
	require.NoError(t, Write(dir, cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "reviewer-bot", loaded.Character.Name)
	assert.Equal(t, "reviewer", loaded.Character.Role)
}

func TestRoster_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	empty, err := LoadRoster(dir)
	require.NoError(t, err)
	assert.Empty(t, empty.Characters)
	assert.False(t, RosterExists(dir))

	r := &Roster{}
	r.Put(parsers.RawCharacter{Name: "bob", Prompt: "p1"})
	r.Put(parsers.RawCharacter{Name: "alice", Advanced: true, Role: "tutor"})
	r.Put(parsers.RawCharacter{Name: "bob", Prompt: "p2"})
	require.Len(t, r.Characters, 2)
	require.NoError(t, r.Save(dir))
	assert.True(t, RosterExists(dir))

	loaded, err := LoadRoster(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, loaded.Names())

	bob, err := loaded.Get("bob")
	require.NoError(t, err)
	assert.Equal(t, "p2", bob.Prompt)

	alice, err := loaded.Get("alice")
	require.NoError(t, err)
	assert.True(t, alice.Advanced)
	assert.Equal(t, "tutor", alice.Role)
}

func TestRoster_GetAndRemove(t *testing.T) {
	r := &Roster{}

	_, err := r.Get("nobody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no characters")

	r.Put(parsers.RawCharacter{Name: "alice"})
	_, err = r.Get("nobody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available: alice")

	assert.True(t, r.Remove("alice"))
	assert.False(t, r.Remove("alice"))
	assert.Empty(t, r.Characters)
}
