// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/zeromicro/go-zero/core/logx"
	"gopkg.in/yaml.v3"

	"github.com/ersonp/chara/internal/domain/entities"
)

const (
	// DefaultConfigDir is the directory name for chara configuration.
	DefaultConfigDir = ".chara"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultRosterFile is the default roster file name.
	DefaultRosterFile = "roster.yaml"
	// DefaultArchiveFile is the default SQLite archive file name.
	DefaultArchiveFile = "archive.db"
)

var (
	// reUnsafeFileChars matches characters that are unsafe in file names.
	reUnsafeFileChars = regexp.MustCompile(`[\\/:*?"<>|\s]+`)
	// reMultipleUnderscores matches consecutive underscores.
	reMultipleUnderscores = regexp.MustCompile(`_+`)
)

// Config holds static configuration (read-only after load).
type Config struct {
	Character CharacterConfig `yaml:"character,omitempty"`
	Export    ExportConfig    `yaml:"export,omitempty"`
	Log       LogConfig       `yaml:"log,omitempty"`
}

// CharacterConfig holds the profile of the default chat character.
type CharacterConfig struct {
	Name   string `yaml:"name,omitempty" env:"CHARA_NAME"`
	Prompt string `yaml:"prompt,omitempty" env:"CHARA_PROMPT"`
	Model  string `yaml:"model,omitempty" env:"CHARA_MODEL"`
	Role   string `yaml:"role,omitempty" env:"CHARA_ROLE"`
	APIKey string `yaml:"api_key,omitempty" env:"CHARA_API_KEY"`
}

// ExportConfig holds configuration for ledger exports.
type ExportConfig struct {
	Dir    string       `yaml:"dir,omitempty" env:"CHARA_EXPORT_DIR"`
	Format string       `yaml:"format,omitempty" env:"CHARA_EXPORT_FORMAT"`
	SQLite SQLiteConfig `yaml:"sqlite,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite export archive.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database.
	Path string `yaml:"path,omitempty" env:"CHARA_SQLITE_PATH"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level    string `yaml:"level,omitempty" env:"CHARA_LOG_LEVEL"`
	Encoding string `yaml:"encoding,omitempty" env:"CHARA_LOG_ENCODING"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Character: CharacterConfig{
			Name:   "范西蒙",
			Prompt: "我是一个乐于助人、知识渊博的AI助手",
			Model:  entities.DefaultModel,
		},
		Export: ExportConfig{
			Dir:    ".",
			Format: "json",
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "plain",
		},
	}
}

// Load loads configuration from the .chara directory in the given path.
// A missing config file yields the defaults. Environment variables
// override file values.
func Load(basePath string) (*Config, error) {
	cfg := Default()

	configFile := ConfigFilePath(basePath)
	data, err := os.ReadFile(configFile)
	switch {
	case os.IsNotExist(err):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if cfg.Export.SQLite.Path == "" {
		cfg.Export.SQLite.Path = filepath.Join(basePath, DefaultConfigDir, DefaultArchiveFile)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && c.Character.APIKey == "" {
		c.Character.APIKey = key
	}
	return nil
}

// SetupLogging configures the process-wide logger.
func (c LogConfig) SetupLogging() error {
	conf := logx.LogConf{
		Mode:     "console",
		Encoding: c.Encoding,
		Level:    c.Level,
	}
	if conf.Encoding == "" {
		conf.Encoding = "plain"
	}
	if conf.Level == "" {
		conf.Level = "info"
	}
	if err := logx.SetUp(conf); err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	return nil
}

// ConfigDir returns the path to the .chara config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// RosterFilePath returns the path to the roster file.
func RosterFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultRosterFile)
}

// Exists checks if a chara config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}

// SanitizeFileName converts a character name into a safe file name fragment.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	name = reUnsafeFileChars.ReplaceAllString(name, "_")
	name = reMultipleUnderscores.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_.")

	if name == "" {
		return "character"
	}

	return name
}
