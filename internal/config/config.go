// Package config loads whiteboard settings from file, environment and
// defaults, and reloads the file when it changes.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"whiteboard/internal/tracing"
)

const envPrefix = "WHITEBOARD"

type Config struct {
	DataDir     string `mapstructure:"data_dir"`
	DBPath      string `mapstructure:"db_path"`
	FrontendDir string `mapstructure:"frontend_dir"`

	History    HistoryConfig    `mapstructure:"history"`
	Board      BoardConfig      `mapstructure:"board"`
	Clipboard  ClipboardConfig  `mapstructure:"clipboard"`
	Autosave   AutosaveConfig   `mapstructure:"autosave"`
	Guidelines GuidelinesConfig `mapstructure:"guidelines"`
	Tracing    tracing.Config   `mapstructure:"tracing"`
}

type HistoryConfig struct {
	MaxNodes int    `mapstructure:"max_nodes"`
	Document string `mapstructure:"document"` // undo tree and autosave key
}

type BoardConfig struct {
	DefaultWidth  float64 `mapstructure:"default_width"`
	DefaultHeight float64 `mapstructure:"default_height"`
	Background    string  `mapstructure:"background"`
}

type ClipboardConfig struct {
	Backend     string  `mapstructure:"backend"` // "memory" or "sqlite"
	PasteOffset float64 `mapstructure:"paste_offset"`
}

type AutosaveConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"` // cron spec
}

type GuidelinesConfig struct {
	Visible bool `mapstructure:"visible"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".local", "share", "whiteboard")
	return Config{
		DataDir: dataDir,
		DBPath:  filepath.Join(dataDir, "whiteboard.db"),
		History: HistoryConfig{MaxNodes: 40, Document: "default"},
		Board: BoardConfig{
			DefaultWidth:  800,
			DefaultHeight: 600,
			Background:    "#ffffff",
		},
		Clipboard:  ClipboardConfig{Backend: "memory", PasteOffset: 20},
		Autosave:   AutosaveConfig{Enabled: true, Schedule: "@every 30s"},
		Guidelines: GuidelinesConfig{Visible: true},
		Tracing:    tracing.DefaultConfig(),
	}
}

// DefaultPath is ~/.config/whiteboard/config.yaml.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "whiteboard", "config.yaml")
}

func newViper() *viper.Viper {
	v := viper.New()
	d := Defaults()
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("db_path", "")
	v.SetDefault("frontend_dir", d.FrontendDir)
	v.SetDefault("history.max_nodes", d.History.MaxNodes)
	v.SetDefault("history.document", d.History.Document)
	v.SetDefault("board.default_width", d.Board.DefaultWidth)
	v.SetDefault("board.default_height", d.Board.DefaultHeight)
	v.SetDefault("board.background", d.Board.Background)
	v.SetDefault("clipboard.backend", d.Clipboard.Backend)
	v.SetDefault("clipboard.paste_offset", d.Clipboard.PasteOffset)
	v.SetDefault("autosave.enabled", d.Autosave.Enabled)
	v.SetDefault("autosave.schedule", d.Autosave.Schedule)
	v.SetDefault("guidelines.visible", d.Guidelines.Visible)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path, or the default config file when path is empty. A
// missing default file is not an error; a missing explicit path is.
func Load(path string) (Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "whiteboard.db")
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the workspace cannot run with.
func Validate(cfg Config) error {
	if cfg.History.MaxNodes < 2 {
		return fmt.Errorf("history.max_nodes must be at least 2, got %d", cfg.History.MaxNodes)
	}
	if cfg.History.Document == "" {
		return fmt.Errorf("history.document must not be empty")
	}
	if cfg.Board.DefaultWidth <= 0 || cfg.Board.DefaultHeight <= 0 {
		return fmt.Errorf("board default size must be positive")
	}
	switch cfg.Clipboard.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("clipboard.backend must be memory or sqlite, got %q", cfg.Clipboard.Backend)
	}
	if cfg.Autosave.Enabled && cfg.Autosave.Schedule == "" {
		return fmt.Errorf("autosave.schedule required when autosave is enabled")
	}
	return nil
}
