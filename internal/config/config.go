// Package config provides configuration management.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"bookmark-engagement/internal/errors"
	"bookmark-engagement/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" toml:"version"`

	// Judgment contains engine configuration
	Judgment JudgmentConfig `json:"judgment" toml:"judgment"`

	// Tracker contains visit tracker configuration
	Tracker TrackerConfig `json:"tracker" toml:"tracker"`

	// Output contains output configuration
	Output OutputConfig `json:"output" toml:"output"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server" toml:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" toml:"logging"`
}

// JudgmentConfig contains engine settings
type JudgmentConfig struct {
	// ProfilePath is an optional HCL threshold profile
	ProfilePath string `json:"profile_path,omitempty" toml:"profile_path"`

	// Debug enables per-stage debug logging in the engine
	Debug bool `json:"debug" toml:"debug"`
}

// TrackerConfig contains visit tracker settings
type TrackerConfig struct {
	// WindowHours is how far back visits count
	WindowHours int `json:"window_hours" toml:"window_hours"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format (text, json)
	DefaultFormat string `json:"default_format" toml:"default_format"`

	// Color enables colored level names in text output
	Color bool `json:"color" toml:"color"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr" toml:"addr"`

	// BatchWorkers bounds concurrent judgments per batch request
	BatchWorkers int `json:"batch_workers" toml:"batch_workers"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Judgment: JudgmentConfig{
			Debug: false,
		},
		Tracker: TrackerConfig{
			WindowHours: 72, // 3 days
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			Color:         true,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			BatchWorkers: 4,
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultPath returns $HOME/.bookmark-engagement.json
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".bookmark-engagement.json")
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load loads configuration from a file. A missing file yields the defaults.
// Files ending in .toml are decoded as TOML, everything else as JSON.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Wrapf(errors.TypeConfig, err, "failed to read config %s", path)
	}

	config := Default()
	if isTOML(path) {
		if _, err := toml.Decode(string(data), config); err != nil {
			return nil, errors.Parsing("invalid TOML config", err)
		}
	} else if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Parsing("invalid JSON config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks settings that have no sensible fallback
func (c *Config) Validate() error {
	if c.Tracker.WindowHours <= 0 {
		return errors.Newf(errors.TypeConfig, "tracker.window_hours must be positive, got %d", c.Tracker.WindowHours)
	}
	if c.Server.BatchWorkers <= 0 {
		return errors.Newf(errors.TypeConfig, "server.batch_workers must be positive, got %d", c.Server.BatchWorkers)
	}
	switch c.Output.DefaultFormat {
	case "text", "json":
	default:
		return errors.Newf(errors.TypeConfig, "unknown output format %q", c.Output.DefaultFormat)
	}
	return nil
}

// Save saves configuration to a file, as TOML when path ends in .toml
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = json.MarshalIndent(c, "", "  ")
		if err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
