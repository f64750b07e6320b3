package config

import (
	"github.com/nibzard/taskboard/internal/logging"
	"github.com/nibzard/taskboard/internal/storage"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, in load order.
	Files []string
}

// Default values.
const (
	DefaultDataDir   = "~/.taskboard"
	DefaultStorage   = storage.BackendFile
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config holds the full configuration for taskboard.
type Config struct {
	// Paths
	DataDir string `toml:"data_dir"`
	// LogDir defaults to <data_dir>/logs when empty.
	LogDir string `toml:"log_dir"`

	// Storage backend for the task list slot
	Storage storage.Backend `toml:"storage"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`
}

// LogOptions returns the logging options for this config.
func (c *Config) LogOptions() logging.Options {
	return logging.Options{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		Timestamps: c.LogTimestamps,
		Caller:     c.LogCaller,
	}
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"data_dir",
		"log_dir",
		"storage",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.DataDir = DefaultDataDir
	cfg.LogDir = ""
	cfg.Storage = DefaultStorage
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogTimestamps = false
	cfg.LogCaller = false
}
