package config

import (
	"os"

	"github.com/nibzard/taskboard/internal/storage"
)

// loadFromEnv overrides config from TASKBOARD_* environment variables.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	set := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	if v := os.Getenv("TASKBOARD_DATA_DIR"); v != "" {
		cfg.DataDir = v
		set("data_dir")
	}
	if v := os.Getenv("TASKBOARD_LOG_DIR"); v != "" {
		cfg.LogDir = v
		set("log_dir")
	}
	if v := os.Getenv("TASKBOARD_STORAGE"); v != "" {
		cfg.Storage = storage.Backend(v)
		set("storage")
	}
	if v := os.Getenv("TASKBOARD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		set("log_level")
	}
	if v := os.Getenv("TASKBOARD_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		set("log_format")
	}
	if v := os.Getenv("TASKBOARD_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
		set("log_timestamps")
	}
	if v := os.Getenv("TASKBOARD_LOG_CALLER"); v != "" {
		cfg.LogCaller = boolFromString(v)
		set("log_caller")
	}
}
