package config

import (
	"flag"

	"github.com/nibzard/taskboard/internal/storage"
)

// parseFlags defines the global flags on fs, parses args and applies the
// flags that were explicitly set.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("taskboard", flag.ContinueOnError)
	}

	var (
		dataDir       = cfg.DataDir
		logDir        = cfg.LogDir
		backend       = string(cfg.Storage)
		logLevel      = cfg.LogLevel
		logFormat     = cfg.LogFormat
		logTimestamps = cfg.LogTimestamps
		logCaller     = cfg.LogCaller
	)

	fs.StringVar(&dataDir, "data-dir", dataDir, "Data directory")
	fs.StringVar(&backend, "storage", backend, "Storage backend (file, sqlite, memory)")
	fs.StringVar(&logDir, "log-dir", logDir, "Log directory (default <data-dir>/logs)")
	fs.StringVar(&logLevel, "log-level", logLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&logFormat, "log-format", logFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&logTimestamps, "log-timestamps", logTimestamps, "Show timestamps in logs")
	fs.BoolVar(&logCaller, "log-caller", logCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Map flag names to source field names
	flagToField := map[string]string{
		"data-dir":       "data_dir",
		"storage":        "storage",
		"log-dir":        "log_dir",
		"log-level":      "log_level",
		"log-format":     "log_format",
		"log-timestamps": "log_timestamps",
		"log-caller":     "log_caller",
	}

	fs.Visit(func(f *flag.Flag) {
		field, ok := flagToField[f.Name]
		if !ok {
			return
		}
		switch field {
		case "data_dir":
			cfg.DataDir = dataDir
		case "storage":
			cfg.Storage = storage.Backend(backend)
		case "log_dir":
			cfg.LogDir = logDir
		case "log_level":
			cfg.LogLevel = logLevel
		case "log_format":
			cfg.LogFormat = logFormat
		case "log_timestamps":
			cfg.LogTimestamps = logTimestamps
		case "log_caller":
			cfg.LogCaller = logCaller
		}
		if sources != nil {
			sources[field] = SourceFlag
		}
	})

	return nil
}
