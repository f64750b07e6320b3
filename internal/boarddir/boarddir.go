// Package boarddir provides constants and utilities for the taskboard data directory.
package boarddir

import "path/filepath"

const (
	// Dir is the name of the taskboard state directory.
	Dir = ".taskboard"

	// StoreDir holds one file per key for the file storage backend.
	StoreDir = "store"

	// DBFile is the SQLite database used by the sqlite storage backend.
	DBFile = "taskboard.db"

	// LogDir holds per-session log files.
	LogDir = "logs"

	// ConfigFile is the config file name.
	ConfigFile = "taskboard.toml"
)

// StorePath returns the file backend directory within a data directory.
func StorePath(dataDir string) string {
	return joinPath(dataDir, StoreDir)
}

// DBPath returns the SQLite database path within a data directory.
func DBPath(dataDir string) string {
	return joinPath(dataDir, DBFile)
}

// LogPath returns the default log directory within a data directory.
func LogPath(dataDir string) string {
	return joinPath(dataDir, LogDir)
}

// ConfigPath returns the config file path within a data directory.
func ConfigPath(dataDir string) string {
	return joinPath(dataDir, ConfigFile)
}

func joinPath(dataDir, name string) string {
	if dataDir == "." || dataDir == "" {
		return filepath.Join(Dir, name)
	}
	return filepath.Join(dataDir, name)
}
