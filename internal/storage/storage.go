// Package storage provides the string-keyed slots the task list is persisted in.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/nibzard/taskboard/internal/boarddir"
)

// Store is a string-keyed slot store. A value is always read and written
// whole.
type Store interface {
	// Get returns the value under key. found is false, with a nil error,
	// when the key has never been written.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set overwrites the value under key.
	Set(ctx context.Context, key, value string) error
	// Close releases any resources held by the store.
	Close() error
}

// Backend names a Store implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// Backends lists the supported backends in display order.
func Backends() []Backend {
	return []Backend{BackendFile, BackendSQLite, BackendMemory}
}

// ParseBackend normalizes a backend name.
func ParseBackend(name string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(name)))
	switch b {
	case BackendFile, BackendSQLite, BackendMemory:
		return b, nil
	case "":
		return BackendFile, nil
	default:
		return "", fmt.Errorf("unknown storage backend %q (want file, sqlite or memory)", name)
	}
}

// Open opens the backend rooted at dataDir.
func Open(backend Backend, dataDir string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(boarddir.StorePath(dataDir))
	case BackendSQLite:
		return NewSQLiteStore(boarddir.DBPath(dataDir))
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// Location describes where a backend keeps its data, for diagnostics.
func Location(backend Backend, dataDir string) string {
	switch backend {
	case BackendSQLite:
		return boarddir.DBPath(dataDir)
	case BackendMemory:
		return "(in memory)"
	default:
		return boarddir.StorePath(dataDir)
	}
}

// validateKey rejects keys that cannot be used as a file name.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("storage key is empty")
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '.' || c == '_' || c == '-'
		if !valid {
			return fmt.Errorf("storage key %q contains invalid character %q", key, c)
		}
	}
	if key == "." || key == ".." {
		return fmt.Errorf("storage key %q is reserved", key)
	}
	return nil
}
