// Package storage provides durable key/value stores for the saved routine.
//
// A backend is chosen once at startup with Open; the rest of the program
// only sees the Store interface.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"
)

// Store is a string key/value store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Close() error
}

// Open creates the store for backend. An empty path resolves to a file in
// the user config directory for appName.
func Open(backend, path, appName string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendMemory:
		return NewMemory(), nil
	case "", BackendYAML:
		if path == "" {
			resolved, err := DefaultPath(appName, yamlFileName)
			if err != nil {
				return nil, err
			}
			path = resolved
		}
		return NewYAMLFile(path), nil
	case BackendSQLite:
		if path == "" {
			resolved, err := DefaultPath(appName, sqliteFileName)
			if err != nil {
				return nil, err
			}
			path = resolved
		}
		return NewSQLite(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// DefaultPath returns <user config dir>/<appName>/<fileName>.
func DefaultPath(appName, fileName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, fileName), nil
}

// Memory is a Store that lives only as long as the process.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (store *Memory) Get(key string) (string, bool, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	value, ok := store.values[key]
	return value, ok, nil
}

func (store *Memory) Set(key, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.values[key] = value
	return nil
}

func (store *Memory) Close() error {
	return nil
}
