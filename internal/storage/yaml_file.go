package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const yamlFileName = "routine.yaml"

type yamlDocument struct {
	Version int               `yaml:"version"`
	Values  map[string]string `yaml:"values"`
}

// YAMLFile keeps all keys in a single YAML document on disk.
type YAMLFile struct {
	mu   sync.Mutex
	path string
}

// NewYAMLFile creates a store backed by the YAML file at path.
// The file is created on the first Set.
func NewYAMLFile(path string) *YAMLFile {
	return &YAMLFile{path: path}
}

// Path returns the backing file.
func (store *YAMLFile) Path() string {
	return store.path
}

// Get reads key from the file. A missing file holds no keys.
func (store *YAMLFile) Get(key string) (string, bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	document, err := store.readLocked()
	if err != nil {
		return "", false, err
	}
	value, ok := document.Values[key]
	return value, ok, nil
}

// Set writes key to the file, keeping the other keys.
// An unreadable file is replaced.
func (store *YAMLFile) Set(key, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	document, err := store.readLocked()
	if err != nil {
		document = yamlDocument{}
	}
	if document.Values == nil {
		document.Values = make(map[string]string)
	}
	document.Version = 1
	document.Values[key] = value

	if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}

	serialized, err := yaml.Marshal(document)
	if err != nil {
		return fmt.Errorf("marshal storage yaml: %w", err)
	}

	tmpPath := store.path + ".tmp"
	if err := os.WriteFile(tmpPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write storage file: %w", err)
	}
	if err := os.Rename(tmpPath, store.path); err != nil {
		return fmt.Errorf("replace storage file: %w", err)
	}
	return nil
}

func (store *YAMLFile) Close() error {
	return nil
}

func (store *YAMLFile) readLocked() (yamlDocument, error) {
	var document yamlDocument

	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return document, nil
		}
		return document, fmt.Errorf("read storage file: %w", err)
	}

	if err := yaml.Unmarshal(rawData, &document); err != nil {
		return yamlDocument{}, fmt.Errorf("parse storage yaml: %w", err)
	}
	return document, nil
}
