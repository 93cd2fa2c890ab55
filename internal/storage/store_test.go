package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()

	_, ok, err := store.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set("routine_timer_tasks", `[{"id":"1"}]`))
	require.NoError(t, store.Set("routine_timer_config", `{}`))
	require.NoError(t, store.Set("routine_timer_tasks", `[]`))

	value, ok, err := store.Get("routine_timer_tasks")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, value)

	value, ok, err = store.Get("routine_timer_config")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{}`, value)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemory()
	defer store.Close()
	exerciseStore(t, store)
}

func TestYAMLFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "routine.yaml")
	store := NewYAMLFile(path)
	exerciseStore(t, store)

	reopened := NewYAMLFile(path)
	value, ok, err := reopened.Get("routine_timer_tasks")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, value)
}

func TestYAMLFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("values: [not, a, map"), 0o644))

	store := NewYAMLFile(path)
	_, _, err := store.Get("routine_timer_tasks")
	assert.Error(t, err)

	require.NoError(t, store.Set("routine_timer_tasks", "[]"))
	value, ok, err := store.Get("routine_timer_tasks")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", value)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routine.db")
	store, err := NewSQLite(path)
	require.NoError(t, err)
	exerciseStore(t, store)
	require.NoError(t, store.Close())

	reopened, err := NewSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, ok, err := reopened.Get("routine_timer_config")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{}`, value)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open("memory", "", "routinetimer")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, store)

	store, err = Open("yaml", filepath.Join(dir, "r.yaml"), "routinetimer")
	require.NoError(t, err)
	assert.IsType(t, &YAMLFile{}, store)

	store, err = Open("SQLite", filepath.Join(dir, "r.db"), "routinetimer")
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, store)
	require.NoError(t, store.Close())

	_, err = Open("etcd", "", "routinetimer")
	assert.Error(t, err)
}
