package datastore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

func newTestStore(t *testing.T, mutate func(*Config)) (*DataStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "store.json")
	cfg := DefaultConfig(path)
	cfg.AutoSaveInterval = 0
	if mutate != nil {
		mutate(cfg)
	}
	ds, err := NewWithConfig(cfg)
	require.NoError(t, err)
	return ds, path
}

func TestPutGet(t *testing.T) {
	ds, _ := newTestStore(t, nil)
	defer ds.Close()

	require.NoError(t, ds.Put("a", entry{Name: "Sparky", Level: 5}))

	var got entry
	ok, err := ds.Get("a", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entry{Name: "Sparky", Level: 5}, got)

	ok, err = ds.Get("missing", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCloseFlushesAndReloads(t *testing.T) {
	ds, path := newTestStore(t, nil)
	require.NoError(t, ds.Put("b", entry{Name: "Pidgey", Level: 3}))
	require.NoError(t, ds.Put("a", entry{Name: "Sparky", Level: 5}))
	require.NoError(t, ds.Close())

	assert.ErrorIs(t, ds.Put("c", entry{}), ErrClosed)

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	var got entry
	ok, err := reopened.Get("b", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Pidgey", got.Name)
	ok, err = reopened.Get("a", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Sparky", got.Name)
}

func TestMemoryLimit(t *testing.T) {
	ds, _ := newTestStore(t, func(c *Config) { c.MaxMemorySize = 16 })
	defer ds.Close()

	assert.ErrorIs(t, ds.Put("big", entry{Name: "a name far longer than sixteen bytes"}), ErrMemoryLimit)
	assert.NoError(t, ds.Put("s", 1))
}

func TestPutAllIsAllOrNothing(t *testing.T) {
	ds, _ := newTestStore(t, func(c *Config) { c.MaxMemorySize = 64 })
	defer ds.Close()

	require.NoError(t, ds.Put("a", entry{Name: "Sparky"}))

	err := ds.PutAll(map[string]any{
		"a": entry{Name: "Pidgey"},
		"b": entry{Name: "a name long enough to push the store past its limit"},
	})
	require.ErrorIs(t, err, ErrMemoryLimit)

	var got entry
	ok, err := ds.Get("a", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Sparky", got.Name)
	ok, _ = ds.Get("b", &got)
	assert.False(t, ok)

	require.NoError(t, ds.PutAll(map[string]any{"a": entry{Name: "Pidgey"}, "b": entry{Name: "Ember"}}))
	ok, _ = ds.Get("b", &got)
	assert.True(t, ok)
	assert.Equal(t, "Ember", got.Name)
}

func TestPutAllAfterClose(t *testing.T) {
	ds, _ := newTestStore(t, nil)
	require.NoError(t, ds.Close())
	assert.ErrorIs(t, ds.PutAll(map[string]any{"a": 1, "b": 2}), ErrClosed)
}

func TestBackupsAreRotated(t *testing.T) {
	ds, path := newTestStore(t, func(c *Config) { c.BackupCount = 2 })
	defer ds.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, ds.Put("k", i))
		require.NoError(t, ds.saveToFile())
	}

	backups, err := filepath.Glob(path + ".backup.*")
	require.NoError(t, err)
	assert.Len(t, backups, 2)
}

func TestInvalidFileIsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := New(path)
	assert.Error(t, err)
}
