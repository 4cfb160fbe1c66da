package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndList(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("requests-1.csv", []byte("a,b\n"))
	require.NoError(t, err)
	_, err = store.Save("requests-2.csv", []byte("c,d\n"))
	require.NoError(t, err)

	names, err := store.List()
	require.NoError(t, err)
	require.Len(t, names, 2)
	require.Contains(t, names, "requests-1.csv")
	require.Contains(t, names, "requests-2.csv")
}

func TestLocalStoragePruneRemovesExpired(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.Save("old.csv", []byte("x\n"))
	require.NoError(t, err)
	_, err = store.Save("fresh.csv", []byte("y\n"))
	require.NoError(t, err)

	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.csv"), stale, stale))

	removed, err := store.Prune(24 * time.Hour)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	names, err := store.List()
	require.NoError(t, err)
	require.Equal(t, []string{"fresh.csv"}, names)
}
