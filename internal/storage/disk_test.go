package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStore_SaveAndDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "storage")
	store, err := NewDiskStore(dir, "http://localhost:5000/")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "photo.png", []byte("bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/storage/photo.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "photo.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes"), data)

	require.NoError(t, store.Delete(context.Background(), "photo.png"))
	_, err = os.Stat(filepath.Join(dir, "photo.png"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(context.Background(), "photo.png"), "missing photo is a no-op")
}

func TestDiskStore_RejectsTraversal(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "http://localhost:5000")
	require.NoError(t, err)

	for _, name := range []string{"../escape.png", "a/b.png", "", ".."} {
		_, err := store.Save(context.Background(), name, []byte("x"))
		assert.True(t, errors.Is(err, ErrInvalidName), "name %q: %v", name, err)
	}
}
