package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/bookvec/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "nested", "db")
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	info, err := os.Stat(tmpDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_PathIsFile(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0644))

	_, err := OpenBackend(tmpFile, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	err = backend.WithView(context.Background(), func(tx *badger.Txn) error { return nil })
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestWithUpdate(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	key := []byte("k")

	t.Run("successful update commits", func(t *testing.T) {
		err := backend.WithUpdate(ctx, func(tx *badger.Txn) error {
			return tx.Set(key, []byte("v"))
		})
		require.NoError(t, err)

		err = backend.WithView(ctx, func(tx *badger.Txn) error {
			_, err := tx.Get(key)
			return err
		})
		assert.NoError(t, err)
	})

	t.Run("failed update writes nothing", func(t *testing.T) {
		other := []byte("other")
		err := backend.WithUpdate(ctx, func(tx *badger.Txn) error {
			if err := tx.Set(other, []byte("v")); err != nil {
				return err
			}
			return assert.AnError
		})
		assert.Equal(t, assert.AnError, err)

		err = backend.WithView(ctx, func(tx *badger.Txn) error {
			_, err := tx.Get(other)
			return err
		})
		assert.ErrorIs(t, err, badger.ErrKeyNotFound)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		err := backend.WithUpdate(cancelled, func(tx *badger.Txn) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}
