package storage_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdforge/contest-api/internal/storage"
)

func TestLocalStoreOpen(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "develop", "88821"), 0o755))
	require.NoError(
		t,
		os.WriteFile(filepath.Join(root, "develop", "88821", "upload"), []byte("bundle bytes"), 0o644),
	)

	store := storage.NewLocalStore(root)

	t.Run("Found", func(t *testing.T) {
		obj, err := store.Open(ctx, "develop/88821/upload")
		require.NoError(t, err, "failed to open stored file")
		defer obj.Body.Close()

		assert.Equal(t, int64(len("bundle bytes")), obj.Size)

		content, err := io.ReadAll(obj.Body)
		require.NoError(t, err)
		assert.Equal(t, "bundle bytes", string(content))
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := store.Open(ctx, "develop/88899/upload")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("TraversalRejected", func(t *testing.T) {
		_, err := store.Open(ctx, "../outside")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestLocalStoreIdentifier(t *testing.T) {
	root := t.TempDir()
	store := storage.NewLocalStore(root)

	ident, err := store.StoreIdentifier(context.Background())
	require.NoError(t, err)
	assert.Equal(t, root, ident)
}
