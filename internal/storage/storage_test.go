package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAferoStore_Unit(t *testing.T) {
	memFs := afero.NewMemMapFs()
	store := NewAferoStore(memFs)
	ctx := context.Background()

	// Test data
	filePath := "test/dir/my-file.txt"
	fileContent := "hello world, this is a test"

	t.Run("Save", func(t *testing.T) {
		contentReader := bytes.NewReader([]byte(fileContent))
		bytesWritten, err := store.Save(ctx, filePath, contentReader)

		require.NoError(t, err)
		assert.Equal(t, int64(len(fileContent)), bytesWritten)

		// Verify the file was actually written using afero's helpers
		exists, err := afero.Exists(memFs, filePath)
		require.NoError(t, err)
		assert.True(t, exists, "file should exist after saving")

		// Verify content
		readBytes, err := afero.ReadFile(memFs, filePath)
		require.NoError(t, err)
		assert.Equal(t, fileContent, string(readBytes))
	})

	t.Run("Open", func(t *testing.T) {
		file, err := store.Open(ctx, filePath)
		require.NoError(t, err)
		defer file.Close()

		readBytes, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, fileContent, string(readBytes))
	})

	t.Run("Save overwrites", func(t *testing.T) {
		_, err := store.Save(ctx, filePath, bytes.NewReader([]byte("short")))
		require.NoError(t, err)

		info, err := store.Stat(ctx, filePath)
		require.NoError(t, err)
		assert.Equal(t, int64(len("short")), info.Size())
	})

	t.Run("Open non-existent file", func(t *testing.T) {
		_, err := store.Open(ctx, "path/to/nothing.txt")
		assert.Error(t, err, "opening a non-existent file should return an error")
	})
}

func TestNewDirStore(t *testing.T) {
	dir := t.TempDir()
	store := NewDirStore(dir)

	_, err := store.Save(context.Background(), "css/site.css", bytes.NewReader([]byte("body{}")))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "css", "site.css"))
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(data))
}
