package transfer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plouton-fw/transfer/storage"
)

func TestBuilderRequiresLocator(t *testing.T) {
	ctx, err := NewBuilder().Build()
	require.ErrorIs(t, err, ErrInvalidParameter)
	assert.Nil(t, ctx)
}

func TestBuilderChain(t *testing.T) {
	dir := t.TempDir()

	ctx, err := NewBuilder().
		Format("csv").
		AutoFlush(false).
		BufferSize("4KB").
		MaxFileSize("0").
		FilePrefix("capture").
		FileExtension("log").
		Directory(dir).
		Clock(fixedClock).
		Build()
	require.NoError(t, err)
	defer ctx.Close()

	require.NoError(t, ctx.Write([]byte("hello"), false))
	require.NoError(t, ctx.Flush(true))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "capture_20250115_103000.log", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, "5,\"hello\"\n", string(data))
}

func TestBuilderInvalidFormatSurfacesAtBuild(t *testing.T) {
	ctx, err := NewBuilder().
		Format("xml").
		Locator(storage.FixedLocator{Volume: newFakeVolume()}).
		Build()
	require.Error(t, err)
	assert.Nil(t, ctx)
}

func TestBuilderBadDirectory(t *testing.T) {
	// A file where the directory should be makes creation fail
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	ctx, err := NewBuilder().
		Directory(filepath.Join(blocker, "sub")).
		Build()
	require.Error(t, err)
	assert.Nil(t, ctx)
}
