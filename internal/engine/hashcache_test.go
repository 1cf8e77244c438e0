package engine_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/bodyfile/internal/engine"
)

func TestHashCache_StoreLookup(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "hashes.db")

	cache, err := engine.OpenHashCache(path)
	require.NoError(t, err)
	assert.Equal(t, path, cache.Path())

	require.NoError(t, cache.Store("/etc/passwd", engine.HashMD5, "abc", 10, 100, 200))
	require.NoError(t, cache.Flush())

	digest, ok := cache.Lookup("/etc/passwd", engine.HashMD5, 10, 100, 200)
	assert.True(t, ok)
	assert.Equal(t, "abc", digest)

	_, ok = cache.Lookup("/etc/passwd", engine.HashSHA256, 10, 100, 200)
	assert.False(t, ok, "digests are keyed by algorithm")

	_, ok = cache.Lookup("/etc/passwd", engine.HashMD5, 11, 100, 200)
	assert.False(t, ok, "size changed")
	_, ok = cache.Lookup("/etc/passwd", engine.HashMD5, 10, 101, 200)
	assert.False(t, ok, "mtime changed")
	_, ok = cache.Lookup("/etc/passwd", engine.HashMD5, 10, 100, 201)
	assert.False(t, ok, "ctime changed")

	_, ok = cache.Lookup("/missing", engine.HashMD5, 10, 100, 200)
	assert.False(t, ok)

	require.NoError(t, cache.Close())
}

func TestHashCache_PersistsAcrossOpen(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "hashes.db")

	cache, err := engine.OpenHashCache(path)
	require.NoError(t, err)
	require.NoError(t, cache.Store("/a", engine.HashBLAKE3, "d1", 1, 2, 3))
	require.NoError(t, cache.Store("/a", engine.HashBLAKE3, "d2", 1, 2, 3))
	require.NoError(t, cache.Close()) // flushes

	cache, err = engine.OpenHashCache(path)
	require.NoError(t, err)
	defer cache.Close()

	digest, ok := cache.Lookup("/a", engine.HashBLAKE3, 1, 2, 3)
	assert.True(t, ok)
	assert.Equal(t, "d2", digest, "later stores replace earlier ones")
}

func TestHashCache_BatchFlush(t *testing.T) {
	t.Parallel()
	cache, err := engine.OpenHashCache(filepath.Join(t.TempDir(), "hashes.db"))
	require.NoError(t, err)
	defer cache.Close()

	for i := range 150 {
		require.NoError(t, cache.Store(fmt.Sprintf("/f/%03d", i), engine.HashMD5, "x", int64(i), 0, 0))
	}
	require.NoError(t, cache.Flush())
	require.NoError(t, cache.Flush(), "flushing an empty batch is a no-op")

	digest, ok := cache.Lookup("/f/000", engine.HashMD5, 0, 0, 0)
	assert.True(t, ok)
	assert.Equal(t, "x", digest)
	_, ok = cache.Lookup("/f/149", engine.HashMD5, 149, 0, 0)
	assert.True(t, ok)
}

func TestDefaultHashCachePath(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	assert.Equal(t, "/tmp/xdg-cache/bodyfile/hashes.db", engine.DefaultHashCachePath())
}
