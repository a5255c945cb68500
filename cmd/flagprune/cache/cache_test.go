package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigest_StableAndDistinct(t *testing.T) {
	assert.Equal(t, Digest([]byte("abc")), Digest([]byte("abc")))
	assert.NotEqual(t, Digest([]byte("abc")), Digest([]byte("abd")))
}

func TestUnchanged(t *testing.T) {
	c := New()
	c.Record("a.ts", "src1", "cfg1")

	assert.True(t, c.Unchanged("a.ts", "src1", "cfg1"))
	assert.False(t, c.Unchanged("a.ts", "src2", "cfg1"))
	assert.False(t, c.Unchanged("a.ts", "src1", "cfg2"))
	assert.False(t, c.Unchanged("b.ts", "src1", "cfg1"))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	c := New()
	c.Record("src/a.ts", "digest-a", "cfg")
	c.Record("src/b.ts", "digest-b", "cfg")
	require.NoError(t, Save(path, c))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c.Entries, loaded.Entries)
}

func TestLoad_MissingFileIsEmptyCache(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)
	assert.Empty(t, loaded.Entries)
}
