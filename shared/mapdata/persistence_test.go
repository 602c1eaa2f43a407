package mapdata

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*SessionCache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache", "sessions.db")
	c, err := OpenSessionCache(path)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, path
}

func TestSessionCacheRoundTrip(t *testing.T) {
	c, _ := openTemp(t)

	_, err := c.Get("/s1", "fp1")
	assert.ErrorIs(t, err, ErrNotCached)

	require.NoError(t, c.Put("/s1", "fp1", 40, []byte("dados")))
	data, err := c.Get("/s1", "fp1")
	require.NoError(t, err)
	assert.Equal(t, []byte("dados"), data)

	_, err = c.Get("/s1", "fp2")
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestSessionCachePutReplaces(t *testing.T) {
	c, _ := openTemp(t)

	require.NoError(t, c.Put("/s1", "fp1", 1, []byte("a")))
	require.NoError(t, c.Put("/s1", "fp2", 2, []byte("b")))
	require.NoError(t, c.Put("/s2", "fp1", 3, []byte("c")))

	assert.Equal(t, 2, c.Len())
	data, err := c.Get("/s1", "fp2")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), data)
}

func TestSessionCacheReopen(t *testing.T) {
	c, path := openTemp(t)
	require.NoError(t, c.Put("/s1", "fp1", 1, []byte("a")))
	require.NoError(t, c.Close())

	c2, err := OpenSessionCache(path)
	require.NoError(t, err)
	defer c2.Close()

	data, err := c2.Get("/s1", "fp1")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), data)
}

func TestSessionCacheNil(t *testing.T) {
	var c *SessionCache
	_, err := c.Get("/s1", "fp")
	assert.Error(t, err)
	assert.Error(t, c.Put("/s1", "fp", 0, nil))
	assert.NoError(t, c.Close())
}
