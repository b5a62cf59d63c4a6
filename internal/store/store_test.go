package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetMissingKey(t *testing.T) {
	s := openTemp(t)

	val, err := s.Get("nope")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestSetAndGet(t *testing.T) {
	s := openTemp(t)

	require.NoError(t, s.Set("token", "abc"))
	val, err := s.Get("token")
	require.NoError(t, err)
	assert.Equal(t, "abc", val)
}

func TestSetOverwrites(t *testing.T) {
	s := openTemp(t)

	require.NoError(t, s.Set("active_workspace_id", "5"))
	require.NoError(t, s.Set("active_workspace_id", "7"))

	val, err := s.Get("active_workspace_id")
	require.NoError(t, err)
	assert.Equal(t, "7", val)
}

func TestDelete(t *testing.T) {
	s := openTemp(t)

	require.NoError(t, s.Set("token", "abc"))
	require.NoError(t, s.Delete("token"))

	val, err := s.Get("token")
	require.NoError(t, err)
	assert.Empty(t, val)

	// deleting a missing key is not an error
	require.NoError(t, s.Delete("token"))
}
