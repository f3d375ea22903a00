package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnavailable(t *testing.T) {
	var s Storage = Unavailable{}

	require.NoError(t, s.Set(KeyToken, "tok"))

	_, ok, err := s.Get(KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Remove(KeyToken, KeyCurrentUser))
}

func TestNewFileStorage(t *testing.T) {
	t.Run("creates directory with correct permissions", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "session")

		s, err := NewFileStorage(dir)
		require.NoError(t, err)
		assert.NotNil(t, s)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
	})

	t.Run("uses default directory when baseDir is empty", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())

		s, err := NewFileStorage("")
		require.NoError(t, err)
		assert.Contains(t, s.Path(), filepath.Join(".escuela", "session"))
	})
}

func TestFileStorage_GetSetRemove(t *testing.T) {
	s, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	_, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("a", "1"))
	require.NoError(t, s.Set("b", "2"))

	v, ok, err := s.Get("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	require.NoError(t, s.Remove("a", "missing"))

	_, ok, err = s.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err = s.Get("b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestFileStorage_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFileStorage(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(KeyToken, "tok1"))

	reopened, err := NewFileStorage(dir)
	require.NoError(t, err)

	v, ok, err := reopened.Get(KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok1", v)
}

func TestFileStorage_CorruptDocument(t *testing.T) {
	s, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0600))

	_, _, err = s.Get(KeyToken)
	assert.ErrorIs(t, err, ErrStorageCorrupt)

	// Writes replace the unreadable document
	require.NoError(t, s.Set(KeyToken, "tok"))
	v, ok, err := s.Get(KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", v)
}
