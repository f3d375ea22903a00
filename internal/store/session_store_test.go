package store

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/escuela/internal/models"
	"github.com/wolfeidau/escuela/internal/store/memory"
)

func testSession() *models.Session {
	return &models.Session{
		UserID:       7,
		Username:     "ana",
		Email:        "a@x.com",
		Role:         models.RoleTeacher,
		AccessToken:  "tok1",
		RefreshToken: "ref1",
		ExpiresAt:    time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestSessionStore_RoundTrip(t *testing.T) {
	sessions := []*models.Session{
		testSession(),
		{UserID: 1, Username: "root", Role: models.RoleAdmin, AccessToken: "a"},
		{UserID: 2, Username: "nobody", Email: "n@x.com", Role: models.RoleUnknown, AccessToken: "b"},
	}

	for _, want := range sessions {
		t.Run(want.Username, func(t *testing.T) {
			s := NewSessionStore(memory.NewStorage())

			require.NoError(t, s.Save(want))

			got := s.Load()
			require.NotNil(t, got)
			assert.Equal(t, want.UserID, got.UserID)
			assert.Equal(t, want.Username, got.Username)
			assert.Equal(t, want.Email, got.Email)
			assert.Equal(t, want.Role, got.Role)
			assert.Equal(t, want.AccessToken, got.AccessToken)
			assert.Equal(t, want.RefreshToken, got.RefreshToken)
			assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))
		})
	}
}

func TestSessionStore_RoundTripFile(t *testing.T) {
	storage, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	s := NewSessionStore(storage)
	require.NoError(t, s.Save(testSession()))

	got := NewSessionStore(storage).Load()
	require.NotNil(t, got)
	assert.Equal(t, "tok1", got.AccessToken)
	assert.Equal(t, models.RoleTeacher, got.Role)
}

func TestSessionStore_ClearThenLoad(t *testing.T) {
	storage := memory.NewStorage()
	s := NewSessionStore(storage)

	require.NoError(t, s.Save(testSession()))
	s.Clear()

	assert.Nil(t, s.Load())
	assert.Equal(t, 0, storage.Len())

	// Clearing an empty store is fine
	s.Clear()
	assert.Nil(t, s.Load())
}

func TestSessionStore_MalformedRecordSelfHeals(t *testing.T) {
	storage := memory.NewStorage()
	s := NewSessionStore(storage)

	require.NoError(t, s.Save(testSession()))
	require.NoError(t, storage.Set(KeyCurrentUser, "{not json"))

	assert.Nil(t, s.Load())
	assert.Nil(t, s.Load())

	_, ok, err := storage.Get(KeyToken)
	require.NoError(t, err)
	assert.False(t, ok, "store should be wiped after a failed parse")
	assert.Equal(t, 0, storage.Len())
}

func TestSessionStore_StructurallyInvalidRecord(t *testing.T) {
	storage := memory.NewStorage()
	s := NewSessionStore(storage)

	require.NoError(t, storage.Set(KeyToken, "tok"))
	require.NoError(t, storage.Set(KeyCurrentUser, `{"id":1}`))

	assert.Nil(t, s.Load())
	assert.Equal(t, 0, storage.Len())
}

func TestSessionStore_TokenKeyIsAuthoritative(t *testing.T) {
	storage := memory.NewStorage()
	s := NewSessionStore(storage)

	require.NoError(t, s.Save(testSession()))
	require.NoError(t, storage.Remove(KeyToken))

	assert.Nil(t, s.Load(), "no token means no session even with a user record")

	require.NoError(t, storage.Set(KeyToken, "rotated"))
	got := s.Load()
	require.NotNil(t, got)
	assert.Equal(t, "rotated", got.AccessToken)
}

func TestSessionStore_SaveWithoutRefreshRemovesStale(t *testing.T) {
	storage := memory.NewStorage()
	s := NewSessionStore(storage)

	require.NoError(t, s.Save(testSession()))

	next := testSession()
	next.RefreshToken = ""
	require.NoError(t, s.Save(next))

	_, ok, err := storage.Get(KeyRefreshToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionStore_RejectsInvalidSession(t *testing.T) {
	s := NewSessionStore(memory.NewStorage())
	assert.ErrorIs(t, s.Save(&models.Session{AccessToken: "x"}), models.ErrInvalidSession)
}

func TestSessionStore_Unavailable(t *testing.T) {
	s := NewSessionStore(nil)

	require.NoError(t, s.Save(testSession()))
	assert.Nil(t, s.Load())
	s.Clear()
}

func TestSessionStore_CorruptFileDocument(t *testing.T) {
	storage, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(storage.Path(), []byte("garbage"), 0600))

	s := NewSessionStore(storage)
	assert.Nil(t, s.Load())

	// Load wiped the document, so it parses again
	_, _, err = storage.Get(KeyToken)
	require.NoError(t, err)
}

// failingStorage rejects writes to one key.
type failingStorage struct {
	Storage
	key string
}

func (f *failingStorage) Set(key, value string) error {
	if key == f.key {
		return errors.New("disk full")
	}
	return f.Storage.Set(key, value)
}

func TestSessionStore_FailedSaveLeavesNoMixedSession(t *testing.T) {
	for _, key := range []string{KeyCurrentUser, KeyRefreshToken, KeyToken} {
		t.Run(key, func(t *testing.T) {
			storage := &failingStorage{Storage: memory.NewStorage()}
			s := NewSessionStore(storage)

			require.NoError(t, s.Save(&models.Session{UserID: 1, Username: "admin", Role: models.RoleAdmin, AccessToken: "admin-tok"}))

			storage.key = key
			err := s.Save(testSession())
			require.Error(t, err)

			assert.Nil(t, s.Load())
			for _, k := range []string{KeyToken, KeyRefreshToken, KeyCurrentUser} {
				_, ok, err := storage.Get(k)
				require.NoError(t, err)
				assert.False(t, ok, k)
			}
		})
	}
}
