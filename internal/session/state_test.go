package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/escuela/internal/models"
)

type staticLoader struct {
	session *models.Session
	calls   int
}

func (l *staticLoader) Load() *models.Session {
	l.calls++
	return l.session
}

func testSession(name string) *models.Session {
	return &models.Session{UserID: 1, Username: name, Role: models.RoleAdmin, AccessToken: "tok-" + name}
}

func TestNew_LoadsOnce(t *testing.T) {
	loader := &staticLoader{session: testSession("ana")}

	s := New(loader)
	assert.Equal(t, 1, loader.calls)
	require.NotNil(t, s.Current())
	assert.Equal(t, "ana", s.Current().Username)
	assert.Equal(t, 1, loader.calls)
	assert.True(t, s.Authenticated())

	empty := New(nil)
	assert.Nil(t, empty.Current())
	assert.False(t, empty.Authenticated())
}

func TestState_SubscribeReplaysLatest(t *testing.T) {
	s := New(nil)

	var early []*models.Session
	s.Subscribe(func(sess *models.Session) { early = append(early, sess) })

	require.Len(t, early, 1)
	assert.Nil(t, early[0])

	s.Set(testSession("ana"))

	var late []*models.Session
	s.Subscribe(func(sess *models.Session) { late = append(late, sess) })

	require.Len(t, late, 1)
	require.NotNil(t, late[0])
	assert.Equal(t, "ana", late[0].Username)

	require.Len(t, early, 2)
	assert.Equal(t, "ana", early[1].Username)
}

func TestState_NotifiesInSubscriptionOrder(t *testing.T) {
	s := New(nil)

	var order []string
	s.Subscribe(func(*models.Session) { order = append(order, "first") })
	s.Subscribe(func(*models.Session) { order = append(order, "second") })
	s.Subscribe(func(*models.Session) { order = append(order, "third") })
	order = nil

	s.Set(testSession("ana"))
	s.Clear()

	assert.Equal(t, []string{"first", "second", "third", "first", "second", "third"}, order)
}

func TestState_ListenerSeesCommittedValue(t *testing.T) {
	s := New(nil)

	s.Subscribe(func(sess *models.Session) {
		// Current must already reflect what is being delivered
		assert.Equal(t, sess, s.Current())
	})

	s.Set(testSession("ana"))
	s.Set(testSession("bea"))
	s.Clear()
}

func TestState_Unsubscribe(t *testing.T) {
	s := New(nil)

	calls := 0
	unsubscribe := s.Subscribe(func(*models.Session) { calls++ })
	require.Equal(t, 1, calls)

	unsubscribe()
	s.Set(testSession("ana"))
	assert.Equal(t, 1, calls)

	// Idempotent
	unsubscribe()
}

func TestState_CopiesAreIsolated(t *testing.T) {
	s := New(nil)
	in := testSession("ana")
	s.Set(in)

	in.Username = "mutated"
	assert.Equal(t, "ana", s.Current().Username)

	out := s.Current()
	out.Role = models.RoleStudent
	assert.Equal(t, models.RoleAdmin, s.Current().Role)
}

func TestState_ConcurrentSetIsSerialised(t *testing.T) {
	s := New(nil)

	var mu sync.Mutex
	seen := 0
	s.Subscribe(func(sess *models.Session) {
		mu.Lock()
		seen++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				s.Set(testSession("ana"))
			} else {
				s.Clear()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 51, seen)
}

func TestTokenSource(t *testing.T) {
	s := New(nil)
	ts := NewTokenSource(s)

	_, err := ts.Token()
	require.ErrorIs(t, err, ErrNoSession)

	s.Set(testSession("ana"))
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-ana", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)

	s.Clear()
	_, err = ts.Token()
	require.ErrorIs(t, err, ErrNoSession)
}
