package session

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/escuela/internal/models"
)

// Loader supplies the session restored at startup.
type Loader interface {
	Load() *models.Session
}

// Listener receives the current session, nil when logged out.
type Listener func(*models.Session)

type subscription struct {
	id uint64
	fn Listener
}

// State is the single source of truth for who is logged in.
//
// Listeners are invoked synchronously, in subscription order, within the
// Set or Clear call that caused the change. A new subscriber immediately
// receives the current value. Listeners must not call Set, Clear or
// Subscribe on the same State.
type State struct {
	// dispatch serialises changes and their delivery so no listener
	// observes an intermediate value.
	dispatch sync.Mutex

	mu      sync.RWMutex
	current *models.Session

	subsMu sync.Mutex
	subs   []subscription
	nextID uint64
}

// New creates a State initialised from loader. A nil loader starts logged out.
func New(loader Loader) *State {
	s := &State{}
	if loader != nil {
		s.current = loader.Load()
	}

	if s.current != nil {
		log.Debug().Str("username", s.current.Username).Str("role", s.current.Role.String()).Msg("session restored")
	}

	return s
}

// Current returns a copy of the current session, or nil.
func (s *State) Current() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current.Clone()
}

// Authenticated returns true if a session with a token is present.
func (s *State) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current.HasToken()
}

// Set replaces the current session and notifies listeners.
func (s *State) Set(session *models.Session) {
	s.replace(session.Clone())
}

// Clear removes the current session and notifies listeners.
func (s *State) Clear() {
	s.replace(nil)
}

// Subscribe registers fn and delivers the current value to it before
// returning. The returned function removes the subscription.
func (s *State) Subscribe(fn Listener) func() {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	s.subsMu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.subsMu.Unlock()

	fn(s.Current())

	return func() { s.unsubscribe(id) }
}

func (s *State) replace(session *models.Session) {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	s.mu.Lock()
	s.current = session
	s.mu.Unlock()

	s.subsMu.Lock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.subsMu.Unlock()

	for _, sub := range subs {
		// each listener gets its own copy
		sub.fn(session.Clone())
	}
}

func (s *State) unsubscribe(id uint64) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}
