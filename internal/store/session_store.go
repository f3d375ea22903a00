package store

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/escuela/internal/models"
)

// SessionStore mirrors the current session into durable storage.
// It has no lifecycle of its own, callers decide when to save or clear.
type SessionStore struct {
	storage Storage
}

// NewSessionStore creates a session store over storage. A nil storage
// behaves as Unavailable.
func NewSessionStore(storage Storage) *SessionStore {
	if storage == nil {
		storage = Unavailable{}
	}
	return &SessionStore{storage: storage}
}

// Save writes the user record, the optional refresh token and finally the
// token. The token key decides whether a session exists, so a failed write
// clears every key instead of leaving a token beside another user's record.
func (s *SessionStore) Save(session *models.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}

	record, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.write(session, string(record)); err != nil {
		s.Clear()
		return err
	}

	log.Debug().Str("username", session.Username).Msg("session persisted")

	return nil
}

func (s *SessionStore) write(session *models.Session, record string) error {
	if err := s.storage.Set(KeyCurrentUser, record); err != nil {
		return fmt.Errorf("failed to save user record: %w", err)
	}

	if session.RefreshToken != "" {
		if err := s.storage.Set(KeyRefreshToken, session.RefreshToken); err != nil {
			return fmt.Errorf("failed to save refresh token: %w", err)
		}
	} else if err := s.storage.Remove(KeyRefreshToken); err != nil {
		return fmt.Errorf("failed to remove stale refresh token: %w", err)
	}

	if err := s.storage.Set(KeyToken, session.AccessToken); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}

// Load returns the persisted session or nil. It never fails: unreadable or
// malformed state is treated as absent and the store is wiped.
func (s *SessionStore) Load() *models.Session {
	token, ok, err := s.storage.Get(KeyToken)
	if err != nil {
		s.discard(err)
		return nil
	}
	if !ok || token == "" {
		return nil
	}

	record, ok, err := s.storage.Get(KeyCurrentUser)
	if err != nil {
		s.discard(err)
		return nil
	}
	if !ok || record == "" {
		return nil
	}

	var session models.Session
	if err := json.Unmarshal([]byte(record), &session); err != nil {
		s.discard(fmt.Errorf("%w: %v", ErrMalformedSession, err))
		return nil
	}

	if err := session.Validate(); err != nil {
		s.discard(fmt.Errorf("%w: %v", ErrMalformedSession, err))
		return nil
	}

	// The token key is authoritative over any copy inside the record
	session.AccessToken = token

	refresh, ok, err := s.storage.Get(KeyRefreshToken)
	if err == nil && ok {
		session.RefreshToken = refresh
	}

	return &session
}

// Clear removes every persisted session key.
func (s *SessionStore) Clear() {
	if err := s.storage.Remove(KeyToken, KeyRefreshToken, KeyCurrentUser); err != nil {
		log.Warn().Err(err).Msg("failed to clear persisted session")
	}
}

func (s *SessionStore) discard(err error) {
	log.Warn().Err(err).Msg("discarding persisted session")
	s.Clear()
}
