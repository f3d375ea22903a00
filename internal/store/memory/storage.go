package memory

import (
	"sync"
)

// Storage implements store.Storage using in-memory storage.
// This implementation is for testing and ephemeral runs - data is lost on restart.
type Storage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewStorage creates a new in-memory storage.
func NewStorage() *Storage {
	return &Storage{
		values: make(map[string]string),
	}
}

// Get retrieves a value by key.
func (s *Storage) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	return value, ok, nil
}

// Set stores a value under key.
func (s *Storage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

// Remove deletes keys.
func (s *Storage) Remove(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

// Len returns the number of stored keys.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.values)
}
