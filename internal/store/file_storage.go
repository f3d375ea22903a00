package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

const fileStorageName = "session.json"

// document is the on-disk layout of the file storage.
type document struct {
	Version int               `json:"version"`
	Values  map[string]string `json:"values"`
}

// FileStorage keeps key/value pairs in a JSON document on the local filesystem.
type FileStorage struct {
	mu      sync.Mutex
	baseDir string
}

var _ Storage = (*FileStorage)(nil)

// NewFileStorage creates a file backed storage.
// If baseDir is empty, uses ~/.escuela/session/
func NewFileStorage(baseDir string) (*FileStorage, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".escuela", "session")
	}

	// Tokens live here, keep it private
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	log.Debug().Str("baseDir", baseDir).Msg("file storage initialized")

	return &FileStorage{baseDir: baseDir}, nil
}

// Path returns the location of the backing document.
func (s *FileStorage) Path() string {
	return filepath.Join(s.baseDir, fileStorageName)
}

// Get reads a single key.
func (s *FileStorage) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return "", false, err
	}

	value, ok := doc.Values[key]
	return value, ok, nil
}

// Set writes a single key.
func (s *FileStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		// A corrupt document is replaced rather than blocking every write
		log.Warn().Err(err).Str("path", s.Path()).Msg("replacing unreadable storage document")
		doc = newDocument()
	}

	doc.Values[key] = value
	return s.save(doc)
}

// Remove deletes keys; the document is rewritten once.
func (s *FileStorage) Remove(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		log.Warn().Err(err).Str("path", s.Path()).Msg("replacing unreadable storage document")
		doc = newDocument()
	}

	for _, key := range keys {
		delete(doc.Values, key)
	}
	return s.save(doc)
}

func newDocument() *document {
	return &document{Version: 1, Values: make(map[string]string)}
}

// load reads the document, a missing file is an empty document.
func (s *FileStorage) load() (*document, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return newDocument(), nil
		}
		return nil, fmt.Errorf("failed to read storage: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageCorrupt, err)
	}

	if doc.Values == nil {
		doc.Values = make(map[string]string)
	}

	return &doc, nil
}

// save writes the document atomically.
func (s *FileStorage) save(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal storage: %w", err)
	}

	path := s.Path()
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save storage: %w", err)
	}

	return nil
}
