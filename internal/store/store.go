package store

import (
	"errors"
)

// Sentinel errors for common error conditions
var (
	// ErrMalformedSession is logged when the persisted user record cannot be
	// decoded into a valid session. It is never returned from Load.
	ErrMalformedSession = errors.New("malformed persisted session")

	// ErrStorageCorrupt is returned by a storage medium whose backing
	// document can no longer be parsed.
	ErrStorageCorrupt = errors.New("storage corrupt")
)

// Fixed keys under which the session is persisted.
const (
	KeyToken        = "token"
	KeyRefreshToken = "refreshToken"
	KeyCurrentUser  = "currentUser"
)

// Storage is a durable string key/value medium that survives restarts.
type Storage interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes the keys. Missing keys are not an error.
	Remove(keys ...string) error
}

// Unavailable is the storage used when no durable medium exists. Every write
// is a no-op and every read is absent.
type Unavailable struct{}

var _ Storage = Unavailable{}

func (Unavailable) Get(string) (string, bool, error) { return "", false, nil }

func (Unavailable) Set(string, string) error { return nil }

func (Unavailable) Remove(...string) error { return nil }
