package models

import (
	"errors"
	"slices"
	"time"
)

// ErrInvalidSession is returned when a session record is structurally incomplete.
var ErrInvalidSession = errors.New("invalid session")

// Role is one of the fixed access tags issued by the school backend.
type Role string

const (
	RoleAdmin   Role = "Administrador"
	RoleTeacher Role = "Docente"
	RoleStudent Role = "Estudiante"
	RoleStaff   Role = "Personal"

	// RoleUnknown is assigned when the backend omits the role. It matches no
	// entry in any role table, so every role-gated route and action is denied.
	RoleUnknown Role = "Usuario"
)

// Roles lists the closed set of recognised roles.
var Roles = []Role{RoleAdmin, RoleTeacher, RoleStudent, RoleStaff}

// Known returns true if the role is part of the closed role set.
func (r Role) Known() bool {
	return slices.Contains(Roles, r)
}

func (r Role) String() string {
	return string(r)
}

// Session represents the currently authenticated user and their credentials.
// The JSON form is the persisted user record; the refresh token is stored
// under its own key and is never part of the record.
type Session struct {
	UserID       int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         Role      `json:"rol"`
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expiresAt,omitzero"`
}

// Validate checks the session carries the fields every consumer relies on.
func (s *Session) Validate() error {
	if s == nil || s.Username == "" || s.Role == "" {
		return ErrInvalidSession
	}
	return nil
}

// HasToken returns true if the session carries a non-empty access token.
func (s *Session) HasToken() bool {
	return s != nil && s.AccessToken != ""
}

// IsExpired returns true if the session has a known expiry that has passed.
// Sessions without an expiry never expire on the client side.
func (s *Session) IsExpired() bool {
	if s == nil || s.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(s.ExpiresAt)
}

// HasAnyRole returns true if the session role is one of roles.
func (s *Session) HasAnyRole(roles ...Role) bool {
	if s == nil {
		return false
	}
	return slices.Contains(roles, s.Role)
}

// Clone returns a copy safe to hand to other components.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}
