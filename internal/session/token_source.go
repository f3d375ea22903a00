package session

import (
	"errors"

	"golang.org/x/oauth2"
)

// ErrNoSession is returned when an authenticated call is made while logged out.
var ErrNoSession = errors.New("no active session")

// TokenSource exposes the live session token to oauth2 transports. It reads
// the state on every request, so a logout stops credentials being sent.
type TokenSource struct {
	state *State
}

var _ oauth2.TokenSource = (*TokenSource)(nil)

// NewTokenSource creates a token source reading from state.
func NewTokenSource(state *State) *TokenSource {
	return &TokenSource{state: state}
}

// Token implements oauth2.TokenSource.
func (t *TokenSource) Token() (*oauth2.Token, error) {
	current := t.state.Current()
	if !current.HasToken() {
		return nil, ErrNoSession
	}

	return &oauth2.Token{
		AccessToken:  current.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: current.RefreshToken,
		Expiry:       current.ExpiresAt,
	}, nil
}
