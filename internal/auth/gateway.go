package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/escuela/internal/client"
	"github.com/wolfeidau/escuela/internal/models"
	"github.com/wolfeidau/escuela/internal/session"
	"github.com/wolfeidau/escuela/internal/telemetry"
	"github.com/wolfeidau/escuela/internal/util"
)

const (
	loginPath    = "auth/login"
	registerPath = "auth/register"
	mePath       = "auth/me"

	loginFallback    = "Error en autenticación"
	registerFallback = "Error al registrar usuario"
)

var (
	// ErrStaleLogin is returned by a login or refresh whose response arrived
	// after a newer login or a logout. Its result is never applied.
	ErrStaleLogin = errors.New("login superseded")

	// ErrInvalidLoginResponse is wrapped when a 2xx login response lacks a
	// token or user.
	ErrInvalidLoginResponse = errors.New("invalid login response")
)

// SessionStore is the durable mirror written on login and cleared on logout.
type SessionStore interface {
	Save(session *models.Session) error
	Clear()
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the register request body.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"rol"`
}

// loginResponse covers both backend shapes: DRF token auth ("token") and
// simplejwt ("access" plus "refresh").
type loginResponse struct {
	Token     string       `json:"token"`
	Access    string       `json:"access"`
	Refresh   string       `json:"refresh"`
	ExpiresIn int64        `json:"expires_in"`
	User      *userPayload `json:"user"`
}

// Gateway performs the authentication calls and applies their results to
// the session store and state.
//
// Every Login takes a ticket; a newer Login or a Logout invalidates older
// tickets, so a response that resolves late is discarded instead of
// resurrecting a session. State listeners must not call back into the
// Gateway.
type Gateway struct {
	api    *client.API
	authed *client.API
	store  SessionStore
	state  *session.State
	now    func() time.Time

	mu    sync.Mutex
	epoch uint64
}

// NewGateway creates a gateway. api must not carry credentials; calls that
// need the session token get it from state.
func NewGateway(api *client.API, store SessionStore, state *session.State) *Gateway {
	return &Gateway{
		api:    api,
		authed: api.WithTokenSource(session.NewTokenSource(state)),
		store:  store,
		state:  state,
		now:    time.Now,
	}
}

// Login authenticates against the backend. On success the session is
// persisted, published to the state and returned. On failure neither the
// store nor the state is touched and the error is a *client.APIError.
func (g *Gateway) Login(ctx context.Context, username, password string) (*models.Session, error) {
	metrics := telemetry.GetMetrics()
	metrics.LoginAttemptsTotal.Add(ctx, 1)

	ticket := g.begin()

	var resp loginResponse
	err := g.api.Do(ctx, client.Request{
		Method:   http.MethodPost,
		Path:     loginPath,
		Body:     Credentials{Username: username, Password: password},
		Fallback: loginFallback,
	}, &resp)
	if err != nil {
		metrics.LoginFailuresTotal.Add(ctx, 1)
		log.Debug().Err(err).Str("username", username).Msg("login failed")
		return nil, err
	}

	sess, err := g.normalize(&resp)
	if err != nil {
		metrics.LoginFailuresTotal.Add(ctx, 1)
		return nil, &client.APIError{StatusCode: http.StatusOK, Message: loginFallback, Err: err}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if ticket != g.epoch {
		metrics.StaleLoginsTotal.Add(ctx, 1)
		log.Info().Str("username", sess.Username).Msg("discarding superseded login response")
		return nil, ErrStaleLogin
	}

	g.apply(sess)

	log.Info().Str("username", sess.Username).Str("role", sess.Role.String()).Msg("logged in")

	return sess.Clone(), nil
}

// Logout clears the store, then the state. It never fails and invalidates
// any login still in flight.
func (g *Gateway) Logout() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.epoch++

	g.store.Clear()
	g.state.Clear()

	telemetry.GetMetrics().LogoutsTotal.Add(context.Background(), 1)
	log.Debug().Msg("logged out")
}

// Register creates a user account and returns the backend acknowledgment
// unchanged. It does not log the new user in.
func (g *Gateway) Register(ctx context.Context, reg Registration) (map[string]any, error) {
	var ack map[string]any
	err := g.api.Do(ctx, client.Request{
		Method:      http.MethodPost,
		Path:        registerPath,
		Body:        reg,
		Fallback:    registerFallback,
		MessageKeys: []string{"error", "username"},
	}, &ack)
	if err != nil {
		return nil, err
	}

	log.Info().Str("username", reg.Username).Msg("user registered")

	return ack, nil
}

// Me refreshes the user fields of the current session from the backend.
// Fields the backend omits keep their current value, so a missing role
// never downgrades the session.
func (g *Gateway) Me(ctx context.Context) (*models.Session, error) {
	current := g.state.Current()
	if !current.HasToken() {
		return nil, session.ErrNoSession
	}

	g.mu.Lock()
	ticket := g.epoch
	g.mu.Unlock()

	var user userPayload
	if err := g.authed.Do(ctx, client.Request{Method: http.MethodGet, Path: mePath}, &user); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if ticket != g.epoch {
		return nil, ErrStaleLogin
	}

	if user.ID != 0 {
		current.UserID = user.ID
	}
	if user.Username != "" {
		current.Username = user.Username
	}
	if user.Email != "" {
		current.Email = user.Email
	}
	if role := strings.TrimSpace(user.Role); role != "" {
		current.Role = models.Role(role)
	}

	g.apply(current)

	return current.Clone(), nil
}

// begin issues a ticket for a new login, invalidating earlier ones.
func (g *Gateway) begin() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.epoch++
	return g.epoch
}

// apply persists then publishes sess. Callers hold mu.
func (g *Gateway) apply(sess *models.Session) {
	if err := g.store.Save(sess); err != nil {
		// the store cleared itself, the session lives only in memory
		log.Warn().Err(err).Msg("failed to persist session")
	}
	g.state.Set(sess)
}

func (g *Gateway) normalize(resp *loginResponse) (*models.Session, error) {
	token := util.Coalesce(resp.Token, resp.Access)
	if token == "" {
		return nil, errors.Join(ErrInvalidLoginResponse, errors.New("missing token"))
	}
	if resp.User == nil {
		return nil, errors.Join(ErrInvalidLoginResponse, errors.New("missing user"))
	}

	role := models.Role(strings.TrimSpace(resp.User.Role))
	if role == "" {
		role = models.RoleUnknown
	}

	sess := &models.Session{
		UserID:       resp.User.ID,
		Username:     resp.User.Username,
		Email:        resp.User.Email,
		Role:         role,
		AccessToken:  token,
		RefreshToken: resp.Refresh,
	}

	if exp, ok := tokenExpiry(token); ok {
		sess.ExpiresAt = exp
	} else if resp.ExpiresIn > 0 {
		sess.ExpiresAt = g.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	if err := sess.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidLoginResponse, err)
	}

	return sess, nil
}

// tokenExpiry reads the exp claim of a JWT access token. The signature is
// not checked, the backend remains the authority on validity.
func tokenExpiry(token string) (time.Time, bool) {
	if strings.Count(token, ".") != 2 {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}

	return exp.Time, true
}
