// Package login binds a browser to the console process with a signed
// cookie. The school session itself lives in the session state, the cookie
// only proves the browser is the operator who logged in through the console.
package login

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidSession = errors.New("invalid session")
	ErrExpiredSession = errors.New("session expired")
)

// CookieName is the operator cookie.
const CookieName = "_escuela"

type contextKey string

const operatorContextKey contextKey = "operator"

// Operator is the signed cookie payload.
type Operator struct {
	Username  string    `json:"username"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Cookies issues and verifies operator cookies.
type Cookies struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewCookies creates a cookie signer. secret must be at least 32 bytes.
func NewCookies(secret []byte, ttl time.Duration, secure bool) (*Cookies, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session secret must be 32 bytes")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session TTL must be greater than 0")
	}

	return &Cookies{secret: secret, ttl: ttl, secure: secure, now: time.Now}, nil
}

// NewSecret returns a random signing secret. A console restart therefore
// invalidates every cookie it issued.
func NewSecret() []byte {
	secret := make([]byte, 32)
	_, _ = rand.Read(secret)
	return secret
}

// Issue sets a fresh operator cookie for username.
func (c *Cookies) Issue(w http.ResponseWriter, username string) error {
	now := c.now()
	token, err := c.sign(Operator{Username: username, IssuedAt: now, ExpiresAt: now.Add(c.ttl)})
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(c.ttl.Seconds()),
	})

	return nil
}

// Clear expires the operator cookie.
func (c *Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Verify extracts and validates the operator cookie of r.
func (c *Cookies) Verify(r *http.Request) (*Operator, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, ErrInvalidSession
	}
	return c.verify(cookie.Value)
}

// RequireOperator redirects requests without a valid cookie, or whose
// cookie names someone other than match returns, to redirectURL with an
// error_code query parameter.
func (c *Cookies) RequireOperator(redirectURL string, match func() string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op, err := c.Verify(r)
			if err == nil && match != nil && op.Username != match() {
				err = ErrInvalidSession
			}
			if err != nil {
				errorCode := "invalid"
				if errors.Is(err, ErrExpiredSession) {
					errorCode = "expired"
				}
				log.Debug().Str("path", r.URL.Path).Str("error_code", errorCode).Msg("operator cookie rejected")

				c.Clear(w)
				http.Redirect(w, r, redirectURL+"?error_code="+errorCode, http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), operatorContextKey, op)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OperatorFromContext returns the operator set by RequireOperator.
func OperatorFromContext(ctx context.Context) (*Operator, bool) {
	op, ok := ctx.Value(operatorContextKey).(*Operator)
	return op, ok
}

// sign encodes op as base64(json).base64(hmac).
func (c *Cookies) sign(op Operator) (string, error) {
	data, err := json.Marshal(op)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	encoded := base64.URLEncoding.EncodeToString(data)

	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encoded))

	return encoded + "." + base64.URLEncoding.EncodeToString(mac.Sum(nil)), nil
}

func (c *Cookies) verify(token string) (*Operator, error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok || strings.Contains(sig, ".") {
		return nil, ErrInvalidSession
	}

	receivedSig, err := base64.URLEncoding.DecodeString(sig)
	if err != nil {
		return nil, ErrInvalidSession
	}

	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encoded))
	if !hmac.Equal(receivedSig, mac.Sum(nil)) {
		log.Debug().Msg("operator cookie signature mismatch")
		return nil, ErrInvalidSession
	}

	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidSession
	}

	var op Operator
	if err := json.Unmarshal(data, &op); err != nil {
		return nil, ErrInvalidSession
	}

	if c.now().After(op.ExpiresAt) {
		return nil, ErrExpiredSession
	}

	return &op, nil
}
