package auth

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/escuela/internal/models"
	"github.com/wolfeidau/escuela/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Decision is the outcome of a route check.
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
	DenyUnknownRoute
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "unauthenticated"
	case DenyForbidden:
		return "forbidden"
	case DenyUnknownRoute:
		return "unknown_route"
	default:
		return "unknown"
	}
}

// Verdict is the guard's answer for one navigation.
type Verdict struct {
	Decision Decision

	// Path is the canonical path that was checked.
	Path string

	// Redirect is where a denied navigation must go instead. Empty on allow.
	Redirect string

	// Session is the session that was admitted, nil on deny.
	Session *models.Session
}

// Allowed returns true if entry is granted.
func (v Verdict) Allowed() bool {
	return v.Decision == Allow
}

// SessionSource exposes the current session.
type SessionSource interface {
	Current() *models.Session
}

// Guard decides whether a navigation may enter a route. It never performs
// I/O and never blocks beyond reading the session source.
type Guard struct {
	source SessionSource
}

// NewGuard creates a guard reading the session from source.
func NewGuard(source SessionSource) *Guard {
	return &Guard{source: source}
}

// Check evaluates path against the current session.
func (g *Guard) Check(ctx context.Context, path string) Verdict {
	verdict := Evaluate(g.source.Current(), path)

	if !verdict.Allowed() {
		telemetry.GetMetrics().GuardDenialsTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.String("reason", verdict.Decision.String())))

		log.Debug().
			Str("path", verdict.Path).
			Str("decision", verdict.Decision.String()).
			Msg("navigation denied")
	}

	return verdict
}

// Evaluate is the pure form of Check. The login path is public; every other
// path needs a session with a live token and, for role-gated routes, a role
// listed in the route table. Unmatched paths are denied.
func Evaluate(session *models.Session, path string) Verdict {
	path = Canonical(path)

	if path == LoginPath {
		return Verdict{Decision: Allow, Path: path}
	}

	route, ok := LookupRoute(path)
	if !ok {
		return deny(DenyUnknownRoute, path)
	}

	if !session.HasToken() || session.IsExpired() {
		return deny(DenyUnauthenticated, path)
	}

	if !route.Allows(session.Role) {
		return deny(DenyForbidden, path)
	}

	return Verdict{Decision: Allow, Path: path, Session: session}
}

func deny(decision Decision, path string) Verdict {
	return Verdict{Decision: decision, Path: path, Redirect: LoginPath}
}
