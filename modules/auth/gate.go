package auth

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/hotube/pkg/flash"
	"github.com/dmitrymomot/hotube/pkg/logger"
	"github.com/dmitrymomot/hotube/pkg/session"
)

// Gate classifies routes as protected or public-only. Classification
// is static per route; the middleware only evaluates the login flag
// carried in the request context.
type Gate struct {
	flashes *flash.Manager
	logger  *slog.Logger
}

type GateOption func(*Gate)

func WithGateLogger(l *slog.Logger) GateOption {
	return func(g *Gate) { g.logger = l }
}

func NewGate(flashes *flash.Manager, opts ...GateOption) *Gate {
	g := &Gate{
		flashes: flashes,
		logger:  logger.NewDiscard(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Protect admits only logged-in requests. Anonymous requests get a
// one-time denial notice and a redirect to the login page; the wrapped
// handler never runs.
func (g *Gate) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !session.IsLoggedIn(r.Context()) {
			g.deny(w, r, "Log in first.", "/login")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PublicOnly admits only anonymous requests. Logged-in requests get a
// denial notice and a redirect home; the wrapped handler never runs.
func (g *Gate) PublicOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session.IsLoggedIn(r.Context()) {
			g.deny(w, r, "Not authorized.", "/")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Gate) deny(w http.ResponseWriter, r *http.Request, message, location string) {
	if err := g.flashes.Add(w, r, flash.KindError, message); err != nil {
		g.logger.ErrorContext(r.Context(), "failed to add flash notice",
			logger.Error(err),
			logger.Component("auth"),
		)
	}
	http.Redirect(w, r, location, http.StatusFound)
}
