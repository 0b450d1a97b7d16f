package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/dmitrymomot/hotube/pkg/cookie"
)

// Manager establishes, reads and destroys sessions. Sessions exist only
// for logged-in principals: anonymous visitors carry no server-side state.
type Manager struct {
	store         Store
	transport     Transport
	config        Config
	cookieManager *cookie.Manager
}

// Option configures the Manager.
type Option func(*Manager)

func WithStore(store Store) Option {
	return func(m *Manager) { m.store = store }
}

func WithTransport(transport Transport) Option {
	return func(m *Manager) { m.transport = transport }
}

func WithConfig(cfg Config) Option {
	return func(m *Manager) { m.config = cfg }
}

// WithCookieManager supplies the cookie manager used by the default
// cookie transport.
func WithCookieManager(cm *cookie.Manager) Option {
	return func(m *Manager) { m.cookieManager = cm }
}

// New creates a session manager. Without an explicit store it falls back
// to the in-memory store; without an explicit transport it requires a
// cookie manager and panics otherwise, so misconfiguration fails at startup.
func New(opts ...Option) *Manager {
	m := &Manager{
		config: DefaultConfig(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore(m.config.CleanupInterval)
	}

	if m.transport == nil {
		if m.cookieManager == nil {
			panic("session: cookie manager is required when using default cookie transport")
		}
		m.transport = NewCookieTransport(m.cookieManager, m.config.CookieName, m.config.SecureCookies)
	}

	return m
}

// Current retrieves the session identified by the request token.
func (m *Manager) Current(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := m.transport.GetToken(r)
	if err != nil {
		return nil, err
	}

	return m.store.Get(ctx, token)
}

// Establish creates a logged-in session for the principal and hands the
// token to the client. Any pre-existing session for this client is
// discarded first so tokens never survive a login boundary.
func (m *Manager) Establish(ctx context.Context, w http.ResponseWriter, r *http.Request, principal *Principal) error {
	if token, err := m.transport.GetToken(r); err == nil && token != "" {
		_ = m.store.Delete(ctx, token)
	}

	token, err := generateToken()
	if err != nil {
		return err
	}

	session := NewSession(token, m.config.Lifetime)
	session.LoggedIn = true
	session.Principal = principal

	if err := m.store.Create(ctx, session); err != nil {
		return err
	}

	if err := m.transport.SetToken(w, token, m.config.Lifetime); err != nil {
		_ = m.store.Delete(ctx, token)
		return err
	}

	return nil
}

// Destroy invalidates the session unconditionally. Safe to call on an
// already-anonymous request.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	token, err := m.transport.GetToken(r)
	if err == nil && token != "" {
		_ = m.store.Delete(ctx, token)
	}

	return m.transport.ClearToken(w)
}

// RefreshPrincipal replaces the account snapshot on the current session.
// Callers invoke it after mutating the account so the snapshot does not
// stay stale until the next login.
func (m *Manager) RefreshPrincipal(ctx context.Context, r *http.Request, principal *Principal) error {
	session, err := m.Current(ctx, r)
	if err != nil {
		return err
	}

	session.Principal = principal
	return m.store.Update(ctx, session)
}

// generateToken creates a cryptographically secure opaque token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
