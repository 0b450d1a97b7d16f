package session

import "context"

type sessionContextKey struct{}

// WithSession adds a session to the context.
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// FromContext retrieves a session from the context. A missing session
// means the request is anonymous.
func FromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(*Session)
	return session, ok
}

// IsLoggedIn reports whether the request context carries a logged-in session.
func IsLoggedIn(ctx context.Context) bool {
	session, ok := FromContext(ctx)
	return ok && session.IsLoggedIn()
}

// PrincipalFromContext retrieves the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	session, ok := FromContext(ctx)
	if !ok || !session.IsLoggedIn() {
		return nil, false
	}
	return session.Principal, true
}
