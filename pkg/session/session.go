package session

import (
	"time"

	"github.com/google/uuid"
)

// Principal is the read-only snapshot of the authenticated account that
// rides in the session. Handlers render from it; it goes stale after a
// profile edit until the handler refreshes it explicitly.
type Principal struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	Location   string    `json:"location,omitempty"`
	SocialOnly bool      `json:"social_only"`
}

// Session is the server-side state keyed by an opaque token.
type Session struct {
	ID        uuid.UUID  `json:"id"`
	Token     string     `json:"token"`
	LoggedIn  bool       `json:"logged_in"`
	Principal *Principal `json:"principal,omitempty"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewSession creates an anonymous session with the given token and ttl.
func NewSession(token string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New(),
		Token:     token,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

// IsLoggedIn reports whether the session carries an authenticated principal.
func (s *Session) IsLoggedIn() bool {
	return s != nil && s.LoggedIn && s.Principal != nil
}

// IsExpired reports whether the session has expired.
func (s *Session) IsExpired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}
