// Package user owns the account record and its persistence.
package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/hotube/pkg/session"
)

// Account is the identity record. An account is either
// password-authenticatable (PasswordHash present, SocialOnly false) or
// social-only (empty hash, SocialOnly true); never both unset.
type Account struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash []byte
	SocialOnly   bool
	Name         string
	AvatarURL    string
	Location     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether the account can authenticate locally.
func (a *Account) HasPassword() bool {
	return a != nil && !a.SocialOnly && len(a.PasswordHash) > 0
}

// Principal returns the session snapshot for this account.
func (a *Account) Principal() *session.Principal {
	return &session.Principal{
		ID:         a.ID,
		Username:   a.Username,
		Email:      a.Email,
		Name:       a.Name,
		AvatarURL:  a.AvatarURL,
		Location:   a.Location,
		SocialOnly: a.SocialOnly,
	}
}

// VideoRef is a video owned by an account, joined with its owner for
// profile rendering.
type VideoRef struct {
	ID        uuid.UUID
	Title     string
	FileURL   string
	ThumbURL  string
	OwnerID   uuid.UUID
	OwnerName string
	CreatedAt time.Time
}

// Profile is an account together with its videos, assembled by an
// explicit join at the storage boundary.
type Profile struct {
	Account Account
	Videos  []VideoRef
}
