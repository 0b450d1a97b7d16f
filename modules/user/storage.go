package user

import (
	"context"

	"github.com/google/uuid"
)

// Storage defines the persistence operations for accounts.
// Implementations must be safe for concurrent use and must serialize
// conflicting writes.
type Storage interface {
	// CreateAccount inserts a new account record.
	CreateAccount(ctx context.Context, account *Account) error

	// GetAccountByID returns the account with the given id or
	// ErrAccountNotFound.
	GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// GetAccountByEmail returns the account with the given email or
	// ErrAccountNotFound. Both local and social-only accounts match;
	// federated reconciliation relies on that.
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)

	// GetLocalAccountByUsername returns the password-authenticatable
	// account with the given username. Social-only accounts are excluded
	// so the local login path reports them as nonexistent.
	GetLocalAccountByUsername(ctx context.Context, username string) (*Account, error)

	// ExistsByUsernameOrEmail reports whether any account holds the
	// username or the email.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	// UpdateProfile updates the mutable profile fields of an account.
	UpdateProfile(ctx context.Context, account *Account) error

	// UpdatePasswordHash replaces the stored password hash.
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error

	// GetProfile returns an account with its videos joined with owner
	// info, or ErrAccountNotFound.
	GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
}
