package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/hotube/modules/user"
	"github.com/dmitrymomot/hotube/pkg/logger"
	"github.com/dmitrymomot/hotube/pkg/randomname"
	"github.com/dmitrymomot/hotube/pkg/sanitizer"
)

// Reconciler maps a fetched provider identity onto a local account.
// Matching is by verified primary email only, never by provider user
// id: two provider identities sharing an email resolve to the same
// local account.
type Reconciler struct {
	storage user.Storage
	logger  *slog.Logger
}

type ReconcilerOption func(*Reconciler)

func WithReconcilerLogger(l *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) { r.logger = l }
}

func NewReconciler(storage user.Storage, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		storage: storage,
		logger:  logger.NewDiscard(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Reconcile resolves the identity to an existing account, or creates a
// social-only one when no account holds the identity's email. An
// existing account is returned untouched: no field is mutated, no
// password is set, social_only is never downgraded.
func (r *Reconciler) Reconcile(ctx context.Context, identity *ProviderIdentity) (*user.Account, error) {
	email, err := identity.VerifiedPrimaryEmail()
	if err != nil {
		return nil, err
	}
	email = sanitizer.NormalizeEmail(email)

	account, err := r.storage.GetAccountByEmail(ctx, email)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, user.ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to look up account by email: %w", err)
	}

	account = &user.Account{
		ID:         uuid.New(),
		Username:   sanitizer.NormalizeUsername(identity.Login),
		Email:      email,
		SocialOnly: true,
		Name:       identity.Name,
		AvatarURL:  identity.AvatarURL,
		Location:   identity.Location,
	}
	if account.Name == "" {
		account.Name = account.Username
	}

	if err := r.storage.CreateAccount(ctx, account); err != nil {
		if !errors.Is(err, user.ErrAlreadyTaken) {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}

		// The provider login clashes with a taken username while the
		// email is free. Retry once under a generated username.
		account.Username = randomname.Generate(nil)
		if err := r.storage.CreateAccount(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
	}

	r.logger.InfoContext(ctx, "created social-only account",
		logger.AccountID(account.ID.String()),
		slog.String("username", account.Username),
		logger.Component("auth"),
	)

	return account, nil
}
