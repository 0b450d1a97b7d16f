package auth

import "errors"

var (
	// ErrNoSuchAccount covers both a username that does not exist and a
	// social-only account, so the local login form never reveals which.
	ErrNoSuchAccount = errors.New("auth.no_such_account")

	// ErrWrongPassword is returned when the password hash comparison fails.
	ErrWrongPassword = errors.New("auth.wrong_password")

	// ErrNoAccessToken is returned when the provider's token response
	// carries no access token. This is a denial, not a transport error.
	ErrNoAccessToken = errors.New("auth.no_access_token")

	// ErrUnverifiableIdentity is returned when the provider's email list
	// has no entry that is both primary and verified.
	ErrUnverifiableIdentity = errors.New("auth.unverifiable_identity")

	// ErrProviderUnavailable wraps transport-level failures talking to
	// the identity provider.
	ErrProviderUnavailable = errors.New("auth.provider_unavailable")

	// ErrInvalidState is returned when the OAuth callback state does not
	// match the one issued at flow start.
	ErrInvalidState = errors.New("auth.invalid_state")
)
