package user

import "errors"

var (
	// ErrAccountNotFound indicates no account matched the lookup
	ErrAccountNotFound = errors.New("user.account_not_found")

	// ErrAlreadyTaken indicates the username or email is already in use
	ErrAlreadyTaken = errors.New("user.username_or_email_taken")

	// ErrSocialOnly indicates an operation that requires a local password
	// was attempted on a social-only account
	ErrSocialOnly = errors.New("user.social_only_account")

	// ErrWrongPassword indicates the supplied current password did not match
	ErrWrongPassword = errors.New("user.wrong_password")

	// ErrPasswordConfirmMismatch indicates the new password and its
	// confirmation differ
	ErrPasswordConfirmMismatch = errors.New("user.password_confirmation_mismatch")
)
