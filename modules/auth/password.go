package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/hotube/modules/user"
	"github.com/dmitrymomot/hotube/pkg/logger"
	"github.com/dmitrymomot/hotube/pkg/sanitizer"
	"github.com/dmitrymomot/hotube/pkg/validator"
)

const minPasswordLength = 6

// JoinRequest carries the signup form fields.
type JoinRequest struct {
	Name            string
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
	Location        string
}

// PasswordService implements signup and local password login.
type PasswordService struct {
	storage    user.Storage
	bcryptCost int
	logger     *slog.Logger
}

type PasswordOption func(*PasswordService)

func WithPasswordLogger(l *slog.Logger) PasswordOption {
	return func(s *PasswordService) { s.logger = l }
}

func WithPasswordBcryptCost(cost int) PasswordOption {
	return func(s *PasswordService) { s.bcryptCost = cost }
}

func NewPasswordService(storage user.Storage, opts ...PasswordOption) *PasswordService {
	s := &PasswordService{
		storage:    storage,
		bcryptCost: bcrypt.DefaultCost,
		logger:     logger.NewDiscard(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Join registers a local account. The password confirmation and the
// username/email existence check each block the insert on their own.
func (s *PasswordService) Join(ctx context.Context, req JoinRequest) (*user.Account, error) {
	req.Email = sanitizer.NormalizeEmail(req.Email)
	req.Username = sanitizer.NormalizeUsername(req.Username)
	req.Name = sanitizer.TrimText(req.Name)
	req.Location = sanitizer.TrimText(req.Location)

	if err := validator.Apply(
		validator.Required("username", req.Username),
		validator.ValidEmail("email", req.Email),
		validator.MinLength("password", req.Password, minPasswordLength),
	); err != nil {
		return nil, err
	}

	if req.Password != req.PasswordConfirm {
		return nil, user.ErrPasswordConfirmMismatch
	}

	exists, err := s.storage.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check account existence: %w", err)
	}
	if exists {
		return nil, user.ErrAlreadyTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &user.Account{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		SocialOnly:   false,
		Name:         req.Name,
		Location:     req.Location,
	}

	if err := s.storage.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "account registered",
		logger.AccountID(account.ID.String()),
		logger.Component("auth"),
	)

	return account, nil
}

// Authenticate verifies a local credential pair. The lookup excludes
// social-only accounts, so a social account presents as nonexistent
// rather than prompting for a password it does not have.
func (s *PasswordService) Authenticate(ctx context.Context, username, password string) (*user.Account, error) {
	username = sanitizer.NormalizeUsername(username)

	account, err := s.storage.GetLocalAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrAccountNotFound) {
			return nil, ErrNoSuchAccount
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
		return nil, ErrWrongPassword
	}

	return account, nil
}
