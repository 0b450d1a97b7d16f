package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/hotube/pkg/file"
	"github.com/dmitrymomot/hotube/pkg/logger"
	"github.com/dmitrymomot/hotube/pkg/sanitizer"
	"github.com/dmitrymomot/hotube/pkg/validator"
)

const maxAvatarSize = 3 << 20 // 3MB, matches the upload form limit

// ProfileUpdate carries the editable profile fields plus an optional
// avatar upload.
type ProfileUpdate struct {
	Name     string
	Email    string
	Username string
	Location string
	Avatar   *multipart.FileHeader
}

// Service implements profile editing and password change on top of
// Storage and a file storage collaborator.
type Service struct {
	storage    Storage
	files      file.Storage
	bcryptCost int
	logger     *slog.Logger
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

func WithBcryptCost(cost int) ServiceOption {
	return func(s *Service) { s.bcryptCost = cost }
}

func NewService(storage Storage, files file.Storage, opts ...ServiceOption) *Service {
	s := &Service{
		storage:    storage,
		files:      files,
		bcryptCost: bcrypt.DefaultCost,
		logger:     logger.NewDiscard(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// GetAccount returns the account with the given id.
func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.storage.GetAccountByID(ctx, id)
}

// GetProfile returns the account with its videos for profile rendering.
func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.storage.GetProfile(ctx, id)
}

// UpdateProfile applies the edit form to the account. A present avatar
// upload replaces the stored avatar URL; otherwise the current URL is
// kept. Returns the updated account so callers can refresh the session
// snapshot.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*Account, error) {
	update.Email = sanitizer.NormalizeEmail(update.Email)
	update.Username = sanitizer.NormalizeUsername(update.Username)
	update.Name = sanitizer.TrimText(update.Name)
	update.Location = sanitizer.TrimText(update.Location)

	if err := validator.Apply(
		validator.Required("username", update.Username),
		validator.ValidEmail("email", update.Email),
	); err != nil {
		return nil, err
	}

	account, err := s.storage.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Avatar != nil {
		avatarURL, err := s.saveAvatar(ctx, id, update.Avatar)
		if err != nil {
			return nil, err
		}
		account.AvatarURL = avatarURL
	}

	account.Name = update.Name
	account.Email = update.Email
	account.Username = update.Username
	account.Location = update.Location

	if err := s.storage.UpdateProfile(ctx, account); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "profile updated",
		logger.AccountID(id.String()),
		logger.Component("user"),
	)

	return account, nil
}

// ChangePassword verifies the old password and the new-password
// confirmation; either failing blocks the update and leaves the stored
// hash unchanged. Social-only accounts are rejected outright.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword, newPasswordConfirm string) error {
	account, err := s.storage.GetAccountByID(ctx, id)
	if err != nil {
		return err
	}

	if account.SocialOnly {
		return ErrSocialOnly
	}

	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(oldPassword)); err != nil {
		return ErrWrongPassword
	}

	if newPassword != newPasswordConfirm {
		return ErrPasswordConfirmMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.storage.UpdatePasswordHash(ctx, id, hash); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password changed",
		logger.AccountID(id.String()),
		logger.Component("user"),
	)

	return nil
}

func (s *Service) saveAvatar(ctx context.Context, id uuid.UUID, fh *multipart.FileHeader) (string, error) {
	if err := file.ValidateSize(fh, maxAvatarSize); err != nil {
		return "", err
	}
	if !file.IsImage(fh) {
		return "", errors.New("avatar must be an image")
	}

	stored, err := s.files.Save(ctx, fh, path.Join("avatars", id.String()+file.GetExtension(fh)))
	if err != nil {
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}

	return s.files.URL(stored.RelativePath), nil
}
