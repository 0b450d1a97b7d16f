package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/hotube/modules/user"
	"github.com/dmitrymomot/hotube/pkg/validator"
)

func newTestAccount(t *testing.T, storage *user.MemoryStorage, password string) *user.Account {
	t.Helper()

	account := &user.Account{
		ID:       uuid.New(),
		Username: "frida",
		Email:    "frida@example.com",
		Name:     "Frida",
		Location: "Oslo",
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		account.PasswordHash = hash
	} else {
		account.SocialOnly = true
	}

	require.NoError(t, storage.CreateAccount(context.Background(), account))
	return account
}

func TestService_UpdateProfile(t *testing.T) {
	t.Parallel()

	t.Run("updates fields and keeps avatar", func(t *testing.T) {
		t.Parallel()

		storage := user.NewMemoryStorage()
		svc := user.NewService(storage, nil)
		account := newTestAccount(t, storage, "s3cret-pass")
		account.AvatarURL = "/uploads/avatars/old.png"
		require.NoError(t, storage.UpdateProfile(context.Background(), account))

		updated, err := svc.UpdateProfile(context.Background(), account.ID, user.ProfileUpdate{
			Name:     "  Frida Kahlo  ",
			Email:    "Frida.K@Example.COM",
			Username: " frida ",
			Location: "Mexico City",
		})
		require.NoError(t, err)
		assert.Equal(t, "Frida Kahlo", updated.Name)
		assert.Equal(t, "frida.k@example.com", updated.Email)
		assert.Equal(t, "frida", updated.Username)
		assert.Equal(t, "Mexico City", updated.Location)
		assert.Equal(t, "/uploads/avatars/old.png", updated.AvatarURL)

		stored, err := storage.GetAccountByID(context.Background(), account.ID)
		require.NoError(t, err)
		assert.Equal(t, "frida.k@example.com", stored.Email)
	})

	t.Run("rejects invalid email without touching storage", func(t *testing.T) {
		t.Parallel()

		storage := user.NewMemoryStorage()
		svc := user.NewService(storage, nil)
		account := newTestAccount(t, storage, "s3cret-pass")

		_, err := svc.UpdateProfile(context.Background(), account.ID, user.ProfileUpdate{
			Username: "frida",
			Email:    "not-an-email",
		})
		require.Error(t, err)
		assert.False(t, validator.ExtractValidationErrors(err).IsEmpty())

		stored, err := storage.GetAccountByID(context.Background(), account.ID)
		require.NoError(t, err)
		assert.Equal(t, "frida@example.com", stored.Email)
	})

	t.Run("duplicate username surfaces ErrAlreadyTaken", func(t *testing.T) {
		t.Parallel()

		storage := user.NewMemoryStorage()
		svc := user.NewService(storage, nil)
		account := newTestAccount(t, storage, "s3cret-pass")

		other := &user.Account{
			ID:        uuid.New(),
			Username:  "diego",
			Email:     "diego@example.com",
			CreatedAt: time.Now(),
		}
		require.NoError(t, storage.CreateAccount(context.Background(), other))

		_, err := svc.UpdateProfile(context.Background(), account.ID, user.ProfileUpdate{
			Username: "diego",
			Email:    "frida@example.com",
		})
		require.ErrorIs(t, err, user.ErrAlreadyTaken)
	})

	t.Run("unknown account", func(t *testing.T) {
		t.Parallel()

		svc := user.NewService(user.NewMemoryStorage(), nil)
		_, err := svc.UpdateProfile(context.Background(), uuid.New(), user.ProfileUpdate{
			Username: "ghost",
			Email:    "ghost@example.com",
		})
		require.ErrorIs(t, err, user.ErrAccountNotFound)
	})
}

func TestService_ChangePassword(t *testing.T) {
	t.Parallel()

	t.Run("success replaces the hash", func(t *testing.T) {
		t.Parallel()

		storage := user.NewMemoryStorage()
		svc := user.NewService(storage, nil, user.WithBcryptCost(bcrypt.MinCost))
		account := newTestAccount(t, storage, "old-pass-123")

		err := svc.ChangePassword(context.Background(), account.ID, "old-pass-123", "new-pass-456", "new-pass-456")
		require.NoError(t, err)

		stored, err := storage.GetAccountByID(context.Background(), account.ID)
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword(stored.PasswordHash, []byte("new-pass-456")))
		assert.Error(t, bcrypt.CompareHashAndPassword(stored.PasswordHash, []byte("old-pass-123")))
	})

	t.Run("wrong old password", func(t *testing.T) {
		t.Parallel()

		storage := user.NewMemoryStorage()
		svc := user.NewService(storage, nil, user.WithBcryptCost(bcrypt.MinCost))
		account := newTestAccount(t, storage, "old-pass-123")

		err := svc.ChangePassword(context.Background(), account.ID, "wrong", "new-pass-456", "new-pass-456")
		require.ErrorIs(t, err, user.ErrWrongPassword)

		stored, err := storage.GetAccountByID(context.Background(), account.ID)
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword(stored.PasswordHash, []byte("old-pass-123")))
	})

	t.Run("confirmation mismatch", func(t *testing.T) {
		t.Parallel()

		storage := user.NewMemoryStorage()
		svc := user.NewService(storage, nil, user.WithBcryptCost(bcrypt.MinCost))
		account := newTestAccount(t, storage, "old-pass-123")

		err := svc.ChangePassword(context.Background(), account.ID, "old-pass-123", "new-pass-456", "new-pass-457")
		require.ErrorIs(t, err, user.ErrPasswordConfirmMismatch)

		stored, err := storage.GetAccountByID(context.Background(), account.ID)
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword(stored.PasswordHash, []byte("old-pass-123")))
	})

	t.Run("social-only account is rejected", func(t *testing.T) {
		t.Parallel()

		storage := user.NewMemoryStorage()
		svc := user.NewService(storage, nil, user.WithBcryptCost(bcrypt.MinCost))
		account := newTestAccount(t, storage, "")

		err := svc.ChangePassword(context.Background(), account.ID, "", "new-pass-456", "new-pass-456")
		require.ErrorIs(t, err, user.ErrSocialOnly)
	})
}

func TestService_GetProfile(t *testing.T) {
	t.Parallel()

	storage := user.NewMemoryStorage()
	svc := user.NewService(storage, nil)
	account := newTestAccount(t, storage, "s3cret-pass")

	storage.AddVideoRef(user.VideoRef{
		ID:        uuid.New(),
		Title:     "First upload",
		OwnerID:   account.ID,
		OwnerName: account.Name,
		CreatedAt: time.Now(),
	})

	profile, err := svc.GetProfile(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, profile.Account.ID)
	require.Len(t, profile.Videos, 1)
	assert.Equal(t, "First upload", profile.Videos[0].Title)

	_, err = svc.GetProfile(context.Background(), uuid.New())
	require.ErrorIs(t, err, user.ErrAccountNotFound)
}
