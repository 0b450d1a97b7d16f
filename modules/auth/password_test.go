package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/hotube/modules/auth"
	"github.com/dmitrymomot/hotube/modules/user"
)

func TestPasswordService_Join(t *testing.T) {
	t.Parallel()

	validReq := auth.JoinRequest{
		Name:            "Frida",
		Username:        "frida",
		Email:           "frida@example.com",
		Password:        "abc123",
		PasswordConfirm: "abc123",
		Location:        "Oslo",
	}

	t.Run("creates a local account", func(t *testing.T) {
		t.Parallel()

		storage := user.NewMemoryStorage()
		svc := auth.NewPasswordService(storage, auth.WithPasswordBcryptCost(bcrypt.MinCost))

		account, err := svc.Join(context.Background(), validReq)
		require.NoError(t, err)
		assert.False(t, account.SocialOnly)
		assert.True(t, account.HasPassword())
		assert.NoError(t, bcrypt.CompareHashAndPassword(account.PasswordHash, []byte("abc123")))
		assert.Equal(t, 1, storage.Len())
	})

	t.Run("password confirmation mismatch blocks the insert", func(t *testing.T) {
		t.Parallel()

		storage := user.NewMemoryStorage()
		svc := auth.NewPasswordService(storage, auth.WithPasswordBcryptCost(bcrypt.MinCost))

		req := validReq
		req.PasswordConfirm = "abc124"
		_, err := svc.Join(context.Background(), req)
		require.ErrorIs(t, err, user.ErrPasswordConfirmMismatch)
		assert.Equal(t, 0, storage.Len())
	})

	t.Run("duplicate username is rejected with no second account", func(t *testing.T) {
		t.Parallel()

		storage := user.NewMemoryStorage()
		svc := auth.NewPasswordService(storage, auth.WithPasswordBcryptCost(bcrypt.MinCost))

		_, err := svc.Join(context.Background(), validReq)
		require.NoError(t, err)

		req := validReq
		req.Email = "other@example.com"
		_, err = svc.Join(context.Background(), req)
		require.ErrorIs(t, err, user.ErrAlreadyTaken)
		assert.Equal(t, 1, storage.Len())
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		t.Parallel()

		storage := user.NewMemoryStorage()
		svc := auth.NewPasswordService(storage, auth.WithPasswordBcryptCost(bcrypt.MinCost))

		_, err := svc.Join(context.Background(), validReq)
		require.NoError(t, err)

		req := validReq
		req.Username = "other"
		_, err = svc.Join(context.Background(), req)
		require.ErrorIs(t, err, user.ErrAlreadyTaken)
	})

	t.Run("short password fails validation", func(t *testing.T) {
		t.Parallel()

		storage := user.NewMemoryStorage()
		svc := auth.NewPasswordService(storage, auth.WithPasswordBcryptCost(bcrypt.MinCost))

		req := validReq
		req.Password, req.PasswordConfirm = "abc", "abc"
		_, err := svc.Join(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, 0, storage.Len())
	})
}

func TestPasswordService_Authenticate(t *testing.T) {
	t.Parallel()

	seedLocal := func(t *testing.T, storage *user.MemoryStorage) *user.Account {
		t.Helper()
		hash, err := bcrypt.GenerateFromPassword([]byte("abc123"), bcrypt.MinCost)
		require.NoError(t, err)
		account := &user.Account{
			ID:           uuid.New(),
			Username:     "frida",
			Email:        "frida@example.com",
			PasswordHash: hash,
		}
		require.NoError(t, storage.CreateAccount(context.Background(), account))
		return account
	}

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()

		storage := user.NewMemoryStorage()
		want := seedLocal(t, storage)
		svc := auth.NewPasswordService(storage)

		got, err := svc.Authenticate(context.Background(), "frida", "abc123")
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
	})

	t.Run("unknown username", func(t *testing.T) {
		t.Parallel()

		svc := auth.NewPasswordService(user.NewMemoryStorage())
		_, err := svc.Authenticate(context.Background(), "nobody", "abc123")
		require.ErrorIs(t, err, auth.ErrNoSuchAccount)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		storage := user.NewMemoryStorage()
		seedLocal(t, storage)
		svc := auth.NewPasswordService(storage)

		_, err := svc.Authenticate(context.Background(), "frida", "wrong")
		require.ErrorIs(t, err, auth.ErrWrongPassword)
	})

	t.Run("social-only account presents as nonexistent", func(t *testing.T) {
		t.Parallel()

		storage := user.NewMemoryStorage()
		account := &user.Account{
			ID:         uuid.New(),
			Username:   "social",
			Email:      "social@example.com",
			SocialOnly: true,
		}
		require.NoError(t, storage.CreateAccount(context.Background(), account))
		svc := auth.NewPasswordService(storage)

		_, err := svc.Authenticate(context.Background(), "social", "whatever")
		require.ErrorIs(t, err, auth.ErrNoSuchAccount)
	})
}
