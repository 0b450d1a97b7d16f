package user

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage implements Storage in memory. Intended for development
// and tests; it mirrors the repository's uniqueness and filtering rules.
type MemoryStorage struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*Account
	videos   []VideoRef
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		accounts: make(map[uuid.UUID]*Account),
	}
}

func (m *MemoryStorage) CreateAccount(ctx context.Context, account *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.accounts {
		if a.Username == account.Username || a.Email == account.Email {
			return ErrAlreadyTaken
		}
	}

	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	stored := *account
	m.accounts[account.ID] = &stored
	return nil
}

func (m *MemoryStorage) GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}

	out := *account
	return &out, nil
}

func (m *MemoryStorage) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.accounts {
		if a.Email == email {
			out := *a
			return &out, nil
		}
	}

	return nil, ErrAccountNotFound
}

func (m *MemoryStorage) GetLocalAccountByUsername(ctx context.Context, username string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.accounts {
		if a.Username == username && !a.SocialOnly {
			out := *a
			return &out, nil
		}
	}

	return nil, ErrAccountNotFound
}

func (m *MemoryStorage) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.accounts {
		if a.Username == username || a.Email == email {
			return true, nil
		}
	}

	return false, nil
}

func (m *MemoryStorage) UpdateProfile(ctx context.Context, account *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.accounts[account.ID]
	if !ok {
		return ErrAccountNotFound
	}

	for id, a := range m.accounts {
		if id == account.ID {
			continue
		}
		if a.Username == account.Username || a.Email == account.Email {
			return ErrAlreadyTaken
		}
	}

	stored.Username = account.Username
	stored.Email = account.Email
	stored.Name = account.Name
	stored.AvatarURL = account.AvatarURL
	stored.Location = account.Location
	stored.UpdatedAt = time.Now()
	account.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *MemoryStorage) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}

	stored.PasswordHash = slices.Clone(hash)
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStorage) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	account, err := m.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var videos []VideoRef
	for _, v := range m.videos {
		if v.OwnerID == id {
			v.OwnerName = account.Name
			videos = append(videos, v)
		}
	}

	return &Profile{Account: *account, Videos: videos}, nil
}

// AddVideoRef registers a video for profile joins in tests.
func (m *MemoryStorage) AddVideoRef(ref VideoRef) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.videos = append(m.videos, ref)
}

// Len reports the number of stored accounts.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.accounts)
}
