package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/hotube/pkg/pg"
)

// Repository implements Storage on top of a pgx connection pool.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const accountColumns = `id, username, email, password_hash, social_only, name, avatar_url, location, created_at, updated_at`

func (r *Repository) CreateAccount(ctx context.Context, account *Account) error {
	query := `INSERT INTO accounts (id, username, email, password_hash, social_only, name, avatar_url, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		account.ID, account.Username, account.Email, account.PasswordHash,
		account.SocialOnly, account.Name, account.AvatarURL, account.Location,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrAlreadyTaken
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

func (r *Repository) GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *Repository) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.scanAccount(r.pool.QueryRow(ctx, query, email))
}

func (r *Repository) GetLocalAccountByUsername(ctx context.Context, username string) (*Account, error) {
	// social_only filter keeps passwordless accounts out of the local
	// login path entirely.
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1 AND social_only = false`
	return r.scanAccount(r.pool.QueryRow(ctx, query, username))
}

func (r *Repository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1 OR email = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, username, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}

	return exists, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, account *Account) error {
	query := `UPDATE accounts
		SET username = $1, email = $2, name = $3, avatar_url = $4, location = $5, updated_at = now()
		WHERE id = $6
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		account.Username, account.Email, account.Name,
		account.AvatarURL, account.Location, account.ID,
	).Scan(&account.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return ErrAccountNotFound
		}
		if pg.IsDuplicateKeyError(err) {
			return ErrAlreadyTaken
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return nil
}

func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET password_hash = $1, updated_at = now() WHERE id = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// GetProfile joins the account's videos with their owner in one query
// instead of lazy-loading related records per row.
func (r *Repository) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	account, err := r.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}

	query := `SELECT v.id, v.title, v.file_url, v.thumb_url, v.owner_id, a.name
		FROM videos v
		JOIN accounts a ON a.id = v.owner_id
		WHERE v.owner_id = $1
		ORDER BY v.created_at DESC`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query profile videos: %w", err)
	}
	defer rows.Close()

	var videos []VideoRef
	for rows.Next() {
		var v VideoRef
		if err := rows.Scan(&v.ID, &v.Title, &v.FileURL, &v.ThumbURL, &v.OwnerID, &v.OwnerName); err != nil {
			return nil, fmt.Errorf("failed to scan profile video: %w", err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read profile videos: %w", err)
	}

	return &Profile{Account: *account, Videos: videos}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanAccount(row rowScanner) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID, &account.Username, &account.Email, &account.PasswordHash,
		&account.SocialOnly, &account.Name, &account.AvatarURL, &account.Location,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}

	return account, nil
}
