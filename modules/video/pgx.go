package video

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

const videoColumns = `v.id, v.title, v.description, v.hashtags, v.file_url, v.thumb_url, v.views, v.owner_id, a.name, v.created_at, v.updated_at`

func (r *Repository) CreateVideo(ctx context.Context, v *Video) error {
	query := `INSERT INTO videos (id, title, description, hashtags, file_url, thumb_url, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		v.ID, v.Title, v.Description, v.Hashtags, v.FileURL, v.ThumbURL, v.OwnerID,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}

	return nil
}

func (r *Repository) GetVideo(ctx context.Context, id uuid.UUID) (*Video, error) {
	query := `SELECT ` + videoColumns + `
		FROM videos v
		JOIN accounts a ON a.id = v.owner_id
		WHERE v.id = $1`
	return r.scanVideo(r.pool.QueryRow(ctx, query, id))
}

func (r *Repository) ListVideos(ctx context.Context, search string) ([]Video, error) {
	query := `SELECT ` + videoColumns + `
		FROM videos v
		JOIN accounts a ON a.id = v.owner_id`
	args := []any{}
	if search != "" {
		query += ` WHERE v.title ILIKE '%' || $1 || '%'`
		args = append(args, search)
	}
	query += ` ORDER BY v.created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	var videos []Video
	for rows.Next() {
		v, err := r.scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *v)
	}

	return videos, rows.Err()
}

func (r *Repository) UpdateVideo(ctx context.Context, v *Video) error {
	query := `UPDATE videos
		SET title = $1, description = $2, hashtags = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query, v.Title, v.Description, v.Hashtags, v.ID).Scan(&v.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return ErrVideoNotFound
		}
		return fmt.Errorf("failed to update video: %w", err)
	}

	return nil
}

func (r *Repository) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVideoNotFound
	}

	return nil
}

func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVideoNotFound
	}

	return nil
}

const commentColumns = `c.id, c.text, c.video_id, c.owner_id, a.name, c.created_at`

func (r *Repository) CreateComment(ctx context.Context, c *Comment) error {
	query := `INSERT INTO comments (id, text, video_id, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, query, c.ID, c.Text, c.VideoID, c.OwnerID).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

func (r *Repository) GetComment(ctx context.Context, id uuid.UUID) (*Comment, error) {
	query := `SELECT ` + commentColumns + `
		FROM comments c
		JOIN accounts a ON a.id = c.owner_id
		WHERE c.id = $1`

	c := &Comment{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Text, &c.VideoID, &c.OwnerID, &c.OwnerName, &c.CreatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return c, nil
}

func (r *Repository) ListComments(ctx context.Context, videoID uuid.UUID) ([]Comment, error) {
	query := `SELECT ` + commentColumns + `
		FROM comments c
		JOIN accounts a ON a.id = c.owner_id
		WHERE c.video_id = $1
		ORDER BY c.created_at ASC`

	rows, err := r.pool.Query(ctx, query, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.Text, &c.VideoID, &c.OwnerID, &c.OwnerName, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

func (r *Repository) DeleteComment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCommentNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanVideo(row rowScanner) (*Video, error) {
	v := &Video{}
	err := row.Scan(
		&v.ID, &v.Title, &v.Description, &v.Hashtags, &v.FileURL, &v.ThumbURL,
		&v.Views, &v.OwnerID, &v.OwnerName, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to scan video: %w", err)
	}

	return v, nil
}
