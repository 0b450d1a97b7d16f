package video

import (
	"context"

	"github.com/google/uuid"
)

// Storage is the persistence boundary of the video module. Lookups
// join the owner account so callers never lazy-load related records.
type Storage interface {
	CreateVideo(ctx context.Context, v *Video) error
	GetVideo(ctx context.Context, id uuid.UUID) (*Video, error)
	// ListVideos returns the newest videos first, filtered by a title
	// keyword when search is non-empty.
	ListVideos(ctx context.Context, search string) ([]Video, error)
	UpdateVideo(ctx context.Context, v *Video) error
	DeleteVideo(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) error

	CreateComment(ctx context.Context, c *Comment) error
	GetComment(ctx context.Context, id uuid.UUID) (*Comment, error)
	ListComments(ctx context.Context, videoID uuid.UUID) ([]Comment, error)
	DeleteComment(ctx context.Context, id uuid.UUID) error
}
