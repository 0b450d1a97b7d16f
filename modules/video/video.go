package video

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Video is a published upload with its denormalized owner name for
// list rendering.
type Video struct {
	ID          uuid.UUID
	Title       string
	Description string
	Hashtags    []string
	FileURL     string
	ThumbURL    string
	Views       int64
	OwnerID     uuid.UUID
	OwnerName   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Comment belongs to a video and is owned by the account that wrote it.
type Comment struct {
	ID        uuid.UUID
	Text      string
	VideoID   uuid.UUID
	OwnerID   uuid.UUID
	OwnerName string
	CreatedAt time.Time
}

// WatchPage is the data needed to render a single video.
type WatchPage struct {
	Video    *Video
	Comments []Comment
}

// ParseHashtags splits a comma-separated hashtag string, prefixing each
// entry with # when missing.
func ParseHashtags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "#") {
			p = "#" + p
		}
		tags = append(tags, p)
	}
	return tags
}
