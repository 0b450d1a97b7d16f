package video

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-memory Storage used in tests.
type MemoryStorage struct {
	mu       sync.RWMutex
	videos   map[uuid.UUID]*Video
	comments map[uuid.UUID]*Comment
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		videos:   make(map[uuid.UUID]*Video),
		comments: make(map[uuid.UUID]*Comment),
	}
}

func (m *MemoryStorage) CreateVideo(ctx context.Context, v *Video) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	v.CreatedAt = now
	v.UpdatedAt = now

	stored := *v
	m.videos[v.ID] = &stored
	return nil
}

func (m *MemoryStorage) GetVideo(ctx context.Context, id uuid.UUID) (*Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.videos[id]
	if !ok {
		return nil, ErrVideoNotFound
	}

	out := *v
	return &out, nil
}

func (m *MemoryStorage) ListVideos(ctx context.Context, search string) ([]Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var videos []Video
	for _, v := range m.videos {
		if search != "" && !strings.Contains(strings.ToLower(v.Title), strings.ToLower(search)) {
			continue
		}
		videos = append(videos, *v)
	}

	sort.Slice(videos, func(i, j int) bool {
		return videos[i].CreatedAt.After(videos[j].CreatedAt)
	})

	return videos, nil
}

func (m *MemoryStorage) UpdateVideo(ctx context.Context, v *Video) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.videos[v.ID]
	if !ok {
		return ErrVideoNotFound
	}

	stored.Title = v.Title
	stored.Description = v.Description
	stored.Hashtags = v.Hashtags
	stored.UpdatedAt = time.Now()
	v.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *MemoryStorage) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.videos[id]; !ok {
		return ErrVideoNotFound
	}

	delete(m.videos, id)
	return nil
}

func (m *MemoryStorage) IncrementViews(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.videos[id]
	if !ok {
		return ErrVideoNotFound
	}

	v.Views++
	return nil
}

func (m *MemoryStorage) CreateComment(ctx context.Context, c *Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c.CreatedAt = time.Now()
	stored := *c
	m.comments[c.ID] = &stored
	return nil
}

func (m *MemoryStorage) GetComment(ctx context.Context, id uuid.UUID) (*Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.comments[id]
	if !ok {
		return nil, ErrCommentNotFound
	}

	out := *c
	return &out, nil
}

func (m *MemoryStorage) ListComments(ctx context.Context, videoID uuid.UUID) ([]Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var comments []Comment
	for _, c := range m.comments {
		if c.VideoID == videoID {
			comments = append(comments, *c)
		}
	}

	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})

	return comments, nil
}

func (m *MemoryStorage) DeleteComment(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.comments[id]; !ok {
		return ErrCommentNotFound
	}

	delete(m.comments, id)
	return nil
}

// CommentCount reports stored comments. Test helper.
func (m *MemoryStorage) CommentCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.comments)
}
