package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path"

	"github.com/google/uuid"

	"github.com/dmitrymomot/hotube/pkg/file"
	"github.com/dmitrymomot/hotube/pkg/logger"
	"github.com/dmitrymomot/hotube/pkg/sanitizer"
	"github.com/dmitrymomot/hotube/pkg/validator"
)

const (
	maxVideoSize = 512 << 20
	maxThumbSize = 5 << 20
	maxTitleLen  = 120
)

// UploadRequest carries the upload form plus the multipart files.
type UploadRequest struct {
	Title       string
	Description string
	Hashtags    string
	File        *multipart.FileHeader
	Thumb       *multipart.FileHeader
}

// EditRequest carries the editable metadata of an existing video.
type EditRequest struct {
	Title       string
	Description string
	Hashtags    string
}

// Service implements upload, watch, metadata editing and comments.
type Service struct {
	storage Storage
	files   file.Storage
	logger  *slog.Logger
}

type ServiceOption func(*Service)

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

func NewService(storage Storage, files file.Storage, opts ...ServiceOption) *Service {
	s := &Service{
		storage: storage,
		files:   files,
		logger:  logger.NewDiscard(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Upload stores the video file and optional thumbnail, then persists
// the record. File storage happens first so a storage failure leaves
// no dangling record.
func (s *Service) Upload(ctx context.Context, ownerID uuid.UUID, req UploadRequest) (*Video, error) {
	req.Title = sanitizer.TrimText(req.Title)
	req.Description = sanitizer.TrimText(req.Description)

	if err := validator.Apply(
		validator.Required("title", req.Title),
		validator.MaxLength("title", req.Title, maxTitleLen),
	); err != nil {
		return nil, err
	}
	if req.File == nil {
		return nil, errors.New("video file is required")
	}
	if err := file.ValidateSize(req.File, maxVideoSize); err != nil {
		return nil, err
	}
	if !file.IsVideo(req.File) {
		return nil, errors.New("upload must be a video file")
	}

	id := uuid.New()

	stored, err := s.files.Save(ctx, req.File, path.Join("videos", id.String()+file.GetExtension(req.File)))
	if err != nil {
		return nil, fmt.Errorf("failed to store video file: %w", err)
	}

	v := &Video{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Hashtags:    ParseHashtags(req.Hashtags),
		FileURL:     s.files.URL(stored.RelativePath),
		OwnerID:     ownerID,
	}

	if req.Thumb != nil {
		if err := file.ValidateSize(req.Thumb, maxThumbSize); err != nil {
			return nil, err
		}
		thumb, err := s.files.Save(ctx, req.Thumb, path.Join("thumbs", id.String()+file.GetExtension(req.Thumb)))
		if err != nil {
			return nil, fmt.Errorf("failed to store thumbnail: %w", err)
		}
		v.ThumbURL = s.files.URL(thumb.RelativePath)
	}

	if err := s.storage.CreateVideo(ctx, v); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "video uploaded",
		slog.String("video_id", v.ID.String()),
		logger.AccountID(ownerID.String()),
		logger.Component("video"),
	)

	return v, nil
}

// List returns the home page videos, optionally filtered by a title
// keyword.
func (s *Service) List(ctx context.Context, search string) ([]Video, error) {
	return s.storage.ListVideos(ctx, sanitizer.TrimText(search))
}

// Watch loads the video with its comments.
func (s *Service) Watch(ctx context.Context, id uuid.UUID) (*WatchPage, error) {
	v, err := s.storage.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.storage.ListComments(ctx, id)
	if err != nil {
		return nil, err
	}

	return &WatchPage{Video: v, Comments: comments}, nil
}

// Edit updates video metadata. Only the owner may edit.
func (s *Service) Edit(ctx context.Context, ownerID, id uuid.UUID, req EditRequest) (*Video, error) {
	v, err := s.storage.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.OwnerID != ownerID {
		return nil, ErrNotOwner
	}

	v.Title = sanitizer.TrimText(req.Title)
	v.Description = sanitizer.TrimText(req.Description)
	v.Hashtags = ParseHashtags(req.Hashtags)

	if err := validator.Apply(
		validator.Required("title", v.Title),
		validator.MaxLength("title", v.Title, maxTitleLen),
	); err != nil {
		return nil, err
	}

	if err := s.storage.UpdateVideo(ctx, v); err != nil {
		return nil, err
	}

	return v, nil
}

// Delete removes a video. Only the owner may delete.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	v, err := s.storage.GetVideo(ctx, id)
	if err != nil {
		return err
	}
	if v.OwnerID != ownerID {
		return ErrNotOwner
	}

	return s.storage.DeleteVideo(ctx, id)
}

// RegisterView bumps the play counter.
func (s *Service) RegisterView(ctx context.Context, id uuid.UUID) error {
	return s.storage.IncrementViews(ctx, id)
}

// CreateComment attaches a comment to a video and returns it with the
// generated id, so the client can render the new node.
func (s *Service) CreateComment(ctx context.Context, ownerID, videoID uuid.UUID, text string) (*Comment, error) {
	text = sanitizer.TrimText(text)
	if err := validator.Apply(validator.Required("text", text)); err != nil {
		return nil, err
	}

	if _, err := s.storage.GetVideo(ctx, videoID); err != nil {
		return nil, err
	}

	c := &Comment{
		ID:      uuid.New(),
		Text:    text,
		VideoID: videoID,
		OwnerID: ownerID,
	}

	if err := s.storage.CreateComment(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// DeleteComment removes a comment after verifying ownership and
// returns the deleted id, so the client can drop the DOM node.
func (s *Service) DeleteComment(ctx context.Context, ownerID, commentID uuid.UUID) (uuid.UUID, error) {
	c, err := s.storage.GetComment(ctx, commentID)
	if err != nil {
		return uuid.Nil, err
	}
	if c.OwnerID != ownerID {
		return uuid.Nil, ErrNotOwner
	}

	if err := s.storage.DeleteComment(ctx, commentID); err != nil {
		return uuid.Nil, err
	}

	return c.ID, nil
}
