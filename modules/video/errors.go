package video

import "errors"

var (
	ErrVideoNotFound   = errors.New("video.not_found")
	ErrCommentNotFound = errors.New("video.comment_not_found")
	ErrNotOwner        = errors.New("video.not_owner")
)
