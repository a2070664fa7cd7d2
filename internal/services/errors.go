package services

import (
	"errors"
)

// Domain outcomes are sentinel errors whose messages double as the reason
// discriminants handlers branch on. Infrastructure failures never cross this
// boundary raw; they are normalized (see ErrUploadFailed).
var (
	ErrNotFound            = errors.New("not_found")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidValue        = errors.New("invalid_value")
	ErrEmptyContent        = errors.New("empty_content")
	ErrTitleTooLong        = errors.New("title_too_long")
	ErrContentTooLong      = errors.New("content_too_long")
	ErrRateLimited         = errors.New("rate_limited")
	ErrParentNotFound      = errors.New("parent_not_found")
	ErrParentMismatch      = errors.New("parent_mismatch")
	ErrReplyTargetNotFound = errors.New("reply_target_not_found")
	ErrBadImageType        = errors.New("bad_image_type")
	ErrImageTooLarge       = errors.New("image_too_large")
	ErrUploadFailed        = errors.New("upload_failed")
	ErrSelfDeleteBlocked   = errors.New("self_delete_blocked")
	ErrNoTargets           = errors.New("no_targets")
	ErrUsernameTaken       = errors.New("username_taken")
)
