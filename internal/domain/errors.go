package domain

import "errors"

var (
	ErrPostNotFound         = errors.New("post not found")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrTagNotFound          = errors.New("tag not found")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrRoleNotFound         = errors.New("role not found")

	ErrForbidden          = errors.New("forbidden")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCategoryInUse      = errors.New("category is in use and cannot be deleted")
	ErrValidation         = errors.New("validation failed")

	// ErrConcurrentModification is returned when an update loses a race
	// against another writer. The caller should re-read and retry.
	ErrConcurrentModification = errors.New("record was updated by another user")
)
