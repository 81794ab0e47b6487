package domain

import (
	"time"

	"github.com/google/uuid"
)

// Comment belongs to exactly one content item, identified by Parent.
// Comments are owned by the content item and deleted with it.
type Comment struct {
	ID        string
	Parent    ContentRef
	AuthorID  string
	Author    *User
	Content   string
	CreatedAt time.Time
}

// NewComment creates a comment on the given content item.
func NewComment(parent ContentRef, authorID, content string) *Comment {
	return &Comment{
		ID:        "cmt_" + uuid.New().String(),
		Parent:    parent,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// Announcement is an admin-authored broadcast item.
type Announcement struct {
	ID        string
	Title     string
	Content   string
	AuthorID  string
	Author    *User
	CreatedAt time.Time
}

// NewAnnouncement creates an announcement owned by the given author.
func NewAnnouncement(title, content, authorID string) *Announcement {
	return &Announcement{
		ID:        "ann_" + uuid.New().String(),
		Title:     title,
		Content:   content,
		AuthorID:  authorID,
		CreatedAt: time.Now(),
	}
}

// Notification is an append-only inbox row. Only the IsRead flag mutates
// after creation.
type Notification struct {
	ID          string
	RecipientID string
	Message     string
	URL         string
	IsRead      bool
	CreatedAt   time.Time
}

// NewNotification creates an unread notification for the given recipient.
func NewNotification(recipientID, message, url string) *Notification {
	return &Notification{
		ID:          "ntf_" + uuid.New().String(),
		RecipientID: recipientID,
		Message:     message,
		URL:         url,
		CreatedAt:   time.Now(),
	}
}

// RecentView is one entry of the per-user recently-viewed list.
type RecentView struct {
	Kind     ContentKind `json:"kind"`
	ID       string      `json:"id"`
	ViewedAt time.Time   `json:"viewed_at"`
}
