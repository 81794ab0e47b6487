package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContentKind distinguishes the two first-class authored content types.
type ContentKind string

const (
	ContentKindPost     ContentKind = "post"
	ContentKindDocument ContentKind = "document"
)

// ContentRef identifies a single content item by kind and id. Using a tagged
// variant instead of two nullable foreign keys makes the "exactly one parent"
// invariant structural.
type ContentRef struct {
	Kind ContentKind
	ID   string
}

// ContentFilter narrows a content listing. All set fields are AND-combined.
type ContentFilter struct {
	Query      string // substring match against title, body or any tag name
	CategoryID string // exact category match
	Tag        string // exact tag name match
}

// ContentWindow restricts a widget listing to a creation-time window.
type ContentWindow string

const (
	WindowAll     ContentWindow = "all"
	WindowDaily   ContentWindow = "daily"
	WindowWeekly  ContentWindow = "weekly"
	WindowMonthly ContentWindow = "monthly"
)

// Since returns the lower creation-time bound for the window, or the zero
// time when the window does not constrain.
func (w ContentWindow) Since(now time.Time) time.Time {
	switch w {
	case WindowDaily:
		year, month, day := now.Date()
		return time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	case WindowWeekly:
		return now.AddDate(0, 0, -7)
	case WindowMonthly:
		return now.AddDate(0, -1, 0)
	default:
		return time.Time{}
	}
}

// Post is a blog post aggregate.
type Post struct {
	ID         string
	Title      string
	Content    string
	AuthorID   string // empty once the author account is gone
	Author     *User
	CategoryID string
	Category   *Category
	ViewCount  int64
	Version    int64
	Tags       []*Tag
	Comments   []*Comment
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewPost creates a post owned by the given author.
func NewPost(title, content, authorID, categoryID string) *Post {
	now := time.Now()
	return &Post{
		ID:         "post_" + uuid.New().String(),
		Title:      title,
		Content:    content,
		AuthorID:   authorID,
		CategoryID: categoryID,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Ref returns the content reference for the post.
func (p *Post) Ref() ContentRef {
	return ContentRef{Kind: ContentKindPost, ID: p.ID}
}

// Document is a technical document aggregate. It mirrors Post structurally
// but is listed, filtered and notified independently.
type Document struct {
	ID         string
	Title      string
	Content    string
	AuthorID   string
	Author     *User
	CategoryID string
	Category   *Category
	ViewCount  int64
	Version    int64
	Tags       []*Tag
	Comments   []*Comment
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewDocument creates a document owned by the given author.
func NewDocument(title, content, authorID, categoryID string) *Document {
	now := time.Now()
	return &Document{
		ID:         "doc_" + uuid.New().String(),
		Title:      title,
		Content:    content,
		AuthorID:   authorID,
		CategoryID: categoryID,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Ref returns the content reference for the document.
func (d *Document) Ref() ContentRef {
	return ContentRef{Kind: ContentKindDocument, ID: d.ID}
}
