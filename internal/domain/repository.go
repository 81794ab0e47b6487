package domain

import (
	"context"
	"time"
)

// Transactor runs a function inside one storage transaction. The context
// passed to fn carries the transaction; repository calls made with it join it.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PostRepository persists blog posts.
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	// GetByID eager-loads category, author, tags and comments (with their
	// authors).
	GetByID(ctx context.Context, id string) (*Post, error)
	// Update writes title, content and category under optimistic
	// concurrency. Returns ErrConcurrentModification when the stored
	// version no longer matches, ErrPostNotFound when the row is gone.
	Update(ctx context.Context, post *Post) error
	// Delete removes the post together with its comments and tag links.
	Delete(ctx context.Context, id string) error
	// List returns one page of posts matching the filter, newest first,
	// plus the total match count.
	List(ctx context.Context, filter ContentFilter, offset, limit int) ([]*Post, int64, error)
	ListByAuthor(ctx context.Context, authorID string, offset, limit int) ([]*Post, int64, error)
	// ListRecent returns up to limit posts created since the given time
	// (zero time means unbounded), newest first.
	ListRecent(ctx context.Context, since time.Time, limit int) ([]*Post, error)
	// ListPopular is ListRecent ordered by view count.
	ListPopular(ctx context.Context, since time.Time, limit int) ([]*Post, error)
	// SearchByText returns posts whose title or content contains the query.
	SearchByText(ctx context.Context, query string) ([]*Post, error)
	IncrementViewCount(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	// DailyCounts returns per-day creation counts since the given time.
	DailyCounts(ctx context.Context, since time.Time) (map[string]int64, error)
}

// DocumentRepository persists technical documents.
type DocumentRepository interface {
	Create(ctx context.Context, doc *Document) error
	GetByID(ctx context.Context, id string) (*Document, error)
	Update(ctx context.Context, doc *Document) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ContentFilter, offset, limit int) ([]*Document, int64, error)
	ListByAuthor(ctx context.Context, authorID string, offset, limit int) ([]*Document, int64, error)
	ListRecent(ctx context.Context, since time.Time, limit int) ([]*Document, error)
	ListPopular(ctx context.Context, since time.Time, limit int) ([]*Document, error)
	SearchByText(ctx context.Context, query string) ([]*Document, error)
	IncrementViewCount(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// TagRepository persists tags and their content associations.
type TagRepository interface {
	Create(ctx context.Context, tag *Tag) error
	GetByID(ctx context.Context, id string) (*Tag, error)
	// GetByName looks a tag up by exact, case-sensitive name.
	GetByName(ctx context.Context, name string) (*Tag, error)
	UpdateName(ctx context.Context, id, name string) error
	// ClearAssociations removes every tag link of the given content item.
	ClearAssociations(ctx context.Context, ref ContentRef) error
	// Associate links the tag to the content item (no-op when already linked).
	Associate(ctx context.Context, ref ContentRef, tagID string) error
	// Merge moves every association of fromID onto toID (preserving set
	// semantics) and deletes fromID, atomically.
	Merge(ctx context.Context, fromID, toID string) error
	// Delete removes the tag and all of its associations atomically.
	Delete(ctx context.Context, id string) error
	ListWithUsage(ctx context.Context) ([]*TagUsage, error)
	// SearchNames returns up to limit tag names starting with the prefix.
	SearchNames(ctx context.Context, prefix string, limit int) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	GetByID(ctx context.Context, id string) (*Category, error)
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id string) error
	// List returns all categories ordered by name.
	List(ctx context.Context) ([]*Category, error)
	ListWithUsage(ctx context.Context) ([]*CategoryUsage, error)
	// UsageCount counts content items (posts and documents) in the category.
	UsageCount(ctx context.Context, id string) (int64, error)
}

// CommentRepository persists comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	// GetByID eager-loads the comment author.
	GetByID(ctx context.Context, id string) (*Comment, error)
}

// AnnouncementRepository persists announcements.
type AnnouncementRepository interface {
	Create(ctx context.Context, announcement *Announcement) error
	GetByID(ctx context.Context, id string) (*Announcement, error)
	List(ctx context.Context, offset, limit int) ([]*Announcement, int64, error)
	ListLatest(ctx context.Context, limit int) ([]*Announcement, error)
	SearchByText(ctx context.Context, query string) ([]*Announcement, error)
}

// NotificationRepository persists notification rows.
type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	// ListByRecipient returns all notifications for the user, newest first.
	ListByRecipient(ctx context.Context, recipientID string) ([]*Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, recipientID string) error
}

// UserRepository is the user-directory collaborator.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	// List returns all users ordered by name then surname.
	List(ctx context.Context) ([]*User, error)
	ListLatest(ctx context.Context, limit int) ([]*User, error)
	// ListNotifiable returns users with the given preference enabled,
	// excluding the given user id.
	ListNotifiable(ctx context.Context, pref NotificationPreference, excludeUserID string) ([]*User, error)
	Count(ctx context.Context) (int64, error)
}
