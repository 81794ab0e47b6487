package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a label shared by posts and documents. Names are unique across all
// tags at any instant (enforced by a unique index in the store).
type Tag struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// NewTag creates a tag with the given name.
func NewTag(name string) *Tag {
	return &Tag{
		ID:        "tag_" + uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now(),
	}
}

// TagUsage pairs a tag with the number of content items referencing it.
type TagUsage struct {
	Tag
	UsageCount int64
}

// Category groups content items. A content item has at most one category.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCategory creates a category with the given name.
func NewCategory(name string) *Category {
	now := time.Now()
	return &Category{
		ID:        "cat_" + uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CategoryUsage pairs a category with the number of content items in it.
type CategoryUsage struct {
	Category
	UsageCount int64
}
