package data

import (
	"context"
	"errors"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"

	"knowledgebase/internal/domain"
)

// CommentPO is the comment persistence object. The parent is a tagged
// (kind, id) pair instead of two nullable foreign keys.
type CommentPO struct {
	ID         string `gorm:"primaryKey;size:64"`
	ParentKind string `gorm:"size:16;not null;index:idx_comments_parent"`
	ParentID   string `gorm:"size:64;not null;index:idx_comments_parent"`
	AuthorID   string `gorm:"size:64;index:idx_comments_author"`
	Content    string `gorm:"type:text;not null"`
	CreatedAt  time.Time

	Author *UserPO `gorm:"foreignKey:AuthorID"`
}

// TableName 表名
func (CommentPO) TableName() string {
	return "comments"
}

// CommentRepository is the gorm-backed comment repository.
type CommentRepository struct {
	data *Data
	log  *log.Helper
}

// NewCommentRepo creates the comment repository.
func NewCommentRepo(data *Data, logger log.Logger) domain.CommentRepository {
	return &CommentRepository{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Create inserts a new comment.
func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	po := toCommentPO(comment)
	if err := r.data.DB(ctx).WithContext(ctx).Omit("Author").Create(po).Error; err != nil {
		r.log.Errorf("failed to create comment: %v", err)
		return err
	}
	return nil
}

// GetByID returns the comment with its author loaded.
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	var po CommentPO
	err := r.data.DB(ctx).WithContext(ctx).Preload("Author").Where("id = ?", id).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCommentNotFound
		}
		r.log.Errorf("failed to get comment: %v", err)
		return nil, err
	}
	return toDomainComment(&po), nil
}

// loadComments returns the comments of a content item, oldest first, with
// their authors. Shared by the post and document repositories.
func loadComments(ctx context.Context, db *gorm.DB, ref domain.ContentRef) ([]*domain.Comment, error) {
	var pos []CommentPO
	err := db.WithContext(ctx).
		Preload("Author").
		Where("parent_kind = ? AND parent_id = ?", string(ref.Kind), ref.ID).
		Order("created_at ASC").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}

	comments := make([]*domain.Comment, 0, len(pos))
	for i := range pos {
		comments = append(comments, toDomainComment(&pos[i]))
	}
	return comments, nil
}

func toCommentPO(c *domain.Comment) *CommentPO {
	return &CommentPO{
		ID:         c.ID,
		ParentKind: string(c.Parent.Kind),
		ParentID:   c.Parent.ID,
		AuthorID:   c.AuthorID,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt,
	}
}

func toDomainComment(po *CommentPO) *domain.Comment {
	comment := &domain.Comment{
		ID: po.ID,
		Parent: domain.ContentRef{
			Kind: domain.ContentKind(po.ParentKind),
			ID:   po.ParentID,
		},
		AuthorID:  po.AuthorID,
		Content:   po.Content,
		CreatedAt: po.CreatedAt,
	}
	if po.Author != nil {
		comment.Author = toDomainUser(po.Author)
	}
	return comment
}
