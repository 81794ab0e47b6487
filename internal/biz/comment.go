package biz

import (
	"context"
	"strings"

	"github.com/go-kratos/kratos/v2/log"

	"knowledgebase/internal/domain"
)

// CommentUsecase adds comments to posts and documents.
type CommentUsecase struct {
	comments  domain.CommentRepository
	posts     domain.PostRepository
	documents domain.DocumentRepository
	notifier  *NotificationUsecase
	log       *log.Helper
}

// NewCommentUsecase creates the comment usecase.
func NewCommentUsecase(
	comments domain.CommentRepository,
	posts domain.PostRepository,
	documents domain.DocumentRepository,
	notifier *NotificationUsecase,
	logger log.Logger,
) *CommentUsecase {
	return &CommentUsecase{
		comments:  comments,
		posts:     posts,
		documents: documents,
		notifier:  notifier,
		log:       log.NewHelper(logger),
	}
}

// Create attaches a comment to the referenced content item and notifies the
// item's author. The notification cannot fail the comment.
func (uc *CommentUsecase) Create(ctx context.Context, authorID string, parent domain.ContentRef, content string) (*domain.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrValidation
	}

	// The parent must exist before the comment is accepted.
	switch parent.Kind {
	case domain.ContentKindPost:
		if _, err := uc.posts.GetByID(ctx, parent.ID); err != nil {
			return nil, err
		}
	case domain.ContentKindDocument:
		if _, err := uc.documents.GetByID(ctx, parent.ID); err != nil {
			return nil, err
		}
	default:
		return nil, domain.ErrValidation
	}

	comment := domain.NewComment(parent, authorID, content)
	if err := uc.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	if err := uc.notifier.NotifyNewComment(ctx, comment); err != nil {
		uc.log.Errorf("notification failed for comment %s: %v", comment.ID, err)
	}
	return uc.comments.GetByID(ctx, comment.ID)
}
