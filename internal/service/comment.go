package service

import (
	"github.com/gin-gonic/gin"
	"github.com/go-kratos/kratos/v2/log"

	"knowledgebase/internal/biz"
	"knowledgebase/internal/domain"
)

// CommentService exposes comment creation.
type CommentService struct {
	comments *biz.CommentUsecase
	log      *log.Helper
}

// NewCommentService creates the comment service.
func NewCommentService(comments *biz.CommentUsecase, logger log.Logger) *CommentService {
	return &CommentService{
		comments: comments,
		log:      log.NewHelper(logger),
	}
}

type createCommentRequest struct {
	ParentKind string `json:"parentKind" binding:"required"`
	ParentID   string `json:"parentId" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

// Create handles POST /comments.
func (s *CommentService) Create(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, domain.ErrValidation)
		return
	}

	parent := domain.ContentRef{Kind: domain.ContentKind(req.ParentKind), ID: req.ParentID}
	comment, err := s.comments.Create(c.Request.Context(), UserID(c), parent, req.Content)
	if err != nil {
		Fail(c, err)
		return
	}

	views := toCommentViews([]*domain.Comment{comment})
	Created(c, views[0])
}
