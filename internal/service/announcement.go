package service

import (
	"github.com/gin-gonic/gin"
	"github.com/go-kratos/kratos/v2/log"

	"knowledgebase/internal/biz"
	"knowledgebase/internal/domain"
)

// AnnouncementService exposes the announcement endpoints.
type AnnouncementService struct {
	announcements *biz.AnnouncementUsecase
	log           *log.Helper
}

// NewAnnouncementService creates the announcement service.
func NewAnnouncementService(announcements *biz.AnnouncementUsecase, logger log.Logger) *AnnouncementService {
	return &AnnouncementService{
		announcements: announcements,
		log:           log.NewHelper(logger),
	}
}

// List handles GET /announcements.
func (s *AnnouncementService) List(c *gin.Context) {
	page, err := s.announcements.List(c.Request.Context(), queryInt(c, "page", 1))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{
		"items":      toAnnouncementViews(page.Announcements, false),
		"page":       page.Page,
		"totalPages": page.TotalPages,
		"total":      page.Total,
	})
}

// Get handles GET /announcements/:id.
func (s *AnnouncementService) Get(c *gin.Context) {
	announcement, err := s.announcements.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, toAnnouncementView(announcement, true))
}

type createAnnouncementRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// Create handles POST /announcements.
func (s *AnnouncementService) Create(c *gin.Context) {
	var req createAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, domain.ErrValidation)
		return
	}

	announcement, err := s.announcements.Create(c.Request.Context(), UserID(c), req.Title, req.Content)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, toAnnouncementView(announcement, true))
}
