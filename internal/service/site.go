package service

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kratos/kratos/v2/log"

	"knowledgebase/internal/biz"
	"knowledgebase/internal/domain"
)

// SiteService exposes the aggregate pages: home, search and user profiles.
type SiteService struct {
	content *biz.ContentUsecase
	search  *biz.SearchUsecase
	log     *log.Helper
}

// NewSiteService creates the site service.
func NewSiteService(content *biz.ContentUsecase, search *biz.SearchUsecase, logger log.Logger) *SiteService {
	return &SiteService{
		content: content,
		search:  search,
		log:     log.NewHelper(logger),
	}
}

type announcementView struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content,omitempty"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toAnnouncementView(a *domain.Announcement, includeBody bool) *announcementView {
	view := &announcementView{
		ID:         a.ID,
		Title:      a.Title,
		AuthorName: authorName(a.Author),
		CreatedAt:  a.CreatedAt,
	}
	if includeBody {
		view.Content = a.Content
	}
	return view
}

func toAnnouncementViews(announcements []*domain.Announcement, includeBody bool) []*announcementView {
	views := make([]*announcementView, 0, len(announcements))
	for _, a := range announcements {
		views = append(views, toAnnouncementView(a, includeBody))
	}
	return views
}

// Home handles GET /home.
func (s *SiteService) Home(c *gin.Context) {
	view, err := s.content.Home(c.Request.Context(), UserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{
		"announcements":   toAnnouncementViews(view.Announcements, false),
		"recentPosts":     toPostViews(view.RecentPosts),
		"recentDocuments": toDocumentViews(view.RecentDocuments),
		"recentlyViewed":  view.RecentlyViewed,
	})
}

// Search handles GET /search.
func (s *SiteService) Search(c *gin.Context) {
	page, err := s.search.Search(c.Request.Context(), c.Query("q"), queryInt(c, "page", 1))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{
		"query":      page.Query,
		"results":    page.Results,
		"page":       page.Page,
		"totalPages": page.TotalPages,
		"total":      page.Total,
	})
}

// Profile handles GET /profiles/:id.
func (s *SiteService) Profile(c *gin.Context) {
	view, err := s.content.Profile(c.Request.Context(), c.Param("id"),
		queryInt(c, "postPage", 1), queryInt(c, "documentPage", 1))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{
		"user": toUserView(view.User),
		"posts": gin.H{
			"items":      toPostViews(view.Posts.Posts),
			"page":       view.Posts.Page,
			"totalPages": view.Posts.TotalPages,
			"total":      view.Posts.Total,
		},
		"documents": gin.H{
			"items":      toDocumentViews(view.Documents.Documents),
			"page":       view.Documents.Page,
			"totalPages": view.Documents.TotalPages,
			"total":      view.Documents.Total,
		},
	})
}
