package service

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kratos/kratos/v2/log"

	"knowledgebase/internal/biz"
	"knowledgebase/internal/domain"
)

// ContentService exposes the post and document endpoints, including the
// sidebar widgets.
type ContentService struct {
	content *biz.ContentUsecase
	log     *log.Helper
}

// NewContentService creates the content service.
func NewContentService(content *biz.ContentUsecase, logger log.Logger) *ContentService {
	return &ContentService{
		content: content,
		log:     log.NewHelper(logger),
	}
}

type commentView struct {
	ID         string    `json:"id"`
	AuthorName string    `json:"authorName"`
	AuthorID   string    `json:"authorId,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

type contentView struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Content      string        `json:"content,omitempty"`
	AuthorID     string        `json:"authorId,omitempty"`
	AuthorName   string        `json:"authorName"`
	CategoryID   string        `json:"categoryId,omitempty"`
	CategoryName string        `json:"categoryName,omitempty"`
	ViewCount    int64         `json:"viewCount"`
	Tags         []string      `json:"tags"`
	Comments     []commentView `json:"comments,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

func toCommentViews(comments []*domain.Comment) []commentView {
	views := make([]commentView, 0, len(comments))
	for _, c := range comments {
		name := "Unknown Author"
		if c.Author != nil && c.Author.FullName() != "" {
			name = c.Author.FullName()
		}
		views = append(views, commentView{
			ID:         c.ID,
			AuthorName: name,
			AuthorID:   c.AuthorID,
			Content:    c.Content,
			CreatedAt:  c.CreatedAt,
		})
	}
	return views
}

func toPostView(p *domain.Post, includeBody bool) *contentView {
	view := &contentView{
		ID:         p.ID,
		Title:      p.Title,
		AuthorID:   p.AuthorID,
		AuthorName: authorName(p.Author),
		CategoryID: p.CategoryID,
		ViewCount:  p.ViewCount,
		Tags:       tagNames(p.Tags),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.Category != nil {
		view.CategoryName = p.Category.Name
	}
	if includeBody {
		view.Content = p.Content
		view.Comments = toCommentViews(p.Comments)
	}
	return view
}

func toDocumentView(d *domain.Document, includeBody bool) *contentView {
	view := &contentView{
		ID:         d.ID,
		Title:      d.Title,
		AuthorID:   d.AuthorID,
		AuthorName: authorName(d.Author),
		CategoryID: d.CategoryID,
		ViewCount:  d.ViewCount,
		Tags:       tagNames(d.Tags),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
	if d.Category != nil {
		view.CategoryName = d.Category.Name
	}
	if includeBody {
		view.Content = d.Content
		view.Comments = toCommentViews(d.Comments)
	}
	return view
}

func authorName(author *domain.User) string {
	if author == nil || author.FullName() == "" {
		return "Unknown Author"
	}
	return author.FullName()
}

func tagNames(tags []*domain.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}

func toPostViews(posts []*domain.Post) []*contentView {
	views := make([]*contentView, 0, len(posts))
	for _, p := range posts {
		views = append(views, toPostView(p, false))
	}
	return views
}

func toDocumentViews(documents []*domain.Document) []*contentView {
	views := make([]*contentView, 0, len(documents))
	for _, d := range documents {
		views = append(views, toDocumentView(d, false))
	}
	return views
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return v
}

func contentFilter(c *gin.Context) domain.ContentFilter {
	return domain.ContentFilter{
		Query:      c.Query("q"),
		CategoryID: c.Query("categoryId"),
		Tag:        c.Query("tag"),
	}
}

// ListPosts handles GET /posts.
func (s *ContentService) ListPosts(c *gin.Context) {
	page, err := s.content.ListPosts(c.Request.Context(), contentFilter(c), queryInt(c, "page", 1))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{
		"items":      toPostViews(page.Posts),
		"page":       page.Page,
		"totalPages": page.TotalPages,
		"total":      page.Total,
	})
}

// GetPost handles GET /posts/:id.
func (s *ContentService) GetPost(c *gin.Context) {
	post, err := s.content.GetPost(c.Request.Context(), c.Param("id"), UserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, toPostView(post, true))
}

type contentRequest struct {
	Title      string `json:"title" binding:"required"`
	Content    string `json:"content" binding:"required"`
	CategoryID string `json:"categoryId"`
	Tags       string `json:"tags"`
}

// CreatePost handles POST /posts.
func (s *ContentService) CreatePost(c *gin.Context) {
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, domain.ErrValidation)
		return
	}

	post, err := s.content.CreatePost(c.Request.Context(), UserID(c), req.Title, req.Content, req.CategoryID, req.Tags)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, toPostView(post, true))
}

// UpdatePost handles PUT /posts/:id.
func (s *ContentService) UpdatePost(c *gin.Context) {
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, domain.ErrValidation)
		return
	}

	post, err := s.content.UpdatePost(c.Request.Context(), Actor(c), c.Param("id"), req.Title, req.Content, req.CategoryID, req.Tags)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, toPostView(post, true))
}

// DeletePost handles DELETE /posts/:id.
func (s *ContentService) DeletePost(c *gin.Context) {
	if err := s.content.DeletePost(c.Request.Context(), Actor(c), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	NoContent(c)
}

// ListDocuments handles GET /documents.
func (s *ContentService) ListDocuments(c *gin.Context) {
	page, err := s.content.ListDocuments(c.Request.Context(), contentFilter(c), queryInt(c, "page", 1))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{
		"items":      toDocumentViews(page.Documents),
		"page":       page.Page,
		"totalPages": page.TotalPages,
		"total":      page.Total,
	})
}

// GetDocument handles GET /documents/:id.
func (s *ContentService) GetDocument(c *gin.Context) {
	document, err := s.content.GetDocument(c.Request.Context(), c.Param("id"), UserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, toDocumentView(document, true))
}

// CreateDocument handles POST /documents.
func (s *ContentService) CreateDocument(c *gin.Context) {
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, domain.ErrValidation)
		return
	}

	document, err := s.content.CreateDocument(c.Request.Context(), UserID(c), req.Title, req.Content, req.CategoryID, req.Tags)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, toDocumentView(document, true))
}

// UpdateDocument handles PUT /documents/:id.
func (s *ContentService) UpdateDocument(c *gin.Context) {
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, domain.ErrValidation)
		return
	}

	document, err := s.content.UpdateDocument(c.Request.Context(), Actor(c), c.Param("id"), req.Title, req.Content, req.CategoryID, req.Tags)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, toDocumentView(document, true))
}

// DeleteDocument handles DELETE /documents/:id.
func (s *ContentService) DeleteDocument(c *gin.Context) {
	if err := s.content.DeleteDocument(c.Request.Context(), Actor(c), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	NoContent(c)
}

func widgetWindow(c *gin.Context) domain.ContentWindow {
	switch domain.ContentWindow(c.Query("window")) {
	case domain.WindowDaily:
		return domain.WindowDaily
	case domain.WindowWeekly:
		return domain.WindowWeekly
	case domain.WindowMonthly:
		return domain.WindowMonthly
	default:
		return domain.WindowAll
	}
}

// PostWidget handles GET /widgets/posts?list=popular|latest&window=...
func (s *ContentService) PostWidget(c *gin.Context) {
	var (
		posts []*domain.Post
		err   error
	)
	if c.Query("list") == "popular" {
		posts, err = s.content.PopularPosts(c.Request.Context(), widgetWindow(c))
	} else {
		posts, err = s.content.LatestPosts(c.Request.Context(), widgetWindow(c))
	}
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, toPostViews(posts))
}

// DocumentWidget handles GET /widgets/documents?list=popular|latest&window=...
func (s *ContentService) DocumentWidget(c *gin.Context) {
	var (
		documents []*domain.Document
		err       error
	)
	if c.Query("list") == "popular" {
		documents, err = s.content.PopularDocuments(c.Request.Context(), widgetWindow(c))
	} else {
		documents, err = s.content.LatestDocuments(c.Request.Context(), widgetWindow(c))
	}
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, toDocumentViews(documents))
}
