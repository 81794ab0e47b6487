package service

import (
	"github.com/gin-gonic/gin"
	"github.com/go-kratos/kratos/v2/log"

	"knowledgebase/internal/biz"
	"knowledgebase/internal/domain"
)

// TaxonomyService exposes tag and category management.
type TaxonomyService struct {
	tags       *biz.TagUsecase
	categories *biz.CategoryUsecase
	log        *log.Helper
}

// NewTaxonomyService creates the taxonomy service.
func NewTaxonomyService(tags *biz.TagUsecase, categories *biz.CategoryUsecase, logger log.Logger) *TaxonomyService {
	return &TaxonomyService{
		tags:       tags,
		categories: categories,
		log:        log.NewHelper(logger),
	}
}

// ListTags handles GET /tags.
func (s *TaxonomyService) ListTags(c *gin.Context) {
	usages, err := s.tags.ListWithUsage(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}

	type tagView struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		UsageCount int64  `json:"usageCount"`
	}
	views := make([]tagView, 0, len(usages))
	for _, u := range usages {
		views = append(views, tagView{ID: u.Tag.ID, Name: u.Tag.Name, UsageCount: u.UsageCount})
	}
	OK(c, views)
}

// AutocompleteTags handles GET /tags/autocomplete.
func (s *TaxonomyService) AutocompleteTags(c *gin.Context) {
	names, err := s.tags.Autocomplete(c.Request.Context(), c.Query("term"))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, names)
}

type renameRequest struct {
	Name string `json:"name" binding:"required"`
}

// RenameTag handles PUT /tags/:id. Renaming onto an existing name merges the
// two tags.
func (s *TaxonomyService) RenameTag(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, domain.ErrValidation)
		return
	}
	if err := s.tags.Rename(c.Request.Context(), c.Param("id"), req.Name); err != nil {
		Fail(c, err)
		return
	}
	NoContent(c)
}

// DeleteTag handles DELETE /tags/:id.
func (s *TaxonomyService) DeleteTag(c *gin.Context) {
	if err := s.tags.Delete(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	NoContent(c)
}

type categoryView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListCategories handles GET /categories.
func (s *TaxonomyService) ListCategories(c *gin.Context) {
	categories, err := s.categories.List(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}

	views := make([]categoryView, 0, len(categories))
	for _, category := range categories {
		views = append(views, categoryView{ID: category.ID, Name: category.Name})
	}
	OK(c, views)
}

// ListCategoryUsage handles GET /categories/usage.
func (s *TaxonomyService) ListCategoryUsage(c *gin.Context) {
	usages, err := s.categories.ListWithUsage(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}

	type categoryUsageView struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		UsageCount int64  `json:"usageCount"`
	}
	views := make([]categoryUsageView, 0, len(usages))
	for _, u := range usages {
		views = append(views, categoryUsageView{ID: u.Category.ID, Name: u.Category.Name, UsageCount: u.UsageCount})
	}
	OK(c, views)
}

// CreateCategory handles POST /categories.
func (s *TaxonomyService) CreateCategory(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, domain.ErrValidation)
		return
	}
	category, err := s.categories.Create(c.Request.Context(), req.Name)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, categoryView{ID: category.ID, Name: category.Name})
}

// RenameCategory handles PUT /categories/:id.
func (s *TaxonomyService) RenameCategory(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, domain.ErrValidation)
		return
	}
	if err := s.categories.Rename(c.Request.Context(), c.Param("id"), req.Name); err != nil {
		Fail(c, err)
		return
	}
	NoContent(c)
}

// DeleteCategory handles DELETE /categories/:id. Categories still in use are
// refused with a conflict.
func (s *TaxonomyService) DeleteCategory(c *gin.Context) {
	if err := s.categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	NoContent(c)
}
