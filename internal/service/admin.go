package service

import (
	"github.com/gin-gonic/gin"
	"github.com/go-kratos/kratos/v2/log"

	"knowledgebase/internal/biz"
	"knowledgebase/internal/domain"
)

// AdminService exposes the dashboard and user administration.
type AdminService struct {
	admin *biz.AdminUsecase
	users *biz.UserUsecase
	log   *log.Helper
}

// NewAdminService creates the admin service.
func NewAdminService(admin *biz.AdminUsecase, users *biz.UserUsecase, logger log.Logger) *AdminService {
	return &AdminService{
		admin: admin,
		users: users,
		log:   log.NewHelper(logger),
	}
}

// Dashboard handles GET /admin/dashboard.
func (s *AdminService) Dashboard(c *gin.Context) {
	view, err := s.admin.Dashboard(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{
		"userCount":        view.UserCount,
		"postCount":        view.PostCount,
		"documentCount":    view.DocumentCount,
		"tagCount":         view.TagCount,
		"latestPosts":      toPostViews(view.LatestPosts),
		"latestUsers":      toUserViews(view.LatestUsers),
		"popularDocuments": toDocumentViews(view.PopularDocuments),
		"postActivity":     view.PostActivity,
	})
}

// ListUsers handles GET /admin/users.
func (s *AdminService) ListUsers(c *gin.Context) {
	users, err := s.users.List(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, toUserViews(users))
}

// UserRoles handles GET /admin/users/:id/roles.
func (s *AdminService) UserRoles(c *gin.Context) {
	selections, err := s.users.Roles(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, selections)
}

type updateRolesRequest struct {
	Roles []string `json:"roles"`
}

// UpdateUserRoles handles PUT /admin/users/:id/roles.
func (s *AdminService) UpdateUserRoles(c *gin.Context) {
	var req updateRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, domain.ErrValidation)
		return
	}
	if err := s.users.UpdateRoles(c.Request.Context(), c.Param("id"), req.Roles); err != nil {
		Fail(c, err)
		return
	}
	NoContent(c)
}

func toUserViews(users []*domain.User) []*userView {
	views := make([]*userView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	return views
}
