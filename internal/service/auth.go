package service

import (
	"github.com/gin-gonic/gin"
	"github.com/go-kratos/kratos/v2/log"

	"knowledgebase/internal/biz"
	"knowledgebase/internal/domain"
)

// AuthService exposes registration and login.
type AuthService struct {
	users *biz.UserUsecase
	log   *log.Helper
}

// NewAuthService creates the auth service.
func NewAuthService(users *biz.UserUsecase, logger log.Logger) *AuthService {
	return &AuthService{
		users: users,
		log:   log.NewHelper(logger),
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Surname  string `json:"surname"`
	Password string `json:"password" binding:"required"`
}

type userView struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Surname   string   `json:"surname"`
	FullName  string   `json:"fullName"`
	AvatarURL string   `json:"avatarUrl,omitempty"`
	Roles     []string `json:"roles"`
}

func toUserView(u *domain.User) *userView {
	return &userView{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Surname:   u.Surname,
		FullName:  u.FullName(),
		AvatarURL: u.AvatarURL,
		Roles:     u.Roles,
	}
}

// Register handles POST /auth/register.
func (s *AuthService) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, domain.ErrValidation)
		return
	}

	user, err := s.users.Register(c.Request.Context(), req.Email, req.Name, req.Surname, req.Password)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, toUserView(user))
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /auth/login.
func (s *AuthService) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, domain.ErrValidation)
		return
	}

	token, user, err := s.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{
		"token": token,
		"user":  toUserView(user),
	})
}
