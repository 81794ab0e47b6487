package service

import (
	"github.com/gin-gonic/gin"
	"github.com/go-kratos/kratos/v2/log"

	"knowledgebase/internal/biz"
	"knowledgebase/internal/domain"
)

// maxAvatarSize caps avatar uploads at 5 MiB.
const maxAvatarSize = 5 << 20

// AccountService exposes the authenticated user's own account: identity,
// notification settings and avatar.
type AccountService struct {
	users *biz.UserUsecase
	log   *log.Helper
}

// NewAccountService creates the account service.
func NewAccountService(users *biz.UserUsecase, logger log.Logger) *AccountService {
	return &AccountService{
		users: users,
		log:   log.NewHelper(logger),
	}
}

// Me handles GET /me.
func (s *AccountService) Me(c *gin.Context) {
	user, err := s.users.Get(c.Request.Context(), UserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{
		"user": toUserView(user),
		"notificationSettings": gin.H{
			"onComment":      user.Notify.OnComment,
			"onPost":         user.Notify.OnPost,
			"onDocument":     user.Notify.OnDocument,
			"onAnnouncement": user.Notify.OnAnnouncement,
		},
	})
}

type notificationSettingsRequest struct {
	OnComment      bool `json:"onComment"`
	OnPost         bool `json:"onPost"`
	OnDocument     bool `json:"onDocument"`
	OnAnnouncement bool `json:"onAnnouncement"`
}

// UpdateNotificationSettings handles PUT /me/notification-settings.
func (s *AccountService) UpdateNotificationSettings(c *gin.Context) {
	var req notificationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, domain.ErrValidation)
		return
	}

	err := s.users.UpdateNotificationSettings(c.Request.Context(), UserID(c), domain.NotificationSettings{
		OnComment:      req.OnComment,
		OnPost:         req.OnPost,
		OnDocument:     req.OnDocument,
		OnAnnouncement: req.OnAnnouncement,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	NoContent(c)
}

// UploadAvatar handles POST /me/avatar (multipart form, field "avatar").
func (s *AccountService) UploadAvatar(c *gin.Context) {
	header, err := c.FormFile("avatar")
	if err != nil || header.Size == 0 || header.Size > maxAvatarSize {
		Fail(c, domain.ErrValidation)
		return
	}

	file, err := header.Open()
	if err != nil {
		Fail(c, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	url, err := s.users.UpdateAvatar(c.Request.Context(), UserID(c), header.Filename, file, header.Size, contentType)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"avatarUrl": url})
}
