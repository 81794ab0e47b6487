package service

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kratos/kratos/v2/log"

	"knowledgebase/internal/biz"
	"knowledgebase/internal/domain"
)

type notificationView struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	URL       string    `json:"url"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

func toNotificationViews(notifications []*domain.Notification) []notificationView {
	views := make([]notificationView, 0, len(notifications))
	for _, n := range notifications {
		views = append(views, notificationView{
			ID:        n.ID,
			Message:   n.Message,
			URL:       n.URL,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}
	return views
}

// NotificationService exposes the per-user notification inbox.
type NotificationService struct {
	notifications *biz.NotificationUsecase
	log           *log.Helper
}

// NewNotificationService creates the notification service.
func NewNotificationService(notifications *biz.NotificationUsecase, logger log.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		log:           log.NewHelper(logger),
	}
}

// List handles GET /notifications.
func (s *NotificationService) List(c *gin.Context) {
	notifications, err := s.notifications.Inbox(c.Request.Context(), UserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, toNotificationViews(notifications))
}

// UnreadCount handles GET /notifications/unread-count.
func (s *NotificationService) UnreadCount(c *gin.Context) {
	count, err := s.notifications.UnreadCount(c.Request.Context(), UserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"count": count})
}

// Open handles POST /notifications/:id/open: marks the notification read and
// returns the URL the client should navigate to.
func (s *NotificationService) Open(c *gin.Context) {
	url, err := s.notifications.Open(c.Request.Context(), UserID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"url": url})
}

// MarkAllRead handles POST /notifications/read-all.
func (s *NotificationService) MarkAllRead(c *gin.Context) {
	if err := s.notifications.MarkAllRead(c.Request.Context(), UserID(c)); err != nil {
		Fail(c, err)
		return
	}
	NoContent(c)
}
