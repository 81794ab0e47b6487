package data

import (
	"context"
	"errors"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"

	"knowledgebase/internal/domain"
)

// NotificationPO is the notification persistence object. Rows are append-only
// except for the is_read flag.
type NotificationPO struct {
	ID          string `gorm:"primaryKey;size:64"`
	RecipientID string `gorm:"size:64;not null;index:idx_notifications_recipient"`
	Message     string `gorm:"size:500;not null"`
	URL         string `gorm:"size:500"`
	IsRead      bool   `gorm:"not null;default:false"`
	CreatedAt   time.Time
}

// TableName 表名
func (NotificationPO) TableName() string {
	return "notifications"
}

// NotificationRepository is the gorm-backed notification repository.
type NotificationRepository struct {
	data *Data
	log  *log.Helper
}

// NewNotificationRepo creates the notification repository.
func NewNotificationRepo(data *Data, logger log.Logger) domain.NotificationRepository {
	return &NotificationRepository{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Create inserts a new notification row.
func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	po := toNotificationPO(notification)
	if err := r.data.DB(ctx).WithContext(ctx).Create(po).Error; err != nil {
		r.log.Errorf("failed to create notification: %v", err)
		return err
	}
	return nil
}

// GetByID returns the notification with the given id.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	var po NotificationPO
	if err := r.data.DB(ctx).WithContext(ctx).Where("id = ?", id).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}
	return toDomainNotification(&po), nil
}

// ListByRecipient returns all notifications for the user, newest first.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string) ([]*domain.Notification, error) {
	var pos []NotificationPO
	err := r.data.DB(ctx).WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Find(&pos).Error
	if err != nil {
		r.log.Errorf("failed to list notifications: %v", err)
		return nil, err
	}

	notifications := make([]*domain.Notification, 0, len(pos))
	for i := range pos {
		notifications = append(notifications, toDomainNotification(&pos[i]))
	}
	return notifications, nil
}

// CountUnread counts the user's unread notifications.
func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.data.DB(ctx).WithContext(ctx).Model(&NotificationPO{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// MarkRead flips a single notification to read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	res := r.data.DB(ctx).WithContext(ctx).Model(&NotificationPO{}).
		Where("id = ?", id).
		Update("is_read", true)
	if res.Error != nil {
		r.log.Errorf("failed to mark notification read: %v", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flips all of the user's unread notifications to read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string) error {
	err := r.data.DB(ctx).WithContext(ctx).Model(&NotificationPO{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true).Error
	if err != nil {
		r.log.Errorf("failed to mark notifications read: %v", err)
	}
	return err
}

func toNotificationPO(n *domain.Notification) *NotificationPO {
	return &NotificationPO{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		Message:     n.Message,
		URL:         n.URL,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt,
	}
}

func toDomainNotification(po *NotificationPO) *domain.Notification {
	return &domain.Notification{
		ID:          po.ID,
		RecipientID: po.RecipientID,
		Message:     po.Message,
		URL:         po.URL,
		IsRead:      po.IsRead,
		CreatedAt:   po.CreatedAt,
	}
}
