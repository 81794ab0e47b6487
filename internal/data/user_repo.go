package data

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"

	"knowledgebase/internal/domain"
)

// UserPO is the user persistence object. Roles are stored JSON-encoded.
type UserPO struct {
	ID                   string `gorm:"primaryKey;size:64"`
	Email                string `gorm:"size:255;not null;uniqueIndex:idx_users_email"`
	Name                 string `gorm:"size:100;not null"`
	Surname              string `gorm:"size:100"`
	PasswordHash         string `gorm:"size:255;not null"`
	AvatarURL            string `gorm:"size:500"`
	Roles                string `gorm:"type:text"`
	NotifyOnComment      bool   `gorm:"not null;default:true"`
	NotifyOnPost         bool   `gorm:"not null;default:true"`
	NotifyOnDocument     bool   `gorm:"not null;default:true"`
	NotifyOnAnnouncement bool   `gorm:"not null;default:true"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TableName 表名
func (UserPO) TableName() string {
	return "users"
}

// UserRepository is the gorm-backed user directory.
type UserRepository struct {
	data *Data
	log  *log.Helper
}

// NewUserRepo creates the user repository.
func NewUserRepo(data *Data, logger log.Logger) domain.UserRepository {
	return &UserRepository{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	po, err := toUserPO(user)
	if err != nil {
		return err
	}
	if err := r.data.DB(ctx).WithContext(ctx).Create(po).Error; err != nil {
		r.log.Errorf("failed to create user: %v", err)
		return err
	}
	return nil
}

// GetByID returns the user with the given id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var po UserPO
	if err := r.data.DB(ctx).WithContext(ctx).Where("id = ?", id).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		r.log.Errorf("failed to get user: %v", err)
		return nil, err
	}
	return toDomainUser(&po), nil
}

// GetByEmail returns the user with the given email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var po UserPO
	if err := r.data.DB(ctx).WithContext(ctx).Where("email = ?", email).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		r.log.Errorf("failed to get user by email: %v", err)
		return nil, err
	}
	return toDomainUser(&po), nil
}

// Update writes the full user record.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	po, err := toUserPO(user)
	if err != nil {
		return err
	}
	po.UpdatedAt = time.Now()

	res := r.data.DB(ctx).WithContext(ctx).Model(&UserPO{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"email":                  po.Email,
			"name":                   po.Name,
			"surname":                po.Surname,
			"password_hash":          po.PasswordHash,
			"avatar_url":             po.AvatarURL,
			"roles":                  po.Roles,
			"notify_on_comment":      po.NotifyOnComment,
			"notify_on_post":         po.NotifyOnPost,
			"notify_on_document":     po.NotifyOnDocument,
			"notify_on_announcement": po.NotifyOnAnnouncement,
			"updated_at":             po.UpdatedAt,
		})
	if res.Error != nil {
		r.log.Errorf("failed to update user: %v", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// List returns all users ordered by name then surname.
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	var pos []UserPO
	err := r.data.DB(ctx).WithContext(ctx).
		Order("name ASC").
		Order("surname ASC").
		Find(&pos).Error
	if err != nil {
		r.log.Errorf("failed to list users: %v", err)
		return nil, err
	}
	return toDomainUsers(pos), nil
}

// ListLatest returns the most recently registered users up to limit.
func (r *UserRepository) ListLatest(ctx context.Context, limit int) ([]*domain.User, error) {
	var pos []UserPO
	err := r.data.DB(ctx).WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&pos).Error
	if err != nil {
		r.log.Errorf("failed to list latest users: %v", err)
		return nil, err
	}
	return toDomainUsers(pos), nil
}

// ListNotifiable returns users with the given preference enabled, excluding
// the given user id.
func (r *UserRepository) ListNotifiable(ctx context.Context, pref domain.NotificationPreference, excludeUserID string) ([]*domain.User, error) {
	column := ""
	switch pref {
	case domain.NotifyOnComment:
		column = "notify_on_comment"
	case domain.NotifyOnPost:
		column = "notify_on_post"
	case domain.NotifyOnDocument:
		column = "notify_on_document"
	case domain.NotifyOnAnnouncement:
		column = "notify_on_announcement"
	default:
		return nil, errors.New("unknown notification preference")
	}

	var pos []UserPO
	err := r.data.DB(ctx).WithContext(ctx).
		Where("id <> ? AND "+column+" = ?", excludeUserID, true).
		Order("created_at ASC").
		Find(&pos).Error
	if err != nil {
		r.log.Errorf("failed to list notifiable users: %v", err)
		return nil, err
	}
	return toDomainUsers(pos), nil
}

// Count returns the total number of users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.data.DB(ctx).WithContext(ctx).Model(&UserPO{}).Count(&count).Error
	return count, err
}

func toUserPO(u *domain.User) (*UserPO, error) {
	roles, err := json.Marshal(u.Roles)
	if err != nil {
		return nil, err
	}
	return &UserPO{
		ID:                   u.ID,
		Email:                u.Email,
		Name:                 u.Name,
		Surname:              u.Surname,
		PasswordHash:         u.PasswordHash,
		AvatarURL:            u.AvatarURL,
		Roles:                string(roles),
		NotifyOnComment:      u.Notify.OnComment,
		NotifyOnPost:         u.Notify.OnPost,
		NotifyOnDocument:     u.Notify.OnDocument,
		NotifyOnAnnouncement: u.Notify.OnAnnouncement,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}, nil
}

func toDomainUser(po *UserPO) *domain.User {
	var roles []string
	if po.Roles != "" {
		// A malformed roles payload leaves the user roleless rather than
		// failing the whole read.
		_ = json.Unmarshal([]byte(po.Roles), &roles)
	}
	return &domain.User{
		ID:           po.ID,
		Email:        po.Email,
		Name:         po.Name,
		Surname:      po.Surname,
		PasswordHash: po.PasswordHash,
		AvatarURL:    po.AvatarURL,
		Roles:        roles,
		Notify: domain.NotificationSettings{
			OnComment:      po.NotifyOnComment,
			OnPost:         po.NotifyOnPost,
			OnDocument:     po.NotifyOnDocument,
			OnAnnouncement: po.NotifyOnAnnouncement,
		},
		CreatedAt: po.CreatedAt,
		UpdatedAt: po.UpdatedAt,
	}
}

func toDomainUsers(pos []UserPO) []*domain.User {
	users := make([]*domain.User, 0, len(pos))
	for i := range pos {
		users = append(users, toDomainUser(&pos[i]))
	}
	return users
}
