package data

import (
	"context"
	"errors"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"

	"knowledgebase/internal/domain"
)

// AnnouncementPO is the announcement persistence object.
type AnnouncementPO struct {
	ID        string `gorm:"primaryKey;size:64"`
	Title     string `gorm:"size:255;not null"`
	Content   string `gorm:"type:text;not null"`
	AuthorID  string `gorm:"size:64;index:idx_announcements_author"`
	CreatedAt time.Time `gorm:"index:idx_announcements_created"`

	Author *UserPO `gorm:"foreignKey:AuthorID"`
}

// TableName 表名
func (AnnouncementPO) TableName() string {
	return "announcements"
}

// AnnouncementRepository is the gorm-backed announcement repository.
type AnnouncementRepository struct {
	data *Data
	log  *log.Helper
}

// NewAnnouncementRepo creates the announcement repository.
func NewAnnouncementRepo(data *Data, logger log.Logger) domain.AnnouncementRepository {
	return &AnnouncementRepository{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Create inserts a new announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *domain.Announcement) error {
	po := toAnnouncementPO(announcement)
	if err := r.data.DB(ctx).WithContext(ctx).Omit("Author").Create(po).Error; err != nil {
		r.log.Errorf("failed to create announcement: %v", err)
		return err
	}
	return nil
}

// GetByID returns the announcement with its author loaded.
func (r *AnnouncementRepository) GetByID(ctx context.Context, id string) (*domain.Announcement, error) {
	var po AnnouncementPO
	err := r.data.DB(ctx).WithContext(ctx).Preload("Author").Where("id = ?", id).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAnnouncementNotFound
		}
		r.log.Errorf("failed to get announcement: %v", err)
		return nil, err
	}
	return toDomainAnnouncement(&po), nil
}

// List returns one page of announcements, newest first, plus the total count.
func (r *AnnouncementRepository) List(ctx context.Context, offset, limit int) ([]*domain.Announcement, int64, error) {
	var total int64
	if err := r.data.DB(ctx).WithContext(ctx).Model(&AnnouncementPO{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pos []AnnouncementPO
	err := r.data.DB(ctx).WithContext(ctx).
		Preload("Author").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&pos).Error
	if err != nil {
		r.log.Errorf("failed to list announcements: %v", err)
		return nil, 0, err
	}
	return toDomainAnnouncements(pos), total, nil
}

// ListLatest returns the newest announcements up to limit.
func (r *AnnouncementRepository) ListLatest(ctx context.Context, limit int) ([]*domain.Announcement, error) {
	var pos []AnnouncementPO
	err := r.data.DB(ctx).WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&pos).Error
	if err != nil {
		r.log.Errorf("failed to list latest announcements: %v", err)
		return nil, err
	}
	return toDomainAnnouncements(pos), nil
}

// SearchByText returns announcements whose title or content contains the query.
func (r *AnnouncementRepository) SearchByText(ctx context.Context, query string) ([]*domain.Announcement, error) {
	like := "%" + query + "%"
	var pos []AnnouncementPO
	err := r.data.DB(ctx).WithContext(ctx).
		Preload("Author").
		Where("title LIKE ? OR content LIKE ?", like, like).
		Find(&pos).Error
	if err != nil {
		r.log.Errorf("failed to search announcements: %v", err)
		return nil, err
	}
	return toDomainAnnouncements(pos), nil
}

func toAnnouncementPO(a *domain.Announcement) *AnnouncementPO {
	return &AnnouncementPO{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		AuthorID:  a.AuthorID,
		CreatedAt: a.CreatedAt,
	}
}

func toDomainAnnouncement(po *AnnouncementPO) *domain.Announcement {
	a := &domain.Announcement{
		ID:        po.ID,
		Title:     po.Title,
		Content:   po.Content,
		AuthorID:  po.AuthorID,
		CreatedAt: po.CreatedAt,
	}
	if po.Author != nil {
		a.Author = toDomainUser(po.Author)
	}
	return a
}

func toDomainAnnouncements(pos []AnnouncementPO) []*domain.Announcement {
	announcements := make([]*domain.Announcement, 0, len(pos))
	for i := range pos {
		announcements = append(announcements, toDomainAnnouncement(&pos[i]))
	}
	return announcements
}
