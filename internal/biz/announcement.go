package biz

import (
	"context"
	"strings"

	"github.com/go-kratos/kratos/v2/log"

	"knowledgebase/internal/domain"
)

// AnnouncementPage is one page of the announcement listing.
type AnnouncementPage struct {
	Announcements []*domain.Announcement
	Page          int
	TotalPages    int
	Total         int64
}

// AnnouncementUsecase manages company announcements.
type AnnouncementUsecase struct {
	announcements domain.AnnouncementRepository
	notifier      *NotificationUsecase
	log           *log.Helper
}

// NewAnnouncementUsecase creates the announcement usecase.
func NewAnnouncementUsecase(announcements domain.AnnouncementRepository, notifier *NotificationUsecase, logger log.Logger) *AnnouncementUsecase {
	return &AnnouncementUsecase{
		announcements: announcements,
		notifier:      notifier,
		log:           log.NewHelper(logger),
	}
}

// Create publishes an announcement and fans out notifications. A fan-out
// failure is logged, never surfaced.
func (uc *AnnouncementUsecase) Create(ctx context.Context, authorID, title, content string) (*domain.Announcement, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, domain.ErrValidation
	}

	announcement := domain.NewAnnouncement(title, content, authorID)
	if err := uc.announcements.Create(ctx, announcement); err != nil {
		return nil, err
	}

	if err := uc.notifier.NotifyNewAnnouncement(ctx, announcement); err != nil {
		uc.log.Errorf("notification fan-out failed for announcement %s: %v", announcement.ID, err)
	}
	return announcement, nil
}

// Get returns a single announcement.
func (uc *AnnouncementUsecase) Get(ctx context.Context, id string) (*domain.Announcement, error) {
	return uc.announcements.GetByID(ctx, id)
}

// List returns one page of announcements, newest first.
func (uc *AnnouncementUsecase) List(ctx context.Context, page int) (*AnnouncementPage, error) {
	page, offset := pageOffset(page, ListPageSize)
	announcements, total, err := uc.announcements.List(ctx, offset, ListPageSize)
	if err != nil {
		return nil, err
	}
	return &AnnouncementPage{
		Announcements: announcements,
		Page:          page,
		TotalPages:    PageCount(total, ListPageSize),
		Total:         total,
	}, nil
}
