package biz

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"knowledgebase/internal/domain"
)

const dashboardChartDays = 30

// ChartPoint is one day of the dashboard activity chart.
type ChartPoint struct {
	Label string `json:"label"` // e.g. "Jan 02"
	Count int64  `json:"count"`
}

// DashboardView aggregates the admin dashboard.
type DashboardView struct {
	UserCount     int64
	PostCount     int64
	DocumentCount int64
	TagCount      int64

	LatestPosts      []*domain.Post
	LatestUsers      []*domain.User
	PopularDocuments []*domain.Document

	PostActivity []ChartPoint
}

// AdminUsecase serves the administrative dashboard.
type AdminUsecase struct {
	users     domain.UserRepository
	posts     domain.PostRepository
	documents domain.DocumentRepository
	tags      domain.TagRepository
	log       *log.Helper
}

// NewAdminUsecase creates the admin usecase.
func NewAdminUsecase(
	users domain.UserRepository,
	posts domain.PostRepository,
	documents domain.DocumentRepository,
	tags domain.TagRepository,
	logger log.Logger,
) *AdminUsecase {
	return &AdminUsecase{
		users:     users,
		posts:     posts,
		documents: documents,
		tags:      tags,
		log:       log.NewHelper(logger),
	}
}

// Dashboard assembles entity counts, the latest activity lists and the
// 30-day post creation chart.
func (uc *AdminUsecase) Dashboard(ctx context.Context) (*DashboardView, error) {
	view := &DashboardView{}

	var err error
	if view.UserCount, err = uc.users.Count(ctx); err != nil {
		return nil, err
	}
	if view.PostCount, err = uc.posts.Count(ctx); err != nil {
		return nil, err
	}
	if view.DocumentCount, err = uc.documents.Count(ctx); err != nil {
		return nil, err
	}
	if view.TagCount, err = uc.tags.Count(ctx); err != nil {
		return nil, err
	}

	if view.LatestPosts, err = uc.posts.ListRecent(ctx, time.Time{}, widgetSize); err != nil {
		return nil, err
	}
	if view.LatestUsers, err = uc.users.ListLatest(ctx, widgetSize); err != nil {
		return nil, err
	}
	if view.PopularDocuments, err = uc.documents.ListPopular(ctx, time.Time{}, widgetSize); err != nil {
		return nil, err
	}

	if view.PostActivity, err = uc.postActivity(ctx, time.Now()); err != nil {
		return nil, err
	}
	return view, nil
}

// postActivity builds one point per day for the last 30 days, oldest first,
// filling days without posts with zero.
func (uc *AdminUsecase) postActivity(ctx context.Context, now time.Time) ([]ChartPoint, error) {
	start := now.AddDate(0, 0, -(dashboardChartDays - 1))
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	counts, err := uc.posts.DailyCounts(ctx, startDay)
	if err != nil {
		return nil, err
	}

	points := make([]ChartPoint, 0, dashboardChartDays)
	for i := 0; i < dashboardChartDays; i++ {
		day := startDay.AddDate(0, 0, i)
		points = append(points, ChartPoint{
			Label: day.Format("Jan 02"),
			Count: counts[day.Format("2006-01-02")],
		})
	}
	return points, nil
}
