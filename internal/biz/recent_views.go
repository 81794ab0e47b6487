package biz

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"knowledgebase/internal/domain"
	"knowledgebase/pkg/cache"
)

const (
	recentViewsMax = 10
	recentViewsTTL = 30 * 24 * time.Hour
)

// ViewedItem is a resolved entry of a user's recently-viewed list.
type ViewedItem struct {
	Kind     domain.ContentKind `json:"kind"`
	ID       string             `json:"id"`
	Title    string             `json:"title"`
	URL      string             `json:"url"`
	ViewedAt time.Time          `json:"viewedAt"`
}

// RecentViewUsecase maintains the per-user recently-viewed list in the shared
// cache. The list holds at most 10 entries; re-viewing an item moves it to
// the front. Failures here never affect the page view itself.
type RecentViewUsecase struct {
	posts     domain.PostRepository
	documents domain.DocumentRepository
	store     cache.Cache
	log       *log.Helper
}

// NewRecentViewUsecase creates the recently-viewed usecase.
func NewRecentViewUsecase(posts domain.PostRepository, documents domain.DocumentRepository, store cache.Cache, logger log.Logger) *RecentViewUsecase {
	return &RecentViewUsecase{
		posts:     posts,
		documents: documents,
		store:     store,
		log:       log.NewHelper(logger),
	}
}

func recentViewsKey(userID string) string {
	return "recent_views:" + userID
}

// pushRecentView prepends the view, dropping any older entry for the same
// item and trimming to the capacity.
func pushRecentView(views []domain.RecentView, view domain.RecentView) []domain.RecentView {
	out := make([]domain.RecentView, 0, len(views)+1)
	out = append(out, view)
	for _, v := range views {
		if v.Kind == view.Kind && v.ID == view.ID {
			continue
		}
		out = append(out, v)
	}
	if len(out) > recentViewsMax {
		out = out[:recentViewsMax]
	}
	return out
}

// Record notes that the user viewed the given content item.
func (uc *RecentViewUsecase) Record(ctx context.Context, userID string, ref domain.ContentRef) error {
	if userID == "" {
		return nil
	}

	views, err := uc.load(ctx, userID)
	if err != nil {
		return err
	}
	views = pushRecentView(views, domain.RecentView{
		Kind:     ref.Kind,
		ID:       ref.ID,
		ViewedAt: time.Now(),
	})

	data, err := json.Marshal(views)
	if err != nil {
		return err
	}
	return uc.store.SetBytes(ctx, recentViewsKey(userID), data, recentViewsTTL)
}

// Resolve returns the user's recently-viewed list with current titles.
// Entries whose content has since been deleted are silently skipped.
func (uc *RecentViewUsecase) Resolve(ctx context.Context, userID string) ([]*ViewedItem, error) {
	views, err := uc.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]*ViewedItem, 0, len(views))
	for _, v := range views {
		item, err := uc.resolveOne(ctx, v)
		if err != nil {
			return nil, err
		}
		if item != nil {
			items = append(items, item)
		}
	}
	return items, nil
}

func (uc *RecentViewUsecase) resolveOne(ctx context.Context, v domain.RecentView) (*ViewedItem, error) {
	switch v.Kind {
	case domain.ContentKindPost:
		post, err := uc.posts.GetByID(ctx, v.ID)
		if errors.Is(err, domain.ErrPostNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &ViewedItem{Kind: v.Kind, ID: v.ID, Title: post.Title, URL: "/posts/" + v.ID, ViewedAt: v.ViewedAt}, nil
	case domain.ContentKindDocument:
		document, err := uc.documents.GetByID(ctx, v.ID)
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &ViewedItem{Kind: v.Kind, ID: v.ID, Title: document.Title, URL: "/documents/" + v.ID, ViewedAt: v.ViewedAt}, nil
	default:
		uc.log.Warnf("skipping recent view with unknown kind %q", v.Kind)
		return nil, nil
	}
}

func (uc *RecentViewUsecase) load(ctx context.Context, userID string) ([]domain.RecentView, error) {
	data, err := uc.store.GetBytes(ctx, recentViewsKey(userID))
	if errors.Is(err, cache.ErrMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var views []domain.RecentView
	if err := json.Unmarshal(data, &views); err != nil {
		// Corrupt list; start over rather than failing every page view.
		uc.log.Warnf("resetting undecodable recent views for %s: %v", userID, err)
		return nil, nil
	}
	return views, nil
}
