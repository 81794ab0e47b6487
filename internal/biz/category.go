package biz

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"knowledgebase/internal/domain"
	"knowledgebase/pkg/cache"
)

const (
	categoryCacheKey = "categories:all"
	categoryCacheTTL = time.Hour
)

// CategoryUsecase manages categories. The full category list is cached with a
// sliding TTL because it is read on nearly every page and changes rarely.
type CategoryUsecase struct {
	categories domain.CategoryRepository
	cache      cache.Cache
	log        *log.Helper
}

// NewCategoryUsecase creates the category usecase.
func NewCategoryUsecase(categories domain.CategoryRepository, c cache.Cache, logger log.Logger) *CategoryUsecase {
	return &CategoryUsecase{
		categories: categories,
		cache:      c,
		log:        log.NewHelper(logger),
	}
}

// List returns all categories ordered by name. A cache hit re-arms the TTL;
// a miss loads from the database and repopulates the cache. Cache failures
// degrade to a database read.
func (uc *CategoryUsecase) List(ctx context.Context) ([]*domain.Category, error) {
	if data, err := uc.cache.GetBytes(ctx, categoryCacheKey); err == nil {
		var categories []*domain.Category
		if err := json.Unmarshal(data, &categories); err == nil {
			if err := uc.cache.Expire(ctx, categoryCacheKey, categoryCacheTTL); err != nil {
				uc.log.Warnf("failed to slide category cache TTL: %v", err)
			}
			return categories, nil
		}
		uc.log.Warnf("discarding undecodable category cache entry: %v", err)
	} else if err != cache.ErrMiss {
		uc.log.Warnf("category cache read failed: %v", err)
	}

	categories, err := uc.categories.List(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(categories); err == nil {
		if err := uc.cache.SetBytes(ctx, categoryCacheKey, data, categoryCacheTTL); err != nil {
			uc.log.Warnf("failed to populate category cache: %v", err)
		}
	}
	return categories, nil
}

// ListWithUsage returns all categories with usage counts for the admin screen.
// Usage counts are never cached.
func (uc *CategoryUsecase) ListWithUsage(ctx context.Context) ([]*domain.CategoryUsage, error) {
	return uc.categories.ListWithUsage(ctx)
}

// Get returns a single category.
func (uc *CategoryUsecase) Get(ctx context.Context, id string) (*domain.Category, error) {
	return uc.categories.GetByID(ctx, id)
}

// Create adds a new category and invalidates the cached list.
func (uc *CategoryUsecase) Create(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrValidation
	}

	category := domain.NewCategory(name)
	if err := uc.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	return category, nil
}

// Rename changes a category's name and invalidates the cached list.
func (uc *CategoryUsecase) Rename(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrValidation
	}

	category, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	category.Name = name
	if err := uc.categories.Update(ctx, category); err != nil {
		return err
	}
	uc.invalidate(ctx)
	return nil
}

// Delete removes a category. A category still referenced by any post or
// document is refused.
func (uc *CategoryUsecase) Delete(ctx context.Context, id string) error {
	if _, err := uc.categories.GetByID(ctx, id); err != nil {
		return err
	}

	usage, err := uc.categories.UsageCount(ctx, id)
	if err != nil {
		return err
	}
	if usage > 0 {
		return domain.ErrCategoryInUse
	}

	if err := uc.categories.Delete(ctx, id); err != nil {
		return err
	}
	uc.invalidate(ctx)
	return nil
}

func (uc *CategoryUsecase) invalidate(ctx context.Context) {
	if err := uc.cache.Delete(ctx, categoryCacheKey); err != nil {
		uc.log.Warnf("failed to invalidate category cache: %v", err)
	}
}
