package data

import (
	"context"
	"errors"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"

	"knowledgebase/internal/domain"
)

// CategoryPO is the category persistence object.
type CategoryPO struct {
	ID        string `gorm:"primaryKey;size:64"`
	Name      string `gorm:"size:100;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 表名
func (CategoryPO) TableName() string {
	return "categories"
}

// CategoryRepository is the gorm-backed category repository.
type CategoryRepository struct {
	data *Data
	log  *log.Helper
}

// NewCategoryRepo creates the category repository.
func NewCategoryRepo(data *Data, logger log.Logger) domain.CategoryRepository {
	return &CategoryRepository{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	po := toCategoryPO(category)
	if err := r.data.DB(ctx).WithContext(ctx).Create(po).Error; err != nil {
		r.log.Errorf("failed to create category: %v", err)
		return err
	}
	return nil
}

// GetByID returns the category with the given id.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	var po CategoryPO
	if err := r.data.DB(ctx).WithContext(ctx).Where("id = ?", id).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return toDomainCategory(&po), nil
}

// Update renames the category.
func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	res := r.data.DB(ctx).WithContext(ctx).Model(&CategoryPO{}).
		Where("id = ?", category.ID).
		Updates(map[string]interface{}{"name": category.Name, "updated_at": time.Now()})
	if res.Error != nil {
		r.log.Errorf("failed to update category: %v", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// Delete removes the category row. Usage checks belong to the caller.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	res := r.data.DB(ctx).WithContext(ctx).Delete(&CategoryPO{}, "id = ?", id)
	if res.Error != nil {
		r.log.Errorf("failed to delete category: %v", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	var pos []CategoryPO
	if err := r.data.DB(ctx).WithContext(ctx).Order("name ASC").Find(&pos).Error; err != nil {
		r.log.Errorf("failed to list categories: %v", err)
		return nil, err
	}

	categories := make([]*domain.Category, 0, len(pos))
	for i := range pos {
		categories = append(categories, toDomainCategory(&pos[i]))
	}
	return categories, nil
}

// ListWithUsage returns all categories with their content counts, by name.
func (r *CategoryRepository) ListWithUsage(ctx context.Context) ([]*domain.CategoryUsage, error) {
	var rows []struct {
		ID         string
		Name       string
		CreatedAt  time.Time
		UpdatedAt  time.Time
		UsageCount int64
	}
	err := r.data.DB(ctx).WithContext(ctx).Raw(`
		SELECT c.id, c.name, c.created_at, c.updated_at,
			(SELECT COUNT(*) FROM posts p WHERE p.category_id = c.id) +
			(SELECT COUNT(*) FROM documents d WHERE d.category_id = c.id) AS usage_count
		FROM categories c
		ORDER BY c.name ASC`).Scan(&rows).Error
	if err != nil {
		r.log.Errorf("failed to list categories with usage: %v", err)
		return nil, err
	}

	usages := make([]*domain.CategoryUsage, 0, len(rows))
	for _, row := range rows {
		usages = append(usages, &domain.CategoryUsage{
			Category: domain.Category{
				ID:        row.ID,
				Name:      row.Name,
				CreatedAt: row.CreatedAt,
				UpdatedAt: row.UpdatedAt,
			},
			UsageCount: row.UsageCount,
		})
	}
	return usages, nil
}

// UsageCount counts content items referencing the category.
func (r *CategoryRepository) UsageCount(ctx context.Context, id string) (int64, error) {
	var posts, docs int64
	if err := r.data.DB(ctx).WithContext(ctx).Model(&PostPO{}).Where("category_id = ?", id).Count(&posts).Error; err != nil {
		return 0, err
	}
	if err := r.data.DB(ctx).WithContext(ctx).Model(&DocumentPO{}).Where("category_id = ?", id).Count(&docs).Error; err != nil {
		return 0, err
	}
	return posts + docs, nil
}

func toCategoryPO(c *domain.Category) *CategoryPO {
	return &CategoryPO{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

func toDomainCategory(po *CategoryPO) *domain.Category {
	return &domain.Category{ID: po.ID, Name: po.Name, CreatedAt: po.CreatedAt, UpdatedAt: po.UpdatedAt}
}
