package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"

	"knowledgebase/internal/domain"
)

// TagPO is the tag persistence object. The unique index on name is what
// turns a create race into a reportable conflict instead of a duplicate.
type TagPO struct {
	ID        string `gorm:"primaryKey;size:64"`
	Name      string `gorm:"size:100;not null;uniqueIndex:idx_tags_name"`
	CreatedAt time.Time
}

// TableName 表名
func (TagPO) TableName() string {
	return "tags"
}

// TagRepository is the gorm-backed tag repository.
type TagRepository struct {
	data *Data
	log  *log.Helper
}

// NewTagRepo creates the tag repository.
func NewTagRepo(data *Data, logger log.Logger) domain.TagRepository {
	return &TagRepository{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// joinTable returns the join table and content column for a content kind.
func joinTable(kind domain.ContentKind) (table, column string) {
	if kind == domain.ContentKindDocument {
		return "document_tags", "document_id"
	}
	return "post_tags", "post_id"
}

// Create inserts a new tag.
func (r *TagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	po := &TagPO{ID: tag.ID, Name: tag.Name, CreatedAt: tag.CreatedAt}
	if err := r.data.DB(ctx).WithContext(ctx).Create(po).Error; err != nil {
		r.log.Errorf("failed to create tag: %v", err)
		return err
	}
	return nil
}

// GetByID returns the tag with the given id.
func (r *TagRepository) GetByID(ctx context.Context, id string) (*domain.Tag, error) {
	var po TagPO
	if err := r.data.DB(ctx).WithContext(ctx).Where("id = ?", id).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTagNotFound
		}
		return nil, err
	}
	return toDomainTag(&po), nil
}

// GetByName looks a tag up by exact, case-sensitive name.
func (r *TagRepository) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	var po TagPO
	if err := r.data.DB(ctx).WithContext(ctx).Where("name = ?", name).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTagNotFound
		}
		return nil, err
	}
	return toDomainTag(&po), nil
}

// UpdateName renames the tag in place.
func (r *TagRepository) UpdateName(ctx context.Context, id, name string) error {
	res := r.data.DB(ctx).WithContext(ctx).Model(&TagPO{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		r.log.Errorf("failed to rename tag: %v", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTagNotFound
	}
	return nil
}

// ClearAssociations removes every tag link of the given content item.
func (r *TagRepository) ClearAssociations(ctx context.Context, ref domain.ContentRef) error {
	table, column := joinTable(ref.Kind)
	err := r.data.DB(ctx).WithContext(ctx).
		Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, column), ref.ID).Error
	if err != nil {
		r.log.Errorf("failed to clear tag associations: %v", err)
	}
	return err
}

// Associate links the tag to the content item; already-linked pairs are kept.
func (r *TagRepository) Associate(ctx context.Context, ref domain.ContentRef, tagID string) error {
	table, column := joinTable(ref.Kind)
	err := r.data.DB(ctx).WithContext(ctx).
		Exec(fmt.Sprintf("INSERT INTO %s (%s, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING", table, column),
			ref.ID, tagID).Error
	if err != nil {
		r.log.Errorf("failed to associate tag: %v", err)
	}
	return err
}

// Merge moves every association of fromID onto toID and deletes fromID, as
// one transaction. Items already carrying the target tag keep a single link.
func (r *TagRepository) Merge(ctx context.Context, fromID, toID string) error {
	err := r.data.DB(ctx).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, kind := range []domain.ContentKind{domain.ContentKindPost, domain.ContentKindDocument} {
			table, column := joinTable(kind)
			if err := tx.Exec(fmt.Sprintf(
				"INSERT INTO %s (%s, tag_id) SELECT %s, ? FROM %s WHERE tag_id = ? ON CONFLICT DO NOTHING",
				table, column, column, table), toID, fromID).Error; err != nil {
				return err
			}
			if err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE tag_id = ?", table), fromID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&TagPO{}, "id = ?", fromID).Error
	})
	if err != nil {
		r.log.Errorf("failed to merge tag %s into %s: %v", fromID, toID, err)
	}
	return err
}

// Delete removes the tag and all of its associations as one transaction.
func (r *TagRepository) Delete(ctx context.Context, id string) error {
	err := r.data.DB(ctx).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, kind := range []domain.ContentKind{domain.ContentKindPost, domain.ContentKindDocument} {
			table, _ := joinTable(kind)
			if err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE tag_id = ?", table), id).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&TagPO{}, "id = ?", id).Error
	})
	if err != nil {
		r.log.Errorf("failed to delete tag: %v", err)
	}
	return err
}

// ListWithUsage returns all tags with their combined usage count, most used
// first, ties broken by name.
func (r *TagRepository) ListWithUsage(ctx context.Context) ([]*domain.TagUsage, error) {
	var rows []struct {
		ID         string
		Name       string
		CreatedAt  time.Time
		UsageCount int64
	}
	err := r.data.DB(ctx).WithContext(ctx).Raw(`
		SELECT t.id, t.name, t.created_at,
			(SELECT COUNT(*) FROM post_tags pt WHERE pt.tag_id = t.id) +
			(SELECT COUNT(*) FROM document_tags dt WHERE dt.tag_id = t.id) AS usage_count
		FROM tags t
		ORDER BY usage_count DESC, t.name ASC`).Scan(&rows).Error
	if err != nil {
		r.log.Errorf("failed to list tags with usage: %v", err)
		return nil, err
	}

	usages := make([]*domain.TagUsage, 0, len(rows))
	for _, row := range rows {
		usages = append(usages, &domain.TagUsage{
			Tag:        domain.Tag{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt},
			UsageCount: row.UsageCount,
		})
	}
	return usages, nil
}

// SearchNames returns up to limit tag names starting with the prefix.
func (r *TagRepository) SearchNames(ctx context.Context, prefix string, limit int) ([]string, error) {
	var names []string
	err := r.data.DB(ctx).WithContext(ctx).Model(&TagPO{}).
		Where("name LIKE ?", prefix+"%").
		Limit(limit).
		Pluck("name", &names).Error
	if err != nil {
		r.log.Errorf("failed to search tag names: %v", err)
		return nil, err
	}
	return names, nil
}

// Count returns the total number of tags.
func (r *TagRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.data.DB(ctx).WithContext(ctx).Model(&TagPO{}).Count(&count).Error
	return count, err
}

func toDomainTag(po *TagPO) *domain.Tag {
	return &domain.Tag{ID: po.ID, Name: po.Name, CreatedAt: po.CreatedAt}
}
