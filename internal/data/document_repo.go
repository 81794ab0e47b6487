package data

import (
	"context"
	"errors"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"

	"knowledgebase/internal/domain"
)

// DocumentPO is the technical document persistence object.
type DocumentPO struct {
	ID         string    `gorm:"primaryKey;size:64"`
	Title      string    `gorm:"size:255;not null"`
	Content    string    `gorm:"type:text;not null"`
	AuthorID   string    `gorm:"size:64;index:idx_documents_author"`
	CategoryID string    `gorm:"size:64;index:idx_documents_category"`
	ViewCount  int64     `gorm:"not null;default:0"`
	Version    int64     `gorm:"not null;default:1"`
	CreatedAt  time.Time `gorm:"index:idx_documents_created"`
	UpdatedAt  time.Time

	Author   *UserPO     `gorm:"foreignKey:AuthorID"`
	Category *CategoryPO `gorm:"foreignKey:CategoryID"`
	Tags     []TagPO     `gorm:"many2many:document_tags;joinForeignKey:DocumentID;joinReferences:TagID"`
}

// TableName 表名
func (DocumentPO) TableName() string {
	return "documents"
}

// DocumentRepository is the gorm-backed document repository.
type DocumentRepository struct {
	data *Data
	log  *log.Helper
}

// NewDocumentRepo creates the document repository.
func NewDocumentRepo(data *Data, logger log.Logger) domain.DocumentRepository {
	return &DocumentRepository{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Create inserts a new document.
func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	po := toDocumentPO(doc)
	if err := r.data.DB(ctx).WithContext(ctx).Omit("Author", "Category", "Tags").Create(po).Error; err != nil {
		r.log.Errorf("failed to create document: %v", err)
		return err
	}
	return nil
}

// GetByID loads the document with category, author, tags and comments.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	var po DocumentPO
	err := r.data.DB(ctx).WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Where("id = ?", id).
		First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDocumentNotFound
		}
		r.log.Errorf("failed to get document: %v", err)
		return nil, err
	}

	doc := toDomainDocument(&po)
	comments, err := loadComments(ctx, r.data.DB(ctx), domain.ContentRef{Kind: domain.ContentKindDocument, ID: id})
	if err != nil {
		return nil, err
	}
	doc.Comments = comments
	return doc, nil
}

// Update writes the mutable fields under optimistic concurrency.
func (r *DocumentRepository) Update(ctx context.Context, doc *domain.Document) error {
	res := r.data.DB(ctx).WithContext(ctx).
		Model(&DocumentPO{}).
		Where("id = ? AND version = ?", doc.ID, doc.Version).
		Updates(map[string]interface{}{
			"title":       doc.Title,
			"content":     doc.Content,
			"category_id": doc.CategoryID,
			"version":     doc.Version + 1,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		r.log.Errorf("failed to update document: %v", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.data.DB(ctx).WithContext(ctx).Model(&DocumentPO{}).Where("id = ?", doc.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrDocumentNotFound
		}
		return domain.ErrConcurrentModification
	}
	doc.Version++
	return nil
}

// Delete removes the document, its comments and its tag links.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	err := r.data.DB(ctx).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM comments WHERE parent_kind = ? AND parent_id = ?",
			string(domain.ContentKindDocument), id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM document_tags WHERE document_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&DocumentPO{}, "id = ?", id).Error
	})
	if err != nil {
		r.log.Errorf("failed to delete document: %v", err)
	}
	return err
}

// List returns one page of documents matching the filter, newest first.
func (r *DocumentRepository) List(ctx context.Context, filter domain.ContentFilter, offset, limit int) ([]*domain.Document, int64, error) {
	base := applyDocumentFilter(r.data.DB(ctx).WithContext(ctx).Model(&DocumentPO{}), filter)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		r.log.Errorf("failed to count documents: %v", err)
		return nil, 0, err
	}

	var pos []DocumentPO
	err := applyDocumentFilter(r.data.DB(ctx).WithContext(ctx).Model(&DocumentPO{}), filter).
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&pos).Error
	if err != nil {
		r.log.Errorf("failed to list documents: %v", err)
		return nil, 0, err
	}

	return toDomainDocuments(pos), total, nil
}

func applyDocumentFilter(q *gorm.DB, filter domain.ContentFilter) *gorm.DB {
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		q = q.Where(
			`title LIKE ? OR content LIKE ? OR id IN (
				SELECT dt.document_id FROM document_tags dt JOIN tags t ON t.id = dt.tag_id WHERE t.name LIKE ?)`,
			like, like, like,
		)
	}
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Tag != "" {
		q = q.Where(
			`id IN (SELECT dt.document_id FROM document_tags dt JOIN tags t ON t.id = dt.tag_id WHERE t.name = ?)`,
			filter.Tag,
		)
	}
	return q
}

// ListByAuthor returns one page of the author's documents, newest first.
func (r *DocumentRepository) ListByAuthor(ctx context.Context, authorID string, offset, limit int) ([]*domain.Document, int64, error) {
	var total int64
	if err := r.data.DB(ctx).WithContext(ctx).Model(&DocumentPO{}).
		Where("author_id = ?", authorID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pos []DocumentPO
	err := r.data.DB(ctx).WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&pos).Error
	if err != nil {
		r.log.Errorf("failed to list documents by author: %v", err)
		return nil, 0, err
	}
	return toDomainDocuments(pos), total, nil
}

// ListRecent returns up to limit documents created since the given time, newest first.
func (r *DocumentRepository) ListRecent(ctx context.Context, since time.Time, limit int) ([]*domain.Document, error) {
	return r.listOrdered(ctx, since, limit, "created_at DESC")
}

// ListPopular returns up to limit documents created since the given time, most viewed first.
func (r *DocumentRepository) ListPopular(ctx context.Context, since time.Time, limit int) ([]*domain.Document, error) {
	return r.listOrdered(ctx, since, limit, "view_count DESC")
}

func (r *DocumentRepository) listOrdered(ctx context.Context, since time.Time, limit int, order string) ([]*domain.Document, error) {
	q := r.data.DB(ctx).WithContext(ctx).Preload("Author")
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	var pos []DocumentPO
	if err := q.Order(order).Limit(limit).Find(&pos).Error; err != nil {
		r.log.Errorf("failed to list documents: %v", err)
		return nil, err
	}
	return toDomainDocuments(pos), nil
}

// SearchByText returns documents whose title or content contains the query.
func (r *DocumentRepository) SearchByText(ctx context.Context, query string) ([]*domain.Document, error) {
	like := "%" + query + "%"
	var pos []DocumentPO
	err := r.data.DB(ctx).WithContext(ctx).
		Preload("Author").
		Where("title LIKE ? OR content LIKE ?", like, like).
		Find(&pos).Error
	if err != nil {
		r.log.Errorf("failed to search documents: %v", err)
		return nil, err
	}
	return toDomainDocuments(pos), nil
}

// IncrementViewCount bumps the view counter by one.
func (r *DocumentRepository) IncrementViewCount(ctx context.Context, id string) error {
	return r.data.DB(ctx).WithContext(ctx).Model(&DocumentPO{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// Count returns the total number of documents.
func (r *DocumentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.data.DB(ctx).WithContext(ctx).Model(&DocumentPO{}).Count(&count).Error
	return count, err
}

func toDocumentPO(d *domain.Document) *DocumentPO {
	return &DocumentPO{
		ID:         d.ID,
		Title:      d.Title,
		Content:    d.Content,
		AuthorID:   d.AuthorID,
		CategoryID: d.CategoryID,
		ViewCount:  d.ViewCount,
		Version:    d.Version,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func toDomainDocument(po *DocumentPO) *domain.Document {
	doc := &domain.Document{
		ID:         po.ID,
		Title:      po.Title,
		Content:    po.Content,
		AuthorID:   po.AuthorID,
		CategoryID: po.CategoryID,
		ViewCount:  po.ViewCount,
		Version:    po.Version,
		CreatedAt:  po.CreatedAt,
		UpdatedAt:  po.UpdatedAt,
	}
	if po.Author != nil {
		doc.Author = toDomainUser(po.Author)
	}
	if po.Category != nil {
		doc.Category = toDomainCategory(po.Category)
	}
	for i := range po.Tags {
		doc.Tags = append(doc.Tags, toDomainTag(&po.Tags[i]))
	}
	return doc
}

func toDomainDocuments(pos []DocumentPO) []*domain.Document {
	docs := make([]*domain.Document, 0, len(pos))
	for i := range pos {
		docs = append(docs, toDomainDocument(&pos[i]))
	}
	return docs
}
