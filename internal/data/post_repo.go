package data

import (
	"context"
	"errors"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"

	"knowledgebase/internal/domain"
)

// PostPO is the blog post persistence object.
type PostPO struct {
	ID         string    `gorm:"primaryKey;size:64"`
	Title      string    `gorm:"size:255;not null"`
	Content    string    `gorm:"type:text;not null"`
	AuthorID   string    `gorm:"size:64;index:idx_posts_author"`
	CategoryID string    `gorm:"size:64;index:idx_posts_category"`
	ViewCount  int64     `gorm:"not null;default:0"`
	Version    int64     `gorm:"not null;default:1"`
	CreatedAt  time.Time `gorm:"index:idx_posts_created"`
	UpdatedAt  time.Time

	Author   *UserPO     `gorm:"foreignKey:AuthorID"`
	Category *CategoryPO `gorm:"foreignKey:CategoryID"`
	Tags     []TagPO     `gorm:"many2many:post_tags;joinForeignKey:PostID;joinReferences:TagID"`
}

// TableName 表名
func (PostPO) TableName() string {
	return "posts"
}

// PostRepository is the gorm-backed post repository.
type PostRepository struct {
	data *Data
	log  *log.Helper
}

// NewPostRepo creates the post repository.
func NewPostRepo(data *Data, logger log.Logger) domain.PostRepository {
	return &PostRepository{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Create inserts a new post.
func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	po := toPostPO(post)
	if err := r.data.DB(ctx).WithContext(ctx).Omit("Author", "Category", "Tags").Create(po).Error; err != nil {
		r.log.Errorf("failed to create post: %v", err)
		return err
	}
	return nil
}

// GetByID loads the post with category, author, tags and comments.
func (r *PostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	var po PostPO
	err := r.data.DB(ctx).WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Where("id = ?", id).
		First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPostNotFound
		}
		r.log.Errorf("failed to get post: %v", err)
		return nil, err
	}

	post := toDomainPost(&po)
	comments, err := loadComments(ctx, r.data.DB(ctx), domain.ContentRef{Kind: domain.ContentKindPost, ID: id})
	if err != nil {
		return nil, err
	}
	post.Comments = comments
	return post, nil
}

// Update writes the mutable fields under optimistic concurrency.
func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	res := r.data.DB(ctx).WithContext(ctx).
		Model(&PostPO{}).
		Where("id = ? AND version = ?", post.ID, post.Version).
		Updates(map[string]interface{}{
			"title":       post.Title,
			"content":     post.Content,
			"category_id": post.CategoryID,
			"version":     post.Version + 1,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		r.log.Errorf("failed to update post: %v", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Either the row is gone or another writer bumped the version.
		var count int64
		if err := r.data.DB(ctx).WithContext(ctx).Model(&PostPO{}).Where("id = ?", post.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrPostNotFound
		}
		return domain.ErrConcurrentModification
	}
	post.Version++
	return nil
}

// Delete removes the post, its comments and its tag links.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	err := r.data.DB(ctx).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM comments WHERE parent_kind = ? AND parent_id = ?",
			string(domain.ContentKindPost), id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM post_tags WHERE post_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&PostPO{}, "id = ?", id).Error
	})
	if err != nil {
		r.log.Errorf("failed to delete post: %v", err)
	}
	return err
}

// List returns one page of posts matching the filter, newest first.
func (r *PostRepository) List(ctx context.Context, filter domain.ContentFilter, offset, limit int) ([]*domain.Post, int64, error) {
	base := r.data.DB(ctx).WithContext(ctx).Model(&PostPO{})
	base = applyPostFilter(base, filter)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		r.log.Errorf("failed to count posts: %v", err)
		return nil, 0, err
	}

	var pos []PostPO
	err := applyPostFilter(r.data.DB(ctx).WithContext(ctx).Model(&PostPO{}), filter).
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&pos).Error
	if err != nil {
		r.log.Errorf("failed to list posts: %v", err)
		return nil, 0, err
	}

	return toDomainPosts(pos), total, nil
}

func applyPostFilter(q *gorm.DB, filter domain.ContentFilter) *gorm.DB {
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		q = q.Where(
			`title LIKE ? OR content LIKE ? OR id IN (
				SELECT pt.post_id FROM post_tags pt JOIN tags t ON t.id = pt.tag_id WHERE t.name LIKE ?)`,
			like, like, like,
		)
	}
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Tag != "" {
		q = q.Where(
			`id IN (SELECT pt.post_id FROM post_tags pt JOIN tags t ON t.id = pt.tag_id WHERE t.name = ?)`,
			filter.Tag,
		)
	}
	return q
}

// ListByAuthor returns one page of the author's posts, newest first.
func (r *PostRepository) ListByAuthor(ctx context.Context, authorID string, offset, limit int) ([]*domain.Post, int64, error) {
	var total int64
	if err := r.data.DB(ctx).WithContext(ctx).Model(&PostPO{}).
		Where("author_id = ?", authorID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pos []PostPO
	err := r.data.DB(ctx).WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&pos).Error
	if err != nil {
		r.log.Errorf("failed to list posts by author: %v", err)
		return nil, 0, err
	}
	return toDomainPosts(pos), total, nil
}

// ListRecent returns up to limit posts created since the given time, newest first.
func (r *PostRepository) ListRecent(ctx context.Context, since time.Time, limit int) ([]*domain.Post, error) {
	return r.listOrdered(ctx, since, limit, "created_at DESC")
}

// ListPopular returns up to limit posts created since the given time, most viewed first.
func (r *PostRepository) ListPopular(ctx context.Context, since time.Time, limit int) ([]*domain.Post, error) {
	return r.listOrdered(ctx, since, limit, "view_count DESC")
}

func (r *PostRepository) listOrdered(ctx context.Context, since time.Time, limit int, order string) ([]*domain.Post, error) {
	q := r.data.DB(ctx).WithContext(ctx).Preload("Author")
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	var pos []PostPO
	if err := q.Order(order).Limit(limit).Find(&pos).Error; err != nil {
		r.log.Errorf("failed to list posts: %v", err)
		return nil, err
	}
	return toDomainPosts(pos), nil
}

// SearchByText returns posts whose title or content contains the query.
func (r *PostRepository) SearchByText(ctx context.Context, query string) ([]*domain.Post, error) {
	like := "%" + query + "%"
	var pos []PostPO
	err := r.data.DB(ctx).WithContext(ctx).
		Preload("Author").
		Where("title LIKE ? OR content LIKE ?", like, like).
		Find(&pos).Error
	if err != nil {
		r.log.Errorf("failed to search posts: %v", err)
		return nil, err
	}
	return toDomainPosts(pos), nil
}

// IncrementViewCount bumps the view counter by one.
func (r *PostRepository) IncrementViewCount(ctx context.Context, id string) error {
	return r.data.DB(ctx).WithContext(ctx).Model(&PostPO{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// Count returns the total number of posts.
func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.data.DB(ctx).WithContext(ctx).Model(&PostPO{}).Count(&count).Error
	return count, err
}

// DailyCounts returns per-day creation counts since the given time, keyed by
// ISO date.
func (r *PostRepository) DailyCounts(ctx context.Context, since time.Time) (map[string]int64, error) {
	var rows []struct {
		Day   time.Time
		Count int64
	}
	err := r.data.DB(ctx).WithContext(ctx).Model(&PostPO{}).
		Select("DATE(created_at) AS day, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("DATE(created_at)").
		Scan(&rows).Error
	if err != nil {
		r.log.Errorf("failed to aggregate daily counts: %v", err)
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Day.Format("2006-01-02")] = row.Count
	}
	return counts, nil
}

func toPostPO(p *domain.Post) *PostPO {
	return &PostPO{
		ID:         p.ID,
		Title:      p.Title,
		Content:    p.Content,
		AuthorID:   p.AuthorID,
		CategoryID: p.CategoryID,
		ViewCount:  p.ViewCount,
		Version:    p.Version,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func toDomainPost(po *PostPO) *domain.Post {
	post := &domain.Post{
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
		post.Author = toDomainUser(po.Author)
	}
	if po.Category != nil {
		post.Category = toDomainCategory(po.Category)
	}
	for i := range po.Tags {
		post.Tags = append(post.Tags, toDomainTag(&po.Tags[i]))
	}
	return post
}

func toDomainPosts(pos []PostPO) []*domain.Post {
	posts := make([]*domain.Post, 0, len(pos))
	for i := range pos {
		posts = append(posts, toDomainPost(&pos[i]))
	}
	return posts
}
