package biz

import (
	"context"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"knowledgebase/internal/domain"
)

const (
	// ListPageSize is the page size of the post, document and announcement
	// listings.
	ListPageSize = 10
	// ProfilePageSize is the page size of the per-author content lists on the
	// profile page.
	ProfilePageSize = 5
	// widgetSize is the number of entries in the sidebar widgets and on the
	// home page.
	widgetSize = 5
)

// PageCount returns the number of pages needed to hold total items.
func PageCount(total int64, pageSize int) int {
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

func pageOffset(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	return page, (page - 1) * pageSize
}

// PostPage is one page of a post listing.
type PostPage struct {
	Posts      []*domain.Post
	Page       int
	TotalPages int
	Total      int64
}

// DocumentPage is one page of a document listing.
type DocumentPage struct {
	Documents  []*domain.Document
	Page       int
	TotalPages int
	Total      int64
}

// HomeView aggregates everything the home page shows.
type HomeView struct {
	Announcements   []*domain.Announcement
	RecentPosts     []*domain.Post
	RecentDocuments []*domain.Document
	RecentlyViewed  []*ViewedItem
}

// ProfileView aggregates a user's authored content.
type ProfileView struct {
	User      *domain.User
	Posts     *PostPage
	Documents *DocumentPage
}

// ContentUsecase owns the post and document lifecycles: listing, viewing,
// authoring and the widget queries. A content write and its tag
// reconciliation commit in one transaction. Notification fan-out runs after
// the transaction has committed; a fan-out failure is logged, never surfaced.
type ContentUsecase struct {
	posts         domain.PostRepository
	documents     domain.DocumentRepository
	announcements domain.AnnouncementRepository
	users         domain.UserRepository
	tx            domain.Transactor
	tags          *TagUsecase
	notifier      *NotificationUsecase
	recents       *RecentViewUsecase
	log           *log.Helper
}

// NewContentUsecase creates the content usecase.
func NewContentUsecase(
	posts domain.PostRepository,
	documents domain.DocumentRepository,
	announcements domain.AnnouncementRepository,
	users domain.UserRepository,
	tx domain.Transactor,
	tags *TagUsecase,
	notifier *NotificationUsecase,
	recents *RecentViewUsecase,
	logger log.Logger,
) *ContentUsecase {
	return &ContentUsecase{
		posts:         posts,
		documents:     documents,
		announcements: announcements,
		users:         users,
		tx:            tx,
		tags:          tags,
		notifier:      notifier,
		recents:       recents,
		log:           log.NewHelper(logger),
	}
}

// ListPosts returns one page of posts matching the filter, newest first.
func (uc *ContentUsecase) ListPosts(ctx context.Context, filter domain.ContentFilter, page int) (*PostPage, error) {
	page, offset := pageOffset(page, ListPageSize)
	posts, total, err := uc.posts.List(ctx, filter, offset, ListPageSize)
	if err != nil {
		return nil, err
	}
	return &PostPage{Posts: posts, Page: page, TotalPages: PageCount(total, ListPageSize), Total: total}, nil
}

// ListDocuments returns one page of documents matching the filter, newest
// first.
func (uc *ContentUsecase) ListDocuments(ctx context.Context, filter domain.ContentFilter, page int) (*DocumentPage, error) {
	page, offset := pageOffset(page, ListPageSize)
	documents, total, err := uc.documents.List(ctx, filter, offset, ListPageSize)
	if err != nil {
		return nil, err
	}
	return &DocumentPage{Documents: documents, Page: page, TotalPages: PageCount(total, ListPageSize), Total: total}, nil
}

// GetPost returns a post for display. The view counter is incremented and the
// view is recorded on the viewer's recently-viewed list; neither side effect
// can fail the read.
func (uc *ContentUsecase) GetPost(ctx context.Context, id, viewerID string) (*domain.Post, error) {
	post, err := uc.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.posts.IncrementViewCount(ctx, id); err != nil {
		uc.log.Warnf("failed to bump view count for post %s: %v", id, err)
	} else {
		post.ViewCount++
	}
	if err := uc.recents.Record(ctx, viewerID, post.Ref()); err != nil {
		uc.log.Warnf("failed to record recent view for %s: %v", viewerID, err)
	}
	return post, nil
}

// GetDocument returns a document for display, with the same side effects as
// GetPost.
func (uc *ContentUsecase) GetDocument(ctx context.Context, id, viewerID string) (*domain.Document, error) {
	document, err := uc.documents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.documents.IncrementViewCount(ctx, id); err != nil {
		uc.log.Warnf("failed to bump view count for document %s: %v", id, err)
	} else {
		document.ViewCount++
	}
	if err := uc.recents.Record(ctx, viewerID, document.Ref()); err != nil {
		uc.log.Warnf("failed to record recent view for %s: %v", viewerID, err)
	}
	return document, nil
}

// CreatePost publishes a new blog post, reconciles its tags and fans out
// notifications.
func (uc *ContentUsecase) CreatePost(ctx context.Context, authorID, title, content, categoryID, tagInput string) (*domain.Post, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, domain.ErrValidation
	}

	post := domain.NewPost(title, content, authorID, categoryID)
	err := uc.tx.InTx(ctx, func(ctx context.Context) error {
		if err := uc.posts.Create(ctx, post); err != nil {
			return err
		}
		return uc.tags.Reconcile(ctx, post.Ref(), tagInput)
	})
	if err != nil {
		return nil, err
	}

	if err := uc.notifier.NotifyNewPost(ctx, post); err != nil {
		uc.log.Errorf("notification fan-out failed for post %s: %v", post.ID, err)
	}
	return post, nil
}

// CreateDocument publishes a new technical document, reconciles its tags and
// fans out notifications.
func (uc *ContentUsecase) CreateDocument(ctx context.Context, authorID, title, content, categoryID, tagInput string) (*domain.Document, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, domain.ErrValidation
	}

	document := domain.NewDocument(title, content, authorID, categoryID)
	err := uc.tx.InTx(ctx, func(ctx context.Context) error {
		if err := uc.documents.Create(ctx, document); err != nil {
			return err
		}
		return uc.tags.Reconcile(ctx, document.Ref(), tagInput)
	})
	if err != nil {
		return nil, err
	}

	if err := uc.notifier.NotifyNewDocument(ctx, document); err != nil {
		uc.log.Errorf("notification fan-out failed for document %s: %v", document.ID, err)
	}
	return document, nil
}

// UpdatePost edits a post. Only the author or an admin may edit; the update
// fails with ErrConcurrentModification when someone else saved in between.
func (uc *ContentUsecase) UpdatePost(ctx context.Context, actor *domain.User, id, title, content, categoryID, tagInput string) (*domain.Post, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, domain.ErrValidation
	}

	post, err := uc.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, post.AuthorID) {
		return nil, domain.ErrForbidden
	}

	post.Title = title
	post.Content = content
	post.CategoryID = categoryID
	err = uc.tx.InTx(ctx, func(ctx context.Context) error {
		if err := uc.posts.Update(ctx, post); err != nil {
			return err
		}
		return uc.tags.Reconcile(ctx, post.Ref(), tagInput)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// UpdateDocument edits a document under the same rules as UpdatePost.
func (uc *ContentUsecase) UpdateDocument(ctx context.Context, actor *domain.User, id, title, content, categoryID, tagInput string) (*domain.Document, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, domain.ErrValidation
	}

	document, err := uc.documents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, document.AuthorID) {
		return nil, domain.ErrForbidden
	}

	document.Title = title
	document.Content = content
	document.CategoryID = categoryID
	err = uc.tx.InTx(ctx, func(ctx context.Context) error {
		if err := uc.documents.Update(ctx, document); err != nil {
			return err
		}
		return uc.tags.Reconcile(ctx, document.Ref(), tagInput)
	})
	if err != nil {
		return nil, err
	}
	return document, nil
}

// DeletePost removes a post together with its comments and tag links. Only
// the author or an admin may delete.
func (uc *ContentUsecase) DeletePost(ctx context.Context, actor *domain.User, id string) error {
	post, err := uc.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(actor, post.AuthorID) {
		return domain.ErrForbidden
	}
	return uc.posts.Delete(ctx, id)
}

// DeleteDocument removes a document under the same rules as DeletePost.
func (uc *ContentUsecase) DeleteDocument(ctx context.Context, actor *domain.User, id string) error {
	document, err := uc.documents.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(actor, document.AuthorID) {
		return domain.ErrForbidden
	}
	return uc.documents.Delete(ctx, id)
}

func canModify(actor *domain.User, authorID string) bool {
	if actor == nil {
		return false
	}
	return actor.ID == authorID || actor.HasRole(domain.RoleAdmin)
}

// PopularPosts returns the most-viewed posts created within the window.
func (uc *ContentUsecase) PopularPosts(ctx context.Context, window domain.ContentWindow) ([]*domain.Post, error) {
	return uc.posts.ListPopular(ctx, window.Since(time.Now()), widgetSize)
}

// LatestPosts returns the newest posts created within the window.
func (uc *ContentUsecase) LatestPosts(ctx context.Context, window domain.ContentWindow) ([]*domain.Post, error) {
	return uc.posts.ListRecent(ctx, window.Since(time.Now()), widgetSize)
}

// PopularDocuments returns the most-viewed documents created within the
// window.
func (uc *ContentUsecase) PopularDocuments(ctx context.Context, window domain.ContentWindow) ([]*domain.Document, error) {
	return uc.documents.ListPopular(ctx, window.Since(time.Now()), widgetSize)
}

// LatestDocuments returns the newest documents created within the window.
func (uc *ContentUsecase) LatestDocuments(ctx context.Context, window domain.ContentWindow) ([]*domain.Document, error) {
	return uc.documents.ListRecent(ctx, window.Since(time.Now()), widgetSize)
}

// Home assembles the home page: the two latest announcements, the five newest
// posts and documents, and the viewer's recently-viewed list.
func (uc *ContentUsecase) Home(ctx context.Context, viewerID string) (*HomeView, error) {
	announcements, err := uc.announcements.ListLatest(ctx, 2)
	if err != nil {
		return nil, err
	}
	posts, err := uc.posts.ListRecent(ctx, time.Time{}, widgetSize)
	if err != nil {
		return nil, err
	}
	documents, err := uc.documents.ListRecent(ctx, time.Time{}, widgetSize)
	if err != nil {
		return nil, err
	}

	var viewed []*ViewedItem
	if viewerID != "" {
		viewed, err = uc.recents.Resolve(ctx, viewerID)
		if err != nil {
			uc.log.Warnf("failed to resolve recent views for %s: %v", viewerID, err)
			viewed = nil
		}
	}
	return &HomeView{
		Announcements:   announcements,
		RecentPosts:     posts,
		RecentDocuments: documents,
		RecentlyViewed:  viewed,
	}, nil
}

// Profile assembles a user's profile: identity plus paged lists of their
// posts and documents.
func (uc *ContentUsecase) Profile(ctx context.Context, userID string, postPage, documentPage int) (*ProfileView, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	postPage, postOffset := pageOffset(postPage, ProfilePageSize)
	posts, postTotal, err := uc.posts.ListByAuthor(ctx, userID, postOffset, ProfilePageSize)
	if err != nil {
		return nil, err
	}

	documentPage, docOffset := pageOffset(documentPage, ProfilePageSize)
	documents, docTotal, err := uc.documents.ListByAuthor(ctx, userID, docOffset, ProfilePageSize)
	if err != nil {
		return nil, err
	}

	return &ProfileView{
		User: user,
		Posts: &PostPage{
			Posts:      posts,
			Page:       postPage,
			TotalPages: PageCount(postTotal, ProfilePageSize),
			Total:      postTotal,
		},
		Documents: &DocumentPage{
			Documents:  documents,
			Page:       documentPage,
			TotalPages: PageCount(docTotal, ProfilePageSize),
			Total:      docTotal,
		},
	}, nil
}
