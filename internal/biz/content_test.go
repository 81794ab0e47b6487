package biz

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledgebase/internal/domain"
)

func newContentFixture(users ...*domain.User) (*ContentUsecase, *fakePostRepo, *fakeDocumentRepo, *fakeNotificationRepo, *fakeTagRepo) {
	posts := newFakePostRepo()
	documents := newFakeDocumentRepo()
	announcements := &fakeAnnouncementRepo{}
	notifications := &fakeNotificationRepo{}
	userRepo := newFakeUserRepo(users...)
	tags := newFakeTagRepo()

	tagUC := NewTagUsecase(tags, log.DefaultLogger)
	notifier := NewNotificationUsecase(notifications, userRepo, posts, documents, log.DefaultLogger)
	recents := NewRecentViewUsecase(posts, documents, newFakeCache(), log.DefaultLogger)
	uc := NewContentUsecase(posts, documents, announcements, userRepo, &fakeTx{}, tagUC, notifier, recents, log.DefaultLogger)
	return uc, posts, documents, notifications, tags
}

// newContentFixtureTx is newContentFixture with the transactor exposed.
func newContentFixtureTx(users ...*domain.User) (*ContentUsecase, *fakePostRepo, *fakeTx) {
	posts := newFakePostRepo()
	documents := newFakeDocumentRepo()
	notifications := &fakeNotificationRepo{}
	userRepo := newFakeUserRepo(users...)
	tags := newFakeTagRepo()

	tagUC := NewTagUsecase(tags, log.DefaultLogger)
	notifier := NewNotificationUsecase(notifications, userRepo, posts, documents, log.DefaultLogger)
	recents := NewRecentViewUsecase(posts, documents, newFakeCache(), log.DefaultLogger)
	tx := &fakeTx{}
	uc := NewContentUsecase(posts, documents, &fakeAnnouncementRepo{}, userRepo, tx, tagUC, notifier, recents, log.DefaultLogger)
	return uc, posts, tx
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, PageCount(0, 10))
	assert.Equal(t, 1, PageCount(1, 10))
	assert.Equal(t, 1, PageCount(10, 10))
	assert.Equal(t, 2, PageCount(11, 10))
	assert.Equal(t, 3, PageCount(25, 10))
}

func TestListPostsPagination(t *testing.T) {
	ctx := context.Background()
	uc, posts, _, _, _ := newContentFixture()

	base := time.Now()
	for i := 0; i < 25; i++ {
		p := domain.NewPost(fmt.Sprintf("post %02d", i), "body", "usr_1", "")
		p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, posts.Create(ctx, p))
	}

	page, err := uc.ListPosts(ctx, domain.ContentFilter{}, 1)
	require.NoError(t, err)
	assert.Len(t, page.Posts, ListPageSize)
	assert.Equal(t, 3, page.TotalPages)
	assert.EqualValues(t, 25, page.Total)
	// Newest first.
	assert.Equal(t, "post 24", page.Posts[0].Title)

	page, err = uc.ListPosts(ctx, domain.ContentFilter{}, 3)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 5)

	t.Run("page below one clamps to one", func(t *testing.T) {
		page, err := uc.ListPosts(ctx, domain.ContentFilter{}, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Len(t, page.Posts, ListPageSize)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		page, err := uc.ListPosts(ctx, domain.ContentFilter{}, 99)
		require.NoError(t, err)
		assert.Empty(t, page.Posts)
		assert.Equal(t, 3, page.TotalPages)
	})
}

func TestGetPostSideEffects(t *testing.T) {
	ctx := context.Background()
	uc, posts, _, _, _ := newContentFixture()

	post := domain.NewPost("Release notes", "body", "usr_1", "")
	require.NoError(t, posts.Create(ctx, post))

	got, err := uc.GetPost(ctx, post.ID, "usr_viewer")
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.ViewCount)
	assert.EqualValues(t, 1, posts.viewCounts[post.ID])

	_, err = uc.GetPost(ctx, "post_missing", "usr_viewer")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	author := testUser("usr_author", "Ada", "Lovelace")
	reader := testUser("usr_reader", "Grace", "Hopper")

	t.Run("creates, tags and notifies", func(t *testing.T) {
		uc, posts, _, notifications, tags := newContentFixture(author, reader)

		post, err := uc.CreatePost(ctx, author.ID, "Release notes", "body", "cat_1", "go, redis")
		require.NoError(t, err)

		_, err = posts.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"go", "redis"}, tags.tagNamesOf(post.Ref()))
		require.Len(t, notifications.notifications, 1)
		assert.Equal(t, reader.ID, notifications.notifications[0].RecipientID)
	})

	t.Run("validation", func(t *testing.T) {
		uc, _, _, _, _ := newContentFixture(author)
		_, err := uc.CreatePost(ctx, author.ID, "  ", "body", "", "")
		assert.ErrorIs(t, err, domain.ErrValidation)
		_, err = uc.CreatePost(ctx, author.ID, "title", "", "", "")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestUpdatePostAuthorization(t *testing.T) {
	ctx := context.Background()
	author := testUser("usr_author", "Ada", "Lovelace")
	stranger := testUser("usr_stranger", "Eve", "Smith")
	admin := testUser("usr_admin", "Root", "Admin")
	admin.Roles = []string{domain.RoleAdmin}

	uc, posts, _, _, _ := newContentFixture(author, stranger, admin)
	post := domain.NewPost("Release notes", "body", author.ID, "")
	require.NoError(t, posts.Create(ctx, post))

	t.Run("author may edit", func(t *testing.T) {
		updated, err := uc.UpdatePost(ctx, author, post.ID, "Edited", "body", "", "")
		require.NoError(t, err)
		assert.Equal(t, "Edited", updated.Title)
	})

	t.Run("stranger may not", func(t *testing.T) {
		_, err := uc.UpdatePost(ctx, stranger, post.ID, "Hijacked", "body", "", "")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("admin may edit anything", func(t *testing.T) {
		_, err := uc.UpdatePost(ctx, admin, post.ID, "Moderated", "body", "", "")
		require.NoError(t, err)
	})

	t.Run("anonymous may not", func(t *testing.T) {
		_, err := uc.UpdatePost(ctx, nil, post.ID, "x", "y", "", "")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestDeletePostAuthorization(t *testing.T) {
	ctx := context.Background()
	author := testUser("usr_author", "Ada", "Lovelace")
	stranger := testUser("usr_stranger", "Eve", "Smith")

	uc, posts, _, _, _ := newContentFixture(author, stranger)
	post := domain.NewPost("Release notes", "body", author.ID, "")
	require.NoError(t, posts.Create(ctx, post))

	assert.ErrorIs(t, uc.DeletePost(ctx, stranger, post.ID), domain.ErrForbidden)
	require.NoError(t, uc.DeletePost(ctx, author, post.ID))
	_, err := posts.GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestWidgets(t *testing.T) {
	ctx := context.Background()
	uc, posts, _, _, _ := newContentFixture()

	old := domain.NewPost("old", "body", "usr_1", "")
	old.CreatedAt = time.Now().AddDate(0, -2, 0)
	old.ViewCount = 100
	fresh := domain.NewPost("fresh", "body", "usr_1", "")
	fresh.ViewCount = 5
	require.NoError(t, posts.Create(ctx, old))
	require.NoError(t, posts.Create(ctx, fresh))

	t.Run("all-time popular includes the old post", func(t *testing.T) {
		out, err := uc.PopularPosts(ctx, domain.WindowAll)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "old", out[0].Title)
	})

	t.Run("weekly window excludes it", func(t *testing.T) {
		out, err := uc.PopularPosts(ctx, domain.WindowWeekly)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "fresh", out[0].Title)
	})
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	author := testUser("usr_author", "Ada", "Lovelace")
	uc, posts, _, _, _ := newContentFixture(author)

	for i := 0; i < 7; i++ {
		p := domain.NewPost(fmt.Sprintf("post %d", i), "body", author.ID, "")
		p.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		require.NoError(t, posts.Create(ctx, p))
	}

	view, err := uc.Profile(ctx, author.ID, 1, 1)
	require.NoError(t, err)
	assert.Len(t, view.Posts.Posts, ProfilePageSize)
	assert.Equal(t, 2, view.Posts.TotalPages)
	assert.Empty(t, view.Documents.Documents)

	_, err = uc.Profile(ctx, "usr_missing", 1, 1)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestContentWriteTransactions(t *testing.T) {
	ctx := context.Background()
	author := testUser("usr_author", "Ada", "Lovelace")

	t.Run("create commits the post and its tags together", func(t *testing.T) {
		uc, _, tx := newContentFixtureTx(author)
		_, err := uc.CreatePost(ctx, author.ID, "Release notes", "body", "", "go")
		require.NoError(t, err)
		assert.Equal(t, 1, tx.calls)
	})

	t.Run("update commits the edit and its tags together", func(t *testing.T) {
		uc, posts, tx := newContentFixtureTx(author)
		post := domain.NewPost("Release notes", "body", author.ID, "")
		require.NoError(t, posts.Create(ctx, post))

		_, err := uc.UpdatePost(ctx, author, post.ID, "Edited", "body", "", "go")
		require.NoError(t, err)
		assert.Equal(t, 1, tx.calls)
	})

	t.Run("a failed transaction surfaces and leaves no post behind", func(t *testing.T) {
		uc, _, tx := newContentFixtureTx(author)
		tx.fail = errors.New("storage down")

		_, err := uc.CreatePost(ctx, author.ID, "Release notes", "body", "", "go")
		require.Error(t, err)

		page, err := uc.ListPosts(ctx, domain.ContentFilter{}, 1)
		require.NoError(t, err)
		assert.Empty(t, page.Posts)
	})
}
