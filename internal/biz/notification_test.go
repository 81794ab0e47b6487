package biz

import (
	"context"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledgebase/internal/domain"
)

func testUser(id, name, surname string) *domain.User {
	u := domain.NewUser(id+"@example.com", name, surname, "x")
	u.ID = id
	return u
}

func newNotifyFixture(users ...*domain.User) (*NotificationUsecase, *fakeNotificationRepo, *fakePostRepo, *fakeDocumentRepo) {
	notifications := &fakeNotificationRepo{}
	posts := newFakePostRepo()
	documents := newFakeDocumentRepo()
	uc := NewNotificationUsecase(notifications, newFakeUserRepo(users...), posts, documents, log.DefaultLogger)
	return uc, notifications, posts, documents
}

func TestNotifyNewPost(t *testing.T) {
	ctx := context.Background()

	author := testUser("usr_author", "Ada", "Lovelace")
	optedIn := testUser("usr_in", "Grace", "Hopper")
	optedOut := testUser("usr_out", "Alan", "Turing")
	optedOut.Notify.OnPost = false

	uc, notifications, _, _ := newNotifyFixture(author, optedIn, optedOut)

	post := domain.NewPost("Release notes", "body", author.ID, "")
	require.NoError(t, uc.NotifyNewPost(ctx, post))

	require.Len(t, notifications.notifications, 1)
	n := notifications.notifications[0]
	assert.Equal(t, optedIn.ID, n.RecipientID)
	assert.Equal(t, "'Ada Lovelace' published a new blog post: 'Release notes'", n.Message)
	assert.Equal(t, "/posts/"+post.ID, n.URL)
	assert.False(t, n.IsRead)
}

func TestNotifyNewDocument(t *testing.T) {
	ctx := context.Background()

	author := testUser("usr_author", "Ada", "Lovelace")
	reader := testUser("usr_reader", "Grace", "Hopper")
	uc, notifications, _, _ := newNotifyFixture(author, reader)

	document := domain.NewDocument("Runbook", "body", author.ID, "")
	require.NoError(t, uc.NotifyNewDocument(ctx, document))

	require.Len(t, notifications.notifications, 1)
	assert.Equal(t, "'Ada Lovelace' published a new technical document: 'Runbook'", notifications.notifications[0].Message)
	assert.Equal(t, "/documents/"+document.ID, notifications.notifications[0].URL)
}

func TestNotifyNewAnnouncement(t *testing.T) {
	ctx := context.Background()

	admin := testUser("usr_admin", "Root", "Admin")
	reader := testUser("usr_reader", "Grace", "Hopper")
	uc, notifications, _, _ := newNotifyFixture(admin, reader)

	announcement := domain.NewAnnouncement("Office closed", "body", admin.ID)
	require.NoError(t, uc.NotifyNewAnnouncement(ctx, announcement))

	require.Len(t, notifications.notifications, 1)
	assert.Equal(t, "A new announcement was published: 'Office closed'", notifications.notifications[0].Message)
	assert.Equal(t, "/announcements/"+announcement.ID, notifications.notifications[0].URL)
}

func TestNotifyNewPostMissingAuthorUsesSystem(t *testing.T) {
	ctx := context.Background()

	reader := testUser("usr_reader", "Grace", "Hopper")
	uc, notifications, _, _ := newNotifyFixture(reader)

	post := domain.NewPost("Orphaned", "body", "", "")
	require.NoError(t, uc.NotifyNewPost(ctx, post))

	require.Len(t, notifications.notifications, 1)
	assert.Equal(t, "'System' published a new blog post: 'Orphaned'", notifications.notifications[0].Message)
}

func TestNotifyNewComment(t *testing.T) {
	ctx := context.Background()

	t.Run("notifies the content author", func(t *testing.T) {
		author := testUser("usr_author", "Ada", "Lovelace")
		commenter := testUser("usr_commenter", "Grace", "Hopper")
		uc, notifications, posts, _ := newNotifyFixture(author, commenter)

		post := domain.NewPost("Release notes", "body", author.ID, "")
		require.NoError(t, posts.Create(ctx, post))

		comment := domain.NewComment(post.Ref(), commenter.ID, "nice")
		require.NoError(t, uc.NotifyNewComment(ctx, comment))

		require.Len(t, notifications.notifications, 1)
		n := notifications.notifications[0]
		assert.Equal(t, author.ID, n.RecipientID)
		assert.Equal(t, "'Grace Hopper' commented on your post: 'Release notes'", n.Message)
		assert.Equal(t, "/posts/"+post.ID+"?commentId="+comment.ID, n.URL)
	})

	t.Run("document parent", func(t *testing.T) {
		author := testUser("usr_author", "Ada", "Lovelace")
		commenter := testUser("usr_commenter", "Grace", "Hopper")
		uc, notifications, _, documents := newNotifyFixture(author, commenter)

		document := domain.NewDocument("Runbook", "body", author.ID, "")
		require.NoError(t, documents.Create(ctx, document))

		comment := domain.NewComment(document.Ref(), commenter.ID, "nice")
		require.NoError(t, uc.NotifyNewComment(ctx, comment))

		require.Len(t, notifications.notifications, 1)
		assert.Equal(t, "'Grace Hopper' commented on your document: 'Runbook'", notifications.notifications[0].Message)
		assert.Equal(t, "/documents/"+document.ID+"?commentId="+comment.ID, notifications.notifications[0].URL)
	})

	t.Run("self comment is silent", func(t *testing.T) {
		author := testUser("usr_author", "Ada", "Lovelace")
		uc, notifications, posts, _ := newNotifyFixture(author)

		post := domain.NewPost("Release notes", "body", author.ID, "")
		require.NoError(t, posts.Create(ctx, post))

		comment := domain.NewComment(post.Ref(), author.ID, "replying to myself")
		require.NoError(t, uc.NotifyNewComment(ctx, comment))
		assert.Empty(t, notifications.notifications)
	})

	t.Run("opted-out author is silent", func(t *testing.T) {
		author := testUser("usr_author", "Ada", "Lovelace")
		author.Notify.OnComment = false
		commenter := testUser("usr_commenter", "Grace", "Hopper")
		uc, notifications, posts, _ := newNotifyFixture(author, commenter)

		post := domain.NewPost("Release notes", "body", author.ID, "")
		require.NoError(t, posts.Create(ctx, post))

		require.NoError(t, uc.NotifyNewComment(ctx, domain.NewComment(post.Ref(), commenter.ID, "hi")))
		assert.Empty(t, notifications.notifications)
	})

	t.Run("orphaned parent is silent", func(t *testing.T) {
		commenter := testUser("usr_commenter", "Grace", "Hopper")
		uc, notifications, _, _ := newNotifyFixture(commenter)

		comment := domain.NewComment(domain.ContentRef{Kind: domain.ContentKindPost, ID: "post_gone"}, commenter.ID, "hi")
		require.NoError(t, uc.NotifyNewComment(ctx, comment))
		assert.Empty(t, notifications.notifications)
	})
}

func TestNotificationInbox(t *testing.T) {
	ctx := context.Background()
	user := testUser("usr_1", "Ada", "Lovelace")
	other := testUser("usr_2", "Grace", "Hopper")
	uc, notifications, _, _ := newNotifyFixture(user, other)

	mine := domain.NewNotification(user.ID, "hello", "/posts/post_1")
	theirs := domain.NewNotification(other.ID, "hello", "/posts/post_1")
	require.NoError(t, notifications.Create(ctx, mine))
	require.NoError(t, notifications.Create(ctx, theirs))

	t.Run("open marks read and returns url", func(t *testing.T) {
		url, err := uc.Open(ctx, user.ID, mine.ID)
		require.NoError(t, err)
		assert.Equal(t, "/posts/post_1", url)

		count, err := uc.UnreadCount(ctx, user.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 0, count)
	})

	t.Run("cannot open another user's notification", func(t *testing.T) {
		_, err := uc.Open(ctx, user.ID, theirs.ID)
		assert.ErrorIs(t, err, domain.ErrNotificationNotFound)
	})

	t.Run("mark all read", func(t *testing.T) {
		require.NoError(t, notifications.Create(ctx, domain.NewNotification(user.ID, "again", "/x")))
		require.NoError(t, uc.MarkAllRead(ctx, user.ID))

		count, err := uc.UnreadCount(ctx, user.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 0, count)
	})
}
