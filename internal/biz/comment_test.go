package biz

import (
	"context"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledgebase/internal/domain"
)

func TestCommentCreate(t *testing.T) {
	ctx := context.Background()
	author := testUser("usr_author", "Ada", "Lovelace")
	commenter := testUser("usr_commenter", "Grace", "Hopper")

	newFixture := func() (*CommentUsecase, *fakePostRepo, *fakeNotificationRepo) {
		comments := newFakeCommentRepo()
		posts := newFakePostRepo()
		documents := newFakeDocumentRepo()
		notifications := &fakeNotificationRepo{}
		notifier := NewNotificationUsecase(notifications, newFakeUserRepo(author, commenter), posts, documents, log.DefaultLogger)
		return NewCommentUsecase(comments, posts, documents, notifier, log.DefaultLogger), posts, notifications
	}

	t.Run("attaches to the post and notifies the author", func(t *testing.T) {
		uc, posts, notifications := newFixture()
		post := domain.NewPost("Release notes", "body", author.ID, "")
		require.NoError(t, posts.Create(ctx, post))

		comment, err := uc.Create(ctx, commenter.ID, post.Ref(), "great post")
		require.NoError(t, err)
		assert.Equal(t, post.Ref(), comment.Parent)
		require.Len(t, notifications.notifications, 1)
		assert.Equal(t, author.ID, notifications.notifications[0].RecipientID)
	})

	t.Run("missing parent refused", func(t *testing.T) {
		uc, _, _ := newFixture()
		_, err := uc.Create(ctx, commenter.ID, domain.ContentRef{Kind: domain.ContentKindPost, ID: "post_gone"}, "hi")
		assert.ErrorIs(t, err, domain.ErrPostNotFound)
	})

	t.Run("unknown parent kind refused", func(t *testing.T) {
		uc, _, _ := newFixture()
		_, err := uc.Create(ctx, commenter.ID, domain.ContentRef{Kind: "wiki", ID: "x"}, "hi")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("blank content refused", func(t *testing.T) {
		uc, posts, _ := newFixture()
		post := domain.NewPost("Release notes", "body", author.ID, "")
		require.NoError(t, posts.Create(ctx, post))
		_, err := uc.Create(ctx, commenter.ID, post.Ref(), "   ")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
