package biz

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"

	"knowledgebase/internal/domain"
)

// systemAuthorName is used when a content item's author cannot be resolved.
const systemAuthorName = "System"

// NotificationUsecase fans out in-app notifications and serves the per-user
// inbox. Fan-out methods return an error only when delivery genuinely failed;
// callers run them after their own writes have committed and log failures
// instead of propagating them.
type NotificationUsecase struct {
	notifications domain.NotificationRepository
	users         domain.UserRepository
	posts         domain.PostRepository
	documents     domain.DocumentRepository
	log           *log.Helper
}

// NewNotificationUsecase creates the notification usecase.
func NewNotificationUsecase(
	notifications domain.NotificationRepository,
	users domain.UserRepository,
	posts domain.PostRepository,
	documents domain.DocumentRepository,
	logger log.Logger,
) *NotificationUsecase {
	return &NotificationUsecase{
		notifications: notifications,
		users:         users,
		posts:         posts,
		documents:     documents,
		log:           log.NewHelper(logger),
	}
}

// authorName resolves a user id to a display name, falling back to the
// system sentinel for missing or unresolvable authors.
func (uc *NotificationUsecase) authorName(ctx context.Context, userID string) string {
	if userID == "" {
		return systemAuthorName
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return systemAuthorName
	}
	name := user.FullName()
	if name == "" {
		return systemAuthorName
	}
	return name
}

// fanOut creates one notification per recipient. Delivery is sequential;
// the first failure aborts the rest.
func (uc *NotificationUsecase) fanOut(ctx context.Context, recipients []*domain.User, message, url string) error {
	for _, recipient := range recipients {
		n := domain.NewNotification(recipient.ID, message, url)
		if err := uc.notifications.Create(ctx, n); err != nil {
			return fmt.Errorf("deliver to %s: %w", recipient.ID, err)
		}
	}
	return nil
}

// NotifyNewPost notifies every opted-in user (except the author) that a blog
// post was published.
func (uc *NotificationUsecase) NotifyNewPost(ctx context.Context, post *domain.Post) error {
	recipients, err := uc.users.ListNotifiable(ctx, domain.NotifyOnPost, post.AuthorID)
	if err != nil {
		return err
	}
	message := fmt.Sprintf("'%s' published a new blog post: '%s'", uc.authorName(ctx, post.AuthorID), post.Title)
	return uc.fanOut(ctx, recipients, message, "/posts/"+post.ID)
}

// NotifyNewDocument notifies every opted-in user (except the author) that a
// technical document was published.
func (uc *NotificationUsecase) NotifyNewDocument(ctx context.Context, document *domain.Document) error {
	recipients, err := uc.users.ListNotifiable(ctx, domain.NotifyOnDocument, document.AuthorID)
	if err != nil {
		return err
	}
	message := fmt.Sprintf("'%s' published a new technical document: '%s'", uc.authorName(ctx, document.AuthorID), document.Title)
	return uc.fanOut(ctx, recipients, message, "/documents/"+document.ID)
}

// NotifyNewAnnouncement notifies every opted-in user that an announcement was
// published. The announcement author is excluded like any other publisher.
func (uc *NotificationUsecase) NotifyNewAnnouncement(ctx context.Context, announcement *domain.Announcement) error {
	recipients, err := uc.users.ListNotifiable(ctx, domain.NotifyOnAnnouncement, announcement.AuthorID)
	if err != nil {
		return err
	}
	message := fmt.Sprintf("A new announcement was published: '%s'", announcement.Title)
	return uc.fanOut(ctx, recipients, message, "/announcements/"+announcement.ID)
}

// NotifyNewComment notifies the parent item's author about a new comment.
// Nothing is sent when the author commented on their own item, opted out of
// comment notifications, or cannot be resolved.
func (uc *NotificationUsecase) NotifyNewComment(ctx context.Context, comment *domain.Comment) error {
	commenter, err := uc.users.GetByID(ctx, comment.AuthorID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var (
		authorID string
		title    string
		noun     string
	)
	switch comment.Parent.Kind {
	case domain.ContentKindPost:
		post, err := uc.posts.GetByID(ctx, comment.Parent.ID)
		if errors.Is(err, domain.ErrPostNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		authorID, title, noun = post.AuthorID, post.Title, "post"
	case domain.ContentKindDocument:
		document, err := uc.documents.GetByID(ctx, comment.Parent.ID)
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		authorID, title, noun = document.AuthorID, document.Title, "document"
	default:
		return fmt.Errorf("unknown comment parent kind %q", comment.Parent.Kind)
	}

	if authorID == "" || authorID == comment.AuthorID {
		return nil
	}
	author, err := uc.users.GetByID(ctx, authorID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !author.Notify.OnComment {
		return nil
	}

	message := fmt.Sprintf("'%s' commented on your %s: '%s'", commenter.FullName(), noun, title)
	url := fmt.Sprintf("/%ss/%s?commentId=%s", noun, comment.Parent.ID, comment.ID)
	n := domain.NewNotification(author.ID, message, url)
	return uc.notifications.Create(ctx, n)
}

// Inbox returns all of the user's notifications, newest first.
func (uc *NotificationUsecase) Inbox(ctx context.Context, userID string) ([]*domain.Notification, error) {
	return uc.notifications.ListByRecipient(ctx, userID)
}

// UnreadCount returns the number of unread notifications for the user.
func (uc *NotificationUsecase) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return uc.notifications.CountUnread(ctx, userID)
}

// Open marks a notification read and returns its target URL. Opening another
// user's notification is indistinguishable from a missing one.
func (uc *NotificationUsecase) Open(ctx context.Context, userID, id string) (string, error) {
	n, err := uc.notifications.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if n.RecipientID != userID {
		return "", domain.ErrNotificationNotFound
	}
	if !n.IsRead {
		if err := uc.notifications.MarkRead(ctx, id); err != nil {
			return "", err
		}
	}
	return n.URL, nil
}

// MarkAllRead marks every unread notification of the user as read.
func (uc *NotificationUsecase) MarkAllRead(ctx context.Context, userID string) error {
	return uc.notifications.MarkAllRead(ctx, userID)
}
