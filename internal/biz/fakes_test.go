package biz

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"knowledgebase/internal/domain"
	"knowledgebase/pkg/cache"
)

// In-memory repository fakes shared by the usecase tests.

type assocKey struct {
	kind  domain.ContentKind
	id    string
	tagID string
}

type fakeTagRepo struct {
	mu     sync.Mutex
	tags   map[string]*domain.Tag
	assocs map[assocKey]bool
	clears int
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{
		tags:   make(map[string]*domain.Tag),
		assocs: make(map[assocKey]bool),
	}
}

func (r *fakeTagRepo) Create(_ context.Context, tag *domain.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags[tag.ID] = tag
	return nil
}

func (r *fakeTagRepo) GetByID(_ context.Context, id string) (*domain.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tags[id]; ok {
		return t, nil
	}
	return nil, domain.ErrTagNotFound
}

func (r *fakeTagRepo) GetByName(_ context.Context, name string) (*domain.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tags {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, domain.ErrTagNotFound
}

func (r *fakeTagRepo) UpdateName(_ context.Context, id, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tags[id]
	if !ok {
		return domain.ErrTagNotFound
	}
	t.Name = name
	return nil
}

func (r *fakeTagRepo) ClearAssociations(_ context.Context, ref domain.ContentRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
	for k := range r.assocs {
		if k.kind == ref.Kind && k.id == ref.ID {
			delete(r.assocs, k)
		}
	}
	return nil
}

func (r *fakeTagRepo) Associate(_ context.Context, ref domain.ContentRef, tagID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assocs[assocKey{kind: ref.Kind, id: ref.ID, tagID: tagID}] = true
	return nil
}

func (r *fakeTagRepo) Merge(_ context.Context, fromID, toID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.assocs {
		if k.tagID == fromID {
			delete(r.assocs, k)
			r.assocs[assocKey{kind: k.kind, id: k.id, tagID: toID}] = true
		}
	}
	delete(r.tags, fromID)
	return nil
}

func (r *fakeTagRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.assocs {
		if k.tagID == id {
			delete(r.assocs, k)
		}
	}
	delete(r.tags, id)
	return nil
}

func (r *fakeTagRepo) ListWithUsage(_ context.Context) ([]*domain.TagUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	usages := make([]*domain.TagUsage, 0, len(r.tags))
	for _, t := range r.tags {
		var count int64
		for k := range r.assocs {
			if k.tagID == t.ID {
				count++
			}
		}
		usages = append(usages, &domain.TagUsage{Tag: *t, UsageCount: count})
	}
	sort.Slice(usages, func(i, j int) bool {
		if usages[i].UsageCount != usages[j].UsageCount {
			return usages[i].UsageCount > usages[j].UsageCount
		}
		return usages[i].Name < usages[j].Name
	})
	return usages, nil
}

func (r *fakeTagRepo) SearchNames(_ context.Context, prefix string, limit int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for _, t := range r.tags {
		if strings.HasPrefix(t.Name, prefix) {
			names = append(names, t.Name)
		}
	}
	sort.Strings(names)
	if len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

func (r *fakeTagRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.tags)), nil
}

// tagNamesOf returns the tag names currently associated with the ref, sorted.
func (r *fakeTagRepo) tagNamesOf(ref domain.ContentRef) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for k := range r.assocs {
		if k.kind == ref.Kind && k.id == ref.ID {
			if t, ok := r.tags[k.tagID]; ok {
				names = append(names, t.Name)
			}
		}
	}
	sort.Strings(names)
	return names
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (r *fakeUserRepo) ListLatest(_ context.Context, limit int) ([]*domain.User, error) {
	users, _ := r.List(context.Background())
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *fakeUserRepo) ListNotifiable(_ context.Context, pref domain.NotificationPreference, excludeUserID string) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.users {
		if u.ID == excludeUserID || !u.WantsNotification(pref) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*domain.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
	return nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id string) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, domain.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) ListByRecipient(_ context.Context, recipientID string) ([]*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Notification
	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			n.IsRead = true
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			n.IsRead = true
		}
	}
	return nil
}

type fakePostRepo struct {
	mu         sync.Mutex
	posts      map[string]*domain.Post
	viewCounts map[string]int64
}

func newFakePostRepo(posts ...*domain.Post) *fakePostRepo {
	r := &fakePostRepo{posts: make(map[string]*domain.Post), viewCounts: make(map[string]int64)}
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

func (r *fakePostRepo) Create(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ID] = post
	return nil
}

func (r *fakePostRepo) GetByID(_ context.Context, id string) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[id]; ok {
		return p, nil
	}
	return nil, domain.ErrPostNotFound
}

func (r *fakePostRepo) Update(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[post.ID]; !ok {
		return domain.ErrPostNotFound
	}
	r.posts[post.ID] = post
	return nil
}

func (r *fakePostRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return domain.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) sorted() []*domain.Post {
	posts := make([]*domain.Post, 0, len(r.posts))
	for _, p := range r.posts {
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts
}

func (r *fakePostRepo) List(_ context.Context, filter domain.ContentFilter, offset, limit int) ([]*domain.Post, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.Post
	for _, p := range r.sorted() {
		if filter.Query != "" && !strings.Contains(p.Title, filter.Query) && !strings.Contains(p.Content, filter.Query) {
			continue
		}
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		matched = append(matched, p)
	}
	total := int64(len(matched))
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *fakePostRepo) ListByAuthor(_ context.Context, authorID string, offset, limit int) ([]*domain.Post, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.Post
	for _, p := range r.sorted() {
		if p.AuthorID == authorID {
			matched = append(matched, p)
		}
	}
	total := int64(len(matched))
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *fakePostRepo) ListRecent(_ context.Context, since time.Time, limit int) ([]*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Post
	for _, p := range r.sorted() {
		if !since.IsZero() && p.CreatedAt.Before(since) {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakePostRepo) ListPopular(_ context.Context, since time.Time, limit int) ([]*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Post
	for _, p := range r.posts {
		if !since.IsZero() && p.CreatedAt.Before(since) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ViewCount > out[j].ViewCount })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePostRepo) SearchByText(_ context.Context, query string) ([]*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Post
	for _, p := range r.sorted() {
		if strings.Contains(p.Title, query) || strings.Contains(p.Content, query) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePostRepo) IncrementViewCount(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return domain.ErrPostNotFound
	}
	r.viewCounts[id]++
	return nil
}

func (r *fakePostRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.posts)), nil
}

func (r *fakePostRepo) DailyCounts(_ context.Context, since time.Time) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, p := range r.posts {
		if p.CreatedAt.Before(since) {
			continue
		}
		counts[p.CreatedAt.Format("2006-01-02")]++
	}
	return counts, nil
}

type fakeDocumentRepo struct {
	mu        sync.Mutex
	documents map[string]*domain.Document
}

func newFakeDocumentRepo(documents ...*domain.Document) *fakeDocumentRepo {
	r := &fakeDocumentRepo{documents: make(map[string]*domain.Document)}
	for _, d := range documents {
		r.documents[d.ID] = d
	}
	return r
}

func (r *fakeDocumentRepo) Create(_ context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.documents[doc.ID] = doc
	return nil
}

func (r *fakeDocumentRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.documents[id]; ok {
		return d, nil
	}
	return nil, domain.ErrDocumentNotFound
}

func (r *fakeDocumentRepo) Update(_ context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.documents[doc.ID]; !ok {
		return domain.ErrDocumentNotFound
	}
	r.documents[doc.ID] = doc
	return nil
}

func (r *fakeDocumentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.documents, id)
	return nil
}

func (r *fakeDocumentRepo) sorted() []*domain.Document {
	docs := make([]*domain.Document, 0, len(r.documents))
	for _, d := range r.documents {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.After(docs[j].CreatedAt) })
	return docs
}

func (r *fakeDocumentRepo) List(_ context.Context, filter domain.ContentFilter, offset, limit int) ([]*domain.Document, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.sorted()
	total := int64(len(docs))
	if offset > len(docs) {
		offset = len(docs)
	}
	end := offset + limit
	if end > len(docs) {
		end = len(docs)
	}
	return docs[offset:end], total, nil
}

func (r *fakeDocumentRepo) ListByAuthor(_ context.Context, authorID string, offset, limit int) ([]*domain.Document, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.Document
	for _, d := range r.sorted() {
		if d.AuthorID == authorID {
			matched = append(matched, d)
		}
	}
	total := int64(len(matched))
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *fakeDocumentRepo) ListRecent(_ context.Context, since time.Time, limit int) ([]*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Document
	for _, d := range r.sorted() {
		if !since.IsZero() && d.CreatedAt.Before(since) {
			continue
		}
		out = append(out, d)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) ListPopular(_ context.Context, since time.Time, limit int) ([]*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Document
	for _, d := range r.documents {
		if !since.IsZero() && d.CreatedAt.Before(since) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ViewCount > out[j].ViewCount })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeDocumentRepo) SearchByText(_ context.Context, query string) ([]*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Document
	for _, d := range r.sorted() {
		if strings.Contains(d.Title, query) || strings.Contains(d.Content, query) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) IncrementViewCount(_ context.Context, id string) error {
	return nil
}

func (r *fakeDocumentRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.documents)), nil
}

type fakeAnnouncementRepo struct {
	mu            sync.Mutex
	announcements []*domain.Announcement
}

func (r *fakeAnnouncementRepo) Create(_ context.Context, a *domain.Announcement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.announcements = append(r.announcements, a)
	return nil
}

func (r *fakeAnnouncementRepo) GetByID(_ context.Context, id string) (*domain.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.announcements {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, domain.ErrAnnouncementNotFound
}

func (r *fakeAnnouncementRepo) List(_ context.Context, offset, limit int) ([]*domain.Announcement, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := int64(len(r.announcements))
	if offset > len(r.announcements) {
		offset = len(r.announcements)
	}
	end := offset + limit
	if end > len(r.announcements) {
		end = len(r.announcements)
	}
	return r.announcements[offset:end], total, nil
}

func (r *fakeAnnouncementRepo) ListLatest(_ context.Context, limit int) ([]*domain.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.announcements
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeAnnouncementRepo) SearchByText(_ context.Context, query string) ([]*domain.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Announcement
	for _, a := range r.announcements {
		if strings.Contains(a.Title, query) || strings.Contains(a.Content, query) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[string]*domain.Category
	usage      map[string]int64
}

func newFakeCategoryRepo(categories ...*domain.Category) *fakeCategoryRepo {
	r := &fakeCategoryRepo{categories: make(map[string]*domain.Category), usage: make(map[string]int64)}
	for _, c := range categories {
		r.categories[c.ID] = c
	}
	return r
}

func (r *fakeCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[category.ID] = category
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.categories[id]; ok {
		return c, nil
	}
	return nil, domain.ErrCategoryNotFound
}

func (r *fakeCategoryRepo) Update(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[category.ID]; !ok {
		return domain.ErrCategoryNotFound
	}
	r.categories[category.ID] = category
	return nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.categories, id)
	return nil
}

func (r *fakeCategoryRepo) List(_ context.Context) ([]*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeCategoryRepo) ListWithUsage(_ context.Context) ([]*domain.CategoryUsage, error) {
	categories, _ := r.List(context.Background())
	out := make([]*domain.CategoryUsage, 0, len(categories))
	for _, c := range categories {
		out = append(out, &domain.CategoryUsage{Category: *c, UsageCount: r.usage[c.ID]})
	}
	return out, nil
}

func (r *fakeCategoryRepo) UsageCount(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usage[id], nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[string]*domain.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]*domain.Comment)}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments[comment.ID] = comment
	return nil
}

func (r *fakeCommentRepo) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.comments[id]; ok {
		return c, nil
	}
	return nil, domain.ErrCommentNotFound
}

// fakeCache is an in-memory Cache that records Expire calls.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
	expires map[string]int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries: make(map[string][]byte),
		ttls:    make(map[string]time.Duration),
		expires: make(map[string]int),
	}
}

func (c *fakeCache) GetBytes(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.entries[key]; ok {
		return v, nil
	}
	return nil, cache.ErrMiss
}

func (c *fakeCache) SetBytes(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *fakeCache) Expire(_ context.Context, key string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expires[key]++
	c.ttls[key] = ttl
	return nil
}

func (c *fakeCache) Close() error { return nil }

type fakeTx struct {
	calls int
	fail  error
}

func (t *fakeTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	if t.fail != nil {
		return t.fail
	}
	return fn(ctx)
}
