package biz

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"knowledgebase/internal/domain"
)

const searchSnippetLen = 200

// SearchResult is one cross-type search hit.
type SearchResult struct {
	Title      string    `json:"title"`
	Snippet    string    `json:"snippet"`
	ResultType string    `json:"resultType"` // "Blog Post", "Document" or "Announcement"
	AuthorName string    `json:"authorName"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SearchPage is one page of search results.
type SearchPage struct {
	Query      string
	Results    []*SearchResult
	Page       int
	TotalPages int
	Total      int
}

// SearchUsecase runs the global substring search across posts, documents and
// announcements, merged newest first.
type SearchUsecase struct {
	posts         domain.PostRepository
	documents     domain.DocumentRepository
	announcements domain.AnnouncementRepository
	log           *log.Helper
}

// NewSearchUsecase creates the search usecase.
func NewSearchUsecase(
	posts domain.PostRepository,
	documents domain.DocumentRepository,
	announcements domain.AnnouncementRepository,
	logger log.Logger,
) *SearchUsecase {
	return &SearchUsecase{
		posts:         posts,
		documents:     documents,
		announcements: announcements,
		log:           log.NewHelper(logger),
	}
}

// Search returns one page of results for the query. A blank query yields an
// empty page without touching the stores.
func (uc *SearchUsecase) Search(ctx context.Context, query string, page int) (*SearchPage, error) {
	query = strings.TrimSpace(query)
	page, _ = pageOffset(page, ListPageSize)
	if query == "" {
		return &SearchPage{Query: query, Results: []*SearchResult{}, Page: page}, nil
	}

	var results []*SearchResult

	posts, err := uc.posts.SearchByText(ctx, query)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		results = append(results, &SearchResult{
			Title:      p.Title,
			Snippet:    snippet(p.Content),
			ResultType: "Blog Post",
			AuthorName: displayAuthor(p.Author),
			URL:        "/posts/" + p.ID,
			CreatedAt:  p.CreatedAt,
		})
	}

	documents, err := uc.documents.SearchByText(ctx, query)
	if err != nil {
		return nil, err
	}
	for _, d := range documents {
		results = append(results, &SearchResult{
			Title:      d.Title,
			Snippet:    snippet(d.Content),
			ResultType: "Document",
			AuthorName: displayAuthor(d.Author),
			URL:        "/documents/" + d.ID,
			CreatedAt:  d.CreatedAt,
		})
	}

	announcements, err := uc.announcements.SearchByText(ctx, query)
	if err != nil {
		return nil, err
	}
	for _, a := range announcements {
		results = append(results, &SearchResult{
			Title:      a.Title,
			Snippet:    snippet(a.Content),
			ResultType: "Announcement",
			AuthorName: displayAuthor(a.Author),
			URL:        "/announcements/" + a.ID,
			CreatedAt:  a.CreatedAt,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	total := len(results)
	start := (page - 1) * ListPageSize
	if start > total {
		start = total
	}
	end := start + ListPageSize
	if end > total {
		end = total
	}

	return &SearchPage{
		Query:      query,
		Results:    results[start:end],
		Page:       page,
		TotalPages: PageCount(int64(total), ListPageSize),
		Total:      total,
	}, nil
}

// snippet truncates body text to the preview length, counting runes so a
// multi-byte character is never split.
func snippet(content string) string {
	runes := []rune(content)
	if len(runes) <= searchSnippetLen {
		return content
	}
	return string(runes[:searchSnippetLen]) + "..."
}

func displayAuthor(author *domain.User) string {
	if author == nil {
		return "Unknown Author"
	}
	name := author.FullName()
	if name == "" {
		return "Unknown Author"
	}
	return name
}
