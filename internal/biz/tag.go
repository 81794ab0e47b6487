package biz

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-kratos/kratos/v2/log"

	"knowledgebase/internal/domain"
)

// tagifyTag is the structured tag input format produced by the tag editor
// widget: a JSON array of objects carrying a "value" field.
type tagifyTag struct {
	Value string `json:"value"`
}

// ParseTagInput turns raw tag input into distinct tag names in
// first-occurrence order. The structured JSON format is tried first; any
// parse failure silently falls back to a comma-separated list (split, trim,
// drop empties, de-duplicate). Blank input yields no names.
func ParseTagInput(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var structured []tagifyTag
	if err := json.Unmarshal([]byte(raw), &structured); err == nil {
		var names []string
		seen := make(map[string]bool)
		for _, t := range structured {
			if strings.TrimSpace(t.Value) == "" || seen[t.Value] {
				continue
			}
			seen[t.Value] = true
			names = append(names, t.Value)
		}
		return names
	}

	var names []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// TagUsecase owns tag reconciliation and the administrative tag flows.
type TagUsecase struct {
	tags domain.TagRepository
	log  *log.Helper
}

// NewTagUsecase creates the tag usecase.
func NewTagUsecase(tags domain.TagRepository, logger log.Logger) *TagUsecase {
	return &TagUsecase{
		tags: tags,
		log:  log.NewHelper(logger),
	}
}

// Reconcile replaces the content item's tag set with one tag per distinct
// name in the raw input. Existing associations are cleared first, then each
// name is resolved to an existing tag by exact match or created fresh.
func (uc *TagUsecase) Reconcile(ctx context.Context, ref domain.ContentRef, rawInput string) error {
	names := ParseTagInput(rawInput)

	if err := uc.tags.ClearAssociations(ctx, ref); err != nil {
		return err
	}

	for _, name := range names {
		tag, err := uc.tags.GetByName(ctx, name)
		if errors.Is(err, domain.ErrTagNotFound) {
			tag = domain.NewTag(name)
			if err := uc.tags.Create(ctx, tag); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if err := uc.tags.Associate(ctx, ref, tag.ID); err != nil {
			return err
		}
	}
	return nil
}

// Rename changes a tag's name. When the target name already belongs to a
// different tag the rename becomes a merge: every item tagged with the old
// tag ends up tagged with the surviving one and the old tag is deleted.
func (uc *TagUsecase) Rename(ctx context.Context, id, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return domain.ErrValidation
	}

	if _, err := uc.tags.GetByID(ctx, id); err != nil {
		return err
	}

	existing, err := uc.tags.GetByName(ctx, newName)
	switch {
	case err == nil && existing.ID != id:
		uc.log.Infof("merging tag %s into %s (%q)", id, existing.ID, newName)
		return uc.tags.Merge(ctx, id, existing.ID)
	case err == nil:
		// Renaming to the tag's own name; write-through anyway.
		return uc.tags.UpdateName(ctx, id, newName)
	case errors.Is(err, domain.ErrTagNotFound):
		return uc.tags.UpdateName(ctx, id, newName)
	default:
		return err
	}
}

// Delete removes the tag from every associated content item and then the tag
// itself.
func (uc *TagUsecase) Delete(ctx context.Context, id string) error {
	if _, err := uc.tags.GetByID(ctx, id); err != nil {
		return err
	}
	return uc.tags.Delete(ctx, id)
}

// ListWithUsage returns all tags with usage counts for the admin screen.
func (uc *TagUsecase) ListWithUsage(ctx context.Context) ([]*domain.TagUsage, error) {
	return uc.tags.ListWithUsage(ctx)
}

// Autocomplete returns up to 10 tag names starting with the term. A blank
// term yields no suggestions.
func (uc *TagUsecase) Autocomplete(ctx context.Context, term string) ([]string, error) {
	if strings.TrimSpace(term) == "" {
		return []string{}, nil
	}
	return uc.tags.SearchNames(ctx, term, 10)
}
