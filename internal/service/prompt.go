package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/promptstashapp/promptstash-server/internal/domain"
	domainerrors "github.com/promptstashapp/promptstash-server/internal/errors"
	"github.com/promptstashapp/promptstash-server/internal/id"
	"github.com/promptstashapp/promptstash-server/internal/markdown"
	"github.com/promptstashapp/promptstash-server/internal/normalize"
	"github.com/promptstashapp/promptstash-server/internal/store"
	"github.com/promptstashapp/promptstash-server/internal/store/sqlite"
)

// PromptService orchestrates prompt search and mutations: input
// normalization, tag resolution, pagination, and enrichment of results with
// their tags.
type PromptService struct {
	store  *sqlite.Store
	logger *slog.Logger

	// allowHTML enables converting pasted rich-text content to markdown.
	allowHTML bool
}

// NewPromptService creates a new prompt service.
func NewPromptService(store *sqlite.Store, allowHTML bool, logger *slog.Logger) *PromptService {
	return &PromptService{
		store:     store,
		logger:    logger,
		allowHTML: allowHTML,
	}
}

// PromptView is a prompt enriched for client display.
type PromptView struct {
	ID        string           `json:"id"`
	Title     string           `json:"title,omitempty"`
	Content   string           `json:"content"`
	Tags      []domain.TagItem `json:"tags"`
	OwnerName string           `json:"owner_name"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// PromptPage is one page of prompt views plus continuation metadata.
type PromptPage struct {
	Items      []PromptView `json:"items"`
	HasMore    bool         `json:"has_more"`
	NextOffset *int         `json:"next_offset"`
}

// ListRequest narrows and pages a prompt listing.
type ListRequest struct {
	Query  string   `json:"query"`
	Tags   []string `json:"tags"`
	Offset int      `json:"offset" validate:"gte=0"`
	Limit  int      `json:"limit" validate:"gte=0,lte=200"`
}

// CreateRequest contains a new prompt's data.
type CreateRequest struct {
	Title   string   `json:"title" validate:"max=200"`
	Content string   `json:"content" validate:"required"`
	Tags    []string `json:"tags" validate:"max=32,dive,max=64"`
}

// UpdateRequest patches an existing prompt. Nil fields are left unchanged;
// a nil Tags keeps the current associations, an empty non-nil Tags clears
// them.
type UpdateRequest struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags"`
}

// emptyPage is the page returned when a filter can never match.
func emptyPage() *PromptPage {
	return &PromptPage{Items: []PromptView{}}
}

// List returns a page of the owner's prompts matching the request.
//
// Tag names are normalized and resolved to live tags first; if none of the
// requested names resolve, no prompt can match and the prompt query is
// skipped entirely.
func (s *PromptService) List(ctx context.Context, owner *domain.User, req ListRequest) (*PromptPage, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	filter := store.PromptFilter{
		Query: normalize.Query(req.Query),
		Page:  store.PageParams{Offset: req.Offset, Limit: req.Limit},
	}

	if names := normalize.TagNames(req.Tags); len(names) > 0 {
		tags, err := s.store.FindActiveTagsByNames(ctx, owner.ID, names)
		if err != nil {
			return nil, fmt.Errorf("resolve tag filter: %w", err)
		}
		if len(tags) == 0 {
			return emptyPage(), nil
		}
		for _, tag := range tags {
			filter.TagIDs = append(filter.TagIDs, tag.ID)
		}
	}

	page, err := s.store.ListPrompts(ctx, owner.ID, filter)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}

	views, err := s.enrich(ctx, owner, page.Items)
	if err != nil {
		return nil, err
	}

	return &PromptPage{
		Items:      views,
		HasMore:    page.HasMore,
		NextOffset: page.NextOffset,
	}, nil
}

// Get returns a single prompt with its tags.
func (s *PromptService) Get(ctx context.Context, owner *domain.User, promptID string) (*PromptView, error) {
	prompt, err := s.store.GetPrompt(ctx, owner.ID, promptID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("prompt not found")
		}
		return nil, fmt.Errorf("get prompt: %w", err)
	}

	views, err := s.enrich(ctx, owner, []*domain.Prompt{prompt})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Create stores a new prompt with its tags and returns the created view.
func (s *PromptService) Create(ctx context.Context, owner *domain.User, req CreateRequest) (*PromptView, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	content := s.normalizeContent(req.Content)
	if content == "" {
		return nil, domainerrors.Validation("content must not be empty")
	}

	promptID, err := id.Generate("prompt")
	if err != nil {
		return nil, domainerrors.Internal("failed to allocate prompt id").WithCause(err)
	}

	prompt := &domain.Prompt{
		Entity:  domain.Entity{ID: promptID, OwnerID: owner.ID},
		Title:   normalize.Title(req.Title),
		Content: content,
	}
	prompt.InitTimestamps()

	if err := s.store.CreatePrompt(ctx, prompt); err != nil {
		return nil, fmt.Errorf("create prompt: %w", err)
	}

	tags, err := s.attachTags(ctx, owner.ID, promptID, req.Tags)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("Prompt created", "prompt_id", promptID, "tags", len(tags))
	}

	view := s.view(owner, prompt, tags)
	return &view, nil
}

// Update patches a prompt's fields and tag set.
//
// The write itself is a single owner-scoped statement, so a prompt that was
// deleted or never belonged to the caller surfaces as NotFound regardless of
// what the earlier read saw.
func (s *PromptService) Update(ctx context.Context, owner *domain.User, promptID string, req UpdateRequest) (*PromptView, error) {
	prompt, err := s.store.GetPrompt(ctx, owner.ID, promptID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("prompt not found")
		}
		return nil, fmt.Errorf("get prompt: %w", err)
	}

	if req.Title != nil {
		title := normalize.Title(*req.Title)
		if len(title) > 200 {
			return nil, domainerrors.Validation("title must not exceed 200 characters")
		}
		prompt.Title = title
	}
	if req.Content != nil {
		content := s.normalizeContent(*req.Content)
		if content == "" {
			return nil, domainerrors.Validation("content must not be empty")
		}
		prompt.Content = content
	}

	prompt.Touch()
	if err := s.store.UpdatePrompt(ctx, prompt); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("prompt not found")
		}
		return nil, fmt.Errorf("update prompt: %w", err)
	}

	var tags []domain.TagItem
	if req.Tags != nil {
		tags, err = s.attachTags(ctx, owner.ID, promptID, *req.Tags)
		if err != nil {
			return nil, err
		}
	} else {
		byPrompt, err := s.store.TagsForPrompts(ctx, owner.ID, []string{promptID})
		if err != nil {
			return nil, fmt.Errorf("load prompt tags: %w", err)
		}
		tags = byPrompt[promptID]
	}

	view := s.view(owner, prompt, tags)
	return &view, nil
}

// Delete soft-deletes a prompt. Deleting twice reports NotFound the second
// time, same as deleting someone else's prompt.
func (s *PromptService) Delete(ctx context.Context, owner *domain.User, promptID string) error {
	if err := s.store.SoftDeletePrompt(ctx, owner.ID, promptID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("prompt not found")
		}
		return fmt.Errorf("delete prompt: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Prompt deleted", "prompt_id", promptID)
	}
	return nil
}

// normalizeContent trims content, converting pasted HTML to markdown first
// when enabled.
func (s *PromptService) normalizeContent(content string) string {
	if s.allowHTML {
		content = markdown.FromHTML(content)
	}
	return strings.TrimSpace(content)
}

// attachTags resolves tag names and swaps the prompt's associations to
// exactly that set. An empty name list clears all associations.
func (s *PromptService) attachTags(ctx context.Context, ownerID, promptID string, names []string) ([]domain.TagItem, error) {
	normalized := normalize.TagNames(names)

	tags, err := s.store.EnsureTags(ctx, ownerID, normalized)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("tag name conflict")
		}
		return nil, fmt.Errorf("ensure tags: %w", err)
	}

	tagIDs := make([]string, len(tags))
	for i, tag := range tags {
		tagIDs[i] = tag.ID
	}
	if err := s.store.ReplacePromptTags(ctx, promptID, tagIDs); err != nil {
		return nil, fmt.Errorf("replace prompt tags: %w", err)
	}

	// Tag listings come back from the store in name order; match that here.
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

// enrich loads tags for a page of prompts and builds client views.
func (s *PromptService) enrich(ctx context.Context, owner *domain.User, prompts []*domain.Prompt) ([]PromptView, error) {
	promptIDs := make([]string, len(prompts))
	for i, p := range prompts {
		promptIDs[i] = p.ID
	}

	tagsByPrompt, err := s.store.TagsForPrompts(ctx, owner.ID, promptIDs)
	if err != nil {
		return nil, fmt.Errorf("load prompt tags: %w", err)
	}

	views := make([]PromptView, len(prompts))
	for i, p := range prompts {
		views[i] = s.view(owner, p, tagsByPrompt[p.ID])
	}
	return views, nil
}

// view builds a single PromptView.
func (s *PromptService) view(owner *domain.User, p *domain.Prompt, tags []domain.TagItem) PromptView {
	if tags == nil {
		tags = []domain.TagItem{}
	}
	return PromptView{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Tags:      tags,
		OwnerName: owner.Name(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
