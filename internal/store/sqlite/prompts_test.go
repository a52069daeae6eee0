package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/promptstashapp/promptstash-server/internal/domain"
	"github.com/promptstashapp/promptstash-server/internal/store"
)

func makeTestPrompt(id, ownerID, title, content string) *domain.Prompt {
	now := time.Now()
	return &domain.Prompt{
		Entity: domain.Entity{
			ID:        id,
			OwnerID:   ownerID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:   title,
		Content: content,
	}
}

func promptIDs(prompts []*domain.Prompt) []string {
	ids := make([]string, len(prompts))
	for i, p := range prompts {
		ids[i] = p.ID
	}
	return ids
}

func TestCreateAndGetPrompt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createSessionUser(t, s, "user-1")

	p := makeTestPrompt("prompt-1", "user-1", "Greeting", "Say hello politely")
	if err := s.CreatePrompt(ctx, p); err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}

	got, err := s.GetPrompt(ctx, "user-1", "prompt-1")
	if err != nil {
		t.Fatalf("GetPrompt: %v", err)
	}
	if got.Title != "Greeting" || got.Content != "Say hello politely" {
		t.Errorf("got %q/%q", got.Title, got.Content)
	}
	if !got.UpdatedAt.Equal(p.UpdatedAt) {
		t.Errorf("UpdatedAt did not round-trip: got %v, want %v", got.UpdatedAt, p.UpdatedAt)
	}
}

func TestGetPromptUntitled(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createSessionUser(t, s, "user-1")

	if err := s.CreatePrompt(ctx, makeTestPrompt("prompt-1", "user-1", "", "no title here")); err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}

	got, err := s.GetPrompt(ctx, "user-1", "prompt-1")
	if err != nil {
		t.Fatalf("GetPrompt: %v", err)
	}
	if got.HasTitle() {
		t.Errorf("expected untitled prompt, got title %q", got.Title)
	}
}

func TestGetPromptScoping(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createSessionUser(t, s, "user-1")
	createSessionUser(t, s, "user-2")

	if err := s.CreatePrompt(ctx, makeTestPrompt("prompt-1", "user-1", "t", "c")); err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}

	// Another user's prompt looks exactly like a missing one.
	if _, err := s.GetPrompt(ctx, "user-2", "prompt-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign prompt, got %v", err)
	}
}

func TestUpdatePrompt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createSessionUser(t, s, "user-1")
	createSessionUser(t, s, "user-2")

	p := makeTestPrompt("prompt-1", "user-1", "old", "old content")
	if err := s.CreatePrompt(ctx, p); err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}

	p.Title = "new"
	p.Content = "new content"
	p.Touch()
	if err := s.UpdatePrompt(ctx, p); err != nil {
		t.Fatalf("UpdatePrompt: %v", err)
	}

	got, err := s.GetPrompt(ctx, "user-1", "prompt-1")
	if err != nil {
		t.Fatalf("GetPrompt: %v", err)
	}
	if got.Title != "new" || got.Content != "new content" {
		t.Errorf("update not persisted: %q/%q", got.Title, got.Content)
	}

	// Clearing the title stores NULL.
	p.Title = ""
	p.Touch()
	if err := s.UpdatePrompt(ctx, p); err != nil {
		t.Fatalf("UpdatePrompt (clear title): %v", err)
	}
	got, err = s.GetPrompt(ctx, "user-1", "prompt-1")
	if err != nil {
		t.Fatalf("GetPrompt: %v", err)
	}
	if got.HasTitle() {
		t.Errorf("expected cleared title, got %q", got.Title)
	}

	// Updating through the wrong owner touches zero rows.
	foreign := makeTestPrompt("prompt-1", "user-2", "x", "y")
	if err := s.UpdatePrompt(ctx, foreign); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign update, got %v", err)
	}
}

func TestSoftDeletePrompt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createSessionUser(t, s, "user-1")

	if err := s.CreatePrompt(ctx, makeTestPrompt("prompt-1", "user-1", "t", "c")); err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}

	if err := s.SoftDeletePrompt(ctx, "user-1", "prompt-1"); err != nil {
		t.Fatalf("SoftDeletePrompt: %v", err)
	}

	// Gone from reads.
	if _, err := s.GetPrompt(ctx, "user-1", "prompt-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting again is indistinguishable from deleting a missing prompt.
	if err := s.SoftDeletePrompt(ctx, "user-1", "prompt-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}

	// The row itself survives.
	var deleted int
	if err := s.db.QueryRow(`SELECT is_deleted FROM prompts WHERE id = 'prompt-1'`).Scan(&deleted); err != nil {
		t.Fatalf("query row: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected is_deleted=1, got %d", deleted)
	}
}

func TestListPromptsOrderingAndPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createSessionUser(t, s, "user-1")

	// Five prompts with strictly increasing update times.
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		p := makeTestPrompt(fmt.Sprintf("prompt-%d", i), "user-1", "", fmt.Sprintf("content %d", i))
		p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		p.UpdatedAt = p.CreatedAt
		if err := s.CreatePrompt(ctx, p); err != nil {
			t.Fatalf("CreatePrompt: %v", err)
		}
	}

	// Walk the whole set in pages of two: every prompt exactly once,
	// newest first.
	var seen []string
	offset := 0
	for {
		page, err := s.ListPrompts(ctx, "user-1", store.PromptFilter{
			Page: store.PageParams{Offset: offset, Limit: 2},
		})
		if err != nil {
			t.Fatalf("ListPrompts offset=%d: %v", offset, err)
		}
		seen = append(seen, promptIDs(page.Items)...)
		if !page.HasMore {
			if page.NextOffset != nil {
				t.Errorf("NextOffset should be nil on the last page")
			}
			break
		}
		if page.NextOffset == nil {
			t.Fatal("HasMore set but NextOffset nil")
		}
		offset = *page.NextOffset
	}

	want := []string{"prompt-4", "prompt-3", "prompt-2", "prompt-1", "prompt-0"}
	if len(seen) != len(want) {
		t.Fatalf("expected %d prompts, got %v", len(want), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, seen[i], want[i])
		}
	}
}

func TestListPromptsTieBreak(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createSessionUser(t, s, "user-1")

	// Identical timestamps: id DESC keeps the order stable across pages.
	at := time.Now()
	for _, id := range []string{"prompt-a", "prompt-b", "prompt-c"} {
		p := makeTestPrompt(id, "user-1", "", "same instant")
		p.CreatedAt = at
		p.UpdatedAt = at
		if err := s.CreatePrompt(ctx, p); err != nil {
			t.Fatalf("CreatePrompt: %v", err)
		}
	}

	page, err := s.ListPrompts(ctx, "user-1", store.PromptFilter{Page: store.PageParams{Limit: 10}})
	if err != nil {
		t.Fatalf("ListPrompts: %v", err)
	}
	got := promptIDs(page.Items)
	want := []string{"prompt-c", "prompt-b", "prompt-a"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestListPromptsQuery(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createSessionUser(t, s, "user-1")

	prompts := []*domain.Prompt{
		makeTestPrompt("prompt-1", "user-1", "Code Review", "review this diff"),
		makeTestPrompt("prompt-2", "user-1", "", "summarize the REVIEW notes"),
		makeTestPrompt("prompt-3", "user-1", "Recipe", "pancakes"),
	}
	for _, p := range prompts {
		if err := s.CreatePrompt(ctx, p); err != nil {
			t.Fatalf("CreatePrompt: %v", err)
		}
	}

	// Case-insensitive, matches title or content; the untitled prompt is
	// still searchable through its content.
	page, err := s.ListPrompts(ctx, "user-1", store.PromptFilter{Query: "review"})
	if err != nil {
		t.Fatalf("ListPrompts: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 matches, got %v", promptIDs(page.Items))
	}

	page, err = s.ListPrompts(ctx, "user-1", store.PromptFilter{Query: "nothing matches this"})
	if err != nil {
		t.Fatalf("ListPrompts: %v", err)
	}
	if len(page.Items) != 0 {
		t.Errorf("expected no matches, got %v", promptIDs(page.Items))
	}
	if page.HasMore {
		t.Error("HasMore should be false for empty result")
	}
}

func TestListPromptsByTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createSessionUser(t, s, "user-1")

	tags, err := s.EnsureTags(ctx, "user-1", []string{"go", "sql", "unused"})
	if err != nil {
		t.Fatalf("EnsureTags: %v", err)
	}
	goTag, sqlTag := tags[0], tags[1]

	for _, id := range []string{"prompt-1", "prompt-2", "prompt-3"} {
		if err := s.CreatePrompt(ctx, makeTestPrompt(id, "user-1", "", "content")); err != nil {
			t.Fatalf("CreatePrompt: %v", err)
		}
	}
	if err := s.ReplacePromptTags(ctx, "prompt-1", []string{goTag.ID}); err != nil {
		t.Fatalf("ReplacePromptTags: %v", err)
	}
	if err := s.ReplacePromptTags(ctx, "prompt-2", []string{sqlTag.ID}); err != nil {
		t.Fatalf("ReplacePromptTags: %v", err)
	}

	// Single tag.
	page, err := s.ListPrompts(ctx, "user-1", store.PromptFilter{TagIDs: []string{goTag.ID}})
	if err != nil {
		t.Fatalf("ListPrompts: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "prompt-1" {
		t.Errorf("expected [prompt-1], got %v", promptIDs(page.Items))
	}

	// Multiple tags are OR: tagged with either matches.
	page, err = s.ListPrompts(ctx, "user-1", store.PromptFilter{TagIDs: []string{goTag.ID, sqlTag.ID}})
	if err != nil {
		t.Fatalf("ListPrompts: %v", err)
	}
	if len(page.Items) != 2 {
		t.Errorf("expected 2 prompts, got %v", promptIDs(page.Items))
	}
}

func TestListPromptsExcludesDeleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createSessionUser(t, s, "user-1")
	createSessionUser(t, s, "user-2")

	if err := s.CreatePrompt(ctx, makeTestPrompt("prompt-1", "user-1", "", "mine")); err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}
	if err := s.CreatePrompt(ctx, makeTestPrompt("prompt-2", "user-1", "", "deleted soon")); err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}
	if err := s.CreatePrompt(ctx, makeTestPrompt("prompt-3", "user-2", "", "theirs")); err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}
	if err := s.SoftDeletePrompt(ctx, "user-1", "prompt-2"); err != nil {
		t.Fatalf("SoftDeletePrompt: %v", err)
	}

	page, err := s.ListPrompts(ctx, "user-1", store.PromptFilter{})
	if err != nil {
		t.Fatalf("ListPrompts: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "prompt-1" {
		t.Errorf("expected [prompt-1], got %v", promptIDs(page.Items))
	}
}

func TestReplacePromptTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createSessionUser(t, s, "user-1")

	tags, err := s.EnsureTags(ctx, "user-1", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EnsureTags: %v", err)
	}
	if err := s.CreatePrompt(ctx, makeTestPrompt("prompt-1", "user-1", "", "x")); err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}

	if err := s.ReplacePromptTags(ctx, "prompt-1", []string{tags[0].ID, tags[1].ID}); err != nil {
		t.Fatalf("ReplacePromptTags: %v", err)
	}

	// Replace swaps the full set, dropping what is no longer named.
	if err := s.ReplacePromptTags(ctx, "prompt-1", []string{tags[2].ID}); err != nil {
		t.Fatalf("ReplacePromptTags (swap): %v", err)
	}

	byPrompt, err := s.TagsForPrompts(ctx, "user-1", []string{"prompt-1"})
	if err != nil {
		t.Fatalf("TagsForPrompts: %v", err)
	}
	got := byPrompt["prompt-1"]
	if len(got) != 1 || got[0].Name != "c" {
		t.Errorf("expected [c], got %v", tagNames(got))
	}

	// Clear entirely.
	if err := s.ReplacePromptTags(ctx, "prompt-1", nil); err != nil {
		t.Fatalf("ReplacePromptTags (clear): %v", err)
	}
	byPrompt, err = s.TagsForPrompts(ctx, "user-1", []string{"prompt-1"})
	if err != nil {
		t.Fatalf("TagsForPrompts: %v", err)
	}
	if len(byPrompt["prompt-1"]) != 0 {
		t.Errorf("expected no tags, got %v", tagNames(byPrompt["prompt-1"]))
	}
}

func TestTagsForPromptsBatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createSessionUser(t, s, "user-1")

	tags, err := s.EnsureTags(ctx, "user-1", []string{"beta", "alpha"})
	if err != nil {
		t.Fatalf("EnsureTags: %v", err)
	}
	for _, id := range []string{"prompt-1", "prompt-2"} {
		if err := s.CreatePrompt(ctx, makeTestPrompt(id, "user-1", "", "x")); err != nil {
			t.Fatalf("CreatePrompt: %v", err)
		}
	}
	if err := s.ReplacePromptTags(ctx, "prompt-1", []string{tags[0].ID, tags[1].ID}); err != nil {
		t.Fatalf("ReplacePromptTags: %v", err)
	}

	byPrompt, err := s.TagsForPrompts(ctx, "user-1", []string{"prompt-1", "prompt-2"})
	if err != nil {
		t.Fatalf("TagsForPrompts: %v", err)
	}

	// Ordered by name within a prompt.
	got := byPrompt["prompt-1"]
	if len(got) != 2 || got[0].Name != "alpha" || got[1].Name != "beta" {
		t.Errorf("expected [alpha beta], got %v", tagNames(got))
	}
	if len(byPrompt["prompt-2"]) != 0 {
		t.Errorf("expected no tags for prompt-2, got %v", tagNames(byPrompt["prompt-2"]))
	}

	// Tags are scoped to the owner even when the prompt IDs are known.
	createSessionUser(t, s, "user-2")
	other, err := s.TagsForPrompts(ctx, "user-2", []string{"prompt-1", "prompt-2"})
	if err != nil {
		t.Fatalf("TagsForPrompts (other user): %v", err)
	}
	if len(other["prompt-1"]) != 0 || len(other["prompt-2"]) != 0 {
		t.Errorf("expected no tags for another user, got %v", other)
	}

	// Soft-deleted tags disappear from associations.
	if _, err := s.db.Exec(`UPDATE tags SET is_deleted = 1 WHERE id = ?`, tags[1].ID); err != nil {
		t.Fatalf("soft delete tag: %v", err)
	}
	byPrompt, err = s.TagsForPrompts(ctx, "user-1", []string{"prompt-1"})
	if err != nil {
		t.Fatalf("TagsForPrompts: %v", err)
	}
	got = byPrompt["prompt-1"]
	if len(got) != 1 || got[0].Name != "beta" {
		t.Errorf("expected [beta], got %v", tagNames(got))
	}
}
