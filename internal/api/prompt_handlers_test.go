package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptstashapp/promptstash-server/internal/service"
)

// createPrompt posts a prompt and returns its view.
func (ts *testServer) createPrompt(t *testing.T, token string, body map[string]any) service.PromptView {
	t.Helper()

	resp := ts.api.Post("/api/v1/prompts", "Authorization: "+token, body)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[service.PromptView]
	decodeEnvelope(t, resp, &envelope)
	return envelope.Data
}

func TestCreateAndGetPrompt(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.setupRootUser(t)

	created := ts.createPrompt(t, token, map[string]any{
		"title":   "Release Notes",
		"content": "Draft release notes from this changelog.",
		"tags":    []string{"Writing", " release "},
	})
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Release Notes", created.Title)

	resp := ts.api.Get("/api/v1/prompts/"+created.ID, "Authorization: "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[service.PromptView]
	decodeEnvelope(t, resp, &envelope)
	assert.Equal(t, created.ID, envelope.Data.ID)
	require.Len(t, envelope.Data.Tags, 2)
	assert.Equal(t, "release", envelope.Data.Tags[0].Name)
	assert.Equal(t, "writing", envelope.Data.Tags[1].Name)
}

func TestCreatePrompt_EmptyContent(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.setupRootUser(t)

	resp := ts.api.Post("/api/v1/prompts", "Authorization: "+token, map[string]any{
		"content": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetPrompt_NotFound(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.setupRootUser(t)

	resp := ts.api.Get("/api/v1/prompts/prompt_missing", "Authorization: "+token)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	var envelope testEnvelope[struct{}]
	decodeEnvelope(t, resp, &envelope)
	assert.Equal(t, "NOT_FOUND", envelope.Code)
}

func TestListPrompts_FilterAndPaginate(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.setupRootUser(t)

	for i := range 3 {
		ts.createPrompt(t, token, map[string]any{
			"content": fmt.Sprintf("debugging prompt %d", i),
			"tags":    []string{"debug"},
		})
	}
	ts.createPrompt(t, token, map[string]any{
		"content": "unrelated note",
	})

	// Text search.
	resp := ts.api.Get("/api/v1/prompts?query=debugging", "Authorization: "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var page testEnvelope[service.PromptPage]
	decodeEnvelope(t, resp, &page)
	assert.Len(t, page.Data.Items, 3)
	assert.False(t, page.Data.HasMore)

	// Tag filter with pagination.
	resp = ts.api.Get("/api/v1/prompts?tags=debug&limit=2", "Authorization: "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	decodeEnvelope(t, resp, &page)
	assert.Len(t, page.Data.Items, 2)
	assert.True(t, page.Data.HasMore)
	require.NotNil(t, page.Data.NextOffset)
	assert.Equal(t, 2, *page.Data.NextOffset)

	resp = ts.api.Get("/api/v1/prompts?tags=debug&limit=2&offset=2", "Authorization: "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	decodeEnvelope(t, resp, &page)
	assert.Len(t, page.Data.Items, 1)
	assert.False(t, page.Data.HasMore)

	// A tag nobody uses matches nothing.
	resp = ts.api.Get("/api/v1/prompts?tags=nonexistent", "Authorization: "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	decodeEnvelope(t, resp, &page)
	assert.Empty(t, page.Data.Items)
	assert.False(t, page.Data.HasMore)
}

func TestUpdatePrompt(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.setupRootUser(t)

	created := ts.createPrompt(t, token, map[string]any{
		"content": "v1 content",
		"tags":    []string{"draft"},
	})

	resp := ts.api.Patch("/api/v1/prompts/"+created.ID, "Authorization: "+token, map[string]any{
		"content": "v2 content",
		"tags":    []string{"final"},
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[service.PromptView]
	decodeEnvelope(t, resp, &envelope)
	assert.Equal(t, "v2 content", envelope.Data.Content)
	require.Len(t, envelope.Data.Tags, 1)
	assert.Equal(t, "final", envelope.Data.Tags[0].Name)
}

func TestDeletePrompt(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.setupRootUser(t)

	created := ts.createPrompt(t, token, map[string]any{
		"content": "to be deleted",
	})

	resp := ts.api.Delete("/api/v1/prompts/"+created.ID, "Authorization: "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/prompts/"+created.ID, "Authorization: "+token)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// Second delete looks like a missing prompt.
	resp = ts.api.Delete("/api/v1/prompts/"+created.ID, "Authorization: "+token)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
