package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/promptstashapp/promptstash-server/internal/service"
)

func (s *Server) registerPromptRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPrompts",
		Method:      http.MethodGet,
		Path:        "/api/v1/prompts",
		Summary:     "List prompts",
		Description: "Returns a page of the current user's prompts, filtered by search text and tags",
		Tags:        []string{"Prompts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListPrompts)

	huma.Register(s.api, huma.Operation{
		OperationID: "createPrompt",
		Method:      http.MethodPost,
		Path:        "/api/v1/prompts",
		Summary:     "Create prompt",
		Description: "Creates a new prompt with optional tags",
		Tags:        []string{"Prompts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreatePrompt)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPrompt",
		Method:      http.MethodGet,
		Path:        "/api/v1/prompts/{id}",
		Summary:     "Get prompt",
		Description: "Returns a prompt by ID",
		Tags:        []string{"Prompts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetPrompt)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePrompt",
		Method:      http.MethodPatch,
		Path:        "/api/v1/prompts/{id}",
		Summary:     "Update prompt",
		Description: "Updates a prompt's title, content, or tags",
		Tags:        []string{"Prompts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdatePrompt)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePrompt",
		Method:      http.MethodDelete,
		Path:        "/api/v1/prompts/{id}",
		Summary:     "Delete prompt",
		Description: "Deletes a prompt",
		Tags:        []string{"Prompts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeletePrompt)
}

// === DTOs ===

// ListPromptsInput contains parameters for listing prompts.
type ListPromptsInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"query" doc:"Search text matched against title and content"`
	Tags          string `query:"tags" doc:"Comma-separated tag names; prompts with any of them match"`
	Offset        int    `query:"offset" minimum:"0" doc:"Number of prompts to skip"`
	Limit         int    `query:"limit" minimum:"0" maximum:"200" doc:"Page size (default 50)"`
}

// ListPromptsOutput wraps the prompt page for Huma.
type ListPromptsOutput struct {
	Body service.PromptPage
}

// CreatePromptRequest is the request body for creating a prompt.
type CreatePromptRequest struct {
	Title   string   `json:"title,omitempty" doc:"Optional title"`
	Content string   `json:"content" doc:"Prompt text"`
	Tags    []string `json:"tags,omitempty" doc:"Tag names to attach"`
}

// CreatePromptInput wraps the create request for Huma.
type CreatePromptInput struct {
	Authorization string `header:"Authorization"`
	Body          CreatePromptRequest
}

// PromptOutput wraps a single prompt view for Huma.
type PromptOutput struct {
	Body service.PromptView
}

// GetPromptInput contains parameters for getting a prompt.
type GetPromptInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Prompt ID"`
}

// UpdatePromptRequest is the request body for updating a prompt.
// Omitted fields are left unchanged.
type UpdatePromptRequest struct {
	Title   *string   `json:"title,omitempty" doc:"New title; empty string clears it"`
	Content *string   `json:"content,omitempty" doc:"New prompt text"`
	Tags    *[]string `json:"tags,omitempty" doc:"Replacement tag names; empty list clears tags"`
}

// UpdatePromptInput wraps the update request for Huma.
type UpdatePromptInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Prompt ID"`
	Body          UpdatePromptRequest
}

// DeletePromptInput contains parameters for deleting a prompt.
type DeletePromptInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Prompt ID"`
}

// === Handlers ===

func (s *Server) handleListPrompts(ctx context.Context, input *ListPromptsInput) (*ListPromptsOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Prompt.List(ctx, user, service.ListRequest{
		Query:  input.Query,
		Tags:   splitCSV(input.Tags),
		Offset: input.Offset,
		Limit:  input.Limit,
	})
	if err != nil {
		return nil, err
	}

	return &ListPromptsOutput{Body: *page}, nil
}

func (s *Server) handleCreatePrompt(ctx context.Context, input *CreatePromptInput) (*PromptOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Prompt.Create(ctx, user, service.CreateRequest{
		Title:   input.Body.Title,
		Content: input.Body.Content,
		Tags:    input.Body.Tags,
	})
	if err != nil {
		return nil, err
	}

	return &PromptOutput{Body: *view}, nil
}

func (s *Server) handleGetPrompt(ctx context.Context, input *GetPromptInput) (*PromptOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Prompt.Get(ctx, user, input.ID)
	if err != nil {
		return nil, err
	}

	return &PromptOutput{Body: *view}, nil
}

func (s *Server) handleUpdatePrompt(ctx context.Context, input *UpdatePromptInput) (*PromptOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Prompt.Update(ctx, user, input.ID, service.UpdateRequest{
		Title:   input.Body.Title,
		Content: input.Body.Content,
		Tags:    input.Body.Tags,
	})
	if err != nil {
		return nil, err
	}

	return &PromptOutput{Body: *view}, nil
}

func (s *Server) handleDeletePrompt(ctx context.Context, input *DeletePromptInput) (*MessageOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Prompt.Delete(ctx, user, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Prompt deleted"}}, nil
}
