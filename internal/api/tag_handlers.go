package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/promptstashapp/promptstash-server/internal/domain"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns the current user's tags, optionally filtered by a name substring",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "ensureTags",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags",
		Summary:     "Ensure tags",
		Description: "Resolves tag names to tags, creating any that don't exist yet",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleEnsureTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "pruneTags",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags/prune",
		Summary:     "Prune unused tags",
		Description: "Removes tags that no prompt references anymore",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePruneTags)
}

// === DTOs ===

// ListTagsInput contains parameters for listing tags.
type ListTagsInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"query" doc:"Case-insensitive name substring filter"`
}

// ListTagsResponse contains a list of tags.
type ListTagsResponse struct {
	Tags []domain.TagItem `json:"tags" doc:"Tags ordered by most recently updated"`
}

// ListTagsOutput wraps the list tags response for Huma.
type ListTagsOutput struct {
	Body ListTagsResponse
}

// EnsureTagsRequest is the request body for ensuring tags exist.
type EnsureTagsRequest struct {
	Names []string `json:"names" doc:"Tag names to resolve or create"`
}

// EnsureTagsInput wraps the ensure request for Huma.
type EnsureTagsInput struct {
	Authorization string `header:"Authorization"`
	Body          EnsureTagsRequest
}

// PruneTagsInput contains parameters for pruning tags.
type PruneTagsInput struct {
	Authorization string `header:"Authorization"`
}

// PruneTagsResponse reports how many tags were removed.
type PruneTagsResponse struct {
	Pruned int `json:"pruned" doc:"Number of tags removed"`
}

// PruneTagsOutput wraps the prune response for Huma.
type PruneTagsOutput struct {
	Body PruneTagsResponse
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, input *ListTagsInput) (*ListTagsOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	tags, err := s.services.Tag.List(ctx, user.ID, input.Query)
	if err != nil {
		return nil, err
	}

	return &ListTagsOutput{Body: ListTagsResponse{Tags: tags}}, nil
}

func (s *Server) handleEnsureTags(ctx context.Context, input *EnsureTagsInput) (*ListTagsOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	tags, err := s.services.Tag.Ensure(ctx, user.ID, input.Body.Names)
	if err != nil {
		return nil, err
	}

	return &ListTagsOutput{Body: ListTagsResponse{Tags: tags}}, nil
}

func (s *Server) handlePruneTags(ctx context.Context, input *PruneTagsInput) (*PruneTagsOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	pruned, err := s.services.Tag.PruneUnused(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &PruneTagsOutput{Body: PruneTagsResponse{Pruned: pruned}}, nil
}
