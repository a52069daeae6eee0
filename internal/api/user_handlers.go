package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "listSessions",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me/sessions",
		Summary:     "List sessions",
		Description: "Returns the authenticated user's active sessions",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListSessions)
}

// GetCurrentUserInput contains parameters for the current user endpoint.
type GetCurrentUserInput struct {
	Authorization string `header:"Authorization"`
}

// UserOutput wraps the user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// ListSessionsInput contains parameters for listing sessions.
type ListSessionsInput struct {
	Authorization string `header:"Authorization"`
}

// SessionResponse contains session data in API responses.
type SessionResponse struct {
	ID         string    `json:"id" doc:"Session ID"`
	ClientName string    `json:"client_name,omitempty" doc:"Client name"`
	Platform   string    `json:"platform,omitempty" doc:"Platform"`
	DeviceName string    `json:"device_name,omitempty" doc:"Device name"`
	IPAddress  string    `json:"ip_address,omitempty" doc:"Last seen IP"`
	CreatedAt  time.Time `json:"created_at" doc:"Session creation time"`
	LastSeenAt time.Time `json:"last_seen_at" doc:"Last activity time"`
	ExpiresAt  time.Time `json:"expires_at" doc:"Session expiry time"`
}

// ListSessionsResponse contains a list of sessions.
type ListSessionsResponse struct {
	Sessions []SessionResponse `json:"sessions" doc:"Active sessions"`
}

// ListSessionsOutput wraps the sessions response for Huma.
type ListSessionsOutput struct {
	Body ListSessionsResponse
}

func (s *Server) handleGetCurrentUser(ctx context.Context, input *GetCurrentUserInput) (*UserOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleListSessions(ctx context.Context, input *ListSessionsInput) (*ListSessionsOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	sessions, err := s.services.Session.ListUserSessions(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]SessionResponse, len(sessions))
	for i, sess := range sessions {
		resp[i] = SessionResponse{
			ID:         sess.ID,
			ClientName: sess.ClientName,
			Platform:   sess.Platform,
			DeviceName: sess.DeviceName,
			IPAddress:  sess.IPAddress,
			CreatedAt:  sess.CreatedAt,
			LastSeenAt: sess.LastSeenAt,
			ExpiresAt:  sess.ExpiresAt,
		}
	}

	return &ListSessionsOutput{Body: ListSessionsResponse{Sessions: resp}}, nil
}
