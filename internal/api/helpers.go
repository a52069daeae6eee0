package api

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/promptstashapp/promptstash-server/internal/domain"
)

// authenticateRequest validates the Authorization header and returns the user.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (*domain.User, error) {
	if authHeader == "" {
		return nil, huma.Error401Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, huma.Error401Unauthorized("Invalid authorization header format")
	}

	user, _, err := s.services.Auth.VerifyAccessToken(ctx, parts[1])
	if err != nil {
		return nil, huma.Error401Unauthorized("Invalid or expired token")
	}

	return user, nil
}

// extractIP picks the client IP from forwarding headers.
// X-Forwarded-For may contain a chain; the first entry is the client.
func extractIP(forwardedFor, realIP string) string {
	if forwardedFor != "" {
		if i := strings.IndexByte(forwardedFor, ','); i >= 0 {
			return strings.TrimSpace(forwardedFor[:i])
		}
		return strings.TrimSpace(forwardedFor)
	}
	return realIP
}

// splitCSV splits a comma-separated query parameter into trimmed values.
// Empty entries are dropped.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
