package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/setup", map[string]any{
		"email":        "admin@example.com",
		"password":     "SecurePassword123!",
		"display_name": "Admin User",
	})
	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[AuthResponse]
	decodeEnvelope(t, resp, &envelope)

	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.NotEmpty(t, envelope.Data.RefreshToken)
	assert.Equal(t, "Bearer", envelope.Data.TokenType)
	assert.Equal(t, "admin@example.com", envelope.Data.User.Email)
	assert.True(t, envelope.Data.User.IsRoot)
	assert.Positive(t, envelope.Data.ExpiresIn)
}

func TestSetup_AlreadyConfigured(t *testing.T) {
	ts := setupTestServer(t)
	ts.setupRootUser(t)

	resp := ts.api.Post("/api/v1/auth/setup", map[string]any{
		"email":        "admin2@example.com",
		"password":     "SecurePassword123!",
		"display_name": "Second Admin",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)

	var envelope testEnvelope[struct{}]
	decodeEnvelope(t, resp, &envelope)
	assert.False(t, envelope.Success)
	assert.Equal(t, "CONFLICT", envelope.Code)
}

func TestSetup_ValidationErrors(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
	}{
		{
			name: "missing email",
			body: map[string]any{
				"password":     "SecurePassword123!",
				"display_name": "Admin",
			},
			wantStatus: http.StatusUnprocessableEntity, // Huma returns 422 for missing required fields
		},
		{
			name: "invalid email format",
			body: map[string]any{
				"email":        "not-an-email",
				"password":     "SecurePassword123!",
				"display_name": "Admin",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "password too short",
			body: map[string]any{
				"email":        "admin@example.com",
				"password":     "short",
				"display_name": "Admin",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "empty display name",
			body: map[string]any{
				"email":        "admin@example.com",
				"password":     "SecurePassword123!",
				"display_name": "",
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/auth/setup", tt.body)
			assert.Equal(t, tt.wantStatus, resp.Code)
		})
	}
}

func TestLogin_Success(t *testing.T) {
	ts := setupTestServer(t)
	ts.setupRootUser(t)

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "admin@example.com",
		"password": "SecurePassword123!",
		"device_info": map[string]any{
			"client_name": "PromptStash Desktop",
			"platform":    "macOS",
		},
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[AuthResponse]
	decodeEnvelope(t, resp, &envelope)
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.NotEmpty(t, envelope.Data.SessionID)
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := setupTestServer(t)
	ts.setupRootUser(t)

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "admin@example.com",
		"password": "WrongPassword123!",
		"device_info": map[string]any{
			"client_name": "PromptStash Desktop",
			"platform":    "macOS",
		},
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	var envelope testEnvelope[struct{}]
	decodeEnvelope(t, resp, &envelope)
	assert.Equal(t, "INVALID_CREDENTIALS", envelope.Code)
}

func TestLogin_MissingDeviceInfo(t *testing.T) {
	ts := setupTestServer(t)
	ts.setupRootUser(t)

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "admin@example.com",
		"password": "SecurePassword123!",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRefreshAndLogout(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/setup", map[string]any{
		"email":        "admin@example.com",
		"password":     "SecurePassword123!",
		"display_name": "Admin",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var setup testEnvelope[AuthResponse]
	decodeEnvelope(t, resp, &setup)

	// Rotate tokens.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": setup.Data.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var refreshed testEnvelope[AuthResponse]
	decodeEnvelope(t, resp, &refreshed)
	assert.Equal(t, setup.Data.SessionID, refreshed.Data.SessionID)
	assert.NotEqual(t, setup.Data.RefreshToken, refreshed.Data.RefreshToken)

	// The replaced token no longer works.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": setup.Data.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	// Logout kills the session.
	resp = ts.api.Post("/api/v1/auth/logout", map[string]any{
		"session_id": refreshed.Data.SessionID,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": refreshed.Data.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
