package service

import (
	"context"
	"encoding/hex"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/promptstashapp/promptstash-server/internal/auth"
	"github.com/promptstashapp/promptstash-server/internal/domain"
	"github.com/promptstashapp/promptstash-server/internal/id"
	"github.com/promptstashapp/promptstash-server/internal/store/sqlite"
)

// testEnv wires the full service stack against a temporary database.
type testEnv struct {
	store    *sqlite.Store
	auth     *AuthService
	sessions *SessionService
	prompts  *PromptService
	tags     *TagService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	s, err := sqlite.Open(filepath.Join(dir, "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(
		hex.EncodeToString(key),
		15*time.Minute,
		30*24*time.Hour,
	)
	require.NoError(t, err)

	sessionService := NewSessionService(s, tokenService, nil)

	return &testEnv{
		store:    s,
		auth:     NewAuthService(s, tokenService, sessionService, nil),
		sessions: sessionService,
		prompts:  NewPromptService(s, false, nil),
		tags:     NewTagService(s, nil),
	}
}

// createTestUser inserts a user directly in the store.
func createTestUser(t *testing.T, env *testEnv, email, passwordHash string) *domain.User {
	t.Helper()

	now := time.Now()
	user := &domain.User{
		ID:           id.MustGenerate("user"),
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  "Test User",
		CreatedAt:    now,
		UpdatedAt:    now,
		LastLoginAt:  now,
	}
	require.NoError(t, env.store.CreateUser(context.Background(), user))
	return user
}

// testDevice is a valid device info payload for login requests.
func testDevice() auth.DeviceInfo {
	return auth.DeviceInfo{
		ClientName:    "PromptStash Desktop",
		ClientVersion: "1.0.0",
		Platform:      "macOS",
		DeviceName:    "Test Machine",
	}
}
