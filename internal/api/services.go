package api

import (
	"github.com/promptstashapp/promptstash-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth    *service.AuthService
	Session *service.SessionService
	Prompt  *service.PromptService
	Tag     *service.TagService
}
