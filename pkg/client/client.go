// Package client provides a typed HTTP client for the PromptStash API.
// Responses are unwrapped from the versioned envelope; failures come back
// as *APIError carrying the server's error code.
package client

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 30 * time.Second

// Client talks to a PromptStash server.
type Client struct {
	http *resty.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient}
}

// SetToken sets the bearer access token used on subsequent requests.
func (c *Client) SetToken(token string) {
	c.http.SetAuthToken(token)
}

// Setup creates the initial root account. Fails with a CONFLICT error once
// the server is configured.
func (c *Client) Setup(ctx context.Context, req SetupRequest) (*AuthResponse, error) {
	return decode[*AuthResponse](c.do(ctx, "POST", "/api/v1/auth/setup", req, nil))
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	return decode[*AuthResponse](c.do(ctx, "POST", "/api/v1/auth/login", req, nil))
}

// Refresh exchanges a refresh token for a fresh token pair. The old refresh
// token is dead after this call.
func (c *Client) Refresh(ctx context.Context, refreshToken string, device DeviceInfo) (*AuthResponse, error) {
	body := map[string]any{
		"refresh_token": refreshToken,
		"device_info":   device,
	}
	return decode[*AuthResponse](c.do(ctx, "POST", "/api/v1/auth/refresh", body, nil))
}

// Logout revokes a session.
func (c *Client) Logout(ctx context.Context, sessionID string) error {
	_, err := decode[struct {
		Message string `json:"message"`
	}](c.do(ctx, "POST", "/api/v1/auth/logout", map[string]string{"session_id": sessionID}, nil))
	return err
}

// CurrentUser returns the authenticated account.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	return decode[*User](c.do(ctx, "GET", "/api/v1/users/me", nil, nil))
}

// ListSessions lists the account's active sessions.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	out, err := decode[struct {
		Sessions []Session `json:"sessions"`
	}](c.do(ctx, "GET", "/api/v1/users/me/sessions", nil, nil))
	if err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

// ListPrompts returns one page of prompts matching the filter.
func (c *Client) ListPrompts(ctx context.Context, opts ListPromptsOptions) (*PromptPage, error) {
	query := url.Values{}
	if opts.Query != "" {
		query.Set("query", opts.Query)
	}
	if len(opts.Tags) > 0 {
		query.Set("tags", strings.Join(opts.Tags, ","))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	return decode[*PromptPage](c.do(ctx, "GET", "/api/v1/prompts", nil, query))
}

// CreatePrompt creates a prompt and returns the stored view.
func (c *Client) CreatePrompt(ctx context.Context, req CreatePromptRequest) (*Prompt, error) {
	return decode[*Prompt](c.do(ctx, "POST", "/api/v1/prompts", req, nil))
}

// GetPrompt fetches one prompt by id.
func (c *Client) GetPrompt(ctx context.Context, id string) (*Prompt, error) {
	return decode[*Prompt](c.do(ctx, "GET", "/api/v1/prompts/"+url.PathEscape(id), nil, nil))
}

// UpdatePrompt patches a prompt and returns the updated view.
func (c *Client) UpdatePrompt(ctx context.Context, id string, req UpdatePromptRequest) (*Prompt, error) {
	return decode[*Prompt](c.do(ctx, "PATCH", "/api/v1/prompts/"+url.PathEscape(id), req, nil))
}

// DeletePrompt soft-deletes a prompt. Deleting twice returns NotFound.
func (c *Client) DeletePrompt(ctx context.Context, id string) error {
	_, err := decode[struct {
		Message string `json:"message"`
	}](c.do(ctx, "DELETE", "/api/v1/prompts/"+url.PathEscape(id), nil, nil))
	return err
}

// ListTags lists the account's tags, optionally filtered by a substring.
func (c *Client) ListTags(ctx context.Context, query string) ([]Tag, error) {
	values := url.Values{}
	if query != "" {
		values.Set("query", query)
	}
	out, err := decode[struct {
		Tags []Tag `json:"tags"`
	}](c.do(ctx, "GET", "/api/v1/tags", nil, values))
	if err != nil {
		return nil, err
	}
	return out.Tags, nil
}

// EnsureTags resolves tag names to tags, creating or reviving as needed.
func (c *Client) EnsureTags(ctx context.Context, names []string) ([]Tag, error) {
	out, err := decode[struct {
		Tags []Tag `json:"tags"`
	}](c.do(ctx, "POST", "/api/v1/tags", map[string][]string{"names": names}, nil))
	if err != nil {
		return nil, err
	}
	return out.Tags, nil
}

// PruneTags removes tags no live prompt references and reports how many.
func (c *Client) PruneTags(ctx context.Context) (int, error) {
	out, err := decode[struct {
		Pruned int `json:"pruned"`
	}](c.do(ctx, "POST", "/api/v1/tags/prune", nil, nil))
	if err != nil {
		return 0, err
	}
	return out.Pruned, nil
}

// Health returns the server health report.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	return decode[*Health](c.do(ctx, "GET", "/health", nil, nil))
}

func (c *Client) do(ctx context.Context, method, path string, body any, query url.Values) (*resty.Response, error) {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// decode unwraps the response envelope, turning failure envelopes into
// *APIError values.
func decode[T any](resp *resty.Response, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}

	var env struct {
		V       int    `json:"v"`
		Success bool   `json:"success"`
		Data    T      `json:"data"`
		Error   string `json:"error"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return zero, fmt.Errorf("decode response (status %d): %w", resp.StatusCode(), err)
	}
	if !env.Success {
		return zero, &APIError{
			Status:  resp.StatusCode(),
			Code:    env.Code,
			Message: env.Message,
			Detail:  env.Error,
		}
	}
	return env.Data, nil
}
