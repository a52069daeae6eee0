package client

import "time"

// Tag is a tag owned by the authenticated user.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Prompt is a stored prompt with its resolved tags.
type Prompt struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	Tags      []Tag     `json:"tags"`
	OwnerName string    `json:"owner_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PromptPage is one page of a prompt listing. NextOffset is nil when the
// listing is exhausted.
type PromptPage struct {
	Items      []Prompt `json:"items"`
	HasMore    bool     `json:"has_more"`
	NextOffset *int     `json:"next_offset"`
}

// User is the authenticated account.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	IsRoot      bool      `json:"is_root"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	LastLoginAt time.Time `json:"last_login_at"`
}

// Session is an active device session.
type Session struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Platform   string    `json:"platform"`
	DeviceName string    `json:"device_name"`
	IPAddress  string    `json:"ip_address"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// DeviceInfo identifies the client device during login and refresh.
type DeviceInfo struct {
	ClientName    string `json:"client_name,omitempty"`
	ClientVersion string `json:"client_version,omitempty"`
	Platform      string `json:"platform,omitempty"`
	DeviceName    string `json:"device_name,omitempty"`
}

// SetupRequest creates the initial root account.
type SetupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest authenticates with credentials and device info.
type LoginRequest struct {
	Email      string     `json:"email"`
	Password   string     `json:"password"`
	DeviceInfo DeviceInfo `json:"device_info,omitempty"`
}

// AuthResponse carries a fresh token pair and the authenticated user.
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	SessionID    string `json:"session_id"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

// CreatePromptRequest creates a new prompt.
type CreatePromptRequest struct {
	Title   string   `json:"title,omitempty"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

// UpdatePromptRequest patches a prompt. Nil fields are left unchanged;
// a non-nil empty Tags slice clears all tags.
type UpdatePromptRequest struct {
	Title   *string   `json:"title,omitempty"`
	Content *string   `json:"content,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
}

// ListPromptsOptions filters and paginates a prompt listing.
type ListPromptsOptions struct {
	Query  string
	Tags   []string
	Offset int
	Limit  int
}

// ComponentHealth is the status of one server component.
type ComponentHealth struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// Health is the server health report.
type Health struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
}
