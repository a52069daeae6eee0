package domain

import "time"

// Session represents an active user session with refresh token.
// Each device gets its own session - you can see what's connected.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"refresh_token_hash,omitempty"` // Stored hashed, filter from API responses
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
	IPAddress        string    `json:"ip_address,omitempty"`

	// Device information - structured data from client
	ClientName    string `json:"client_name"`           // promptstash-tui, PromptStash Web
	ClientVersion string `json:"client_version"`        // 1.0.0
	Platform      string `json:"platform"`              // macOS, Linux, Windows, Web
	DeviceName    string `json:"device_name,omitempty"` // user-set, optional
}

// Touch updates the session's last seen timestamp.
func (s *Session) Touch() {
	s.LastSeenAt = time.Now()
}

// IsExpired reports whether the session's refresh window has passed.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
