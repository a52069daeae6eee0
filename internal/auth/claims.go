package auth

import (
	"time"
)

// AccessClaims represents the claims stored in a PASETO access token.
// These are encrypted in v4.local tokens, so they're not readable without the key.
type AccessClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	IsRoot bool   `json:"is_root"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// DeviceInfo represents information sent by the client about itself.
// This gets stored in Session and is used for display and security.
type DeviceInfo struct {
	ClientName    string `json:"client_name"`    // promptstash-tui, PromptStash Web
	ClientVersion string `json:"client_version"` // 1.0.0
	Platform      string `json:"platform"`       // macOS, Linux, Windows, Web

	// Device identification (optional, user-set)
	DeviceName string `json:"device_name"` // Work Laptop
}

// IsValid performs basic validation on the device info.
func (d DeviceInfo) IsValid() bool {
	// At minimum, we need a client name and platform
	return d.ClientName != "" && d.Platform != ""
}
