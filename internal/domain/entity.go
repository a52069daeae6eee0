package domain

import "time"

// Entity provides common fields for owner-scoped records.
// Everything in PromptStash belongs to exactly one user; there is no
// sharing or cross-user visibility anywhere in the model.
type Entity struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	IsDeleted bool      `json:"is_deleted,omitempty"`
}

// Touch updates the UpdatedAt timestamp to the current time.
// Call this whenever the underlying entity changes.
func (e *Entity) Touch() {
	e.UpdatedAt = time.Now()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new entity.
func (e *Entity) InitTimestamps() {
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
}

// MarkDeleted soft-deletes the entity. Records are never physically
// removed; the flag keeps uniqueness and history intact.
func (e *Entity) MarkDeleted() {
	e.IsDeleted = true
	e.UpdatedAt = time.Now()
}
