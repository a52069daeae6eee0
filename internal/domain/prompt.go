package domain

// Prompt is a free-text prompt record in a user's library.
// Title is optional; Content is required and non-empty after trimming.
// ID and OwnerID are immutable once created.
type Prompt struct {
	Entity
	Title   string `json:"title,omitempty"` // empty means absent
	Content string `json:"content"`
}

// HasTitle reports whether the prompt has a title set.
func (p *Prompt) HasTitle() bool {
	return p.Title != ""
}

// PromptTag is the many-to-many association between prompts and tags.
// The full set for a prompt is replaced (delete-all, reinsert) on every
// update; rows have no lifecycle of their own.
type PromptTag struct {
	PromptID string `json:"prompt_id"`
	TagID    string `json:"tag_id"`
}
