package domain

// Tag is a user-scoped label for categorizing prompts.
// Name is the canonical form (trimmed, lower-cased) and is the source of
// truth; clients transform for display. (owner, name) is unique among all
// tags ever created for that owner, soft-deleted rows included; a reused
// name revives the old row instead of inserting a duplicate.
type Tag struct {
	Entity
	Name string `json:"name"`
}

// TagItem is the minimal tag shape handed to clients and used for
// building prompt associations.
type TagItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
