package store

// PromptFilter narrows a prompt listing. Query and TagIDs combine with AND;
// multiple tag IDs combine with OR, so a prompt matches if it carries any of
// the given tags. An empty filter lists everything the owner has.
type PromptFilter struct {
	// Query is matched case-insensitively against title and content.
	Query string

	// TagIDs restricts results to prompts tagged with at least one of these.
	TagIDs []string

	Page PageParams
}
