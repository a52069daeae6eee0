// Package normalize provides canonical forms for user-supplied text.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// lower is a language-neutral case folder. Shared because cases.Caser
// construction is not free and the folder itself is stateless per String call.
var lower = cases.Lower(language.Und)

// TagName returns the canonical form of a tag name: NFC-normalized,
// trimmed, lower-cased. Returns "" for names that are empty after trimming.
// The canonical form is the uniqueness key for (owner, name).
func TagName(raw string) string {
	s := norm.NFC.String(raw)
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return lower.String(s)
}

// TagNames canonicalizes a list of tag names, dropping empties and
// duplicates. First-seen order is preserved so callers get deterministic
// association order.
func TagNames(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, name := range raw {
		n := TagName(name)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Query trims a free-text search query. An all-whitespace query is
// treated the same as no query at all.
func Query(raw string) string {
	return strings.TrimSpace(raw)
}

// Title trims a prompt title and collapses whitespace-only titles to "",
// which the storage layer stores as absent.
func Title(raw string) string {
	return strings.TrimSpace(raw)
}
