// Package markdown normalizes pasted rich-text prompt content to Markdown.
package markdown

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// htmlTagPattern matches common HTML tags to detect if a string contains HTML.
// Looks for opening tags like <p>, <br>, <div>, <b>, etc.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|pre|code|blockquote)[\s>/]`)

// ContainsHTML checks if a string appears to contain HTML markup.
// Returns true if common HTML tags are detected.
func ContainsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// FromHTML converts HTML content to Markdown. Plain text passes through
// unchanged, so it is safe to run on every submitted prompt body.
func FromHTML(s string) string {
	if s == "" || !ContainsHTML(s) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		// If conversion fails, return the original string
		return s
	}

	return strings.TrimSpace(markdown)
}
