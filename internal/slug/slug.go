// Package slug builds URL-friendly identifiers for articles and categories.
package slug

import (
	"regexp"
	"strings"
)

var (
	nonSlugChars = regexp.MustCompile(`[^\p{L}\p{N}\s-]`)
	separators   = regexp.MustCompile(`[\s-]+`)
)

// Generate lowercases s, drops everything but letters and digits of any
// script, and joins words with single hyphens. "Breaking: Elections 2026!"
// becomes "breaking-elections-2026" and "Новости дня" becomes "новости-дня".
func Generate(s string) string {
	out := strings.ToLower(strings.TrimSpace(s))
	out = nonSlugChars.ReplaceAllString(out, "")
	out = separators.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}
