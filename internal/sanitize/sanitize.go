// Package sanitize strips markup from user-written text such as workout
// comments and trainer reviews before it is stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text removes every HTML element (script and style bodies included) and
// returns the remaining plain text, trimmed. Entities are decoded so the
// stored value round-trips as ordinary text.
func Text(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
