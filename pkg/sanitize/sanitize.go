// Package sanitize normalizes definition text before it is written to the store.
package sanitize

import (
	"regexp"
	"strings"
)

// markupRe matches inline image and anchor tags, opening and closing forms.
var markupRe = regexp.MustCompile(`<img\b[^>]*>|</img>|<a\b[^>]*>|</a>`)

// The two quote passes must run in this order: ' -> " first, then " -> \".
var (
	singleToDouble = strings.NewReplacer(`'`, `"`)
	escapeDouble   = strings.NewReplacer(`"`, `\"`)
)

// Sanitize turns single quotes into double quotes, escapes every double quote,
// and when strip is set trims the result and removes <img> and <a> tags.
//
// Escaping runs before stripping, so the tag pattern sees escaped attribute quotes.
func Sanitize(raw string, strip bool) string {
	out := escapeDouble.Replace(singleToDouble.Replace(raw))
	if strip {
		out = markupRe.ReplaceAllString(strings.TrimSpace(out), "")
	}
	return out
}
