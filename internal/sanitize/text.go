package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// StrictPolicy removes all HTML tags and attributes and escapes what is left.
var StrictPolicy = bluemonday.StrictPolicy()

// Text returns input as HTML-safe text. Markup is escaped, not removed, so
// "<b>hi</b>" renders literally. The policy pass guarantees no tag survives.
// Use for: visitor-supplied text embedded in outgoing HTML email.
func Text(input string) string {
	return StrictPolicy.Sanitize(html.EscapeString(input))
}

// Lines is Text for multi-line input: line breaks survive as <br>.
func Lines(input string) string {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	return strings.ReplaceAll(Text(input), "\n", "<br>")
}
