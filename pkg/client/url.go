package client

import (
	"net/url"
	"strings"
)

// Neither "{}" nor "%s" can occur in a percent-encoded path, while "%d" can
// (as in "%de"), so it is tried last.
var placeholders = []string{"{}", "%s", "%d"}

// FormatURL fills the single placeholder of an address template with id.
// Both brace ("{}") and Go ("%s", "%d") placeholders are accepted; the id is
// path-escaped. A template without a placeholder gets the id appended.
func FormatURL(template string, id string) string {
	escaped := url.PathEscape(id)
	for _, placeholder := range placeholders {
		if strings.Contains(template, placeholder) {
			return strings.Replace(template, placeholder, escaped, 1)
		}
	}
	return template + escaped
}
