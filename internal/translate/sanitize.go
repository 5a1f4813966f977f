package translate

import (
	"regexp"
	"strings"
)

var fenceWrapperPattern = regexp.MustCompile("(?s)\\A```(?:mdx|markdown|md)?\\n(.*?)\\n```\\z")

// Sanitize trims the backend output and removes a fence wrapping the whole
// document. Fences inside the document are left alone.
func Sanitize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if m := fenceWrapperPattern.FindStringSubmatch(trimmed); m != nil {
		return m[1]
	}
	return trimmed
}
