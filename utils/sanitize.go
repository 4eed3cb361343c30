package utils

import "github.com/microcosm-cc/bluemonday"

// Display names and avatar URLs are plain text; strip all markup.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize cleans user-supplied text to prevent stored XSS.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
