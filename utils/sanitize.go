package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.UGCPolicy()

// Sanitize cleans HTML content to prevent XSS attacks. Applied to all
// user-entered rich text: check-in notes, workout logs, posts, comments.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
