package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// sanitizeText strips markup from user supplied plain text. bluemonday
// escapes the text it keeps, so entities are decoded back afterwards.
func sanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// requiredText sanitizes s and rejects a value that ends up empty.
func requiredText(field, s string) (string, error) {
	clean := sanitizeText(s)
	if clean == "" {
		return "", invalid(field, "this field may not be blank")
	}
	return clean, nil
}
