package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxNameLength bounds object names and categories.
const MaxNameLength = 256

// ValidateObjectName validates an object name for safety before it is
// written into exports, cache keys or DOT identifiers.
//
// The validation rules are intentionally conservative:
//   - No control characters
//   - No null bytes
//   - Maximum length of 256 characters
//
// An empty name is not an error here; the layout engine skips unnamed
// objects with a warning.
func ValidateObjectName(name string) error {
	if len(name) > MaxNameLength {
		return New(ErrCodeInvalidDocument, "object name too long (max %d characters)", MaxNameLength)
	}

	// Check for control characters and null bytes
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDocument, "object name %q contains invalid control characters", name)
		}
	}

	return nil
}

// categoryRegex matches category names: a letter or digit followed by
// letters, digits, spaces, dots, dashes and underscores.
var categoryRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ._-]*$`)

// ValidateCategory validates an object category. Empty categories are
// allowed and fall back to the default category.
func ValidateCategory(category string) error {
	if category == "" {
		return nil
	}
	if len(category) > MaxNameLength {
		return New(ErrCodeInvalidDocument, "category too long (max %d characters)", MaxNameLength)
	}
	if !categoryRegex.MatchString(category) {
		return New(ErrCodeInvalidDocument, "invalid category: %q", category)
	}
	return nil
}

// ValidateRedisURL validates a Redis connection URL.
// It ensures the URL uses the redis or rediss scheme and names a host.
func ValidateRedisURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidOption, "redis URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	rest, ok := strings.CutPrefix(rawURL, "redis://")
	if !ok {
		rest, ok = strings.CutPrefix(rawURL, "rediss://")
	}
	if !ok {
		return New(ErrCodeInvalidOption, "redis URL must use redis or rediss scheme")
	}
	if rest == "" || strings.HasPrefix(rest, "/") {
		return New(ErrCodeInvalidOption, "redis URL must name a host")
	}

	return nil
}
