package errors

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Depth bounds accepted from users. The engine itself clamps anything below
// one, but the CLI and API reject out-of-range values early.
const (
	MinDepth = 1
	MaxDepth = 10
)

const (
	maxTopicLength = 200
	maxMapIDLength = 200
	maxPathLength  = 500
)

// ValidateDepth checks that depth is within [MinDepth, MaxDepth].
func ValidateDepth(depth int) error {
	if depth < MinDepth || depth > MaxDepth {
		return New(ErrCodeInvalidDepth, "depth must be between %d and %d, got %d", MinDepth, MaxDepth, depth)
	}
	return nil
}

// ValidateTopic checks a generation topic.
//
// Validation rules:
//   - Topic cannot be blank
//   - Maximum length of 200 characters
//   - No control characters
func ValidateTopic(topic string) error {
	if strings.TrimSpace(topic) == "" {
		return New(ErrCodeInvalidInput, "topic cannot be empty")
	}
	if utf8.RuneCountInString(topic) > maxTopicLength {
		return New(ErrCodeInvalidInput, "topic too long (max %d characters)", maxTopicLength)
	}
	for _, r := range topic {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "topic contains invalid control characters")
		}
	}
	return nil
}

// ValidateMapID validates a stored map identifier.
//
// Map IDs end up as file names in the file store, so anything that could
// escape the store directory is rejected. Letters, digits, spaces, dashes,
// underscores and single dots are allowed, which covers both the
// "<class>-<millis>" and "map-<uuid>" shapes.
func ValidateMapID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidMapID, "map id cannot be empty")
	}
	if len(id) > maxMapIDLength {
		return New(ErrCodeInvalidMapID, "map id too long (max %d characters)", maxMapIDLength)
	}
	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidMapID, "map id cannot start or end with whitespace")
	}
	if strings.Contains(id, "..") || strings.HasPrefix(id, ".") {
		return New(ErrCodeInvalidMapID, "map id contains invalid characters: %q", id)
	}
	for _, r := range id {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
		case r == ' ', r == '-', r == '_', r == '.':
		default:
			return New(ErrCodeInvalidMapID, "map id contains invalid character %q", r)
		}
	}
	return nil
}

// ValidatePath validates a file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateFormat checks that format is one of the allowed values.
func ValidateFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
}
