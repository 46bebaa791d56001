package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidatePersonID validates a person identifier taken from user input
// (command-line flags, URL path segments, family files).
//
// IDs must be non-empty, at most 128 characters, and free of control
// characters and path separators.
func ValidatePersonID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "person id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "person id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "person id contains invalid control characters")
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "person id cannot contain path separators")
	}

	return nil
}

// ValidateFamilyFilename checks that path names a JSON or TOML family file.
func ValidateFamilyFilename(path string) error {
	if path == "" {
		return New(ErrCodeInvalidFile, "family file path cannot be empty")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".toml":
		return nil
	default:
		return New(ErrCodeInvalidFile, "unsupported family file %q (want .json or .toml)", filepath.Base(path))
	}
}

// ValidateRedisURL validates a Redis connection URL.
// Only the redis:// and rediss:// schemes are accepted.
func ValidateRedisURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "redis URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "redis://") && !strings.HasPrefix(rawURL, "rediss://") {
		return New(ErrCodeInvalidInput, "redis URL must use redis or rediss scheme")
	}

	return nil
}
