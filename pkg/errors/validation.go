package errors

import (
	"strings"
	"unicode"
)

// maxLabelLength bounds node labels read from metadata tables.
const maxLabelLength = 256

// ValidateLabel validates a node label read from a metadata table.
//
// Labels end up in SVG text and JSON output, so the rules are conservative:
//   - No empty names (after trimming whitespace)
//   - No control characters
//   - Maximum length of 256 characters
func ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return New(ErrCodeInvalidInput, "node label cannot be empty")
	}

	if len(label) > maxLabelLength {
		return New(ErrCodeInvalidInput, "node label too long (max %d characters)", maxLabelLength)
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node label %q contains control characters", label)
		}
	}

	return nil
}

// ValidateArtifactName validates a file name stem used for rendered output.
// It ensures the name is a simple basename without path components so that
// a title cannot write outside the output directory.
func ValidateArtifactName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "artifact name cannot be empty")
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "artifact name cannot contain path separators: %q", name)
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidPath, "artifact name cannot contain path traversal sequences (..)")
	}

	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "artifact name contains invalid characters")
		}
	}

	return nil
}

// ValidateURL validates a cache URL string.
// It ensures the URL uses a scheme understood by the cache backends.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "redis://") && !strings.HasPrefix(rawURL, "rediss://") {
		return New(ErrCodeInvalidInput, "URL must use redis or rediss scheme")
	}

	return nil
}
