package errors

import (
	"strings"
	"unicode"
)

// MaxNameLength is the longest accepted entity name.
const MaxNameLength = 64

// ValidateName validates the name of a stored alphabet, matrix or keyboard.
// Names double as file names in the file store and as document IDs in
// MongoDB, so the rules are conservative:
//   - No empty names
//   - Maximum length of MaxNameLength characters
//   - No control characters or whitespace
//   - No path separators or traversal sequences
//   - No leading dot (hidden files)
func ValidateName(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "%s name cannot be empty", kind)
	}

	if len(name) > MaxNameLength {
		return New(ErrCodeInvalidName, "%s name too long (max %d characters)", kind, MaxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidName, "%s name contains whitespace or control characters", kind)
		}
	}

	for _, pattern := range []string{"..", "/", "\\", ":"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "%s name contains invalid characters: %q", kind, pattern)
		}
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidName, "%s name cannot start with a dot", kind)
	}

	return nil
}

// ValidatePath validates a user-supplied output path.
// It rejects empty paths, null bytes and control characters.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	return nil
}
