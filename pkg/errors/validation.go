package errors

import (
	"strings"
	"unicode"
)

// ValidateRoomID validates a room identifier for safety and correctness.
// It rejects IDs that could be used for path traversal or key injection
// when used in store keys or file names.
//
// The validation rules are intentionally conservative:
//   - No empty IDs
//   - No control characters
//   - No path traversal sequences (.., //, backslash)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidateRoomID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidRoom, "room ID cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidRoom, "room ID too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidRoom, "room ID contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidRoom, "room ID contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateDirection validates a direction label. Custom direction names are
// allowed (the exit model is an open set), but they must be usable inside
// deterministic edge IDs of the form "<source>-<direction>-<target>".
func ValidateDirection(dir string) error {
	if dir == "" {
		return New(ErrCodeInvalidDirection, "direction cannot be empty")
	}

	if len(dir) > 64 {
		return New(ErrCodeInvalidDirection, "direction too long (max 64 characters)")
	}

	for _, r := range dir {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidDirection, "direction contains invalid characters")
		}
	}

	return nil
}

// ValidateWorldFilename validates a world filename for safety.
// It ensures the filename is a simple basename without path components.
func ValidateWorldFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidWorld, "world filename cannot be empty")
	}

	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidWorld, "world filename cannot contain path separators")
	}

	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidWorld, "world filename cannot be a hidden file")
	}

	return nil
}

// ValidateWorldID validates a world identifier used to namespace stored
// change-sets. The same rules as room IDs apply.
func ValidateWorldID(id string) error {
	if err := ValidateRoomID(id); err != nil {
		return New(ErrCodeInvalidWorld, "invalid world ID: %s", UserMessage(err))
	}
	return nil
}
