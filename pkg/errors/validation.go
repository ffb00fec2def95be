package errors

import (
	"strings"
	"unicode"
)

// maxAssetNameLength bounds asset names accepted from scene documents.
const maxAssetNameLength = 256

// ValidateAssetName validates an asset name taken from a scene document before
// it is used to probe the asset source.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No parent directory components
//   - No backslashes (Windows paths)
//   - Maximum length of 256 characters
//
// Leading slashes are tolerated; the asset store strips them before probing.
func ValidateAssetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidAssetName, "asset name cannot be empty")
	}

	if len(name) > maxAssetNameLength {
		return New(ErrCodeInvalidAssetName, "asset name too long (max %d characters)", maxAssetNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidAssetName, "asset name contains invalid control characters")
		}
	}

	if strings.Contains(name, "\\") {
		return New(ErrCodeInvalidAssetName, "asset name cannot contain backslashes")
	}

	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return New(ErrCodeInvalidAssetName, "asset name cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateClock checks that hour, minute and second are in range.
// Out-of-range components are reported, never wrapped.
func ValidateClock(hour, minute, second int) error {
	if hour < 0 || hour > 23 {
		return New(ErrCodeInvalidTime, "hour must be between 0 and 23, got %d", hour)
	}
	if minute < 0 || minute > 59 {
		return New(ErrCodeInvalidTime, "minute must be between 0 and 59, got %d", minute)
	}
	if second < 0 || second > 59 {
		return New(ErrCodeInvalidTime, "second must be between 0 and 59, got %d", second)
	}
	return nil
}
