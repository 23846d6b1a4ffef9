package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateName validates an identifier used for parts, fixtures and zones.
// Names end up in solver model files, output documents and drawings, so
// they must be non-empty, printable and reasonably short.
func ValidateName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidConfig, "%s name cannot be empty", kind)
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidConfig, "%s name %q too long (max 128 characters)", kind, name)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "%s name %q contains control characters", kind, name)
		}
	}

	return nil
}

// ValidatePositive reports an error unless v is a finite number above zero.
func ValidatePositive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return New(ErrCodeInvalidConfig, "%s must be positive, got %v", field, v)
	}
	return nil
}

// ValidateNonNegative reports an error unless v is a finite number >= 0.
func ValidateNonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return New(ErrCodeInvalidConfig, "%s must not be negative, got %v", field, v)
	}
	return nil
}

// ValidateRange reports an error unless min <= max.
func ValidateRange(field string, min, max float64) error {
	if min > max {
		return New(ErrCodeInvalidConfig, "%s: minimum %v exceeds maximum %v", field, min, max)
	}
	return nil
}

// ValidatePath validates an output file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	if len(path) > 4096 {
		return New(ErrCodeInvalidPath, "path too long (max 4096 characters)")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid control characters")
		}
	}

	return nil
}
