package errors

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// ValidationError reports which field of a request or file was rejected.
// It wraps a coded *Error so Is and GetCode keep working.
type ValidationError struct {
	Field string
	Err   *Error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Err.Error())
}

// Unwrap returns the coded error.
func (e *ValidationError) Unwrap() error { return e.Err }

// Field wraps err with the name of the offending field.
func Field(field string, err *Error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

// debianPackageNameRegex matches Debian package names (policy 5.6.1), which
// are also the names that may appear in a Provides field.
var debianPackageNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9+.-]+$`)

// ValidatePackageName validates a Debian package name for safety and
// correctness. It rejects names that could be used for path traversal or
// injection when they end up in cache keys or URLs.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
//   - Lowercase letters, digits, '+', '-' and '.' only, at least two characters
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", "..")
	}

	if !debianPackageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid package name: %q", name)
	}

	return nil
}

// profileNameRegex matches profile names such as "setup_r_only.sh".
var profileNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateProfileName validates a profile name. Profile names double as
// cache key components and URL path segments.
func ValidateProfileName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidProfile, "profile name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidProfile, "profile name too long (max 128 characters)")
	}
	if strings.Contains(name, "..") || !profileNameRegex.MatchString(name) {
		return New(ErrCodeInvalidProfile, "invalid profile name: %q", name)
	}
	return nil
}

// ValidateFormat checks that format is one of allowed.
func ValidateFormat(format string, allowed ...string) error {
	if slices.Contains(allowed, format) {
		return nil
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of: %s)", format, strings.Join(allowed, ", "))
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidSource, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidSource, "URL must use http or https scheme")
	}

	return nil
}
