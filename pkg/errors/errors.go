// Package errors provides structured error types for stacksize.
//
// Every failure that crosses a package boundary carries a [Code]. The CLI
// maps codes to exit messages and the HTTP server maps them to status
// codes, so the code is the contract and the message is for people.
//
// # Error Codes
//
//   - INVALID_*: the caller sent something unusable (bad package name,
//     unknown output format, malformed profile file)
//   - *_NOT_FOUND: a named profile, package or file does not exist
//   - *_UNAVAILABLE: a package index or artifact size could not be obtained
//   - SIGNATURE_INVALID, CHECKSUM_MISMATCH: an index failed verification
//   - NETWORK_ERROR, TIMEOUT, RATE_LIMITED: transport trouble
//
// # Partial failures
//
// Loading indexes from several suites can fail for some and succeed for
// others. Those failures come back as one [errors.Join] value. [Is] and
// [Codes] look at every branch of such a tree, not only the first:
//
//	_, err := source.Load(ctx, idx, src, nil)
//	if errors.Is(err, errors.ErrCodeSignatureInvalid) {
//	    // at least one suite was tampered with
//	}
package errors

import (
	"errors"
	"fmt"
	"slices"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidProfile Code = "INVALID_PROFILE"
	ErrCodeInvalidPackage Code = "INVALID_PACKAGE"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidSource  Code = "INVALID_SOURCE"

	// Lookup errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeProfileNotFound Code = "PROFILE_NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"

	// Collaborator errors
	ErrCodeIndexUnavailable    Code = "INDEX_UNAVAILABLE"
	ErrCodeArtifactUnavailable Code = "ARTIFACT_UNAVAILABLE"
	ErrCodeSignatureInvalid    Code = "SIGNATURE_INVALID"
	ErrCodeChecksumMismatch    Code = "CHECKSUM_MISMATCH"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether any *Error in err's tree has the given code.
func Is(err error, code Code) bool {
	return slices.Contains(Codes(err), code)
}

// GetCode returns the code of the outermost *Error in err, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Codes lists the distinct codes found in err's tree, outermost first.
// Joined errors contribute the codes of every branch.
func Codes(err error) []Code {
	var out []Code
	walk(err, func(e *Error) {
		if !slices.Contains(out, e.Code) {
			out = append(out, e.Code)
		}
	})
	return out
}

func walk(err error, visit func(*Error)) {
	switch x := err.(type) {
	case nil:
		return
	case *Error:
		visit(x)
		walk(x.Cause, visit)
	case interface{ Unwrap() []error }:
		for _, e := range x.Unwrap() {
			walk(e, visit)
		}
	case interface{ Unwrap() error }:
		walk(x.Unwrap(), visit)
	}
}

// UserMessage returns err's message without the code prefix when err is an
// *Error, and err.Error() otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// RateLimitedError is returned for HTTP 429 responses.
type RateLimitedError struct {
	RetryAfter int // seconds, 0 if the server did not say
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// Code returns ErrCodeRateLimited.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
