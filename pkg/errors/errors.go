// Package errors provides structured error types for guppy.
//
// Every failure raised while constructing a package graph is an [*Error]
// carrying a machine-readable [Code] and a human-readable message. Graph
// construction never returns a partial graph: the first invariant violation
// aborts the build and is reported through this type.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Referenced data is missing
//   - construction codes name the violated graph invariant
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDuplicateBuildTarget, "for package '%s': duplicate build targets for %s", id, target)
//	if errors.Is(err, errors.ErrCodeDuplicateBuildTarget) {
//	    // Handle the violation
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidPlatform, parseErr, "parsing target '%s' failed", spec)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidPackage Code = "INVALID_PACKAGE"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidVersion Code = "INVALID_VERSION"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodePackageNotFound Code = "PACKAGE_NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"

	// Package graph construction errors
	ErrCodeWorkspaceMember        Code = "WORKSPACE_MEMBER"
	ErrCodeDuplicateMemberName    Code = "DUPLICATE_MEMBER_NAME"
	ErrCodeDuplicateBuildTarget   Code = "DUPLICATE_BUILD_TARGET"
	ErrCodeInvalidBuildTarget     Code = "INVALID_BUILD_TARGET"
	ErrCodeInvalidFeature         Code = "INVALID_FEATURE"
	ErrCodeOptionalDevDependency  Code = "OPTIONAL_DEV_DEPENDENCY"
	ErrCodeUnmatchedDependency    Code = "UNMATCHED_DEPENDENCY"
	ErrCodeInvalidPlatform        Code = "INVALID_PLATFORM"
	ErrCodeInvalidManifestPath    Code = "INVALID_MANIFEST_PATH"
	ErrCodeInvalidWorkspaceConfig Code = "INVALID_WORKSPACE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
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

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
