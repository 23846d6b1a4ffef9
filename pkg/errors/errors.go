// Package errors provides structured error types for the kitchen designer.
//
// Every failure that leaves the core pipeline carries a machine-readable
// [Code] so the CLI can choose an exit status and the HTTP API can choose a
// response status without string matching.
//
// # Error Codes
//
// Codes follow the taxonomy of the solve pipeline:
//   - INVALID_*: malformed or schema-invalid input documents and settings
//   - UNKNOWN_REFERENCE: a rule, corner or fixture naming something undeclared
//   - MODEL_INVARIANT: a defect detected while building the model
//   - INFEASIBLE / UNBOUNDED: non-success solver outcomes
//   - SOLVER_*: the external engine could not be run or its output read
//
// Missing solved values are never errors. They are defaulted to zero by the
// extractor.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConfig, "part %q: width must be positive", name)
//	if errors.Is(err, errors.ErrCodeInvalidConfig) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeSolverFailed, origErr, "running %s", engine)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidSettings Code = "INVALID_SETTINGS"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"

	// Reference errors
	ErrCodeUnknownReference Code = "UNKNOWN_REFERENCE"

	// Model construction errors
	ErrCodeModelInvariant Code = "MODEL_INVARIANT"

	// Solver outcomes
	ErrCodeInfeasible     Code = "INFEASIBLE"
	ErrCodeUnbounded      Code = "UNBOUNDED"
	ErrCodeSolverFailed   Code = "SOLVER_FAILED"
	ErrCodeSolverNotFound Code = "SOLVER_NOT_FOUND"
	ErrCodeTimeout        Code = "TIMEOUT"

	// Internal errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
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

// IsInput reports whether err is a configuration or reference error, i.e.
// one the user can fix by editing the input document.
func IsInput(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidConfig, ErrCodeInvalidFormat, ErrCodeInvalidSettings,
		ErrCodeUnknownReference, ErrCodeFileNotFound, ErrCodeInvalidPath:
		return true
	}
	return false
}

// IsOutcome reports whether err is a non-success solver outcome rather than
// a failure to run the solver.
func IsOutcome(err error) bool {
	switch GetCode(err) {
	case ErrCodeInfeasible, ErrCodeUnbounded:
		return true
	}
	return false
}

// Violations collects several configuration problems found in one pass so
// they can be reported together.
type Violations struct {
	Code     Code
	Problems []string
}

// Add records a formatted problem.
func (v *Violations) Add(format string, args ...any) {
	v.Problems = append(v.Problems, fmt.Sprintf(format, args...))
}

// Err returns nil when no problems were recorded. Otherwise it returns an
// *Error whose message lists the first problem and the count of the rest.
func (v *Violations) Err() error {
	switch len(v.Problems) {
	case 0:
		return nil
	case 1:
		return New(v.Code, "%s", v.Problems[0])
	default:
		return New(v.Code, "%s (and %d more)", v.Problems[0], len(v.Problems)-1)
	}
}
