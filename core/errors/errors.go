package errors

import (
	"fmt"
)

// Error types for the failures that abort a parse or an output step.
// Everything else is reported as a Diagnostic and never stops extraction.
const (
	// Input errors
	ErrFileNotFound = "FILE_NOT_FOUND"
	ErrInputRead    = "INPUT_READ_ERROR"

	// Parse errors
	ErrNestingTooDeep = "NESTING_TOO_DEEP"

	// Output errors
	ErrOutputWrite      = "OUTPUT_WRITE_ERROR"
	ErrSchemaValidation = "SCHEMA_VALIDATION_ERROR"
	ErrDecode           = "DECODE_ERROR"
)

// Error represents a structured error with type and context
type Error struct {
	Type    string
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows error unwrapping
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error
func New(errorType, message string) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Wrap creates a new Error wrapping an existing error
func Wrap(errorType, message string, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	e.Context[key] = value
	return e
}

// GetContext returns context value by key
func (e *Error) GetContext(key string) (interface{}, bool) {
	value, exists := e.Context[key]
	return value, exists
}

// NewFileNotFoundError reports a missing source file
func NewFileNotFoundError(path string, cause error) *Error {
	return Wrap(ErrFileNotFound, fmt.Sprintf("File not found: %s", path), cause).
		WithContext("path", path)
}

// NewInputError creates an input-related error
func NewInputError(message string, cause error) *Error {
	return Wrap(ErrInputRead, message, cause)
}

// NewNestingError reports a procedure that nests deeper than the parser allows
func NewNestingError(line, limit int) *Error {
	return New(ErrNestingTooDeep, fmt.Sprintf("statement nesting exceeds %d levels at line %d", limit, line)).
		WithContext("line", line).
		WithContext("limit", limit)
}

// NewOutputError creates an output-related error
func NewOutputError(message string, cause error) *Error {
	return Wrap(ErrOutputWrite, message, cause)
}

// IsErrorType checks if an error, or any error it wraps, is of a specific type
func IsErrorType(err error, errorType string) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Type == errorType {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// DiagnosticKind classifies a non-fatal extraction problem.
type DiagnosticKind string

const (
	// MalformedDataEntry: a DATA DIVISION line without a numeric level was dropped.
	MalformedDataEntry DiagnosticKind = "MalformedDataEntry"
	// UnrecognizedStatement: a statement without a dedicated form was kept as generic text.
	UnrecognizedStatement DiagnosticKind = "UnrecognizedStatement"
	// TokenizationGap: the parser skipped a token it could not place.
	TokenizationGap DiagnosticKind = "TokenizationGap"
)

// Diagnostic records a problem that did not stop extraction.
type Diagnostic struct {
	Kind    DiagnosticKind
	Line    int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s: %s", d.Line, d.Kind, d.Message)
}
