// Package errors provides the structured error taxonomy for the qflock reader.
//
// Every failure on the ingest and decode paths is reported as an *Error whose
// Type identifies the category:
//
//   - ErrorTypeDecode: decompressed length mismatch or malformed buffer
//   - ErrorTypeTypeMismatch: accessor disagrees with the declared column type
//   - ErrorTypeOutOfRange: row or column index outside the result bounds
//   - ErrorTypeUnsupportedType: declared type has no decode rule
//   - ErrorTypeClosed: use of a result after Close
//
// The originating cause is kept in Cause and reachable through errors.Is and
// errors.As. Nothing in this package retries.
//
// # Basic Usage
//
//	if got != want {
//	    return errors.New(errors.ErrorTypeDecode, "decompressed bytes do not match").
//	        WithDetail("declared_bytes", want).
//	        WithDetail("decompressed_bytes", got)
//	}
package errors

import (
	"errors"
	"runtime"

	stringpool "github.com/ajitpratap0/qflock/pkg/strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeDecode represents decompression and malformed buffer errors
	ErrorTypeDecode ErrorType = "decode"
	// ErrorTypeTypeMismatch represents accessor/declared type disagreement
	ErrorTypeTypeMismatch ErrorType = "type_mismatch"
	// ErrorTypeOutOfRange represents row or column indexes outside the result
	ErrorTypeOutOfRange ErrorType = "out_of_range"
	// ErrorTypeUnsupportedType represents declared types with no decode rule
	ErrorTypeUnsupportedType ErrorType = "unsupported_type"
	// ErrorTypeClosed represents use of a closed result
	ErrorTypeClosed ErrorType = "closed"
	// ErrorTypeValidation represents malformed input shapes and unknown names
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeFile represents file operation errors
	ErrorTypeFile ErrorType = "file"
	// ErrorTypeInternal represents internal errors
	ErrorTypeInternal ErrorType = "internal"
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return stringpool.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return stringpool.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: stringpool.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// IsDecode reports whether err is a decode error
func IsDecode(err error) bool { return IsType(err, ErrorTypeDecode) }

// IsTypeMismatch reports whether err is a type mismatch error
func IsTypeMismatch(err error) bool { return IsType(err, ErrorTypeTypeMismatch) }

// IsOutOfRange reports whether err is an out-of-range error
func IsOutOfRange(err error) bool { return IsType(err, ErrorTypeOutOfRange) }

// IsUnsupportedType reports whether err is an unsupported type error
func IsUnsupportedType(err error) bool { return IsType(err, ErrorTypeUnsupportedType) }

// IsClosed reports whether err is a use-after-close error
func IsClosed(err error) bool { return IsType(err, ErrorTypeClosed) }

// captureStack captures the current call stack
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
