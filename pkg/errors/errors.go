// Package errors provides structured error handling for colconv.
//
// Errors carry a category (ErrorType) so callers can tell a fatal
// configuration problem apart from an I/O failure in a connector:
//
//	err := errors.New(errors.ErrorTypeConfig, "cannot convert Duration to Int").
//		WithDetail("source", "Duration").
//		WithDetail("target", "Int")
//
//	if errors.IsType(err, errors.ErrorTypeConfig) {
//		// abort pipeline setup
//	}
//
// Row-level conversion failures are not errors; they are resolved by the
// conversion plan's fallback and never surface through this package.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"sort"

	"go.uber.org/zap"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeInternal is a broken invariant inside colconv
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeNotFound is an unknown connector or column
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeTimeout is a run that exceeded its deadline
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeConnection is a database that could not be reached
	ErrorTypeConnection ErrorType = "connection"
	// ErrorTypeConfig is an invalid run configuration, including an
	// unsupported conversion
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeData is input that does not fit the declared header
	ErrorTypeData ErrorType = "data"
	// ErrorTypeCapability is a conversion pair outside the matrix
	ErrorTypeCapability ErrorType = "capability"
	// ErrorTypeFile is a failed file read or write
	ErrorTypeFile ErrorType = "file"
	// ErrorTypeQuery is a failed database query
	ErrorTypeQuery ErrorType = "query"
)

// Error is a categorized error with optional details and the call stack
// of its creation.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame is one frame of an error's call stack.
type StackFrame struct {
	Function string
	File     string
	Line     int
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

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
	return &Error{Type: errType, Message: message, Stack: captureStack(3)}
}

// Newf creates a new error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errType, Message: fmt.Sprintf(format, args...), Stack: captureStack(3)}
}

// Wrap wraps err with a category and message. A nil err stays nil. The
// stack of a wrapped *Error is kept.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}
	wrapped := &Error{Type: errType, Message: message, Cause: err}
	var inner *Error
	if errors.As(err, &inner) {
		wrapped.Stack = inner.Stack
	} else {
		wrapped.Stack = captureStack(3)
	}
	return wrapped
}

// TypeOf returns the category of the outermost *Error in err's chain, or
// ErrorTypeInternal when there is none.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeInternal
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == errType
}

// IsRetryable reports whether running again may succeed: timeouts and
// unreachable databases.
func IsRetryable(err error) bool {
	t := TypeOf(err)
	return t == ErrorTypeTimeout || t == ErrorTypeConnection
}

// Fields renders err as zap fields: the error itself, its category and
// its details in key order.
func Fields(err error) []zap.Field {
	if err == nil {
		return nil
	}
	fields := []zap.Field{zap.Error(err)}
	var e *Error
	if !errors.As(err, &e) {
		return fields
	}
	fields = append(fields, zap.String("error_type", string(e.Type)))
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.Any("error_"+k, e.Details[k]))
	}
	return fields
}

// Is forwards to the standard library errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As forwards to the standard library errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pcs[:n])

	stack := make([]StackFrame, 0, n)
	for {
		f, more := frames.Next()
		stack = append(stack, StackFrame{Function: f.Function, File: f.File, Line: f.Line})
		if !more {
			break
		}
	}
	return stack
}
