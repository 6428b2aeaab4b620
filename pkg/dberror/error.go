// Package dberror defines the structured error type shared by the generator,
// the layout planner and the storage collaborators.
//
// Every error carries a Code that callers match with errors.Is against the
// sentinel values below, so collaborator errors can be propagated unmodified
// and still be classified at the top of a load.
package dberror

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorCategory classifies errors by their nature and appropriate handling strategy.
type ErrorCategory int

const (
	// ErrCategoryUser represents errors caused by an invalid table/index spec
	// or request. These are fixed by changing the input.
	ErrCategoryUser ErrorCategory = iota

	// ErrCategorySystem represents errors raised by a collaborator that the
	// loader cannot interpret (I/O failures, closed stores).
	ErrCategorySystem

	// ErrCategoryData represents integrity failures such as constraint
	// violations reported by an index.
	ErrCategoryData

	// ErrCategoryConcurrency represents misuse of a transaction, for example
	// writing through a transaction that is already committed.
	ErrCategoryConcurrency
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryUser:
		return "user"
	case ErrCategorySystem:
		return "system"
	case ErrCategoryData:
		return "data"
	case ErrCategoryConcurrency:
		return "concurrency"
	default:
		return "unknown"
	}
}

// Error codes.
const (
	CodeConfiguration       = "CONFIGURATION_ERROR"
	CodeInvalidArgument     = "INVALID_ARGUMENT"
	CodeUnsupportedType     = "UNSUPPORTED_TYPE"
	CodeConstraintViolation = "CONSTRAINT_VIOLATION"
	CodeNotFound            = "NOT_FOUND"
	CodeTxnState            = "TXN_STATE"
	CodeStorage             = "STORAGE_ERROR"
)

// refines maps a code onto the broader code it specialises. An error whose
// code refines another also matches the broader sentinel.
var refines = map[string]string{
	CodeInvalidArgument: CodeConfiguration,
}

// Sentinels for errors.Is. They match any DBError with the same code.
var (
	ErrConfiguration       = &DBError{Code: CodeConfiguration}
	ErrInvalidArgument     = &DBError{Code: CodeInvalidArgument}
	ErrUnsupportedType     = &DBError{Code: CodeUnsupportedType}
	ErrConstraintViolation = &DBError{Code: CodeConstraintViolation}
	ErrNotFound            = &DBError{Code: CodeNotFound}
	ErrTxnState            = &DBError{Code: CodeTxnState}
)

// DBError represents a structured error with rich context information.
type DBError struct {
	// Code is a unique identifier for this error type (e.g., "UNSUPPORTED_TYPE").
	Code string

	// Category classifies the error for appropriate handling strategy.
	Category ErrorCategory

	// Message is a human-readable description of what went wrong.
	Message string

	// Detail provides additional context about the specific error instance.
	Detail string

	// Hint suggests how the user might fix or work around this error.
	Hint string

	// Operation identifies the operation that was being performed when the
	// error occurred, e.g. "FillTable", "Plan", "Insert".
	Operation string

	// Component identifies where the error originated, e.g. "Loader",
	// "LayoutPlanner", "HashIndex".
	Component string

	// Cause is the underlying error that triggered this error.
	Cause error

	// Stack contains the call stack where this error was created.
	Stack []uintptr
}

// New creates a new DBError with the specified code, category, and message.
func New(category ErrorCategory, code, message string) *DBError {
	return &DBError{
		Code:     code,
		Category: category,
		Message:  message,
		Stack:    captureStack(),
	}
}

// Wrap wraps an existing error with operation and component context.
// If the error is already a DBError it is enriched in place (only fields
// that are still empty) and returned as is, so codes are never rewritten.
func Wrap(err error, code, operation, component string) *DBError {
	if err == nil {
		return nil
	}

	var dbErr *DBError
	if errors.As(err, &dbErr) {
		if dbErr.Operation == "" {
			dbErr.Operation = operation
		}
		if dbErr.Component == "" {
			dbErr.Component = component
		}
		return dbErr
	}

	return &DBError{
		Code:      code,
		Category:  ErrCategorySystem,
		Message:   err.Error(),
		Operation: operation,
		Component: component,
		Cause:     err,
		Stack:     captureStack(),
	}
}

// Configuration reports an unsupported spec combination.
func Configuration(operation, format string, args ...any) *DBError {
	e := New(ErrCategoryUser, CodeConfiguration, fmt.Sprintf(format, args...))
	e.Operation = operation
	return e
}

// InvalidArgument reports a call made with an argument the callee rejects.
func InvalidArgument(operation, format string, args ...any) *DBError {
	e := New(ErrCategoryUser, CodeInvalidArgument, fmt.Sprintf(format, args...))
	e.Operation = operation
	return e
}

// UnsupportedType reports a variable-width type on a fixed-width path.
func UnsupportedType(operation, format string, args ...any) *DBError {
	e := New(ErrCategoryUser, CodeUnsupportedType, fmt.Sprintf(format, args...))
	e.Operation = operation
	e.Hint = "only fixed-width column types can be generated and laid out"
	return e
}

// ConstraintViolation reports a key rejected by an index-declared constraint.
func ConstraintViolation(component, format string, args ...any) *DBError {
	e := New(ErrCategoryData, CodeConstraintViolation, fmt.Sprintf(format, args...))
	e.Operation = "Insert"
	e.Component = component
	return e
}

// NotFound reports a lookup of an unknown table, index or column.
func NotFound(operation, format string, args ...any) *DBError {
	e := New(ErrCategoryUser, CodeNotFound, fmt.Sprintf(format, args...))
	e.Operation = operation
	return e
}

// TxnState reports use of a transaction that is no longer active.
func TxnState(operation, format string, args ...any) *DBError {
	e := New(ErrCategoryConcurrency, CodeTxnState, fmt.Sprintf(format, args...))
	e.Operation = operation
	return e
}

// WithDetail attaches instance detail and returns the receiver.
func (e *DBError) WithDetail(format string, args ...any) *DBError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithComponent sets the component and returns the receiver.
func (e *DBError) WithComponent(component string) *DBError {
	e.Component = component
	return e
}

// captureStack captures the current call stack for debugging purposes.
// It skips captureStack, the constructor and its direct helper.
func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[0:n]
}

// Error implements the standard Go error interface
//
// The format follows the pattern:
// [ERROR_CODE] Message: Detail (operation: Operation, component: Component) caused by: underlying error
func (e *DBError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Detail != "" {
		b.WriteString(fmt.Sprintf(": %s", e.Detail))
	}

	if e.Operation != "" {
		b.WriteString(fmt.Sprintf(" (operation: %s", e.Operation))
		if e.Component != "" {
			b.WriteString(fmt.Sprintf(", component: %s", e.Component))
		}
		b.WriteString(")")
	}

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(" caused by: %v", e.Cause))
	}

	return b.String()
}

// Unwrap returns the underlying cause error.
func (e *DBError) Unwrap() error {
	return e.Cause
}

// Is matches another DBError by code, following code refinements.
func (e *DBError) Is(target error) bool {
	t, ok := target.(*DBError)
	if !ok || t.Code == "" {
		return false
	}
	for code := e.Code; code != ""; code = refines[code] {
		if code == t.Code {
			return true
		}
	}
	return false
}

// CodeOf returns the code of the first DBError in err's chain, or "".
func CodeOf(err error) string {
	var dbErr *DBError
	if errors.As(err, &dbErr) {
		return dbErr.Code
	}
	return ""
}

// FormatStack returns a human-readable stack trace for debugging purposes.
func (e *DBError) FormatStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(e.Stack)

	b.WriteString("Stack trace:\n")
	for {
		f, more := frames.Next()
		b.WriteString(fmt.Sprintf("  %s\n    %s:%d\n",
			f.Function, f.File, f.Line))
		if !more {
			break
		}
	}

	return b.String()
}
