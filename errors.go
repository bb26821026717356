package catalystwan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorCode represents a machine-readable error code.
type ErrorCode string

const (
	// CodeDeclaration marks a malformed operation declaration. It is raised
	// while the declaring package initializes and is fatal.
	CodeDeclaration ErrorCode = "declaration"
	// CodeVersionMismatch is returned by strict version guards.
	CodeVersionMismatch ErrorCode = "version_mismatch"
	// CodeViewMismatch is returned by strict session role (view) guards.
	CodeViewMismatch ErrorCode = "view_mismatch"
	// CodePayloadType is returned when a payload or params value does not
	// match its declared shape.
	CodePayloadType ErrorCode = "payload_type"
	// CodeDecodeType is returned when a response cannot be decoded into the
	// declared return shape.
	CodeDecodeType       ErrorCode = "decode_type"
	CodeInvalidOperation ErrorCode = "invalid_operation"
	CodeInvalidArgument  ErrorCode = "invalid_argument"
)

// Sentinels for use with errors.Is. An *Error matches a sentinel when the
// codes are equal.
var (
	ErrDeclaration      = &Error{Code: CodeDeclaration}
	ErrVersionMismatch  = &Error{Code: CodeVersionMismatch}
	ErrViewMismatch     = &Error{Code: CodeViewMismatch}
	ErrPayloadType      = &Error{Code: CodePayloadType}
	ErrDecodeType       = &Error{Code: CodeDecodeType}
	ErrInvalidOperation = &Error{Code: CodeInvalidOperation}
	ErrInvalidArgument  = &Error{Code: CodeInvalidArgument}
)

// Error is the error type returned by the binding core.
type Error struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`

	cause error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is a sentinel (an *Error without message) with
// the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Code == e.Code
}

// NewError creates a new error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Errorf creates a new error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// wrapError creates an error with a formatted message that unwraps to cause.
func wrapError(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		cause:   cause,
	}
}

// WithDetail returns a new Error with the key-value pair added to details.
func (e *Error) WithDetail(key string, value any) *Error {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithDetails returns a new Error with the provided map merged into details.
// For multiple details, this is more efficient than chaining WithDetail calls.
func (e *Error) WithDetails(details map[string]any) *Error {
	if len(details) == 0 {
		return e
	}
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: merged,
		cause:   e.cause,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there
// is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// payloadValidationError converts validator output into a payload_type error
// with one detail per offending field.
func payloadValidationError(typeName string, err error) *Error {
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return wrapError(CodePayloadType, err, "invalid %s payload: %v", typeName, err)
	}
	details := make(map[string]any, len(valErrs))
	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		msg := formatValidationError(ve)
		details[ve.Namespace()] = msg
		messages = append(messages, ve.Field()+": "+msg)
	}
	return &Error{
		Code:    CodePayloadType,
		Message: fmt.Sprintf("invalid %s payload: %s", typeName, strings.Join(messages, "; ")),
		Details: details,
		cause:   err,
	}
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "min":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s long", ve.Param())
	case "ip":
		return "must be a valid IP address"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
