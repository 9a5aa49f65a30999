package apierror

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Taxonomy codes carried by every Error.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodePolicyRejection = "POLICY_REJECTION"
	CodeUpstream        = "UPSTREAM_UNAVAILABLE"
	CodeInternal        = "INTERNAL_ERROR"
)

// Error is the discriminated result type for expected failures. Business
// outcomes (policy rejections, validation) travel as values of this type
// rather than panics; infrastructure faults use Upstream so write callers
// can handle them explicitly.
type Error struct {
	StatusCode int      `json:"-"`
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Reasons    []string `json:"reasons,omitempty"`
	Err        error    `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithReasons attaches the structured reason list surfaced to the user,
// e.g. the failing admission checks of a rejected listing.
func (e *Error) WithReasons(reasons ...string) *Error {
	e.Reasons = reasons
	return e
}

// Validation creates an error for missing or malformed input. Never retried.
func Validation(message string) *Error {
	return &Error{
		StatusCode: fiber.StatusBadRequest,
		Code:       CodeValidation,
		Message:    message,
	}
}

// Unauthorized creates an error for requests with no authenticated identity.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "Authentication required"
	}
	return &Error{
		StatusCode: fiber.StatusUnauthorized,
		Code:       CodeUnauthorized,
		Message:    message,
	}
}

// Forbidden creates an error for authenticated but unpermitted access.
func Forbidden(message string) *Error {
	if message == "" {
		message = "Access denied"
	}
	return &Error{
		StatusCode: fiber.StatusForbidden,
		Code:       CodeForbidden,
		Message:    message,
	}
}

// NotFound creates an error for absent products, transactions or cart rows.
// Callers must not assume auto-creation.
func NotFound(message string) *Error {
	if message == "" {
		message = "Resource not found"
	}
	return &Error{
		StatusCode: fiber.StatusNotFound,
		Code:       CodeNotFound,
		Message:    message,
	}
}

// Conflict creates a 409 error, e.g. duplicate registration.
func Conflict(message string) *Error {
	return &Error{
		StatusCode: fiber.StatusConflict,
		Code:       CodeConflict,
		Message:    message,
	}
}

// PolicyRejection creates an error for an expected business outcome: a
// listing turned away by the admission pipeline or a message stopped by the
// proximity guard. Not a system fault, never retried automatically.
func PolicyRejection(message string) *Error {
	return &Error{
		StatusCode: fiber.StatusUnprocessableEntity,
		Code:       CodePolicyRejection,
		Message:    message,
	}
}

// Upstream wraps a persistence/storage/identity provider failure on a write
// path. Read paths degrade instead of raising this.
func Upstream(message string, err error) *Error {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	return &Error{
		StatusCode: fiber.StatusServiceUnavailable,
		Code:       CodeUpstream,
		Message:    message,
		Err:        err,
	}
}

// Internal creates a 500 error for unexpected faults.
func Internal(message string) *Error {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return &Error{
		StatusCode: fiber.StatusInternalServerError,
		Code:       CodeInternal,
		Message:    message,
	}
}

// From extracts an *Error from err, or wraps it as Internal.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(err.Error())
}

// Is reports whether err carries the given taxonomy code.
func Is(err error, code string) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}
