package errors

import "fmt"

type ErrorCode string

const (
	// Generic codes
	ErrInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData ErrorCode = "INVALID_REQUEST_DATA"
	ErrUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrForbidden          ErrorCode = "FORBIDDEN"
	ErrNotFound           ErrorCode = "NOT_FOUND"
	ErrAlreadyExists      ErrorCode = "ALREADY_EXISTS"
	ErrInternalServer     ErrorCode = "INTERNAL_SERVER_ERROR"

	// Token codes
	ErrTokenExpired               ErrorCode = "TOKEN_EXPIRED"
	ErrInvalidTokenFormat         ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrMissingAuthorizationHeader ErrorCode = "MISSING_AUTHORIZATION_HEADER"

	// Booking engine codes
	ErrInvalidRange        ErrorCode = "INVALID_RANGE"
	ErrConflict            ErrorCode = "CONFLICT"
	ErrAuthExpired         ErrorCode = "AUTH_EXPIRED"
	ErrProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrQuotaExceeded       ErrorCode = "QUOTA_EXCEEDED"
	ErrPersistenceFailed   ErrorCode = "PERSISTENCE_FAILED"
)

// AppError is the application error carried between service, controller and
// middleware layers. Code drives the HTTP status mapping in the base
// controller; Err keeps the underlying cause for logs.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`

	// Ambiguous marks a provider write whose outcome is unknown (timeout
	// after the request may have landed). Callers must re-query before
	// retrying instead of retrying blindly.
	Ambiguous bool `json:"ambiguous,omitempty"`

	// Details carries caller-facing context, e.g. the overlapping events
	// behind a CONFLICT.
	Details any `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewAmbiguousProviderError reports a provider write with an unknown outcome.
func NewAmbiguousProviderError(message string, err error) *AppError {
	return &AppError{Code: ErrProviderUnavailable, Message: message, Err: err, Ambiguous: true}
}

// WithDetails attaches caller-facing details and returns the same error.
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// IsCode reports whether err is an *AppError with the given code.
func IsCode(err error, code ErrorCode) bool {
	ae, ok := err.(*AppError)
	return ok && ae != nil && ae.Code == code
}
