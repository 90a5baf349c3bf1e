// Package errors provides the structured error type used across the service.
// Every condition a caller can act on is an AppError carrying a stable
// machine-readable code and the HTTP status it maps to; anything else is
// surfaced as a generic internal error without leaking detail.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// HTTPStatus is the HTTP status code this error maps to.
	HTTPStatus int `json:"-"`
	// Headers are response headers to set alongside the error
	// (e.g. WWW-Authenticate, Retry-After).
	Headers map[string]string `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// --- Condition Constructors ---

// InvalidCredentials covers bad secrets, bad refresh tokens, and bad
// signatures alike so callers cannot probe which part was wrong.
func InvalidCredentials(reason string) *AppError {
	if reason == "" {
		reason = "Invalid credentials."
	}
	return &AppError{
		Code: ErrCodeInvalidCredentials, Message: reason,
		HTTPStatus: http.StatusUnauthorized,
		Headers:    map[string]string{"WWW-Authenticate": "Bearer"},
	}
}

// TokenExpired is distinguished from InvalidCredentials so clients know to
// re-authenticate rather than retry.
func TokenExpired() *AppError {
	return &AppError{
		Code: ErrCodeTokenExpired, Message: "Token has expired.",
		HTTPStatus: http.StatusUnauthorized,
		Headers:    map[string]string{"WWW-Authenticate": "Bearer"},
	}
}

// InsufficientPermission creates an error for a failed role or scope check.
func InsufficientPermission(reason string) *AppError {
	if reason == "" {
		reason = "Insufficient permissions."
	}
	return &AppError{
		Code: ErrCodeInsufficientPermission, Message: reason,
		HTTPStatus: http.StatusForbidden,
	}
}

// EmailDomainRejected creates an error for a login from a disallowed domain.
func EmailDomainRejected(allowedDomain string) *AppError {
	return &AppError{
		Code:       ErrCodeInvalidEmailDomain,
		Message:    fmt.Sprintf("Only @%s emails are allowed.", allowedDomain),
		HTTPStatus: http.StatusForbidden,
	}
}

// RateLimitExceeded creates an error carrying a Retry-After hint in seconds.
func RateLimitExceeded(retryAfter int) *AppError {
	if retryAfter < 1 {
		retryAfter = 1
	}
	return &AppError{
		Code:       ErrCodeRateLimitExceeded,
		Message:    "Too many requests. Please try again later.",
		HTTPStatus: http.StatusTooManyRequests,
		Headers:    map[string]string{"Retry-After": fmt.Sprintf("%d", retryAfter)},
		Details:    map[string]any{"retry_after": retryAfter},
	}
}

// UserNotFound creates an error for a missing user.
func UserNotFound() *AppError {
	return &AppError{
		Code: ErrCodeUserNotFound, Message: "User not found.",
		HTTPStatus: http.StatusNotFound,
	}
}

// ClientNotFound creates an error for a missing service client.
func ClientNotFound(clientID string) *AppError {
	return &AppError{
		Code: ErrCodeClientNotFound, Message: "Client not found.",
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"client_id": clientID},
	}
}

// KeyUnavailable creates an error for missing signing key material. This is a
// startup-class condition; requests hitting it get a 500.
func KeyUnavailable(cause error) *AppError {
	return &AppError{
		Code: ErrCodeKeyUnavailable, Message: "Signing key material is unavailable.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

// OAuthFailed creates an error for a failed provider exchange.
func OAuthFailed(cause error) *AppError {
	return &AppError{
		Code: ErrCodeOAuthFailed, Message: "OAuth authentication failed.",
		HTTPStatus: http.StatusBadRequest, Cause: cause,
	}
}

// Validation creates an error for malformed request input.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeValidation, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Internal creates a generic internal error. The cause is logged server-side
// and never serialized to the caller.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}
