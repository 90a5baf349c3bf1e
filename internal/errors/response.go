package errors

import (
	stderrors "errors"
	"time"
)

// ErrorResponse is the JSON envelope returned to clients.
type ErrorResponse struct {
	Timestamp string         `json:"timestamp"`
	Path      string         `json:"path"`
	Status    int            `json:"status"`
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse converts an AppError to an ErrorResponse for JSON serialization.
// The request path is supplied by the transport layer.
func (e *AppError) ToResponse(path string) ErrorResponse {
	return ErrorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      path,
		Status:    e.HTTPStatus,
		Code:      e.Code,
		Message:   e.Message,
		Details:   e.Details,
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
