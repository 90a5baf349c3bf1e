package errors

// ErrorCode represents a machine-readable error code. Codes are part of the
// wire contract and must stay stable across releases.
type ErrorCode string

const (
	// ErrCodeInvalidCredentials indicates a bad secret, token, or signature.
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	// ErrCodeTokenExpired indicates an access or refresh token past expiry.
	ErrCodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
	// ErrCodeInsufficientPermission indicates a failed role or scope check.
	ErrCodeInsufficientPermission ErrorCode = "INSUFFICIENT_PERMISSION"
	// ErrCodeInvalidEmailDomain indicates a login from a disallowed domain.
	ErrCodeInvalidEmailDomain ErrorCode = "INVALID_EMAIL_DOMAIN"
	// ErrCodeRateLimitExceeded indicates too many requests in the window.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeUserNotFound indicates the referenced user does not exist.
	ErrCodeUserNotFound ErrorCode = "USER_NOT_FOUND"
	// ErrCodeClientNotFound indicates the referenced client does not exist.
	ErrCodeClientNotFound ErrorCode = "CLIENT_NOT_FOUND"
	// ErrCodeKeyUnavailable indicates signing key material could not be loaded.
	ErrCodeKeyUnavailable ErrorCode = "KEY_UNAVAILABLE"
	// ErrCodeOAuthFailed indicates the provider exchange failed.
	ErrCodeOAuthFailed ErrorCode = "OAUTH_FAILED"
	// ErrCodeValidation indicates malformed request input.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	// ErrCodeInternal indicates an unclassified server-side failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)
