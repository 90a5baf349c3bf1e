// Package store implements the persistence operations for users, refresh
// tokens, and service clients on top of the storage layer. Each store is a
// small struct around the shared DB handle; the lifecycle rules (rotation,
// soft deletion, find-or-create) live here rather than in the handlers.
package store

import "errors"

// Sentinel errors returned by the stores. The orchestrator maps these onto
// the structured error codes the transport returns.
var (
	// ErrRefreshTokenInvalid covers an unknown hash, an already revoked
	// record, and a lost rotation race alike.
	ErrRefreshTokenInvalid = errors.New("store: refresh token invalid")
	// ErrRefreshTokenExpired reports a known token whose expiry has passed.
	ErrRefreshTokenExpired = errors.New("store: refresh token expired")
	// ErrUserNotFound reports a missing user record.
	ErrUserNotFound = errors.New("store: user not found")
	// ErrClientNotFound reports a missing or inactive client record.
	ErrClientNotFound = errors.New("store: client not found")
)
