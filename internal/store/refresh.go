package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kbukum/authentic/internal/logger"
	"github.com/kbukum/authentic/internal/secret"
	"github.com/kbukum/authentic/internal/storage"
)

// refreshSecretBytes is the entropy of a refresh secret. The opaque value on
// the wire is its base64url encoding; only its SHA-256 digest is persisted.
const refreshSecretBytes = 32

// RefreshTokenStore manages the refresh-token lifecycle: issue, redeem
// (rotate), revoke, expire.
type RefreshTokenStore struct {
	db *storage.DB
}

// NewRefreshTokenStore creates a refresh-token store.
func NewRefreshTokenStore(db *storage.DB) *RefreshTokenStore {
	return &RefreshTokenStore{db: db}
}

// Issue persists a new refresh token for the user and returns the plaintext
// secret. This is the only place the plaintext ever exists server-side.
func (s *RefreshTokenStore) Issue(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	plaintext, err := secret.RandomURLSafe(refreshSecretBytes)
	if err != nil {
		return "", err
	}

	rec := storage.RefreshToken{
		UserID:    userID,
		TokenHash: secret.HashSHA256(plaintext),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.db.Gorm.WithContext(ctx).Create(&rec).Error; err != nil {
		return "", fmt.Errorf("store: create refresh token: %w", err)
	}
	return plaintext, nil
}

// Redeem consumes a refresh secret and returns the owning user ID. The
// record is revoked in the same conditional update that claims it, so two
// concurrent redeems of the same secret cannot both succeed: the loser's
// update matches zero rows and fails with ErrRefreshTokenInvalid.
func (s *RefreshTokenStore) Redeem(ctx context.Context, plaintext string) (string, error) {
	hash := secret.HashSHA256(plaintext)

	var rec storage.RefreshToken
	err := s.db.Gorm.WithContext(ctx).
		Where("token_hash = ? AND revoked = ?", hash, false).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrRefreshTokenInvalid
	}
	if err != nil {
		return "", fmt.Errorf("store: look up refresh token: %w", err)
	}

	// Expiry is re-checked on read even though the sweeper purges expired
	// rows; the purge is a cleanup optimization, not the correctness
	// mechanism.
	if time.Now().After(rec.ExpiresAt) {
		res := s.db.Gorm.WithContext(ctx).
			Model(&storage.RefreshToken{}).
			Where("id = ?", rec.ID).
			Update("revoked", true)
		if res.Error != nil {
			logger.Warn("Failed to revoke expired refresh token", logger.Fields(
				"token_id", rec.ID,
				logger.FieldError, res.Error.Error(),
			))
		}
		return "", ErrRefreshTokenExpired
	}

	res := s.db.Gorm.WithContext(ctx).
		Model(&storage.RefreshToken{}).
		Where("id = ? AND revoked = ?", rec.ID, false).
		Update("revoked", true)
	if res.Error != nil {
		return "", fmt.Errorf("store: revoke refresh token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return "", ErrRefreshTokenInvalid
	}
	return rec.UserID, nil
}

// RevokeAllForUser marks all live refresh tokens of the user revoked and
// returns the number affected.
func (s *RefreshTokenStore) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	res := s.db.Gorm.WithContext(ctx).
		Model(&storage.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true)
	if res.Error != nil {
		return 0, fmt.Errorf("store: revoke tokens for user: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// PurgeExpired deletes rows past expiry, standing in for a document store's
// TTL index. Returns the number of rows removed.
func (s *RefreshTokenStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.Gorm.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&storage.RefreshToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("store: purge expired tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
