package store

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kbukum/authentic/internal/secret"
	"github.com/kbukum/authentic/internal/storage"
)

const (
	clientIDBytes     = 8
	clientSecretBytes = 32
)

// ClientStore manages registered service-client identities.
type ClientStore struct {
	db *storage.DB
}

// NewClientStore creates a client store.
func NewClientStore(db *storage.DB) *ClientStore {
	return &ClientStore{db: db}
}

// Register creates a client with generated credentials and returns the
// record plus the one-time plaintext secret. The secret is not recoverable
// afterwards; only its digest is stored.
func (s *ClientStore) Register(ctx context.Context, name string, clientType storage.ClientType, scopes []string) (*storage.Client, string, error) {
	idSuffix, err := secret.RandomHex(clientIDBytes)
	if err != nil {
		return nil, "", err
	}
	plaintext, err := secret.RandomURLSafe(clientSecretBytes)
	if err != nil {
		return nil, "", err
	}

	rec := storage.Client{
		ClientID:   "client_" + idSuffix,
		SecretHash: secret.HashSHA256(plaintext),
		Name:       name,
		ClientType: clientType,
		Scopes:     scopes,
		IsActive:   true,
	}
	if err := s.db.Gorm.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, "", fmt.Errorf("store: create client: %w", err)
	}
	return &rec, plaintext, nil
}

// Authenticate fetches the active client and verifies the presented secret
// against the stored digest. An unknown client id and a wrong secret fail
// identically so existence cannot be probed.
func (s *ClientStore) Authenticate(ctx context.Context, clientID, plaintext string) (*storage.Client, bool) {
	rec, err := s.getActive(ctx, clientID)
	if err != nil {
		return nil, false
	}
	presented := secret.HashSHA256(plaintext)
	if subtle.ConstantTimeCompare([]byte(presented), []byte(rec.SecretHash)) != 1 {
		return nil, false
	}
	return rec, true
}

// Get returns an active client by client id.
func (s *ClientStore) Get(ctx context.Context, clientID string) (*storage.Client, error) {
	rec, err := s.getActive(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns all active clients.
func (s *ClientStore) List(ctx context.Context) ([]storage.Client, error) {
	var recs []storage.Client
	if err := s.db.Gorm.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at").
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("store: list clients: %w", err)
	}
	return recs, nil
}

// Update applies a partial update of name and scopes. Nil fields are left
// unchanged.
func (s *ClientStore) Update(ctx context.Context, clientID string, name *string, scopes []string) (*storage.Client, error) {
	rec, err := s.getActive(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if name != nil {
		rec.Name = *name
	}
	if scopes != nil {
		rec.Scopes = scopes
	}
	if err := s.db.Gorm.WithContext(ctx).Save(rec).Error; err != nil {
		return nil, fmt.Errorf("store: update client: %w", err)
	}
	return rec, nil
}

// Deactivate soft-deletes the client; list and authenticate no longer see it.
func (s *ClientStore) Deactivate(ctx context.Context, clientID string) error {
	res := s.db.Gorm.WithContext(ctx).
		Model(&storage.Client{}).
		Where("client_id = ? AND is_active = ?", clientID, true).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("store: deactivate client: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrClientNotFound
	}
	return nil
}

// Delete removes the client record entirely.
func (s *ClientStore) Delete(ctx context.Context, clientID string) error {
	res := s.db.Gorm.WithContext(ctx).
		Where("client_id = ?", clientID).
		Delete(&storage.Client{})
	if res.Error != nil {
		return fmt.Errorf("store: delete client: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrClientNotFound
	}
	return nil
}

func (s *ClientStore) getActive(ctx context.Context, clientID string) (*storage.Client, error) {
	var rec storage.Client
	err := s.db.Gorm.WithContext(ctx).
		Where("client_id = ? AND is_active = ?", clientID, true).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get client: %w", err)
	}
	return &rec, nil
}
