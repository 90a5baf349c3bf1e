package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kbukum/authentic/internal/storage"
)

// Profile is the verified identity handed back by the provider adapter.
type Profile struct {
	GoogleID string
	Email    string
	Name     string
	Picture  string
}

// UserStore manages human accounts.
type UserStore struct {
	db *storage.DB
}

// NewUserStore creates a user store.
func NewUserStore(db *storage.DB) *UserStore {
	return &UserStore{db: db}
}

// FindOrCreateByGoogleID returns the user for the provider subject id,
// creating it on first login and refreshing name/picture when the provider
// reports changes.
func (s *UserStore) FindOrCreateByGoogleID(ctx context.Context, p Profile) (*storage.User, error) {
	var rec storage.User
	err := s.db.Gorm.WithContext(ctx).
		Where("google_id = ?", p.GoogleID).
		First(&rec).Error
	switch {
	case err == nil:
		if rec.Name != p.Name || rec.Picture != p.Picture {
			rec.Name = p.Name
			rec.Picture = p.Picture
			if err := s.db.Gorm.WithContext(ctx).Save(&rec).Error; err != nil {
				return nil, fmt.Errorf("store: update user: %w", err)
			}
		}
		return &rec, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		rec = storage.User{
			Email:    p.Email,
			Name:     p.Name,
			Picture:  p.Picture,
			Role:     storage.RoleUser,
			GoogleID: p.GoogleID,
		}
		if err := s.db.Gorm.WithContext(ctx).Create(&rec).Error; err != nil {
			return nil, fmt.Errorf("store: create user: %w", err)
		}
		return &rec, nil
	default:
		return nil, fmt.Errorf("store: find user by google id: %w", err)
	}
}

// GetByID returns the user with the given id.
func (s *UserStore) GetByID(ctx context.Context, id string) (*storage.User, error) {
	var rec storage.User
	err := s.db.Gorm.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get user: %w", err)
	}
	return &rec, nil
}

// GetByEmail returns the user with the given email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*storage.User, error) {
	var rec storage.User
	err := s.db.Gorm.WithContext(ctx).Where("email = ?", email).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get user by email: %w", err)
	}
	return &rec, nil
}
