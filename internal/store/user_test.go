package store

import (
	"context"
	"errors"
	"testing"

	"github.com/kbukum/authentic/internal/storage"
)

func TestUserStore_FindOrCreateByGoogleID(t *testing.T) {
	db := newTestDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	created, err := s.FindOrCreateByGoogleID(ctx, Profile{
		GoogleID: "g-123",
		Email:    "alice@example.com",
		Name:     "Alice",
		Picture:  "https://example.com/alice.png",
	})
	if err != nil {
		t.Fatalf("FindOrCreateByGoogleID: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created user should have an id")
	}
	if created.Role != storage.RoleUser {
		t.Errorf("new users should get the user role, got %s", created.Role)
	}

	// Second login with the same subject returns the same record.
	again, err := s.FindOrCreateByGoogleID(ctx, Profile{
		GoogleID: "g-123",
		Email:    "alice@example.com",
		Name:     "Alice",
		Picture:  "https://example.com/alice.png",
	})
	if err != nil {
		t.Fatalf("FindOrCreateByGoogleID: %v", err)
	}
	if again.ID != created.ID {
		t.Errorf("expected id %s, got %s", created.ID, again.ID)
	}
}

func TestUserStore_FindOrCreate_RefreshesProfile(t *testing.T) {
	db := newTestDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	created, err := s.FindOrCreateByGoogleID(ctx, Profile{
		GoogleID: "g-123", Email: "alice@example.com", Name: "Alice",
	})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := s.FindOrCreateByGoogleID(ctx, Profile{
		GoogleID: "g-123", Email: "alice@example.com",
		Name: "Alice Smith", Picture: "https://example.com/new.png",
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.ID != created.ID {
		t.Fatal("profile refresh should not create a new user")
	}
	if updated.Name != "Alice Smith" || updated.Picture != "https://example.com/new.png" {
		t.Errorf("name and picture should be refreshed: %+v", updated)
	}
}

func TestUserStore_GetByID(t *testing.T) {
	db := newTestDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	user := newTestUser(t, db, "alice@example.com")

	got, err := s.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("unexpected email %q", got.Email)
	}

	if _, err := s.GetByID(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserStore_GetByEmail(t *testing.T) {
	db := newTestDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	newTestUser(t, db, "bob@example.com")

	got, err := s.GetByEmail(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.Email != "bob@example.com" {
		t.Errorf("unexpected email %q", got.Email)
	}

	if _, err := s.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
