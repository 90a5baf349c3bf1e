package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/authentic/internal/secret"
	"github.com/kbukum/authentic/internal/storage"
)

func TestRefreshTokenStore_IssueAndRedeem(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "alice@example.com")
	s := NewRefreshTokenStore(db)
	ctx := context.Background()

	plaintext, err := s.Issue(ctx, user.ID, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if plaintext == "" {
		t.Fatal("plaintext secret should be returned")
	}

	userID, err := s.Redeem(ctx, plaintext)
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if userID != user.ID {
		t.Errorf("expected user %s, got %s", user.ID, userID)
	}
}

func TestRefreshTokenStore_StoresDigestNotPlaintext(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "alice@example.com")
	s := NewRefreshTokenStore(db)

	plaintext, err := s.Issue(context.Background(), user.ID, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var rec storage.RefreshToken
	if err := db.Gorm.First(&rec).Error; err != nil {
		t.Fatalf("load record: %v", err)
	}
	if rec.TokenHash == plaintext {
		t.Error("plaintext must not be persisted")
	}
	if rec.TokenHash != secret.HashSHA256(plaintext) {
		t.Error("stored hash should be the SHA-256 digest of the plaintext")
	}
}

func TestRefreshTokenStore_RedeemIsOneShot(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "alice@example.com")
	s := NewRefreshTokenStore(db)
	ctx := context.Background()

	plaintext, err := s.Issue(ctx, user.ID, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := s.Redeem(ctx, plaintext); err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	if _, err := s.Redeem(ctx, plaintext); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Errorf("replay should fail with ErrRefreshTokenInvalid, got %v", err)
	}
}

func TestRefreshTokenStore_ConcurrentRedeemSingleWinner(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "alice@example.com")
	s := NewRefreshTokenStore(db)
	ctx := context.Background()

	plaintext, err := s.Issue(ctx, user.ID, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Redeem(ctx, plaintext)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrRefreshTokenInvalid):
		default:
			t.Errorf("unexpected redeem error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("exactly one concurrent redeem should win, got %d", wins)
	}
}

func TestRefreshTokenStore_UnknownSecretInvalid(t *testing.T) {
	db := newTestDB(t)
	s := NewRefreshTokenStore(db)

	if _, err := s.Redeem(context.Background(), "never-issued"); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Errorf("expected ErrRefreshTokenInvalid, got %v", err)
	}
}

func TestRefreshTokenStore_ExpiredSecretRejectedAndRevoked(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "alice@example.com")
	s := NewRefreshTokenStore(db)
	ctx := context.Background()

	plaintext, err := s.Issue(ctx, user.ID, -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := s.Redeem(ctx, plaintext); !errors.Is(err, ErrRefreshTokenExpired) {
		t.Fatalf("expected ErrRefreshTokenExpired, got %v", err)
	}
	// The expired record is revoked on the way out, so a replay is invalid
	// rather than expired.
	if _, err := s.Redeem(ctx, plaintext); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Errorf("expected ErrRefreshTokenInvalid on replay, got %v", err)
	}
}

func TestRefreshTokenStore_RevokeAllForUser(t *testing.T) {
	db := newTestDB(t)
	alice := newTestUser(t, db, "alice@example.com")
	bob := newTestUser(t, db, "bob@example.com")
	s := NewRefreshTokenStore(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.Issue(ctx, alice.ID, time.Hour); err != nil {
			t.Fatalf("Issue: %v", err)
		}
	}
	bobSecret, err := s.Issue(ctx, bob.ID, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	n, err := s.RevokeAllForUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("RevokeAllForUser: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 revocations, got %d", n)
	}

	// Bob's token is untouched.
	if _, err := s.Redeem(ctx, bobSecret); err != nil {
		t.Errorf("other user's token should still redeem, got %v", err)
	}

	// Idempotent: nothing left to revoke.
	n, err = s.RevokeAllForUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("RevokeAllForUser: %v", err)
	}
	if n != 0 {
		t.Errorf("second revoke should affect 0 rows, got %d", n)
	}
}

func TestRefreshTokenStore_PurgeExpired(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "alice@example.com")
	s := NewRefreshTokenStore(db)
	ctx := context.Background()

	if _, err := s.Issue(ctx, user.ID, -time.Minute); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	live, err := s.Issue(ctx, user.ID, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	n, err := s.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 purged row, got %d", n)
	}
	if _, err := s.Redeem(ctx, live); err != nil {
		t.Errorf("live token should survive the purge, got %v", err)
	}
}
