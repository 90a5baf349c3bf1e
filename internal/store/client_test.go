package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kbukum/authentic/internal/secret"
	"github.com/kbukum/authentic/internal/storage"
)

func TestClientStore_Register(t *testing.T) {
	db := newTestDB(t)
	s := NewClientStore(db)

	client, plaintext, err := s.Register(context.Background(), "crawler", storage.ClientTypeService, []string{"read"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if !strings.HasPrefix(client.ClientID, "client_") {
		t.Errorf("client id should carry the client_ prefix, got %q", client.ClientID)
	}
	if len(client.ClientID) != len("client_")+16 {
		t.Errorf("client id suffix should be 16 hex chars, got %q", client.ClientID)
	}
	if plaintext == "" {
		t.Fatal("plaintext secret should be returned once")
	}
	if client.SecretHash == plaintext {
		t.Error("plaintext must not be persisted")
	}
	if client.SecretHash != secret.HashSHA256(plaintext) {
		t.Error("stored hash should be the SHA-256 digest of the secret")
	}
	if !client.IsActive {
		t.Error("new clients should be active")
	}
}

func TestClientStore_Authenticate(t *testing.T) {
	db := newTestDB(t)
	s := NewClientStore(db)
	ctx := context.Background()

	client, plaintext, err := s.Register(ctx, "agent", storage.ClientTypeAIAgent, nil)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, ok := s.Authenticate(ctx, client.ClientID, plaintext)
	if !ok {
		t.Fatal("correct secret should authenticate")
	}
	if got.ClientID != client.ClientID {
		t.Errorf("expected %s, got %s", client.ClientID, got.ClientID)
	}

	// Unknown id and wrong secret fail the same way.
	if _, ok := s.Authenticate(ctx, "client_0000000000000000", plaintext); ok {
		t.Error("unknown client id should not authenticate")
	}
	if _, ok := s.Authenticate(ctx, client.ClientID, "wrong-secret"); ok {
		t.Error("wrong secret should not authenticate")
	}
}

func TestClientStore_DeactivatedClientCannotAuthenticate(t *testing.T) {
	db := newTestDB(t)
	s := NewClientStore(db)
	ctx := context.Background()

	client, plaintext, err := s.Register(ctx, "mcp", storage.ClientTypeMCPServer, nil)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s.Deactivate(ctx, client.ClientID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	if _, ok := s.Authenticate(ctx, client.ClientID, plaintext); ok {
		t.Error("deactivated client should not authenticate")
	}
	if _, err := s.Get(ctx, client.ClientID); !errors.Is(err, ErrClientNotFound) {
		t.Errorf("deactivated client should not be retrievable, got %v", err)
	}
	if err := s.Deactivate(ctx, client.ClientID); !errors.Is(err, ErrClientNotFound) {
		t.Errorf("second deactivate should report not found, got %v", err)
	}
}

func TestClientStore_List(t *testing.T) {
	db := newTestDB(t)
	s := NewClientStore(db)
	ctx := context.Background()

	first, _, err := s.Register(ctx, "first", storage.ClientTypeService, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := s.Register(ctx, "second", storage.ClientTypeService, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Deactivate(ctx, second.ClientID); err != nil {
		t.Fatal(err)
	}

	clients, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(clients) != 1 {
		t.Fatalf("only active clients should be listed, got %d", len(clients))
	}
	if clients[0].ClientID != first.ClientID {
		t.Errorf("expected %s, got %s", first.ClientID, clients[0].ClientID)
	}
}

func TestClientStore_Update(t *testing.T) {
	db := newTestDB(t)
	s := NewClientStore(db)
	ctx := context.Background()

	client, _, err := s.Register(ctx, "old-name", storage.ClientTypeService, []string{"read"})
	if err != nil {
		t.Fatal(err)
	}

	name := "new-name"
	updated, err := s.Update(ctx, client.ClientID, &name, []string{"read", "write"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "new-name" {
		t.Errorf("expected new-name, got %q", updated.Name)
	}
	if len(updated.Scopes) != 2 {
		t.Errorf("expected 2 scopes, got %v", updated.Scopes)
	}

	// Nil fields are left unchanged.
	unchanged, err := s.Update(ctx, client.ClientID, nil, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if unchanged.Name != "new-name" || len(unchanged.Scopes) != 2 {
		t.Errorf("nil fields should not change the record: %+v", unchanged)
	}

	if _, err := s.Update(ctx, "client_missing", &name, nil); !errors.Is(err, ErrClientNotFound) {
		t.Errorf("expected ErrClientNotFound, got %v", err)
	}
}

func TestClientStore_Delete(t *testing.T) {
	db := newTestDB(t)
	s := NewClientStore(db)
	ctx := context.Background()

	client, _, err := s.Register(ctx, "doomed", storage.ClientTypeService, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Delete(ctx, client.ClientID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, client.ClientID); !errors.Is(err, ErrClientNotFound) {
		t.Errorf("second delete should report not found, got %v", err)
	}
}
