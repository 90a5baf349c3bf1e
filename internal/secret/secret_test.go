package secret

import (
	"encoding/base64"
	"encoding/hex"
	"testing"
)

func TestRandomURLSafe(t *testing.T) {
	a, err := RandomURLSafe(32)
	if err != nil {
		t.Fatalf("RandomURLSafe: %v", err)
	}
	b, err := RandomURLSafe(32)
	if err != nil {
		t.Fatalf("RandomURLSafe: %v", err)
	}
	if a == b {
		t.Error("two secrets should not collide")
	}
	decoded, err := base64.RawURLEncoding.DecodeString(a)
	if err != nil {
		t.Fatalf("secret should be unpadded base64url: %v", err)
	}
	if len(decoded) != 32 {
		t.Errorf("expected 32 bytes of entropy, got %d", len(decoded))
	}
}

func TestRandomHex(t *testing.T) {
	s, err := RandomHex(8)
	if err != nil {
		t.Fatalf("RandomHex: %v", err)
	}
	if len(s) != 16 {
		t.Errorf("8 bytes should encode to 16 hex chars, got %d", len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		t.Errorf("not valid hex: %v", err)
	}
}

func TestHashSHA256(t *testing.T) {
	// Known vector for "abc".
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := HashSHA256("abc"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if HashSHA256("a") == HashSHA256("b") {
		t.Error("distinct inputs should produce distinct digests")
	}
}
