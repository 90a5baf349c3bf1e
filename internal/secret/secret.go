// Package secret generates opaque credentials and the digests stored in
// their place. Raw secrets are never persisted, only their hashes.
package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
)

// RandomURLSafe returns a URL-safe random string carrying n bytes of entropy.
func RandomURLSafe(n int) (string, error) {
	b, err := randomBytes(n)
	if err != nil {
		return "", fmt.Errorf("secret: generate: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// RandomHex returns a hex-encoded random string carrying n bytes of entropy.
func RandomHex(n int) (string, error) {
	b, err := randomBytes(n)
	if err != nil {
		return "", fmt.Errorf("secret: generate: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashSHA256 returns the SHA-256 hex digest of the input string.
func HashSHA256(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}
