// Package token encodes and decodes the signed access tokens this service
// issues: RS256-signed JWTs in two kinds, user sessions and client
// credentials. Verification is stateless; any holder of the public key can
// perform it, which is why issuance and the JWKS document live apart.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/authentic/internal/keys"
)

var (
	// ErrTokenExpired reports a structurally valid, correctly signed token
	// whose expiry has passed. Distinguished from ErrTokenInvalid so callers
	// can tell clients to re-authenticate rather than retry.
	ErrTokenExpired = errors.New("token: expired")

	// ErrTokenInvalid reports a bad signature, malformed structure, or a
	// token of the wrong kind.
	ErrTokenInvalid = errors.New("token: invalid")
)

// Codec signs and verifies access tokens using the process key pair.
type Codec struct {
	provider *keys.Provider
}

// NewCodec creates a codec backed by the given key provider.
func NewCodec(provider *keys.Provider) *Codec {
	return &Codec{provider: provider}
}

// IssueUserToken signs a user-session access token.
func (c *Codec) IssueUserToken(userID, email, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := UserClaims{
		Email: email,
		Role:  role,
		Type:  KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return c.sign(claims)
}

// IssueClientToken signs a client-credentials access token.
func (c *Codec) IssueClientToken(clientID, clientType string, scopes []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := ClientClaims{
		ClientType: clientType,
		Scopes:     scopes,
		Type:       KindClientCredentials,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return c.sign(claims)
}

// VerifyUserToken verifies signature and expiry and requires kind "access".
func (c *Codec) VerifyUserToken(raw string) (*UserClaims, error) {
	claims := &UserClaims{}
	if err := c.parse(raw, claims); err != nil {
		return nil, err
	}
	if claims.Type != KindAccess {
		return nil, fmt.Errorf("%w: wrong token kind", ErrTokenInvalid)
	}
	return claims, nil
}

// VerifyClientToken verifies signature and expiry and requires kind
// "client_credentials".
func (c *Codec) VerifyClientToken(raw string) (*ClientClaims, error) {
	claims := &ClientClaims{}
	if err := c.parse(raw, claims); err != nil {
		return nil, err
	}
	if claims.Type != KindClientCredentials {
		return nil, fmt.Errorf("%w: wrong token kind", ErrTokenInvalid)
	}
	return claims, nil
}

// Identity is the discriminated result of verifying a bearer token of
// unknown kind. Exactly one of User and Client is non-nil.
type Identity struct {
	User   *UserClaims
	Client *ClientClaims
}

// Verify decodes a bearer token of either kind. Transport middleware uses it
// to produce a typed identity; handlers then require the kind they need.
func (c *Codec) Verify(raw string) (*Identity, error) {
	if user, err := c.VerifyUserToken(raw); err == nil {
		return &Identity{User: user}, nil
	} else if errors.Is(err, ErrTokenExpired) {
		return nil, err
	}
	client, err := c.VerifyClientToken(raw)
	if err != nil {
		return nil, err
	}
	return &Identity{Client: client}, nil
}

func (c *Codec) sign(claims jwt.Claims) (string, error) {
	key, err := c.provider.Signing()
	if err != nil {
		return "", err
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = keys.KeyID
	signed, err := tok.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

func (c *Codec) parse(raw string, claims jwt.Claims) error {
	key, err := c.provider.Verification()
	if err != nil {
		return err
	}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !tok.Valid {
		return ErrTokenInvalid
	}
	return nil
}
