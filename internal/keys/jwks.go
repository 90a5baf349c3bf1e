package keys

import (
	"encoding/base64"
	"math/big"
)

// JWK is a single JSON Web Key in the published set.
type JWK struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// Set is a JSON Web Key Set document.
type Set struct {
	Keys []JWK `json:"keys"`
}

// JWKS returns the key set describing the active verification key. Third
// parties verify tokens against this document without being able to mint them.
func (p *Provider) JWKS() (Set, error) {
	pub, err := p.Verification()
	if err != nil {
		return Set{}, err
	}

	return Set{
		Keys: []JWK{{
			Kty: "RSA",
			Use: "sig",
			Alg: "RS256",
			Kid: KeyID,
			N:   b64BigInt(pub.N),
			E:   b64BigInt(big.NewInt(int64(pub.E))),
		}},
	}, nil
}

// b64BigInt encodes a big integer as base64url without padding, big-endian,
// minimal byte length.
func b64BigInt(n *big.Int) string {
	return base64.RawURLEncoding.EncodeToString(n.Bytes())
}
