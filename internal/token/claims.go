package token

import "github.com/golang-jwt/jwt/v5"

// Token kinds carried in the "type" claim. A token of one kind is never
// accepted where the other is required; the kind is checked after the
// signature has been verified.
const (
	KindAccess            = "access"
	KindClientCredentials = "client_credentials"
)

// UserClaims is the claim set of a user-session access token.
type UserClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

// ClientClaims is the claim set of a client-credentials access token.
type ClientClaims struct {
	ClientType string   `json:"client_type"`
	Scopes     []string `json:"scopes"`
	Type       string   `json:"type"`
	jwt.RegisteredClaims
}
