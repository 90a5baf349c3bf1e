package auth

import (
	apperrors "github.com/kbukum/authentic/internal/errors"
	"github.com/kbukum/authentic/internal/storage"
	"github.com/kbukum/authentic/internal/token"
)

// RequireAdmin checks that the verified user claims carry the admin role.
func RequireAdmin(claims *token.UserClaims) error {
	if claims == nil || claims.Role != string(storage.RoleAdmin) {
		return apperrors.InsufficientPermission("Admin role required.")
	}
	return nil
}

// RequireScopes checks that the verified client claims grant every required
// scope.
func RequireScopes(claims *token.ClientClaims, required []string) error {
	if claims == nil {
		return apperrors.InsufficientPermission("")
	}
	granted := make(map[string]struct{}, len(claims.Scopes))
	for _, s := range claims.Scopes {
		granted[s] = struct{}{}
	}
	for _, r := range required {
		if _, ok := granted[r]; !ok {
			return apperrors.InsufficientPermission("Missing required scope: " + r)
		}
	}
	return nil
}
