package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authentic/internal/auth"
	apperrors "github.com/kbukum/authentic/internal/errors"
	"github.com/kbukum/authentic/internal/token"
)

const identityKey = "identity"

// BearerVerifier validates a raw bearer token and returns the identity it
// carries.
type BearerVerifier func(raw string) (*token.Identity, error)

// BearerAuth returns middleware that requires a valid Bearer token. The
// verified identity is stored in the Gin context for handlers to read via
// IdentityFrom.
func BearerAuth(verify BearerVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, apperrors.InvalidCredentials("Authorization header required."))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortWithError(c, apperrors.InvalidCredentials("Invalid authorization header format."))
			return
		}

		identity, err := verify(parts[1])
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// IdentityFrom returns the identity stored by BearerAuth.
func IdentityFrom(c *gin.Context) (*token.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*token.Identity)
	return identity, ok
}

// RequireUserRole returns middleware that requires the bearer to be a user
// token. It must run after BearerAuth.
func RequireUserRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok || identity.User == nil {
			abortWithError(c, apperrors.InvalidCredentials("User token required."))
			return
		}
		c.Next()
	}
}

// RequireAdmin returns middleware that requires a user token with the admin
// role. It must run after BearerAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok || identity.User == nil {
			abortWithError(c, apperrors.InvalidCredentials("User token required."))
			return
		}
		if err := auth.RequireAdmin(identity.User); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// RequireScopes returns middleware that requires a client-credentials token
// granting all of the given scopes. It must run after BearerAuth.
func RequireScopes(scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok || identity.Client == nil {
			abortWithError(c, apperrors.InvalidCredentials("Client token required."))
			return
		}
		if err := auth.RequireScopes(identity.Client, scopes); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

func abortWithError(c *gin.Context, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	for k, v := range appErr.Headers {
		c.Header(k, v)
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse(c.Request.URL.Path))
}
