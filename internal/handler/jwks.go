package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/authentic/internal/errors"
	"github.com/kbukum/authentic/internal/server"
)

// JWKS publishes the RSA public key in JWK Set form so resource servers can
// verify tokens offline.
func (h *Handler) JWKS(c *gin.Context) {
	set, err := h.keys.JWKS()
	if err != nil {
		server.RespondWithError(c, apperrors.KeyUnavailable(err))
		return
	}
	server.RespondOK(c, set)
}
