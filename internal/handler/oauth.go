package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/authentic/internal/errors"
	"github.com/kbukum/authentic/internal/server"
)

type clientTokenRequest struct {
	GrantType    string `form:"grant_type" json:"grant_type" binding:"required"`
	ClientID     string `form:"client_id" json:"client_id" binding:"required"`
	ClientSecret string `form:"client_secret" json:"client_secret" binding:"required"`
}

// ClientToken implements the client-credentials grant. Credentials are
// accepted as form fields or JSON.
func (h *Handler) ClientToken(c *gin.Context) {
	var req clientTokenRequest
	if err := c.ShouldBind(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation("grant_type, client_id, and client_secret are required"))
		return
	}

	if req.GrantType != "client_credentials" {
		server.RespondWithError(c, apperrors.Validation("grant_type must be client_credentials"))
		return
	}

	pair, err := h.svc.ClientAuth(c.Request.Context(), c.ClientIP(), req.ClientID, req.ClientSecret)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	server.RespondOK(c, pair)
}
