package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/authentic/internal/server"
)

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	server.RespondOK(c, gin.H{
		"status":  "ok",
		"service": "authentic",
		"version": h.version,
	})
}
