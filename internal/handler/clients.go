package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/authentic/internal/errors"
	"github.com/kbukum/authentic/internal/server"
	"github.com/kbukum/authentic/internal/storage"
	"github.com/kbukum/authentic/internal/store"
)

// ClientResponse is the public shape of a registered client. The secret is
// only ever present in the registration response.
type ClientResponse struct {
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret,omitempty"`
	Name         string    `json:"name"`
	ClientType   string    `json:"client_type"`
	Scopes       []string  `json:"scopes"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

func toClientResponse(cl *storage.Client, secret string) ClientResponse {
	return ClientResponse{
		ClientID:     cl.ClientID,
		ClientSecret: secret,
		Name:         cl.Name,
		ClientType:   string(cl.ClientType),
		Scopes:       cl.Scopes,
		IsActive:     cl.IsActive,
		CreatedAt:    cl.CreatedAt,
	}
}

type createClientRequest struct {
	Name       string   `json:"name" binding:"required"`
	ClientType string   `json:"client_type" binding:"required,clienttype"`
	Scopes     []string `json:"scopes"`
}

// CreateClient registers a new client. The plaintext secret is returned once
// and cannot be recovered afterwards.
func (h *Handler) CreateClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation("name and a valid client_type are required"))
		return
	}

	client, secret, err := h.clients.Register(c.Request.Context(), req.Name, storage.ClientType(req.ClientType), req.Scopes)
	if err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}

	server.RespondCreated(c, toClientResponse(client, secret))
}

// ListClients returns all active clients.
func (h *Handler) ListClients(c *gin.Context) {
	clients, err := h.clients.List(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}

	out := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		out = append(out, toClientResponse(&clients[i], ""))
	}
	server.RespondOK(c, gin.H{"clients": out})
}

// GetClient returns a single client by its client_id.
func (h *Handler) GetClient(c *gin.Context) {
	client, err := h.clients.Get(c.Request.Context(), c.Param("client_id"))
	if err != nil {
		server.RespondWithError(c, mapClientErr(err, c.Param("client_id")))
		return
	}
	server.RespondOK(c, toClientResponse(client, ""))
}

type updateClientRequest struct {
	Name   *string  `json:"name"`
	Scopes []string `json:"scopes"`
}

// UpdateClient applies a partial update to a client's name and scopes.
func (h *Handler) UpdateClient(c *gin.Context) {
	var req updateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation("invalid request body"))
		return
	}

	client, err := h.clients.Update(c.Request.Context(), c.Param("client_id"), req.Name, req.Scopes)
	if err != nil {
		server.RespondWithError(c, mapClientErr(err, c.Param("client_id")))
		return
	}
	server.RespondOK(c, toClientResponse(client, ""))
}

// DeleteClient deactivates a client so its credentials stop authenticating.
// With ?permanent=true the row is removed entirely.
func (h *Handler) DeleteClient(c *gin.Context) {
	id := c.Param("client_id")

	var err error
	if c.Query("permanent") == "true" {
		err = h.clients.Delete(c.Request.Context(), id)
	} else {
		err = h.clients.Deactivate(c.Request.Context(), id)
	}
	if err != nil {
		server.RespondWithError(c, mapClientErr(err, id))
		return
	}
	server.RespondNoContent(c)
}

func mapClientErr(err error, clientID string) error {
	if errors.Is(err, store.ErrClientNotFound) {
		return apperrors.ClientNotFound(clientID)
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal(err)
}
