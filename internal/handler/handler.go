// Package handler registers the HTTP surface: Google login, token refresh,
// client-credentials grant, JWKS discovery, and admin client management.
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/kbukum/authentic/internal/auth"
	"github.com/kbukum/authentic/internal/keys"
	"github.com/kbukum/authentic/internal/logger"
	"github.com/kbukum/authentic/internal/ratelimit"
	"github.com/kbukum/authentic/internal/server/middleware"
	"github.com/kbukum/authentic/internal/storage"
	"github.com/kbukum/authentic/internal/store"
)

// Handler holds the dependencies shared by all routes.
type Handler struct {
	svc     *auth.Service
	clients *store.ClientStore
	keys    *keys.Provider
	version string
	log     *logger.Logger
}

// New creates a Handler.
func New(svc *auth.Service, clients *store.ClientStore, provider *keys.Provider, version string, log *logger.Logger) *Handler {
	return &Handler{
		svc:     svc,
		clients: clients,
		keys:    provider,
		version: version,
		log:     log.WithComponent("handler"),
	}
}

// RegisterValidators adds custom binding validators. Call once before
// registering routes.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("clienttype", func(fl validator.FieldLevel) bool {
			return storage.ValidClientType(fl.Field().String())
		})
	}
}

// RegisterRoutes mounts all routes on the engine. The limiter backs the
// general API rule; auth flows apply their own endpoint rules internally.
func (h *Handler) RegisterRoutes(engine *gin.Engine, limiter *ratelimit.Limiter, limits ratelimit.Config) {
	bearer := middleware.BearerAuth(h.svc.VerifyBearer)
	apiLimit := middleware.RateLimit(limiter, limits.API, ratelimit.EndpointAPI)

	engine.GET("/health", h.Health)
	engine.GET("/.well-known/jwks.json", h.JWKS)

	authGroup := engine.Group("/auth")
	{
		authGroup.GET("/google", h.GoogleLogin)
		authGroup.GET("/google/callback", h.GoogleCallback)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", bearer, middleware.RequireUserRole(), h.Logout)
		authGroup.GET("/me", apiLimit, bearer, middleware.RequireUserRole(), h.Me)
	}

	engine.POST("/oauth/token", h.ClientToken)

	admin := engine.Group("/admin", apiLimit, bearer, middleware.RequireAdmin())
	{
		admin.POST("/clients", h.CreateClient)
		admin.GET("/clients", h.ListClients)
		admin.GET("/clients/:client_id", h.GetClient)
		admin.PATCH("/clients/:client_id", h.UpdateClient)
		admin.DELETE("/clients/:client_id", h.DeleteClient)
	}
}
