package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/kbukum/authentic/internal/errors"
	"github.com/kbukum/authentic/internal/server"
	"github.com/kbukum/authentic/internal/server/middleware"
	"github.com/kbukum/authentic/internal/storage"
)

const (
	stateCookie       = "oauth_state"
	stateCookieMaxAge = 600 // seconds
)

// UserResponse is the public shape of a user.
type UserResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	Role    string `json:"role"`
}

func toUserResponse(u *storage.User) UserResponse {
	return UserResponse{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Picture: u.Picture,
		Role:    string(u.Role),
	}
}

// GoogleLogin starts the login flow: a random state value is bound to the
// browser via cookie and the client is redirected to the Google consent page.
func (h *Handler) GoogleLogin(c *gin.Context) {
	state := uuid.NewString()

	url, err := h.svc.LoginURL(c.ClientIP(), state)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	c.SetCookie(stateCookie, state, stateCookieMaxAge, "/auth", "", false, true)
	c.Redirect(http.StatusFound, url)
}

type loginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	User         UserResponse `json:"user"`
}

// GoogleCallback completes the login flow. The state parameter must match
// the cookie set by GoogleLogin.
func (h *Handler) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		server.RespondWithError(c, apperrors.Validation("code and state query parameters are required"))
		return
	}

	expected, err := c.Cookie(stateCookie)
	if err != nil || expected != state {
		server.RespondWithError(c, apperrors.OAuthFailed(nil).WithDetail("reason", "state mismatch"))
		return
	}
	c.SetCookie(stateCookie, "", -1, "/auth", "", false, true)

	pair, user, err := h.svc.Login(c.Request.Context(), c.ClientIP(), code)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	server.RespondOK(c, loginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
		User:         toUserResponse(user),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh rotates a refresh token: the presented secret is revoked and a new
// pair is issued.
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation("refresh_token is required"))
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), c.ClientIP(), req.RefreshToken)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	server.RespondOK(c, pair)
}

// Logout revokes every outstanding refresh token for the authenticated user.
func (h *Handler) Logout(c *gin.Context) {
	identity, _ := middleware.IdentityFrom(c)

	revoked, err := h.svc.Logout(c.Request.Context(), identity.User.Subject, c.ClientIP())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	server.RespondOK(c, gin.H{"revoked": revoked})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *gin.Context) {
	identity, _ := middleware.IdentityFrom(c)

	user, err := h.svc.GetUser(c.Request.Context(), identity.User.Subject)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	server.RespondOK(c, toUserResponse(user))
}
