// Package auth composes keys, tokens, stores, and the rate limiter into the
// login, refresh, logout, and client-authentication flows, and enforces
// domain policy: allowed email suffix, token-kind discrimination, role and
// scope checks. Handlers call into this package and translate nothing.
package auth

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/kbukum/authentic/internal/errors"
	"github.com/kbukum/authentic/internal/google"
	"github.com/kbukum/authentic/internal/logger"
	"github.com/kbukum/authentic/internal/ratelimit"
	"github.com/kbukum/authentic/internal/storage"
	"github.com/kbukum/authentic/internal/store"
	"github.com/kbukum/authentic/internal/token"
)

// IdentityProvider is the external OAuth collaborator. Production wires the
// Google adapter; tests substitute a stub.
type IdentityProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*google.Profile, error)
}

// TokenPair is the issued credential set returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Service orchestrates the authentication flows.
type Service struct {
	cfg      Config
	codec    *token.Codec
	users    *store.UserStore
	refresh  *store.RefreshTokenStore
	clients  *store.ClientStore
	limiter  *ratelimit.Limiter
	limits   ratelimit.Config
	provider IdentityProvider
	audit    *logger.Logger
}

// NewService wires the orchestrator.
func NewService(cfg Config, codec *token.Codec, users *store.UserStore,
	refresh *store.RefreshTokenStore, clients *store.ClientStore,
	limiter *ratelimit.Limiter, limits ratelimit.Config,
	provider IdentityProvider, log *logger.Logger) *Service {
	cfg.ApplyDefaults()
	limits.ApplyDefaults()
	return &Service{
		cfg:      cfg,
		codec:    codec,
		users:    users,
		refresh:  refresh,
		clients:  clients,
		limiter:  limiter,
		limits:   limits,
		provider: provider,
		audit:    log.WithComponent("audit"),
	}
}

// LoginURL rate-limits a login attempt and returns the provider redirect.
// Only this entry point spends the login budget; the callback is reached
// one redirect later and is not charged again.
func (s *Service) LoginURL(ip, state string) (string, error) {
	if err := s.checkLimit(ip, ratelimit.EndpointLogin, s.limits.Login); err != nil {
		return "", err
	}
	return s.provider.AuthURL(state), nil
}

// Login completes the provider callback: exchange the code, enforce the
// allowed email domain, find or create the user, and issue a token pair.
func (s *Service) Login(ctx context.Context, ip, code string) (*TokenPair, *storage.User, error) {
	profile, err := s.provider.Exchange(ctx, code)
	if err != nil {
		s.auditEvent("login", "unknown", ip, false)
		return nil, nil, apperrors.OAuthFailed(err)
	}

	if !s.allowedEmail(profile.Email) {
		s.auditEvent("login", profile.Email, ip, false)
		return nil, nil, apperrors.EmailDomainRejected(s.cfg.AllowedEmailDomain)
	}

	user, err := s.users.FindOrCreateByGoogleID(ctx, store.Profile{
		GoogleID: profile.SubjectID,
		Email:    profile.Email,
		Name:     profile.Name,
		Picture:  profile.Picture,
	})
	if err != nil {
		s.auditEvent("login", profile.Email, ip, false)
		return nil, nil, apperrors.Internal(err)
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		s.auditEvent("login", user.Email, ip, false)
		return nil, nil, err
	}

	s.auditEvent("login", user.Email, ip, true)
	return pair, user, nil
}

// Refresh redeems a refresh secret and issues a rotated token pair. The old
// secret is consumed by the redemption itself, before the new issuance is
// validated, so a failure past that point still leaves it unusable.
func (s *Service) Refresh(ctx context.Context, ip, refreshSecret string) (*TokenPair, error) {
	if err := s.checkLimit(ip, ratelimit.EndpointRefresh, s.limits.Refresh); err != nil {
		return nil, err
	}

	userID, err := s.refresh.Redeem(ctx, refreshSecret)
	if err != nil {
		s.auditEvent("token_refresh", "unknown", ip, false)
		switch {
		case errors.Is(err, store.ErrRefreshTokenExpired):
			return nil, apperrors.TokenExpired()
		case errors.Is(err, store.ErrRefreshTokenInvalid):
			return nil, apperrors.InvalidCredentials("Invalid refresh token.")
		default:
			return nil, apperrors.Internal(err)
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.auditEvent("token_refresh", userID, ip, false)
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, apperrors.UserNotFound()
		}
		return nil, apperrors.Internal(err)
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		s.auditEvent("token_refresh", user.Email, ip, false)
		return nil, err
	}

	s.auditEvent("token_refresh", user.Email, ip, true)
	return pair, nil
}

// Logout revokes every live refresh token of the user and returns the count.
func (s *Service) Logout(ctx context.Context, userID, ip string) (int64, error) {
	count, err := s.refresh.RevokeAllForUser(ctx, userID)
	if err != nil {
		s.auditEvent("logout", userID, ip, false)
		return 0, apperrors.Internal(err)
	}
	s.auditEvent("logout", userID, ip, true)
	return count, nil
}

// ClientAuth authenticates a service client and issues a short-lived client
// token. No refresh token: clients re-request when theirs expires.
func (s *Service) ClientAuth(ctx context.Context, ip, clientID, clientSecret string) (*TokenPair, error) {
	if err := s.checkLimit(ip, ratelimit.EndpointClientAuth, s.limits.ClientAuth); err != nil {
		return nil, err
	}

	client, ok := s.clients.Authenticate(ctx, clientID, clientSecret)
	if !ok {
		s.auditEvent("client_auth", clientID, ip, false)
		return nil, apperrors.InvalidCredentials("Invalid client credentials.")
	}

	ttl := s.cfg.AccessTokenTTL()
	access, err := s.codec.IssueClientToken(client.ClientID, string(client.ClientType), client.Scopes, ttl)
	if err != nil {
		s.auditEvent("client_auth", clientID, ip, false)
		return nil, apperrors.Internal(err)
	}

	s.auditEvent("client_auth", clientID, ip, true)
	return &TokenPair{
		AccessToken: access,
		TokenType:   "bearer",
		ExpiresIn:   int(ttl.Seconds()),
	}, nil
}

// GetUser loads a user for the /me endpoint.
func (s *Service) GetUser(ctx context.Context, userID string) (*storage.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, apperrors.UserNotFound()
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

// VerifyBearer decodes a bearer token of either kind into a typed identity.
func (s *Service) VerifyBearer(raw string) (*token.Identity, error) {
	ident, err := s.codec.Verify(raw)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			return nil, apperrors.TokenExpired()
		}
		return nil, apperrors.InvalidCredentials("Invalid authentication token.")
	}
	return ident, nil
}

// issuePair mints a fresh access token and refresh secret for the user.
func (s *Service) issuePair(ctx context.Context, user *storage.User) (*TokenPair, error) {
	ttl := s.cfg.AccessTokenTTL()
	access, err := s.codec.IssueUserToken(user.ID, user.Email, string(user.Role), ttl)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	refreshSecret, err := s.refresh.Issue(ctx, user.ID, s.cfg.RefreshTokenTTL())
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refreshSecret,
		TokenType:    "bearer",
		ExpiresIn:    int(ttl.Seconds()),
	}, nil
}

func (s *Service) allowedEmail(email string) bool {
	return strings.HasSuffix(email, "@"+s.cfg.AllowedEmailDomain)
}

func (s *Service) checkLimit(identity, endpoint string, rule ratelimit.Rule) error {
	err := s.limiter.Check(identity, endpoint, rule.MaxRequests, rule.Window())
	if err == nil {
		return nil
	}
	var le *ratelimit.LimitError
	if errors.As(err, &le) {
		return apperrors.RateLimitExceeded(le.RetryAfter)
	}
	return apperrors.Internal(err)
}

// auditEvent records an authentication event. Logging is a side effect, not
// a control-flow dependency: failures here never fail the request.
func (s *Service) auditEvent(event, subject, ip string, success bool) {
	s.audit.Info("Auth event", map[string]interface{}{
		logger.FieldEvent:    event,
		logger.FieldSubject:  subject,
		logger.FieldClientIP: ip,
		logger.FieldSuccess:  success,
	})
}
