package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authentic/internal/logger"
	"github.com/kbukum/authentic/internal/ratelimit"
	"github.com/kbukum/authentic/internal/token"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestRequestID_Generated(t *testing.T) {
	engine := newEngine()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Header().Get("X-Request-Id") == "" {
		t.Error("a request id should be generated")
	}
}

func TestRequestID_Propagated(t *testing.T) {
	engine := newEngine()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "caller-id")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-Id"); got != "caller-id" {
		t.Errorf("caller-supplied id should be kept, got %q", got)
	}
}

func TestRequestID_StoredForLogging(t *testing.T) {
	engine := newEngine()
	engine.Use(RequestID())

	var fromHelper, fromField string
	engine.GET("/", func(c *gin.Context) {
		fromHelper = RequestIDFrom(c)
		fromField = c.GetString(logger.FieldRequestID)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "caller-id")
	engine.ServeHTTP(httptest.NewRecorder(), req)

	if fromHelper != "caller-id" {
		t.Errorf("RequestIDFrom should return the assigned id, got %q", fromHelper)
	}
	if fromField != "caller-id" {
		t.Errorf("id should live under the shared log field key, got %q", fromField)
	}
}

func TestCORS_PreflightAndHeaders(t *testing.T) {
	engine := newEngine()
	engine.Use(CORS(CORSConfig{
		AllowedOrigins: []string{"https://app.example.com"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Authorization"},
	}))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight should return 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("unexpected allow-origin %q", got)
	}

	// Disallowed origin gets no CORS headers.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("disallowed origin should not receive CORS headers")
	}
}

func TestRecovery(t *testing.T) {
	engine := newEngine()
	engine.Use(Recovery())
	engine.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("panic should produce 500, got %d", w.Code)
	}
}

func TestRequireScopes_Middleware(t *testing.T) {
	verify := func(raw string) (*token.Identity, error) {
		switch raw {
		case "reader":
			return &token.Identity{Client: &token.ClientClaims{Scopes: []string{"read"}}}, nil
		case "writer":
			return &token.Identity{Client: &token.ClientClaims{Scopes: []string{"read", "write"}}}, nil
		default:
			return &token.Identity{User: &token.UserClaims{}}, nil
		}
	}

	engine := newEngine()
	engine.GET("/scoped", BearerAuth(verify), RequireScopes("read", "write"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func(bearer string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/scoped", nil)
		req.Header.Set("Authorization", "Bearer "+bearer)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	if w := do("writer"); w.Code != http.StatusOK {
		t.Errorf("token with all scopes should pass, got %d", w.Code)
	}
	if w := do("reader"); w.Code != http.StatusForbidden {
		t.Errorf("token missing a scope should get 403, got %d", w.Code)
	}
	// A user token is not a client token, however privileged.
	if w := do("user"); w.Code != http.StatusUnauthorized {
		t.Errorf("user token should get 401, got %d", w.Code)
	}
}

func TestRateLimit_Middleware(t *testing.T) {
	engine := newEngine()
	limiter := ratelimit.NewLimiter()
	engine.Use(RateLimit(limiter, ratelimit.Rule{MaxRequests: 2, WindowSeconds: 60}, ratelimit.EndpointAPI))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d should pass, got %d", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("3rd request should be limited, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("limited response should carry Retry-After")
	}
}
