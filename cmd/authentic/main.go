// Command authentic runs the authentication service: Google sign-in,
// RS256 token issuance with JWKS discovery, refresh rotation, and the
// client-credentials grant for machine callers.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/authentic/internal/auth"
	"github.com/kbukum/authentic/internal/config"
	"github.com/kbukum/authentic/internal/google"
	"github.com/kbukum/authentic/internal/handler"
	"github.com/kbukum/authentic/internal/keys"
	"github.com/kbukum/authentic/internal/logger"
	"github.com/kbukum/authentic/internal/observability"
	"github.com/kbukum/authentic/internal/ratelimit"
	"github.com/kbukum/authentic/internal/server"
	"github.com/kbukum/authentic/internal/storage"
	"github.com/kbukum/authentic/internal/store"
	"github.com/kbukum/authentic/internal/token"
)

const sweepInterval = 5 * time.Minute

func main() {
	configPath := flag.String("config", "", "path to config file (default: ./config.yaml if present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Configuration error", map[string]interface{}{"error": err.Error()})
	}

	logger.Init(cfg.Logging)
	log := logger.GetGlobalLogger()
	log.Info("Starting service", map[string]interface{}{
		"service":     cfg.Name,
		"version":     cfg.Version,
		"environment": cfg.Environment,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.Tracing, cfg.Name, cfg.Version, cfg.Environment)
	if err != nil {
		log.Fatal("Tracer init failed", map[string]interface{}{"error": err.Error()})
	}

	db, err := storage.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("Database open failed", map[string]interface{}{"error": err.Error()})
	}

	provider := keys.NewProvider(cfg.Keys)
	if _, err := provider.Signing(); err != nil {
		log.Fatal("Key resolution failed", map[string]interface{}{"error": err.Error()})
	}
	codec := token.NewCodec(provider)

	users := store.NewUserStore(db)
	refresh := store.NewRefreshTokenStore(db)
	clients := store.NewClientStore(db)

	limiter := ratelimit.NewLimiter()
	limiter.StartSweeper(ctx, sweepInterval)
	go purgeExpiredLoop(ctx, refresh, log)

	verifier := google.NewVerifier(cfg.Google)
	svc := auth.NewService(cfg.Auth, codec, users, refresh, clients, limiter, cfg.RateLimit, verifier, log)

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware()

	handler.RegisterValidators()
	h := handler.New(svc, clients, provider, cfg.Version, log)
	h.RegisterRoutes(srv.Engine(), limiter, cfg.RateLimit)

	if err := srv.Start(ctx); err != nil {
		log.Fatal("Server start failed", map[string]interface{}{"error": err.Error()})
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("Server stop failed", map[string]interface{}{"error": err.Error()})
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("Tracer shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	if err := db.Close(); err != nil {
		log.Error("Database close failed", map[string]interface{}{"error": err.Error()})
	}
	log.Info("Service stopped")
}

// purgeExpiredLoop removes expired refresh token rows on the same cadence as
// the limiter sweep. Redeem re-checks expiry, so this is housekeeping only.
func purgeExpiredLoop(ctx context.Context, refresh *store.RefreshTokenStore, log *logger.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := refresh.PurgeExpired(ctx); err != nil {
				log.Warn("Refresh token purge failed", map[string]interface{}{"error": err.Error()})
			} else if n > 0 {
				log.Debug("Purged expired refresh tokens", map[string]interface{}{"count": n})
			}
		}
	}
}
