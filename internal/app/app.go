// Package app wires configuration, storage, the authorization pipeline, and
// the realtime hub into a running HTTP server.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pdfgate/pdfgate/internal/authz"
	"github.com/pdfgate/pdfgate/internal/config"
	"github.com/pdfgate/pdfgate/internal/db"
	"github.com/pdfgate/pdfgate/internal/http/api"
	"github.com/pdfgate/pdfgate/internal/http/api/admin"
	"github.com/pdfgate/pdfgate/internal/http/api/front"
	"github.com/pdfgate/pdfgate/internal/ratelimit"
	"github.com/pdfgate/pdfgate/internal/realtime"
	"github.com/pdfgate/pdfgate/internal/security"
	"github.com/pdfgate/pdfgate/internal/subscription"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// RunServer boots the platform and serves until the context is canceled.
func RunServer(ctx context.Context, cfg config.Config) error {
	conn, errOpen := db.Open(cfg.DSN())
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	if errSeed := Seed(ctx, conn, cfg.Seed); errSeed != nil {
		return errSeed
	}

	engine := NewEngine(conn, cfg)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("server listening")
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
			return
		}
		errCh <- nil
	}()

	select {
	case errServe := <-errCh:
		return errServe
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
		return errShutdown
	}
	return <-errCh
}

// NewEngine assembles the gin engine with all routes and middleware. Shared
// mutable state (the connection registry inside the hub) is created here and
// injected into both the websocket endpoint and the admin handlers; there
// are no package-level singletons.
func NewEngine(conn *gorm.DB, cfg config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(api.CORSMiddleware(cfg.FrontendOrigin))

	ledger := subscription.NewLedger(conn)
	pipeline := authz.NewPipeline(conn, ledger, cfg.JWT, nil)
	limiter := ratelimit.NewManager(cfg.Redis, nil, nil)

	hub := realtime.NewHub(
		func(token string) (uint64, error) {
			return security.ParseToken(cfg.JWT.Secret, token)
		},
		func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == cfg.FrontendOrigin
		},
	)

	cookieOpts := api.CookieOptions{
		MaxAge: cfg.JWT.Expiry,
		Secure: cfg.IsProduction(),
	}

	front.RegisterFrontRoutes(engine, conn, pipeline, limiter, cfg.LoginRateLimit, hub, cookieOpts)
	admin.RegisterAdminRoutes(engine, conn, pipeline, ledger, hub, cookieOpts)
	return engine
}
