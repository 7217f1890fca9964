// Package front registers the public and authenticated end-user routes.
package front

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pdfgate/pdfgate/internal/authz"
	"github.com/pdfgate/pdfgate/internal/http/api"
	"github.com/pdfgate/pdfgate/internal/http/api/front/handlers"
	"github.com/pdfgate/pdfgate/internal/ratelimit"
	"github.com/pdfgate/pdfgate/internal/realtime"
	"gorm.io/gorm"
)

// RegisterFrontRoutes registers the public API surface, the authenticated
// self-service endpoints, and the websocket endpoint.
func RegisterFrontRoutes(r *gin.Engine, db *gorm.DB, pipeline *authz.Pipeline, limiter *ratelimit.Manager, loginLimit int, hub *realtime.Hub, cookieOpts api.CookieOptions) {
	if r == nil || db == nil {
		return
	}

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})

	authHandler := handlers.NewAuthHandler(db, pipeline, limiter, loginLimit, cookieOpts)
	packageHandler := handlers.NewPackageHandler(db)
	settingsHandler := handlers.NewSettingsHandler(db)
	userHandler := handlers.NewUserHandler(db)

	authGroup := r.Group("/api/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)

	authed := authGroup.Group("")
	authed.Use(api.AuthMiddleware(pipeline, cookieOpts))
	authed.POST("/totp/prepare", authHandler.PrepareTOTP)
	authed.POST("/totp/confirm", authHandler.ConfirmTOTP)
	authed.POST("/totp/disable", authHandler.DisableTOTP)

	gated := authGroup.Group("")
	gated.Use(api.AuthMiddleware(pipeline, cookieOpts))
	gated.Use(api.SubscriptionMiddleware(pipeline))
	gated.GET("/me", authHandler.Me)

	r.GET("/api/packages", packageHandler.List)
	r.GET("/api/settings", settingsHandler.Get)

	users := r.Group("/api/users")
	users.Use(api.AuthMiddleware(pipeline, cookieOpts))
	users.GET("/:id", userHandler.Get)
	users.POST("/increment-conversions", userHandler.IncrementConversions)

	r.GET("/ws", hub.HandleWS)
}
