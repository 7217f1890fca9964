// Package admin registers the administrator routes behind the auth and
// admin-only middleware chain.
package admin

import (
	"github.com/gin-gonic/gin"
	"github.com/pdfgate/pdfgate/internal/authz"
	"github.com/pdfgate/pdfgate/internal/http/api"
	"github.com/pdfgate/pdfgate/internal/http/api/admin/handlers"
	"github.com/pdfgate/pdfgate/internal/realtime"
	"github.com/pdfgate/pdfgate/internal/subscription"
	"gorm.io/gorm"
)

// RegisterAdminRoutes registers admin CRUD routes for users, packages,
// subscriptions, and settings.
func RegisterAdminRoutes(r *gin.Engine, db *gorm.DB, pipeline *authz.Pipeline, ledger *subscription.Ledger, hub *realtime.Hub, cookieOpts api.CookieOptions) {
	if r == nil || db == nil {
		return
	}

	authed := r.Group("/api")
	authed.Use(api.AuthMiddleware(pipeline, cookieOpts))
	authed.Use(api.AdminOnlyMiddleware())

	userHandler := handlers.NewUserHandler(db, hub)
	authed.GET("/users", userHandler.List)
	authed.POST("/users", userHandler.Create)
	authed.PUT("/users/:id", userHandler.Update)
	authed.DELETE("/users/:id", userHandler.Delete)
	authed.PUT("/users/:id/suspend", userHandler.Suspend)

	packageHandler := handlers.NewPackageHandler(db)
	authed.GET("/packages/all", packageHandler.ListAll)
	authed.POST("/packages", packageHandler.Create)
	authed.PUT("/packages/:id", packageHandler.Update)
	authed.DELETE("/packages/:id", packageHandler.Delete)

	subscriptionHandler := handlers.NewSubscriptionHandler(db, ledger)
	authed.GET("/subscriptions", subscriptionHandler.List)
	authed.POST("/subscriptions", subscriptionHandler.Create)
	authed.PUT("/subscriptions/:id", subscriptionHandler.Update)
	authed.DELETE("/subscriptions/:id", subscriptionHandler.Delete)

	settingsHandler := handlers.NewSettingsHandler(db)
	authed.PUT("/settings", settingsHandler.Update)
}
