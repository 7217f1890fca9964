// Package api holds the session cookie contract and the middleware shared by
// the front and admin route groups.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pdfgate/pdfgate/internal/authz"
	"github.com/pdfgate/pdfgate/internal/models"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "token"

// Context keys set by the middleware chain.
const (
	// CtxUser holds the authenticated *models.User.
	CtxUser = "user"
	// CtxSubscription holds the admitting *models.Subscription (nil for admins).
	CtxSubscription = "subscription"
)

// CookieOptions captures how the session cookie is written.
type CookieOptions struct {
	MaxAge time.Duration // Cookie lifetime; matches the token expiry.
	Secure bool          // Secure attribute, on in production.
}

// SetSessionCookie writes the session cookie as http-only and same-site lax.
func SetSessionCookie(c *gin.Context, token string, opts CookieOptions) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(opts.MaxAge/time.Second), "/", "", opts.Secure, true)
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(c *gin.Context, opts CookieOptions) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", opts.Secure, true)
}

// CurrentUser returns the authenticated user attached by AuthMiddleware.
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(CtxUser)
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

// AuthMiddleware verifies the session cookie, loads the user, and rejects
// suspended accounts. Suspension additionally clears the cookie so the
// client drops its stored credential.
func AuthMiddleware(pipeline *authz.Pipeline, opts CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, errCookie := c.Cookie(SessionCookieName)
		if errCookie != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}

		user, errAuth := pipeline.Authenticate(c.Request.Context(), token)
		if errAuth != nil {
			switch {
			case errors.Is(errAuth, authz.ErrAccountSuspended):
				ClearSessionCookie(c, opts)
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Account suspended"})
			case errors.Is(errAuth, authz.ErrNotAuthenticated):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			}
			return
		}

		c.Set(CtxUser, user)
		c.Next()
	}
}

// SubscriptionMiddleware runs the subscription checks for the authenticated
// user. Admins pass without any subscription lookup.
func SubscriptionMiddleware(pipeline *authz.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}

		verdict, errCheck := pipeline.CheckAccess(c.Request.Context(), user)
		if errCheck != nil {
			switch {
			case errors.Is(errCheck, authz.ErrNoSubscription):
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"message": "No active subscription found",
					"code":    authz.CodeNoSubscription,
				})
			case errors.Is(errCheck, authz.ErrSubscriptionExpired):
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"message": "Subscription has expired",
					"code":    authz.CodeSubscriptionExpired,
				})
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			}
			return
		}

		c.Set(CtxSubscription, verdict.Subscription)
		c.Next()
	}
}

// AdminOnlyMiddleware rejects non-admin callers.
func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Admin access required"})
			return
		}
		c.Next()
	}
}

// CORSMiddleware allows the configured SPA origin with credentials.
func CORSMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
