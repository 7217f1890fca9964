package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pdfgate/pdfgate/internal/authz"
	"github.com/pdfgate/pdfgate/internal/http/api"
	"github.com/pdfgate/pdfgate/internal/models"
	"github.com/pdfgate/pdfgate/internal/ratelimit"
	"github.com/pdfgate/pdfgate/internal/security"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthHandler serves login, logout, session introspection, and TOTP
// enrollment.
type AuthHandler struct {
	db         *gorm.DB
	pipeline   *authz.Pipeline
	limiter    *ratelimit.Manager
	loginLimit int
	cookieOpts api.CookieOptions
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, pipeline *authz.Pipeline, limiter *ratelimit.Manager, loginLimit int, cookieOpts api.CookieOptions) *AuthHandler {
	return &AuthHandler{
		db:         db,
		pipeline:   pipeline,
		limiter:    limiter,
		loginLimit: loginLimit,
		cookieOpts: cookieOpts,
	}
}

// loginRequest defines the request body for login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code"`
}

// userSummary is the user shape returned to clients.
type userSummary struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func summarize(user *models.User) userSummary {
	return userSummary{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role}
}

// Login authenticates credentials, runs the full pipeline, and sets the
// session cookie on success.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}
	email := strings.TrimSpace(strings.ToLower(body.Email))
	if email == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	if h.limiter != nil && h.loginLimit > 0 {
		key := "login:" + email + "|" + c.ClientIP()
		result, errAllow := h.limiter.Allow(c.Request.Context(), key, h.loginLimit)
		if errAllow == nil && !result.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"message": "Too many login attempts, try again later"})
			return
		}
	}

	verdict, token, errLogin := h.pipeline.Login(c.Request.Context(), email, body.Password, body.TOTPCode)
	if errLogin != nil {
		h.renderLoginError(c, errLogin)
		return
	}

	api.SetSessionCookie(c, token, h.cookieOpts)
	c.JSON(http.StatusOK, gin.H{"user": summarize(verdict.User)})
}

func (h *AuthHandler) renderLoginError(c *gin.Context, errLogin error) {
	switch {
	case errors.Is(errLogin, authz.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
	case errors.Is(errLogin, authz.ErrTOTPRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "TOTP code required", "code": "TOTP_REQUIRED"})
	case errors.Is(errLogin, authz.ErrInvalidTOTP):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid TOTP code"})
	case errors.Is(errLogin, authz.ErrAccountSuspended):
		c.JSON(http.StatusForbidden, gin.H{"message": "Account suspended. Please contact admin to continue."})
	case errors.Is(errLogin, authz.ErrNoSubscription):
		c.JSON(http.StatusForbidden, gin.H{
			"message": "No active subscription. Please contact admin to subscribe.",
			"code":    authz.CodeNoSubscription,
		})
	case errors.Is(errLogin, authz.ErrSubscriptionExpired):
		c.JSON(http.StatusForbidden, gin.H{
			"message": "Your subscription has expired. Please renew to continue.",
			"code":    authz.CodeSubscriptionExpired,
		})
	default:
		log.WithError(errLogin).Error("login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
	}
}

// Logout clears the session cookie. There is no server-side session state to
// tear down; tokens self-expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	api.ClearSessionCookie(c, h.cookieOpts)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the current user. The middleware chain has already re-run the
// suspension and subscription checks.
func (h *AuthHandler) Me(c *gin.Context) {
	user := api.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": summarize(user)})
}

// totpConfirmRequest carries the provisioned secret back with a first code.
type totpConfirmRequest struct {
	Secret string `json:"secret"`
	Code   string `json:"code"`
}

// PrepareTOTP provisions a TOTP secret. Nothing is persisted until the
// client proves possession via ConfirmTOTP.
func (h *AuthHandler) PrepareTOTP(c *gin.Context) {
	user := api.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}
	secret, uri, errGenerate := security.GenerateTOTPSecret(user.Email)
	if errGenerate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"secret": secret, "uri": uri})
}

// ConfirmTOTP validates the first code against the provisioned secret and
// enables TOTP for the account.
func (h *AuthHandler) ConfirmTOTP(c *gin.Context) {
	user := api.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}
	var body totpConfirmRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Secret and code are required"})
		return
	}
	if strings.TrimSpace(body.Secret) == "" || strings.TrimSpace(body.Code) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Secret and code are required"})
		return
	}
	if !security.ValidateTOTP(body.Secret, body.Code) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid TOTP code"})
		return
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("totp_secret", strings.TrimSpace(body.Secret)).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": true})
}

// DisableTOTP removes the account's TOTP secret.
func (h *AuthHandler) DisableTOTP(c *gin.Context) {
	user := api.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("totp_secret", "").Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": false})
}
