package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	dbutil "github.com/pdfgate/pdfgate/internal/db"
	"github.com/pdfgate/pdfgate/internal/models"
	"github.com/pdfgate/pdfgate/internal/realtime"
	"github.com/pdfgate/pdfgate/internal/security"
	"gorm.io/gorm"
)

// Revocation reasons shown to force-logged-out clients.
const (
	ReasonAccountSuspended = "Account suspended"
	ReasonAccountDeleted   = "Account deleted"
)

// UserHandler manages admin user endpoints. Suspend and delete invoke the
// revocation broadcaster synchronously after the state change persists.
type UserHandler struct {
	db  *gorm.DB
	hub *realtime.Hub
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(db *gorm.DB, hub *realtime.Hub) *UserHandler {
	return &UserHandler{db: db, hub: hub}
}

// createUserRequest defines the request body for user creation.
type createUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// List returns all regular users, newest first. An optional search query
// filters by email or name.
func (h *UserHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).
		Where("role = ?", models.RoleUser)

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+search+"%")
		query = query.Where(
			dbutil.CaseInsensitiveLikeExpr(h.db, "email")+" OR "+dbutil.CaseInsensitiveLikeExpr(h.db, "name"),
			pattern, pattern,
		)
	}

	var rows []models.User
	if errFind := query.
		Order("created_at DESC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Create creates a new regular user.
func (h *UserHandler) Create(c *gin.Context) {
	var body createUserRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
		return
	}
	email := strings.TrimSpace(strings.ToLower(body.Email))
	name := strings.TrimSpace(body.Name)
	if email == "" || name == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
		return
	}

	ctx := c.Request.Context()
	var existing models.User
	if errFind := h.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; errFind == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email already exists"})
		return
	}

	hash, errHash := security.HashPassword(body.Password)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	user := models.User{
		Email:    email,
		Name:     name,
		Password: hash,
		Role:     models.RoleUser,
	}
	if errCreate := h.db.WithContext(ctx).Create(&user).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusCreated, user)
}

// updateUserRequest defines the request body for user updates. Empty fields
// are left unchanged.
type updateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Update edits a user's email, name, or password.
func (h *UserHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}
	var body updateUserRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	ctx := c.Request.Context()
	var user models.User
	if errFind := h.db.WithContext(ctx).First(&user, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	if email := strings.TrimSpace(strings.ToLower(body.Email)); email != "" && email != user.Email {
		var existing models.User
		if errFind := h.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; errFind == nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email already exists"})
			return
		}
		user.Email = email
	}
	if name := strings.TrimSpace(body.Name); name != "" {
		user.Name = name
	}
	if body.Password != "" {
		hash, errHash := security.HashPassword(body.Password)
		if errHash != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		user.Password = hash
	}
	user.UpdatedAt = time.Now().UTC()

	if errSave := h.db.WithContext(ctx).Save(&user).Error; errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// Delete removes a user with their subscriptions and force-logs-out any live
// sessions. Admin accounts cannot be deleted.
func (h *UserHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}

	ctx := c.Request.Context()
	var user models.User
	if errFind := h.db.WithContext(ctx).First(&user, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"message": "Cannot delete admin users"})
		return
	}

	errTx := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errDelSubs := tx.Where("user_id = ?", id).Delete(&models.Subscription{}).Error; errDelSubs != nil {
			return errDelSubs
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	// Unconditional: registry state may be stale, Revoke is a no-op when
	// the user has no live connections.
	h.hub.Revoke(id, ReasonAccountDeleted)

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// Suspend toggles the suspension flag. Suspending force-logs-out live
// sessions; admins cannot be suspended.
func (h *UserHandler) Suspend(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}

	ctx := c.Request.Context()
	var user models.User
	if errFind := h.db.WithContext(ctx).First(&user, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"message": "Cannot suspend admin users"})
		return
	}

	user.IsSuspended = !user.IsSuspended
	user.UpdatedAt = time.Now().UTC()
	if errSave := h.db.WithContext(ctx).Save(&user).Error; errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	if user.IsSuspended {
		h.hub.Revoke(id, ReasonAccountSuspended)
	}

	c.JSON(http.StatusOK, user)
}
