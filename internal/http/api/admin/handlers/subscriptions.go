package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pdfgate/pdfgate/internal/models"
	"github.com/pdfgate/pdfgate/internal/subscription"
	"gorm.io/gorm"
)

// SubscriptionHandler manages admin CRUD endpoints for subscriptions. Writes
// that create an active grant go through the ledger so the single-active
// invariant holds.
type SubscriptionHandler struct {
	db     *gorm.DB
	ledger *subscription.Ledger
}

// NewSubscriptionHandler constructs a SubscriptionHandler.
func NewSubscriptionHandler(db *gorm.DB, ledger *subscription.Ledger) *SubscriptionHandler {
	return &SubscriptionHandler{db: db, ledger: ledger}
}

// List returns all subscriptions with their user and package, newest first.
func (h *SubscriptionHandler) List(c *gin.Context) {
	var rows []models.Subscription
	if errFind := h.db.WithContext(c.Request.Context()).
		Preload("User").
		Preload("Package").
		Order("created_at DESC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// createSubscriptionRequest captures the payload for assigning a subscription.
type createSubscriptionRequest struct {
	UserID    uint64     `json:"user_id"`    // Target user, required.
	PackageID uint64     `json:"package_id"` // Granted package, required.
	StartDate *time.Time `json:"start_date"` // Defaults to now.
	EndDate   *time.Time `json:"end_date"`   // Defaults to start + package duration.
}

// Create assigns a subscription: any prior active grant for the user is
// deactivated and the end date is computed from the package duration when
// not explicit.
func (h *SubscriptionHandler) Create(c *gin.Context) {
	var body createSubscriptionRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if body.UserID == 0 || body.PackageID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User and package are required"})
		return
	}

	ctx := c.Request.Context()

	var user models.User
	if errFind := h.db.WithContext(ctx).First(&user, body.UserID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	var pkg models.Package
	if errFind := h.db.WithContext(ctx).First(&pkg, body.PackageID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Package not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	start := time.Now().UTC()
	if body.StartDate != nil {
		start = body.StartDate.UTC()
	}

	sub, errAssign := h.ledger.Assign(ctx, user.ID, &pkg, start, body.EndDate)
	if errAssign != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	var created models.Subscription
	if errFind := h.db.WithContext(ctx).
		Preload("User").
		Preload("Package").
		First(&created, sub.ID).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// updateSubscriptionRequest captures the payload for editing a subscription.
// EndDate is raw JSON so an explicit null (switch to lifetime) can be told
// apart from an omitted field.
type updateSubscriptionRequest struct {
	PackageID uint64          `json:"package_id"`
	StartDate *time.Time      `json:"start_date"`
	EndDate   json.RawMessage `json:"end_date"`
	IsActive  *bool           `json:"is_active"`
}

// Update edits a subscription record. Expiry still derives on the next read.
func (h *SubscriptionHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}
	var body updateSubscriptionRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	ctx := c.Request.Context()
	var sub models.Subscription
	if errFind := h.db.WithContext(ctx).First(&sub, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Subscription not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	if body.PackageID != 0 {
		var pkg models.Package
		if errFind := h.db.WithContext(ctx).First(&pkg, body.PackageID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Package not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		sub.PackageID = pkg.ID
	}
	if body.StartDate != nil {
		sub.StartDate = body.StartDate.UTC()
	}
	if len(body.EndDate) > 0 {
		if string(body.EndDate) == "null" {
			sub.EndDate = nil
		} else {
			var end time.Time
			if errUnmarshal := json.Unmarshal(body.EndDate, &end); errUnmarshal != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid end date"})
				return
			}
			end = end.UTC()
			sub.EndDate = &end
		}
	}
	if body.IsActive != nil {
		sub.IsActive = *body.IsActive
	}
	sub.UpdatedAt = time.Now().UTC()

	if errSave := h.db.WithContext(ctx).Save(&sub).Error; errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	var updated models.Subscription
	if errFind := h.db.WithContext(ctx).
		Preload("User").
		Preload("Package").
		First(&updated, sub.ID).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete removes a subscription; the user falls back to NoSubscription on
// their next request.
func (h *SubscriptionHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}

	ctx := c.Request.Context()
	res := h.db.WithContext(ctx).Delete(&models.Subscription{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Subscription not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subscription deleted successfully"})
}
