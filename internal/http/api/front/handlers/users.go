package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pdfgate/pdfgate/internal/http/api"
	"github.com/pdfgate/pdfgate/internal/models"
	"gorm.io/gorm"
)

// UserHandler serves the authenticated self-service user endpoints.
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// Get returns a single user by ID. The password hash is excluded by the
// model's JSON tags.
func (h *UserHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}
	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// IncrementConversions bumps the caller's conversion counter and returns the
// new total.
func (h *UserHandler) IncrementConversions(c *gin.Context) {
	user := api.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}

	ctx := c.Request.Context()
	if errUpdate := h.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("total_pdf_conversions", gorm.Expr("total_pdf_conversions + 1")).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	var updated models.User
	if errFind := h.db.WithContext(ctx).First(&updated, user.ID).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_pdf_conversions": updated.TotalPdfConversions})
}
