package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pdfgate/pdfgate/internal/settings"
	"gorm.io/gorm"
)

// SettingsHandler manages the admin settings update.
type SettingsHandler struct {
	db *gorm.DB
}

// NewSettingsHandler constructs a SettingsHandler.
func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{db: db}
}

// updateSettingsRequest captures the payload for updating settings.
type updateSettingsRequest struct {
	WhatsappNumber string `json:"whatsapp_number"`
}

// Update edits the settings singleton, creating it first when absent.
func (h *SettingsHandler) Update(c *gin.Context) {
	var body updateSettingsRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	ctx := c.Request.Context()
	setting, errLoad := settings.Load(ctx, h.db)
	if errLoad != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	if number := strings.TrimSpace(body.WhatsappNumber); number != "" {
		setting.WhatsappNumber = number
	}
	if errSave := h.db.WithContext(ctx).Save(setting).Error; errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, setting)
}
