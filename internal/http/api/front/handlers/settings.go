package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pdfgate/pdfgate/internal/settings"
	"gorm.io/gorm"
)

// SettingsHandler serves the public settings read.
type SettingsHandler struct {
	db *gorm.DB
}

// NewSettingsHandler constructs a SettingsHandler.
func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{db: db}
}

// Get returns the settings singleton, creating it with defaults on first read.
func (h *SettingsHandler) Get(c *gin.Context) {
	setting, errLoad := settings.Load(c.Request.Context(), h.db)
	if errLoad != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, setting)
}
