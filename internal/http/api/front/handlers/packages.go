package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pdfgate/pdfgate/internal/models"
	"gorm.io/gorm"
)

// PackageHandler serves the public package catalogue.
type PackageHandler struct {
	db *gorm.DB
}

// NewPackageHandler constructs a PackageHandler.
func NewPackageHandler(db *gorm.DB) *PackageHandler {
	return &PackageHandler{db: db}
}

// List returns active packages ordered by price ascending.
func (h *PackageHandler) List(c *gin.Context) {
	var rows []models.Package
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("is_active = ?", true).
		Order("price ASC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, rows)
}
