package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pdfgate/pdfgate/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PackageHandler manages admin CRUD endpoints for packages.
type PackageHandler struct {
	db *gorm.DB
}

// NewPackageHandler constructs a PackageHandler.
func NewPackageHandler(db *gorm.DB) *PackageHandler {
	return &PackageHandler{db: db}
}

// normalizeFeatures validates and normalizes the features JSON payload into
// a trimmed string array.
func normalizeFeatures(raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return datatypes.JSON([]byte("[]")), nil
	}
	var features []string
	if errUnmarshal := json.Unmarshal(raw, &features); errUnmarshal != nil {
		return nil, errors.New("invalid features")
	}
	cleaned := make([]string, 0, len(features))
	for _, feature := range features {
		if trimmed := strings.TrimSpace(feature); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	rawFeatures, errMarshal := json.Marshal(cleaned)
	if errMarshal != nil {
		return nil, errMarshal
	}
	return datatypes.JSON(rawFeatures), nil
}

// createPackageRequest captures the payload for creating a package.
type createPackageRequest struct {
	Name        string          `json:"name"`        // Package name.
	Price       *float64        `json:"price"`       // Price, required.
	Duration    *int            `json:"duration"`    // Validity in days, 0 = lifetime.
	Description string          `json:"description"` // Package description.
	Features    json.RawMessage `json:"features"`    // Feature strings.
	IsActive    *bool           `json:"is_active"`   // Optional visibility flag.
}

// ListAll returns every package including inactive ones, newest first.
func (h *PackageHandler) ListAll(c *gin.Context) {
	var rows []models.Package
	if errFind := h.db.WithContext(c.Request.Context()).
		Order("created_at DESC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Create validates input and inserts a new package.
func (h *PackageHandler) Create(c *gin.Context) {
	var body createPackageRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" || body.Price == nil || body.Duration == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name, price, and duration are required"})
		return
	}
	if *body.Price < 0 || *body.Duration < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Price and duration must not be negative"})
		return
	}

	features, errFeatures := normalizeFeatures(body.Features)
	if errFeatures != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid features"})
		return
	}

	pkg := models.Package{
		Name:        name,
		Price:       *body.Price,
		Duration:    *body.Duration,
		Description: strings.TrimSpace(body.Description),
		Features:    features,
		IsActive:    true,
	}
	if body.IsActive != nil {
		pkg.IsActive = *body.IsActive
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&pkg).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusCreated, pkg)
}

// updatePackageRequest captures the payload for editing a package.
type updatePackageRequest struct {
	Name        string          `json:"name"`
	Price       *float64        `json:"price"`
	Duration    *int            `json:"duration"`
	Description *string         `json:"description"`
	Features    json.RawMessage `json:"features"`
	IsActive    *bool           `json:"is_active"`
}

// Update edits a package. Omitted fields are left unchanged.
func (h *PackageHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}
	var body updatePackageRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	ctx := c.Request.Context()
	var pkg models.Package
	if errFind := h.db.WithContext(ctx).First(&pkg, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Package not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	if name := strings.TrimSpace(body.Name); name != "" {
		pkg.Name = name
	}
	if body.Price != nil && *body.Price >= 0 {
		pkg.Price = *body.Price
	}
	if body.Duration != nil && *body.Duration >= 0 {
		pkg.Duration = *body.Duration
	}
	if body.Description != nil {
		pkg.Description = strings.TrimSpace(*body.Description)
	}
	if len(body.Features) > 0 {
		features, errFeatures := normalizeFeatures(body.Features)
		if errFeatures != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid features"})
			return
		}
		pkg.Features = features
	}
	if body.IsActive != nil {
		pkg.IsActive = *body.IsActive
	}

	if errSave := h.db.WithContext(ctx).Save(&pkg).Error; errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, pkg)
}

// Delete removes a package unless any subscription references it.
func (h *PackageHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}

	ctx := c.Request.Context()
	var pkg models.Package
	if errFind := h.db.WithContext(ctx).First(&pkg, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Package not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	var referenced int64
	if errCount := h.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("package_id = ?", id).
		Count(&referenced).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if referenced > 0 {
		c.JSON(http.StatusConflict, gin.H{"message": "Package is referenced by existing subscriptions"})
		return
	}

	if errDelete := h.db.WithContext(ctx).Delete(&models.Package{}, id).Error; errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Package deleted successfully"})
}
