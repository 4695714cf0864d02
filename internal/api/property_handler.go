package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sellerprep-backend-go/internal/core"
	"sellerprep-backend-go/internal/models"
)

// PropertyHandler handles property CRUD and the export endpoint.
type PropertyHandler struct {
	propertyService core.PropertyService
	exportService   core.ExportService
	logger          *zap.Logger
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(ps core.PropertyService, es core.ExportService, logger *zap.Logger) *PropertyHandler {
	return &PropertyHandler{propertyService: ps, exportService: es, logger: logger}
}

// mapPropertyErrorToStatus maps property and export errors to HTTP responses.
// Ownership misses are 404 by contract; an unpaid export is 402.
func (h *PropertyHandler) mapPropertyErrorToStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrPropertyNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrPropertyNotFound.Error()})
	case errors.Is(err, core.ErrPaymentRequired):
		c.JSON(http.StatusPaymentRequired, ErrorResponse{Error: core.ErrPaymentRequired.Error()})
	case errors.Is(err, core.ErrProviderUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: core.ErrProviderUnavailable.Error()})
	default:
		h.logger.Error("property endpoint failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
	}
}

// CreateProperty handles POST /properties.
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}

	var req models.CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	property, err := h.propertyService.CreateProperty(c.Request.Context(), user.ID, req)
	if err != nil {
		h.mapPropertyErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, property)
}

// ListProperties handles GET /properties.
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}

	properties, err := h.propertyService.ListProperties(c.Request.Context(), user.ID)
	if err != nil {
		h.mapPropertyErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}

// GetProperty handles GET /properties/:propertyId.
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}
	propertyID := c.Param("propertyId")

	property, err := h.propertyService.GetProperty(c.Request.Context(), user.ID, propertyID)
	if err != nil {
		h.mapPropertyErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

// UpdateProperty handles PUT /properties/:propertyId.
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}
	propertyID := c.Param("propertyId")

	var req models.UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	property, err := h.propertyService.UpdateProperty(c.Request.Context(), user.ID, propertyID, req)
	if err != nil {
		h.mapPropertyErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

// DeleteProperty handles DELETE /properties/:propertyId.
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}
	propertyID := c.Param("propertyId")

	if err := h.propertyService.DeleteProperty(c.Request.Context(), user.ID, propertyID); err != nil {
		h.mapPropertyErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Property deleted"})
}

// ExportProperty handles GET /properties/:propertyId/export and streams the
// generated PDF back as an attachment.
func (h *PropertyHandler) ExportProperty(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}
	propertyID := c.Param("propertyId")

	result, err := h.exportService.ExportProperty(c.Request.Context(), user, propertyID)
	if err != nil {
		h.mapPropertyErrorToStatus(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, "application/pdf", result.PDF)
}
