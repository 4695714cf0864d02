package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sellerprep-backend-go/internal/core"
	"sellerprep-backend-go/internal/models"
)

// PaymentHandler handles the pay-per-export payment endpoints.
type PaymentHandler struct {
	exportService core.ExportService
	logger        *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(es core.ExportService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{exportService: es, logger: logger}
}

// mapPaymentErrorToStatus maps payment errors to HTTP responses.
func (h *PaymentHandler) mapPaymentErrorToStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrInvalidAmount.Error()})
	case errors.Is(err, core.ErrFreeExportAvailable):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrFreeExportAvailable.Error()})
	case errors.Is(err, core.ErrPaymentNotCompleted):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrPaymentNotCompleted.Error()})
	case errors.Is(err, core.ErrPropertyNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrPropertyNotFound.Error()})
	case errors.Is(err, core.ErrProviderUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: core.ErrProviderUnavailable.Error()})
	default:
		h.logger.Error("payment endpoint failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
	}
}

// CreatePaymentIntent handles POST /payments/create-intent.
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}

	var req models.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	result, err := h.exportService.CreatePaymentIntent(c.Request.Context(), user, req)
	if err != nil {
		h.mapPaymentErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ConfirmPayment handles POST /payments/confirm.
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}

	var req models.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	payment, err := h.exportService.ConfirmPayment(c.Request.Context(), user, req)
	if err != nil {
		h.mapPaymentErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// CheckExportPermission handles GET /payments/check-export-permission?property_id=.
func (h *PaymentHandler) CheckExportPermission(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}

	propertyID := c.Query("property_id")
	if propertyID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "property_id query parameter is required"})
		return
	}

	permission, err := h.exportService.CheckExportPermission(c.Request.Context(), user, propertyID)
	if err != nil {
		h.mapPaymentErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, permission)
}
