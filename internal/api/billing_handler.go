package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sellerprep-backend-go/internal/billing"
	"sellerprep-backend-go/internal/core"
)

// maxWebhookBodyBytes caps the webhook payload size, matching Stripe's own
// recommendation.
const maxWebhookBodyBytes = 65536

// BillingHandler handles the public Stripe webhook endpoint.
type BillingHandler struct {
	reconciler *core.Reconciler
	logger     *zap.Logger
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(reconciler *core.Reconciler, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{reconciler: reconciler, logger: logger}
}

// HandleStripeWebhook handles POST /billing/webhooks/stripe. The endpoint is
// public; the signature header is the authentication. Once the payload is
// authenticated the delivery is always acknowledged with 200, even when
// applying the event fails, so Stripe does not retry an event the reconciler
// will converge on anyway.
func (h *BillingHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read webhook payload"})
		return
	}

	err = h.reconciler.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrInvalidSignature), errors.Is(err, billing.ErrInvalidPayload):
			h.logger.Warn("rejected webhook delivery", zap.Error(err))
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			h.logger.Error("webhook handling failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
