package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yugaldekate/pingpanda/internal/api/middleware"
	"github.com/yugaldekate/pingpanda/internal/service"
)

// BillingHandler handles checkout and payment webhooks
type BillingHandler struct {
	billingService *service.BillingService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService *service.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// HandleCreateCheckout starts a checkout session for the PRO upgrade
func (h *BillingHandler) HandleCreateCheckout(c *gin.Context) {
	user := middleware.UserFromContext(c)

	url, err := h.billingService.CreateCheckout(c.Request.Context(), user)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// HandleStripeWebhook processes signature-verified payment provider events
func (h *BillingHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to read request body"})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.billingService.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		log.Error().Err(err).Msg("Webhook processing failed")
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
