package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	zlog "github.com/rs/zerolog/log"

	"greenmart/internal/services"
)

// Webhook answers the payment provider directly instead of using the
// envelope. A 500 makes the provider retry the delivery.
func (h *Handler) Webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusBadRequest, "Webhook Error: %s", err.Error())
		return
	}

	err = h.payments.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	var sigErr *services.SignatureError
	switch {
	case errors.As(err, &sigErr):
		zlog.Warn().Err(err).Msg("webhook signature verification failed")
		c.String(http.StatusBadRequest, "Webhook Error: %s", sigErr.Reason)
	case err != nil:
		zlog.Error().Err(err).Msg("webhook handler failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook handler failed"})
	default:
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	var req CreateIntentRequest
	if !bindBody(c, &req) {
		return
	}
	intent, err := h.payments.CreateIntent(c.Request.Context(), req.Amount, req.Metadata)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "", ClientSecretResponse{ClientSecret: intent.ClientSecret})
}
