package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feastly/foodmarket-app/services"
	"github.com/feastly/foodmarket-app/utils"
)

type PaymentController struct {
	Verifier  *services.WebhookVerifier
	Reconcile *services.ReconciliationService
}

func NewPaymentController(verifier *services.WebhookVerifier, reconcile *services.ReconciliationService) *PaymentController {
	return &PaymentController{Verifier: verifier, Reconcile: reconcile}
}

// Webhook receives payment-provider events. The signature is verified against
// the raw body before anything is parsed; verified events are always
// acknowledged with 200 so the provider stops retrying, even when the event
// type is unknown or the orders are gone.
func (pc *PaymentController) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := pc.Verifier.Verify(payload, c.GetHeader("Stripe-Signature")); err != nil {
		utils.ErrorLogger.Printf("Webhook signature verification failed: %v", err)
		utils.RespondAppError(c, err)
		return
	}

	var event services.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := pc.Reconcile.HandleEvent(c.Request.Context(), &event); err != nil {
		utils.ErrorLogger.Printf("Webhook event %s (%s) failed: %v", event.ID, event.Type, err)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Event received", gin.H{"received": true})
}
