package payments

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/models"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// OrderUpdater is the slice of the order service the payment webhook needs.
type OrderUpdater interface {
	SetStatusByID(orderID, status string) error
}

type WebhookHandler struct {
	secret string
	orders OrderUpdater
	logger *logger.Logger
}

func NewWebhookHandler(secret string, orders OrderUpdater, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{secret: secret, orders: orders, logger: log}
}

// HandleWebhook verifies and processes a payment-gateway callback.
// POST /api/webhooks/stripe
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("WEBHOOK", fmt.Sprintf("Failed to read Stripe payload: %v", err))
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	opts := webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true}
	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), h.secret, opts)
	if err != nil {
		h.logger.Error("WEBHOOK", fmt.Sprintf("Stripe signature verification failed: %v", err))
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	h.logger.LogWebhook("stripe", string(event.Type), "Processing payment event")

	switch event.Type {
	case "payment_intent.succeeded":
		h.applyIntentStatus(event, models.OrderStatusPaid)
	case "payment_intent.payment_failed":
		h.applyIntentStatus(event, models.OrderStatusCancelled)
	default:
		h.logger.Info("WEBHOOK", fmt.Sprintf("Unhandled Stripe event type: %s", event.Type))
	}

	// Stripe retries on anything but a 2xx; internal failures are logged,
	// never surfaced.
	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) applyIntentStatus(event stripe.Event, status string) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		h.logger.Error("WEBHOOK", fmt.Sprintf("Failed to unmarshal payment intent: %v", err))
		return
	}

	orderID, exists := intent.Metadata["order_id"]
	if !exists {
		h.logger.Error("WEBHOOK", "Payment intent has no order_id in metadata")
		return
	}

	if err := h.orders.SetStatusByID(orderID, status); err != nil {
		h.logger.Error("WEBHOOK", fmt.Sprintf("Failed to set order %s to %s: %v", orderID, status, err))
		return
	}
	h.logger.LogOrder("PAYMENT", orderID, fmt.Sprintf("Order marked %s", status))
}
