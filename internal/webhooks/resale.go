package webhooks

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/models"
	"ticket-marketplace/internal/monitoring"
	"ticket-marketplace/internal/utils"
)

// OrderUpdater is the slice of the order service the webhook needs.
type OrderUpdater interface {
	SetStatusByReference(ref, status string) error
	MergeOrderNotesByReference(ref string, fields map[string]interface{}) error
}

// ResaleHandler receives fulfilment callbacks from the resale provider.
// The provider retries on non-2xx, so every handled request — including
// unrecognised event types and unknown orders — answers 200.
type ResaleHandler struct {
	Orders OrderUpdater
	Logger *logger.Logger
}

func NewResaleHandler(orders OrderUpdater, log *logger.Logger) *ResaleHandler {
	return &ResaleHandler{Orders: orders, Logger: log}
}

// MapEventStatus maps a provider event type onto an order status by
// substring. Ticket fulfilment is checked first: an event such as
// "order.eticket_fulfilment" contains both "ticket" and no other
// keyword, and fulfilment outranks the rest when several appear.
func MapEventStatus(eventType string) (string, bool) {
	t := strings.ToLower(eventType)
	switch {
	case strings.Contains(t, "ticket"), strings.Contains(t, "fulfil"):
		return models.OrderStatusTicketed, true
	case strings.Contains(t, "refund"):
		return models.OrderStatusRefunded, true
	case strings.Contains(t, "cancel"):
		return models.OrderStatusCancelled, true
	case strings.Contains(t, "confirm"):
		return models.OrderStatusConfirmed, true
	case strings.Contains(t, "paid"),
		strings.Contains(t, "payment_received"),
		strings.Contains(t, "payment_succeeded"):
		// "payment_failed" and other non-success payment events fall
		// through unmapped.
		return models.OrderStatusPaid, true
	}
	return "", false
}

// OrderReference picks the order reference out of a payload. Providers
// are inconsistent about which field carries it, so fields are tried in
// a fixed precedence order.
func OrderReference(p models.ResaleWebhookPayload) string {
	for _, ref := range []string{p.OrderID, p.OrderNumber, p.ID, p.Reference} {
		if ref != "" {
			return ref
		}
	}
	return ""
}

// Handle processes POST /api/webhooks/resale.
func (h *ResaleHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var payload models.ResaleWebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.Logger.LogWebhook("resale", "invalid", fmt.Sprintf("Undecodable payload: %v", err))
		monitoring.TrackWebhook("resale", "ignored")
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	status, ok := MapEventStatus(payload.Type)
	if !ok {
		h.Logger.LogWebhook("resale", payload.Type, "Unrecognised event type, ignoring")
		monitoring.TrackWebhook("resale", "ignored")
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	ref := OrderReference(payload)
	if ref == "" {
		h.Logger.LogWebhook("resale", payload.Type, "No order reference in payload, ignoring")
		monitoring.TrackWebhook("resale", "ignored")
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	if err := h.Orders.SetStatusByReference(ref, status); err != nil {
		// Unknown order or storage failure. Acknowledge anyway so the
		// provider stops retrying a payload we can never apply.
		h.Logger.LogWebhook("resale", payload.Type, fmt.Sprintf("Could not apply %s to %s: %v", status, ref, err))
		monitoring.TrackWebhook("resale", "ignored")
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	if notes := extractNotes(payload); len(notes) > 0 {
		if err := h.Orders.MergeOrderNotesByReference(ref, notes); err != nil {
			h.Logger.LogWebhook("resale", payload.Type, fmt.Sprintf("Notes merge failed for %s: %v", ref, err))
		}
	}

	h.Logger.LogWebhook("resale", payload.Type, fmt.Sprintf("Order %s → %s", ref, status))
	monitoring.TrackWebhook("resale", "processed")
	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "processed",
		"order":   ref,
		"outcome": status,
	})
}

// extractNotes pulls the fields worth persisting on the order record.
func extractNotes(p models.ResaleWebhookPayload) map[string]interface{} {
	notes := map[string]interface{}{}
	if p.TicketURL != "" {
		notes["ticket_url"] = p.TicketURL
	}
	for k, v := range p.Data {
		notes[k] = v
	}
	if len(notes) > 0 {
		notes["last_webhook_event"] = p.Type
	}
	return notes
}
