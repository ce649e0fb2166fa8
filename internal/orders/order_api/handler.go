package order_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/models"
	"ticket-marketplace/internal/orders"
	"ticket-marketplace/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	OrderService *orders.Service
	Logger       *logger.Logger
	Validate     *validator.Validate
}

func NewHandler(orderService *orders.Service, log *logger.Logger) *Handler {
	return &Handler{
		OrderService: orderService,
		Logger:       log,
		Validate:     validator.New(),
	}
}

// Checkout places an order against a live provider hold. POST /api/checkout
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	resp, err := h.OrderService.Checkout(req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Checkout failed: %v", err))
		utils.WriteError(w, utils.UpstreamStatus(err), "Checkout failed", err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusCreated, resp)
}

// GetOrder looks an order up by its order number.
// GET /api/orders/{orderNumber}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")

	order, err := h.OrderService.GetOrderByNumber(orderNumber)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetOrder %s: %v", orderNumber, err))
		utils.WriteError(w, http.StatusNotFound, "Order not found", err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, order)
}

// ListOrdersByEmail returns a customer's orders. GET /api/orders?email=
func (h *Handler) ListOrdersByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		utils.WriteError(w, http.StatusBadRequest, "Validation failed", "email parameter required")
		return
	}

	list, err := h.OrderService.GetOrdersByEmail(email)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListOrdersByEmail: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch orders", err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"orders": list,
		"total":  len(list),
	})
}

// CreatePaymentIntent opens a payment intent for an existing order.
// POST /api/orders/{orderNumber}/payment-intent
func (h *Handler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")

	intent, err := h.OrderService.CreatePaymentIntent(orderNumber)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreatePaymentIntent %s: %v", orderNumber, err))
		utils.WriteError(w, http.StatusBadRequest, "Failed to create payment intent", err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"payment_intent_id": intent.ID,
		"client_secret":     intent.ClientSecret,
	})
}

// ---------------- ADMIN ----------------

// ListOrders pages through all orders. GET /api/admin/orders
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	list, err := h.OrderService.ListOrders(limit, offset)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListOrders: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch orders", err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"orders": list,
		"total":  len(list),
	})
}

// UpdateStatus moves an order through its lifecycle; the ticketed
// transition issues tickets. PUT /api/admin/orders/{orderId}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var req models.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	if err := h.OrderService.SetStatusByID(orderID, req.Status); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateStatus %s → %s: %v", orderID, req.Status, err))
		utils.WriteError(w, http.StatusBadRequest, "Failed to update status", err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Status updated", map[string]string{
		"order_id": orderID,
		"status":   req.Status,
	}))
}

// DeleteOrder removes an order. DELETE /api/admin/orders/{orderId}
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	if err := h.OrderService.DeleteOrder(orderID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteOrder %s: %v", orderID, err))
		utils.WriteError(w, http.StatusNotFound, "Could not delete order", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListTickets returns an order's tickets.
// GET /api/admin/orders/{orderId}/tickets
func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	tickets, err := h.OrderService.GetTicketsByOrder(orderID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListTickets %s: %v", orderID, err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch tickets", err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"tickets": tickets,
		"total":   len(tickets),
	})
}

// ResendEmail re-sends the ticket email.
// POST /api/admin/orders/{orderId}/resend-email
func (h *Handler) ResendEmail(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	if err := h.OrderService.ResendTickets(orderID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ResendEmail %s: %v", orderID, err))
		utils.WriteError(w, http.StatusBadRequest, "Failed to resend tickets", err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Ticket email queued", nil))
}
