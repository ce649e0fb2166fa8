package resale

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/models"
	"ticket-marketplace/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	Client   *Client
	Logger   *logger.Logger
	Validate *validator.Validate
}

func NewHandler(client *Client, log *logger.Logger) *Handler {
	return &Handler{
		Client:   client,
		Logger:   log,
		Validate: validator.New(),
	}
}

// ListEvents relays the paginated feed. GET /api/feed/events
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	feed, err := h.Client.ListEvents(page, pageSize, r.URL.Query().Get("q"), r.URL.Query().Get("city"))
	if err != nil {
		h.Logger.Error("RESALE", fmt.Sprintf("ListEvents: %v", err))
		utils.WriteError(w, utils.UpstreamStatus(err), "Failed to fetch event feed", err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, feed)
}

// GetEvent relays one feed event. GET /api/feed/events/{eventId}
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	event, err := h.Client.GetEvent(eventID)
	if err != nil {
		h.Logger.Error("RESALE", fmt.Sprintf("GetEvent %s: %v", eventID, err))
		utils.WriteError(w, utils.UpstreamStatus(err), "Failed to fetch event", err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, event)
}

// GetListings relays per-event availability, served from the five-minute
// cache when warm. GET /api/feed/events/{eventId}/listings
func (h *Handler) GetListings(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	listings, err := h.Client.GetListings(eventID)
	if err != nil {
		h.Logger.Error("RESALE", fmt.Sprintf("GetListings %s: %v", eventID, err))
		utils.WriteError(w, utils.UpstreamStatus(err), "Failed to fetch listings", err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"listings": listings,
		"total":    len(listings),
	})
}

// CreateHold reserves tickets at the provider. POST /api/holds
func (h *Handler) CreateHold(w http.ResponseWriter, r *http.Request) {
	var req models.HoldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	hold, err := h.Client.CreateHold(req.ListingID, req.Quantity)
	if err != nil {
		h.Logger.Error("RESALE", fmt.Sprintf("CreateHold listing=%s: %v", req.ListingID, err))
		utils.WriteError(w, utils.UpstreamStatus(err), "Failed to hold tickets", err.Error())
		return
	}

	h.Logger.LogRelay("resale", "/holds", fmt.Sprintf("Hold %s created for listing %s", hold.Reference, req.ListingID))
	utils.WriteJSON(w, http.StatusCreated, hold)
}

// ReleaseHold releases a provider hold. DELETE /api/holds/{holdRef}
func (h *Handler) ReleaseHold(w http.ResponseWriter, r *http.Request) {
	holdRef := chi.URLParam(r, "holdRef")

	if err := h.Client.ReleaseHold(holdRef); err != nil {
		h.Logger.Error("RESALE", fmt.Sprintf("ReleaseHold %s: %v", holdRef, err))
		utils.WriteError(w, utils.UpstreamStatus(err), "Failed to release hold", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
