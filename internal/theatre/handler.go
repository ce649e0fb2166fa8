package theatre

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ticket-marketplace/internal/logger"
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

// GET /api/theatre/shows
func (h *Handler) ListShows(w http.ResponseWriter, r *http.Request) {
	shows, err := h.Client.ListShows(r.URL.Query().Get("city"))
	if err != nil {
		h.Logger.Error("THEATRE", fmt.Sprintf("ListShows: %v", err))
		utils.WriteError(w, utils.UpstreamStatus(err), "Failed to fetch shows", err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"shows": shows,
		"total": len(shows),
	})
}

// GET /api/theatre/shows/{showId}
func (h *Handler) GetShow(w http.ResponseWriter, r *http.Request) {
	showID := chi.URLParam(r, "showId")

	show, err := h.Client.GetShow(showID)
	if err != nil {
		h.Logger.Error("THEATRE", fmt.Sprintf("GetShow %s: %v", showID, err))
		utils.WriteError(w, utils.UpstreamStatus(err), "Failed to fetch show", err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, show)
}

// GET /api/theatre/shows/{showId}/performances
func (h *Handler) ListPerformances(w http.ResponseWriter, r *http.Request) {
	showID := chi.URLParam(r, "showId")

	performances, err := h.Client.ListPerformances(showID)
	if err != nil {
		h.Logger.Error("THEATRE", fmt.Sprintf("ListPerformances %s: %v", showID, err))
		utils.WriteError(w, utils.UpstreamStatus(err), "Failed to fetch performances", err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"performances": performances,
		"total":        len(performances),
	})
}

// GET /api/theatre/performances/{performanceId}/seats
func (h *Handler) GetSeatAvailability(w http.ResponseWriter, r *http.Request) {
	performanceID := chi.URLParam(r, "performanceId")

	blocks, err := h.Client.GetSeatAvailability(performanceID)
	if err != nil {
		h.Logger.Error("THEATRE", fmt.Sprintf("GetSeatAvailability %s: %v", performanceID, err))
		utils.WriteError(w, utils.UpstreamStatus(err), "Failed to fetch seat availability", err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"areas": blocks,
		"total": len(blocks),
	})
}

// POST /api/theatre/bookings
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	booking, err := h.Client.CreateBooking(req)
	if err != nil {
		h.Logger.Error("THEATRE", fmt.Sprintf("CreateBooking performance=%s: %v", req.PerformanceID, err))
		utils.WriteError(w, utils.UpstreamStatus(err), "Failed to create booking", err.Error())
		return
	}

	h.Logger.LogRelay("theatre", "/bookings", fmt.Sprintf("Booking %s created", booking.Reference))
	utils.WriteJSON(w, http.StatusCreated, booking)
}
