package discovery

import (
	"fmt"
	"net/http"
	"strconv"

	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Client *Client
	Logger *logger.Logger
}

func NewHandler(client *Client, log *logger.Logger) *Handler {
	return &Handler{Client: client, Logger: log}
}

// SearchEvents relays an event search, falling back to demo data when the
// provider is unreachable. GET /api/discovery/events
func (h *Handler) SearchEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	params := SearchParams{
		Keyword:        q.Get("keyword"),
		City:           q.Get("city"),
		CountryCode:    q.Get("country_code"),
		StartDate:      q.Get("start_date"),
		EndDate:        q.Get("end_date"),
		Classification: q.Get("classification"),
		Page:           page,
		PageSize:       pageSize,
	}

	result, err := h.Client.SearchEvents(params)
	if err != nil {
		h.Logger.Warn("DISCOVERY", fmt.Sprintf("SearchEvents unavailable, serving demo data: %v", err))
		result = &SearchResult{Events: DemoEvents, Total: len(DemoEvents)}
	}

	utils.WriteJSON(w, http.StatusOK, result)
}

// GET /api/discovery/events/{eventId}
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	event, err := h.Client.GetEvent(eventID)
	if err != nil {
		h.Logger.Error("DISCOVERY", fmt.Sprintf("GetEvent %s: %v", eventID, err))
		utils.WriteError(w, utils.UpstreamStatus(err), "Failed to fetch event", err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, event)
}

// GET /api/discovery/venues
func (h *Handler) SearchVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := h.Client.SearchVenues(r.URL.Query().Get("keyword"))
	if err != nil {
		h.Logger.Warn("DISCOVERY", fmt.Sprintf("SearchVenues unavailable, serving empty result: %v", err))
		venues = []Venue{}
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"venues": venues,
		"total":  len(venues),
	})
}

// GET /api/discovery/classifications
func (h *Handler) ListClassifications(w http.ResponseWriter, r *http.Request) {
	classifications, err := h.Client.ListClassifications()
	if err != nil {
		h.Logger.Warn("DISCOVERY", fmt.Sprintf("ListClassifications unavailable, serving demo data: %v", err))
		classifications = DemoClassifications
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"classifications": classifications,
		"total":           len(classifications),
	})
}
