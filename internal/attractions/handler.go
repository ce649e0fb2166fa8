package attractions

import (
	"fmt"
	"net/http"

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

// ListAttractions relays the catalog, degrading to the built-in fallback
// data on upstream failure. GET /api/attractions
func (h *Handler) ListAttractions(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	category := r.URL.Query().Get("category")

	list, err := h.Client.ListAttractions(city, category)
	if err != nil {
		h.Logger.Warn("ATTRACTIONS", fmt.Sprintf("Catalog unavailable, serving fallback data: %v", err))
		list = FilterFallback(city, category)
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"attractions": list,
		"total":       len(list),
	})
}

// GET /api/attractions/{attractionId}
func (h *Handler) GetAttraction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "attractionId")

	attraction, err := h.Client.GetAttraction(id)
	if err != nil {
		for i := range FallbackCatalog {
			if FallbackCatalog[i].ID == id || FallbackCatalog[i].Slug == id {
				h.Logger.Warn("ATTRACTIONS", fmt.Sprintf("Catalog unavailable, serving fallback entry %s: %v", id, err))
				utils.WriteJSON(w, http.StatusOK, FallbackCatalog[i])
				return
			}
		}
		h.Logger.Error("ATTRACTIONS", fmt.Sprintf("GetAttraction %s: %v", id, err))
		utils.WriteError(w, http.StatusNotFound, "Attraction not found", err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, attraction)
}

// ListCities serves the static city list. GET /api/attractions/cities
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"cities": Cities,
		"total":  len(Cities),
	})
}
