package images

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/utils"
)

type Handler struct {
	Scraper *Scraper
	Logger  *logger.Logger
}

func NewHandler(scraper *Scraper, log *logger.Logger) *Handler {
	return &Handler{Scraper: scraper, Logger: log}
}

type scrapeRequest struct {
	URLs []string `json:"urls"`
}

// ScrapeBatch scrapes product images from up to 50 pages.
// POST /api/images/scrape
func (h *Handler) ScrapeBatch(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if len(req.URLs) == 0 {
		utils.WriteError(w, http.StatusBadRequest, "Validation failed", "urls is required")
		return
	}
	if len(req.URLs) > 50 {
		utils.WriteError(w, http.StatusBadRequest, "Validation failed", "at most 50 urls per batch")
		return
	}

	summary := h.Scraper.ScrapeBatch(req.URLs)
	utils.WriteJSON(w, http.StatusOK, summary)
}

// Lookup scrapes a single page, cached for an hour.
// GET /api/images/lookup?url=...
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	pageURL := r.URL.Query().Get("url")
	if pageURL == "" {
		utils.WriteError(w, http.StatusBadRequest, "Validation failed", "url parameter required")
		return
	}

	imageURL, err := h.Scraper.Lookup(pageURL)
	if err != nil {
		// A miss degrades to a null image, not an error page.
		h.Logger.Warn("IMAGES", fmt.Sprintf("Lookup failed for %s: %v", pageURL, err))
		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"url":       pageURL,
			"image_url": nil,
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"url":       pageURL,
		"image_url": imageURL,
	})
}
