package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ticket-marketplace/internal/discovery"
	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/utils"
)

type Handler struct {
	Service *Service
	Logger  *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Query  string                  `json:"query"`
	Filter *discovery.SearchParams `json:"filter"`
	Events []discovery.Event       `json:"events"`
	Total  int                     `json:"total"`
}

// Search parses a natural-language query and relays it to the discovery
// provider. POST /api/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.Query == "" {
		utils.WriteError(w, http.StatusBadRequest, "Validation failed", "query is required")
		return
	}

	result, filter, err := h.Service.Search(req.Query)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			h.Logger.Error("SEARCH", fmt.Sprintf("Unparseable model output: %v", err))
			utils.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success":    false,
				"message":    "Failed to parse search query",
				"raw_output": parseErr.RawOutput,
			})
			return
		}
		// Upstream discovery failure degrades to an empty result; the
		// filter is still useful to the UI.
		h.Logger.Warn("SEARCH", fmt.Sprintf("Discovery relay failed, serving empty result: %v", err))
		utils.WriteJSON(w, http.StatusOK, searchResponse{
			Query:  req.Query,
			Filter: filter,
			Events: []discovery.Event{},
			Total:  0,
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, searchResponse{
		Query:  req.Query,
		Filter: filter,
		Events: result.Events,
		Total:  result.Total,
	})
}
