package itinerary

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/search"
	"ticket-marketplace/internal/utils"

	"github.com/go-playground/validator/v10"
)

type Handler struct {
	Service  *Service
	Logger   *logger.Logger
	Validate *validator.Validate
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		Service:  service,
		Logger:   log,
		Validate: validator.New(),
	}
}

// BuildPlan generates a day-by-day itinerary. POST /api/itinerary
func (h *Handler) BuildPlan(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	plan, err := h.Service.BuildPlan(req)
	if err != nil {
		var parseErr *search.ParseError
		if errors.As(err, &parseErr) {
			h.Logger.Error("ITINERARY", fmt.Sprintf("Unparseable model output: %v", err))
			utils.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success":    false,
				"message":    "Failed to build itinerary",
				"raw_output": parseErr.RawOutput,
			})
			return
		}
		h.Logger.Error("ITINERARY", fmt.Sprintf("BuildPlan: %v", err))
		utils.WriteError(w, utils.UpstreamStatus(err), "Failed to build itinerary", err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, plan)
}
