package handlers

import (
	"net/http"

	"github.com/federgolf/referee-system/services"
)

type ValidationHandler struct {
	validationService services.ValidationService
}

func NewValidationHandler(vs services.ValidationService) *ValidationHandler {
	return &ValidationHandler{validationService: vs}
}

// ConflictsHandler обрабатывает GET /validation/conflicts?zone_id=N
func (h *ValidationHandler) ConflictsHandler(w http.ResponseWriter, r *http.Request) {
	zoneID, err := zoneFilterFromRequest(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conflicts, err := h.validationService.DetectDateConflicts(r.Context(), zoneID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"conflicts": conflicts}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SummaryHandler обрабатывает GET /validation/summary?zone_id=N
func (h *ValidationHandler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	zoneID, err := zoneFilterFromRequest(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.validationService.GetValidationSummary(r.Context(), zoneID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"summary": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
