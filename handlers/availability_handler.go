package handlers

import (
	"net/http"

	"github.com/federgolf/referee-system/middleware"
	"github.com/federgolf/referee-system/services"
)

type AvailabilityHandler struct {
	availabilityService services.AvailabilityService
}

func NewAvailabilityHandler(as services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilityService: as}
}

// DeclareHandler обрабатывает POST /availabilities — пакетную подачу заявок
// действующим арбитром с раздельной комитетской рассылкой.
func (h *AvailabilityHandler) DeclareHandler(w http.ResponseWriter, r *http.Request) {
	refereeID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to declare availability")
		return
	}

	var input struct {
		TournamentIDs []int   `json:"tournament_ids"`
		Notes         *string `json:"notes,omitempty"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	recipients, err := h.availabilityService.DeclareBatch(r.Context(), refereeID, input.TournamentIDs, input.Notes)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"recipients": recipients}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMineHandler обрабатывает GET /availabilities
func (h *AvailabilityHandler) ListMineHandler(w http.ResponseWriter, r *http.Request) {
	refereeID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	availabilities, err := h.availabilityService.ListByReferee(r.Context(), refereeID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"availabilities": availabilities}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// WithdrawHandler обрабатывает DELETE /availabilities/{availabilityID}
func (h *AvailabilityHandler) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "availabilityID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.availabilityService.Withdraw(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
