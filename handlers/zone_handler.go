package handlers

import (
	"errors"
	"net/http"

	"github.com/federgolf/referee-system/repositories"
)

type ZoneHandler struct {
	zoneRepo repositories.ZoneRepository
}

func NewZoneHandler(zoneRepo repositories.ZoneRepository) *ZoneHandler {
	return &ZoneHandler{zoneRepo: zoneRepo}
}

// ListHandler обрабатывает GET /zones
func (h *ZoneHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	zones, err := h.zoneRepo.List(r.Context(), r.URL.Query().Get("include_inactive") != "true")
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"zones": zones}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /zones/{zoneID}
func (h *ZoneHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "zoneID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	zone, err := h.zoneRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrZoneNotFound) {
			notFoundResponse(w, r)
			return
		}
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"zone": zone}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
