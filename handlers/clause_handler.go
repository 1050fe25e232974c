package handlers

import (
	"net/http"

	"github.com/federgolf/referee-system/models"
	"github.com/federgolf/referee-system/services"
)

type ClauseHandler struct {
	clauseService services.ClauseService
}

func NewClauseHandler(cs services.ClauseService) *ClauseHandler {
	return &ClauseHandler{clauseService: cs}
}

// ListHandler обрабатывает GET /clauses?audience=club
func (h *ClauseHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var audience *models.ClauseAudience
	if raw := r.URL.Query().Get("audience"); raw != "" {
		a := models.ClauseAudience(raw)
		audience = &a
	}

	clauses, err := h.clauseService.ListActive(r.Context(), audience)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"clauses": clauses}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PlaceholdersHandler обрабатывает GET /clauses/placeholders
func (h *ClauseHandler) PlaceholdersHandler(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"placeholders": services.ClausePlaceholders}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateHandler обрабатывает POST /clauses
func (h *ClauseHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var clause models.Clause
	if err := readJSON(w, r, &clause); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	clause.IsActive = true

	if err := h.clauseService.Create(r.Context(), &clause); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"clause": clause}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler обрабатывает PUT /clauses/{clauseID}
func (h *ClauseHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "clauseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var clause models.Clause
	if err := readJSON(w, r, &clause); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	clause.ID = id

	if err := h.clauseService.Update(r.Context(), &clause); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"clause": clause}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler обрабатывает DELETE /clauses/{clauseID} (мягкое удаление)
func (h *ClauseHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "clauseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.clauseService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
