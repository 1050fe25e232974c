package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/federgolf/referee-system/middleware"
	"github.com/federgolf/referee-system/models"
	"github.com/federgolf/referee-system/repositories"
	"github.com/federgolf/referee-system/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

type tournamentInput struct {
	Name       string  `json:"name"`
	ClubID     *int    `json:"club_id,omitempty"`
	TypeID     *int    `json:"tournament_type_id,omitempty"`
	StartDate  string  `json:"start_date"` // YYYY-MM-DD
	EndDate    string  `json:"end_date"`
	IsNational bool    `json:"is_national"`
	Notes      *string `json:"notes,omitempty"`
}

func (in *tournamentInput) toModel() (*models.Tournament, error) {
	start, err := time.Parse("2006-01-02", in.StartDate)
	if err != nil {
		return nil, errors.New("start_date must be in YYYY-MM-DD format")
	}
	end, err := time.Parse("2006-01-02", in.EndDate)
	if err != nil {
		return nil, errors.New("end_date must be in YYYY-MM-DD format")
	}
	return &models.Tournament{
		Name:       in.Name,
		ClubID:     in.ClubID,
		TypeID:     in.TypeID,
		StartDate:  start,
		EndDate:    end,
		IsNational: in.IsNational,
		Notes:      in.Notes,
	}, nil
}

// CreateHandler обрабатывает POST /tournaments
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input tournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := input.toModel()
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.Create(r.Context(), tournament); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /tournaments/{tournamentID}
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /tournaments
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ListTournamentsFilter
	query := r.URL.Query()

	zoneID, err := zoneFilterFromRequest(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	filter.ZoneID = zoneID

	if statusStr := query.Get("status"); statusStr != "" {
		status := models.TournamentStatus(statusStr)
		filter.Status = &status
	}
	filter.NonTerminal = query.Get("non_terminal") == "true"

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, convErr := strconv.Atoi(limitStr); convErr == nil && limit > 0 {
			filter.Limit = limit
		} else {
			badRequestResponse(w, r, errors.New("invalid limit query parameter"))
			return
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, convErr := strconv.Atoi(offsetStr); convErr == nil && offset >= 0 {
			filter.Offset = offset
		} else {
			badRequestResponse(w, r, errors.New("invalid offset query parameter"))
			return
		}
	}

	tournaments, err := h.tournamentService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler обрабатывает PUT /tournaments/{tournamentID}
func (h *TournamentHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input tournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := input.toModel()
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	tournament.ID = id

	if err := h.tournamentService.Update(r.Context(), tournament); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateStatusHandler обрабатывает PATCH /tournaments/{tournamentID}/status
func (h *TournamentHandler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Status models.TournamentStatus `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.UpdateStatus(r.Context(), id, input.Status); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": input.Status}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AssignRefereeHandler обрабатывает POST /tournaments/{tournamentID}/assignments
func (h *TournamentHandler) AssignRefereeHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to assign referees")
		return
	}

	var input struct {
		RefereeID int                   `json:"referee_id"`
		Role      models.AssignmentRole `json:"role,omitempty"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	assignment := &models.Assignment{
		TournamentID: tournamentID,
		RefereeID:    input.RefereeID,
		Role:         input.Role,
		AssignedBy:   &currentUserID,
	}
	if err := h.tournamentService.AssignReferee(r.Context(), assignment); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"assignment": assignment}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListAssignmentsHandler обрабатывает GET /tournaments/{tournamentID}/assignments
func (h *TournamentHandler) ListAssignmentsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	assignments, err := h.tournamentService.ListAssignments(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"assignments": assignments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RemoveAssignmentHandler обрабатывает DELETE /assignments/{assignmentID}
func (h *TournamentHandler) RemoveAssignmentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "assignmentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.RemoveAssignment(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
