package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/federgolf/referee-system/models"
	"github.com/federgolf/referee-system/services"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(ns services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: ns}
}

// PrepareHandler обрабатывает POST /tournaments/{tournamentID}/notification —
// идемпотентную подготовку уведомления.
func (h *NotificationHandler) PrepareHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	notification, err := h.notificationService.PrepareNotification(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"notification": notification}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler обрабатывает GET /notifications/{notificationID}
func (h *NotificationHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "notificationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	notification, err := h.notificationService.GetNotification(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"notification": notification}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByTournamentHandler обрабатывает GET /tournaments/{tournamentID}/notification
func (h *NotificationHandler) GetByTournamentHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	notification, err := h.notificationService.GetTournamentNotification(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"notification": notification}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateMetadataHandler обрабатывает PUT /notifications/{notificationID}/metadata
func (h *NotificationHandler) UpdateMetadataHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "notificationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var metadata models.NotificationMetadata
	if err := readJSON(w, r, &metadata); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.notificationService.UpdateMetadata(r.Context(), id, &metadata); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"metadata": metadata}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SaveClausesHandler обрабатывает PUT /notifications/{notificationID}/clauses
func (h *NotificationHandler) SaveClausesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "notificationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Selections map[string]int `json:"selections"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.notificationService.SaveClauseSelections(r.Context(), id, input.Selections); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"selections": input.Selections}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateDocumentsHandler обрабатывает POST /notifications/{notificationID}/documents
func (h *NotificationHandler) GenerateDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "notificationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	documents, err := h.notificationService.GenerateDocuments(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"documents": documents}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RegenerateDocumentHandler обрабатывает
// POST /notifications/{notificationID}/documents/{documentType}
func (h *NotificationHandler) RegenerateDocumentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "notificationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	docType := chi.URLParam(r, "documentType")
	documents, err := h.notificationService.RegenerateDocument(r.Context(), id, docType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"documents": documents}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SendHandler обрабатывает POST /notifications/{notificationID}/send?force=true
func (h *NotificationHandler) SendHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "notificationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	force := r.URL.Query().Get("force") == "true"
	if err := h.notificationService.Send(r.Context(), id, force); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": models.NotificationSent}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
