package handlers

import (
	"net/http"

	"github.com/federgolf/referee-system/repositories"
)

// InstitutionalHandler отдаёт справочник институциональных адресов, из
// которого администратор выбирает получателей канала institutional.
type InstitutionalHandler struct {
	institutionalRepo repositories.InstitutionalEmailRepository
}

func NewInstitutionalHandler(institutionalRepo repositories.InstitutionalEmailRepository) *InstitutionalHandler {
	return &InstitutionalHandler{institutionalRepo: institutionalRepo}
}

// ListHandler обрабатывает GET /institutional-emails
func (h *InstitutionalHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	emails, err := h.institutionalRepo.ListActive(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"institutional_emails": emails}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
