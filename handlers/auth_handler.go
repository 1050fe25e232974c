package handlers

import (
	"net/http"

	"github.com/federgolf/referee-system/middleware"
	"github.com/federgolf/referee-system/models"
	"github.com/federgolf/referee-system/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginHandler обрабатывает POST /auth/login
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := readJSON(w, r, &creds); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	token, referee, err := h.authService.Login(r.Context(), creds)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"token": token, "referee": referee}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type registerInput struct {
	FirstName   string              `json:"first_name"`
	LastName    string              `json:"last_name"`
	Email       string              `json:"email"`
	Password    string              `json:"password"`
	RefereeCode *string             `json:"referee_code,omitempty"`
	Level       models.RefereeLevel `json:"level"`
	ZoneID      *int                `json:"zone_id,omitempty"`
}

// RegisterHandler обрабатывает POST /auth/register
func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var input registerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	referee := &models.Referee{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		RefereeCode: input.RefereeCode,
		Level:       input.Level,
		ZoneID:      input.ZoneID,
		Role:        "referee",
	}
	if err := h.authService.Register(r.Context(), referee, input.Password); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"referee": referee}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type profileInput struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       string  `json:"email"`
	RefereeCode *string `json:"referee_code,omitempty"`
}

// UpdateProfileHandler обрабатывает PUT /profile (текущий пользователь из JWT)
func (h *AuthHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	refereeID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input profileInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	referee, err := h.authService.UpdateProfile(r.Context(), refereeID, &models.Referee{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		RefereeCode: input.RefereeCode,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"referee": referee}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
