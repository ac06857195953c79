package handler

import (
	"net/http"

	"github.com/Dan9191/finance-service/internal/models"
)

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var input models.RegisterInput
	if !decodeJSON(w, r, &input) {
		return
	}
	user, err := h.svc.Register(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var input models.LoginInput
	if !decodeJSON(w, r, &input) {
		return
	}
	token, err := h.svc.Login(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
