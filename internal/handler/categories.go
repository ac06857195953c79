package handler

import (
	"net/http"

	"github.com/Dan9191/finance-service/internal/models"
)

// ListCategories returns active categories, optionally narrowed by ?type=
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var typ *models.TransactionType
	if v := r.URL.Query().Get("type"); v != "" {
		t := models.TransactionType(v)
		typ = &t
	}
	categories, err := h.svc.ListCategories(r.Context(), uid, typ)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	category, err := h.svc.GetCategory(r.Context(), id, uid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var input models.CategoryInput
	if !decodeJSON(w, r, &input) {
		return
	}
	category, err := h.svc.CreateCategory(r.Context(), uid, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var input models.CategoryInput
	if !decodeJSON(w, r, &input) {
		return
	}
	category, err := h.svc.UpdateCategory(r.Context(), id, uid, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// ArchiveCategory soft-deletes a category; its transactions keep referencing it
func (h *Handler) ArchiveCategory(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	category, err := h.svc.ArchiveCategory(r.Context(), id, uid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}
