package handler

import (
	"net/http"

	"github.com/Dan9191/finance-service/internal/models"
)

// GetBudgets returns the budgets of ?month= with actual spending applied
func (h *Handler) GetBudgets(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	summary, err := h.svc.GetBudgetsForMonth(r.Context(), uid, r.URL.Query().Get("month"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// CreateBudget creates the budget or replaces the amount of an existing one
// for the same category and month
func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var input models.BudgetInput
	if !decodeJSON(w, r, &input) {
		return
	}
	budget, err := h.svc.CreateBudget(r.Context(), uid, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, budget)
}

func (h *Handler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var input models.BudgetInput
	if !decodeJSON(w, r, &input) {
		return
	}
	budget, err := h.svc.UpdateBudget(r.Context(), id, uid, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteBudget(r.Context(), id, uid); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CopyBudgets copies the previous month's budgets into ?month=
func (h *Handler) CopyBudgets(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	created, err := h.svc.CopyBudgetsFromPreviousMonth(r.Context(), uid, r.URL.Query().Get("month"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
