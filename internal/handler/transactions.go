package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/google/uuid"
)

// parseTransactionFilter reads listing filters from the query string
func parseTransactionFilter(q url.Values) (models.TransactionFilter, error) {
	var filter models.TransactionFilter
	fields := map[string]string{}

	parseID := func(key string) *uuid.UUID {
		v := q.Get(key)
		if v == "" {
			return nil
		}
		id, err := uuid.Parse(v)
		if err != nil {
			fields[key] = "must be a valid id"
			return nil
		}
		return &id
	}
	parseDate := func(key string) *models.Date {
		v := q.Get(key)
		if v == "" {
			return nil
		}
		d, err := models.ParseDate(v)
		if err != nil {
			fields[key] = "must be a date in YYYY-MM-DD format"
			return nil
		}
		return &d
	}
	parseInt := func(key string) int {
		v := q.Get(key)
		if v == "" {
			return 0
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			fields[key] = "must be a number"
			return 0
		}
		return n
	}

	filter.AccountID = parseID("account_id")
	filter.CategoryID = parseID("category_id")
	filter.StartDate = parseDate("start_date")
	filter.EndDate = parseDate("end_date")
	filter.Limit = parseInt("limit")
	filter.Offset = parseInt("offset")
	if v := q.Get("type"); v != "" {
		t := models.TransactionType(v)
		filter.Type = &t
	}

	if len(fields) > 0 {
		return filter, &models.ValidationError{Fields: fields}
	}
	return filter, nil
}

// ListTransactions returns transactions newest first, filtered by query parameters
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	filter, err := parseTransactionFilter(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	transactions, err := h.svc.ListTransactions(r.Context(), uid, filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	transaction, err := h.svc.GetTransaction(r.Context(), id, uid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transaction)
}

// CreateTransaction records a transaction and applies it to the account balance
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var input models.TransactionInput
	if !decodeJSON(w, r, &input) {
		return
	}
	transaction, err := h.svc.CreateTransaction(r.Context(), uid, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, transaction)
}

// UpdateTransaction applies the fields present in the body; omitted fields are kept
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var patch models.TransactionPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	transaction, err := h.svc.UpdateTransaction(r.Context(), id, uid, patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transaction)
}

// DeleteTransaction removes a transaction, reverses its balance effect and
// returns the deleted record
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	transaction, err := h.svc.DeleteTransaction(r.Context(), id, uid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transaction)
}
