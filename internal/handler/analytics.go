package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Dan9191/finance-service/internal/export"
	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/service"
)

// Dashboard returns stats, spending, recent activity and a ?trend= month trend
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	trend := 0
	if v := r.URL.Query().Get("trend"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.writeError(w, r, models.NewValidationError("trend", "must be a number"))
			return
		}
		trend = n
	}
	dashboard, err := h.svc.Dashboard(r.Context(), uid, trend)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

// reportPeriod resolves ?start=&end= into a custom period, otherwise ?period=
// names a preset
func (h *Handler) reportPeriod(r *http.Request) (models.ReportPeriod, error) {
	q := r.URL.Query()
	start, end := q.Get("start"), q.Get("end")
	if start == "" && end == "" {
		return h.svc.ResolvePeriod(q.Get("period"))
	}

	fields := map[string]string{}
	startDate, err := models.ParseDate(start)
	if err != nil {
		fields["start"] = "must be a date in YYYY-MM-DD format"
	}
	endDate, err := models.ParseDate(end)
	if err != nil {
		fields["end"] = "must be a date in YYYY-MM-DD format"
	}
	if len(fields) > 0 {
		return models.ReportPeriod{}, &models.ValidationError{Fields: fields}
	}
	return service.CustomPeriod(startDate, endDate)
}

// Report returns the full report for a preset or custom period
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	period, err := h.reportPeriod(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	report, err := h.svc.Report(r.Context(), uid, period)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ReportPeriods lists the preset periods
func (h *Handler) ReportPeriods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.PresetPeriods())
}

// ExportReport downloads the report as XML, amounts rendered in ?currency=
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	currency := models.Currency(r.URL.Query().Get("currency"))
	if currency == "" {
		currency = models.DefaultCurrency
	}
	if !currency.Valid() {
		h.writeError(w, r, models.NewValidationError("currency", "must be one of: IDR, USD, EUR, SGD, MYR"))
		return
	}
	period, err := h.reportPeriod(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	report, err := h.svc.Report(r.Context(), uid, period)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	body, err := export.ReportXML(report, currency, time.Now())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("report_%s_%s.xml", period.StartDate, period.EndDate)
	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
