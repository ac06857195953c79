package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dan9191/finance-service/internal/middleware"
	"github.com/Dan9191/finance-service/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// FinanceService is the business API served over HTTP
type FinanceService interface {
	Register(ctx context.Context, input models.RegisterInput) (*models.User, error)
	Login(ctx context.Context, input models.LoginInput) (string, error)

	ListAccounts(ctx context.Context, userID uuid.UUID) ([]models.Account, error)
	GetAccount(ctx context.Context, id, userID uuid.UUID) (*models.Account, error)
	CreateAccount(ctx context.Context, userID uuid.UUID, input models.AccountInput) (*models.Account, error)
	UpdateAccount(ctx context.Context, id, userID uuid.UUID, input models.AccountUpdateInput) (*models.Account, error)
	DeleteAccount(ctx context.Context, id, userID uuid.UUID) error

	ListCategories(ctx context.Context, userID uuid.UUID, typ *models.TransactionType) ([]models.Category, error)
	GetCategory(ctx context.Context, id, userID uuid.UUID) (*models.Category, error)
	CreateCategory(ctx context.Context, userID uuid.UUID, input models.CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id, userID uuid.UUID, input models.CategoryInput) (*models.Category, error)
	ArchiveCategory(ctx context.Context, id, userID uuid.UUID) (*models.Category, error)

	ListTransactions(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) ([]models.TransactionWithRelations, error)
	GetTransaction(ctx context.Context, id, userID uuid.UUID) (*models.TransactionWithRelations, error)
	CreateTransaction(ctx context.Context, userID uuid.UUID, input models.TransactionInput) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id, userID uuid.UUID, patch models.TransactionPatch) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id, userID uuid.UUID) (*models.Transaction, error)

	GetBudgetsForMonth(ctx context.Context, userID uuid.UUID, month string) (*models.MonthlyBudgetSummary, error)
	CreateBudget(ctx context.Context, userID uuid.UUID, input models.BudgetInput) (*models.Budget, error)
	UpdateBudget(ctx context.Context, id, userID uuid.UUID, input models.BudgetInput) (*models.Budget, error)
	DeleteBudget(ctx context.Context, id, userID uuid.UUID) error
	CopyBudgetsFromPreviousMonth(ctx context.Context, userID uuid.UUID, target string) ([]models.Budget, error)

	Dashboard(ctx context.Context, userID uuid.UUID, trendMonths int) (*models.Dashboard, error)
	Report(ctx context.Context, userID uuid.UUID, period models.ReportPeriod) (*models.ReportData, error)
	ResolvePeriod(preset string) (models.ReportPeriod, error)
	PresetPeriods() []models.PresetPeriod
}

type Handler struct {
	svc FinanceService
	log *logrus.Logger
}

func NewHandler(svc FinanceService, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Routes registers public routes on r and authenticated routes behind auth
func (h *Handler) Routes(r *mux.Router, auth mux.MiddlewareFunc) {
	// Public routes
	r.HandleFunc("/healthz", h.Health).Methods("GET")
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")

	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(auth)

	authRouter.HandleFunc("/accounts", h.ListAccounts).Methods("GET")
	authRouter.HandleFunc("/accounts", h.CreateAccount).Methods("POST")
	authRouter.HandleFunc("/accounts/{id}", h.GetAccount).Methods("GET")
	authRouter.HandleFunc("/accounts/{id}", h.UpdateAccount).Methods("PUT")
	authRouter.HandleFunc("/accounts/{id}", h.DeleteAccount).Methods("DELETE")

	authRouter.HandleFunc("/categories", h.ListCategories).Methods("GET")
	authRouter.HandleFunc("/categories", h.CreateCategory).Methods("POST")
	authRouter.HandleFunc("/categories/{id}", h.GetCategory).Methods("GET")
	authRouter.HandleFunc("/categories/{id}", h.UpdateCategory).Methods("PUT")
	authRouter.HandleFunc("/categories/{id}", h.ArchiveCategory).Methods("DELETE")

	authRouter.HandleFunc("/transactions", h.ListTransactions).Methods("GET")
	authRouter.HandleFunc("/transactions", h.CreateTransaction).Methods("POST")
	authRouter.HandleFunc("/transactions/{id}", h.GetTransaction).Methods("GET")
	authRouter.HandleFunc("/transactions/{id}", h.UpdateTransaction).Methods("PUT", "PATCH")
	authRouter.HandleFunc("/transactions/{id}", h.DeleteTransaction).Methods("DELETE")

	authRouter.HandleFunc("/budgets", h.GetBudgets).Methods("GET")
	authRouter.HandleFunc("/budgets", h.CreateBudget).Methods("POST")
	authRouter.HandleFunc("/budgets/copy", h.CopyBudgets).Methods("POST")
	authRouter.HandleFunc("/budgets/{id}", h.UpdateBudget).Methods("PUT")
	authRouter.HandleFunc("/budgets/{id}", h.DeleteBudget).Methods("DELETE")

	authRouter.HandleFunc("/dashboard", h.Dashboard).Methods("GET")
	authRouter.HandleFunc("/reports", h.Report).Methods("GET")
	authRouter.HandleFunc("/reports/periods", h.ReportPeriods).Methods("GET")
	authRouter.HandleFunc("/reports/export", h.ExportReport).Methods("GET")
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP statuses. Unexpected errors are
// logged and answered with a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, models.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
	case errors.Is(err, models.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "already exists"})
	default:
		h.log.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error("Request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// decodeJSON reads the request body into v, writing a 400 on malformed input
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		badRequest(w, "invalid request body")
		return false
	}
	return true
}

// pathID parses the {id} route variable. A malformed id cannot name an
// existing row, so it is reported as not found.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, models.ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// userID returns the authenticated user. Routes without the auth middleware
// never call it, so a missing id is answered with 401.
func userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	}
	return id, ok
}
