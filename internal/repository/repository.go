package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Store is the persistence gateway the services depend on.
// Every entity method is scoped by the owning user id.
type Store interface {
	// InTx runs fn inside one atomic unit of work. All writes made through the
	// Store passed to fn commit together or not at all.
	InTx(ctx context.Context, fn func(Store) error) error

	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	ListAccounts(ctx context.Context, userID uuid.UUID) ([]models.Account, error)
	GetAccount(ctx context.Context, id, userID uuid.UUID) (*models.Account, error)
	CreateAccount(ctx context.Context, account *models.Account) error
	UpdateAccount(ctx context.Context, id, userID uuid.UUID, input models.AccountUpdateInput) (*models.Account, error)
	DeleteAccount(ctx context.Context, id, userID uuid.UUID) error
	AdjustAccountBalance(ctx context.Context, id, userID uuid.UUID, delta int64) error

	ListCategories(ctx context.Context, userID uuid.UUID, typ *models.TransactionType) ([]models.Category, error)
	GetCategory(ctx context.Context, id, userID uuid.UUID) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	LockCategory(ctx context.Context, id, userID uuid.UUID) (*models.Category, error)
	CountCategoryTransactions(ctx context.Context, categoryID, userID uuid.UUID) (int64, error)
	UpdateCategory(ctx context.Context, category *models.Category) error
	ArchiveCategory(ctx context.Context, id, userID uuid.UUID) (*models.Category, error)

	ListTransactions(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) ([]models.TransactionWithRelations, error)
	GetTransaction(ctx context.Context, id, userID uuid.UUID) (*models.TransactionWithRelations, error)
	LockTransaction(ctx context.Context, id, userID uuid.UUID) (*models.Transaction, error)
	InsertTransaction(ctx context.Context, t *models.Transaction) error
	UpdateTransaction(ctx context.Context, t *models.Transaction) error
	DeleteTransaction(ctx context.Context, id, userID uuid.UUID) error

	ListBudgets(ctx context.Context, userID uuid.UUID, month string) ([]models.BudgetWithCategory, error)
	UpsertBudget(ctx context.Context, budget *models.Budget) error
	UpdateBudget(ctx context.Context, budget *models.Budget) error
	DeleteBudget(ctx context.Context, id, userID uuid.UUID) error
	InsertBudgets(ctx context.Context, userID uuid.UUID, month string, budgets []models.Budget) ([]models.Budget, error)

	AccountTotals(ctx context.Context, userID uuid.UUID) (total int64, count int64, err error)
	SumByType(ctx context.Context, userID uuid.UUID, from, to models.Date) ([]models.TypeTotal, error)
	SumByCategory(ctx context.Context, userID uuid.UUID, typ models.TransactionType, from, to models.Date) ([]models.CategoryTotal, error)
	SumByMonth(ctx context.Context, userID uuid.UUID, from, to models.Date) ([]models.MonthTypeTotal, error)
	RecentTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.RecentTransaction, error)
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository provides database operations
type Repository struct {
	db *sql.DB
	q  querier
}

var _ Store = (*Repository)(nil)

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, q: db}
}

// InTx begins a database transaction, runs fn against it and commits.
// Any error or panic from fn rolls the whole unit back. Calls on a Repository
// that is already inside a transaction join the outer one.
func (r *Repository) InTx(ctx context.Context, fn func(Store) error) (err error) {
	if _, nested := r.q.(*sql.Tx); nested {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Repository{db: r.db, q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Postgres error codes we translate
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// translate maps driver errors onto the models error taxonomy
func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%w: %s", models.ErrConflict, pqErr.Constraint)
		case pqForeignKeyViolation:
			return fmt.Errorf("%w: %s", models.ErrNotFound, pqErr.Constraint)
		}
	}
	return err
}

// wrap prefixes err with the failed operation unless it is part of the taxonomy
func wrap(op string, err error) error {
	err = translate(err)
	if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrConflict) {
		return err
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// expectOne returns ErrNotFound when a scoped write touched no row
func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}
