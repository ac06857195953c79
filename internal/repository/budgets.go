package repository

import (
	"context"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const budgetColumns = `id, user_id, category_id, amount, month, created_at, updated_at`

func scanBudget(s scanner) (*models.Budget, error) {
	b := &models.Budget{}
	if err := s.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount, &b.Month, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return b, nil
}

// ListBudgets returns the user's budgets for month joined with their categories
func (r *Repository) ListBudgets(ctx context.Context, userID uuid.UUID, month string) ([]models.BudgetWithCategory, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT b.id, b.user_id, b.category_id, b.amount, b.month, b.created_at, b.updated_at,
		       c.id, c.user_id, c.name, c.type, c.color, c.icon, c.is_active, c.created_at, c.updated_at
		FROM budgets b
		JOIN categories c ON c.id = b.category_id
		WHERE b.user_id = $1 AND b.month = $2
		ORDER BY c.name`, userID, month)
	if err != nil {
		return nil, wrap("list budgets", err)
	}
	defer rows.Close()

	list := []models.BudgetWithCategory{}
	for rows.Next() {
		var b models.BudgetWithCategory
		err := rows.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount, &b.Month, &b.CreatedAt, &b.UpdatedAt,
			&b.Category.ID, &b.Category.UserID, &b.Category.Name, &b.Category.Type, &b.Category.Color,
			&b.Category.Icon, &b.Category.IsActive, &b.Category.CreatedAt, &b.Category.UpdatedAt)
		if err != nil {
			return nil, wrap("scan budget", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// UpsertBudget inserts a budget or, when one already exists for the same
// (user, category, month), updates its amount in place.
func (r *Repository) UpsertBudget(ctx context.Context, budget *models.Budget) error {
	if budget.ID == uuid.Nil {
		budget.ID = uuid.New()
	}
	query := `
		INSERT INTO budgets (id, user_id, category_id, amount, month, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, category_id, month)
		DO UPDATE SET amount = EXCLUDED.amount, updated_at = CURRENT_TIMESTAMP
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRowContext(ctx, query,
		budget.ID, budget.UserID, budget.CategoryID, budget.Amount, budget.Month).
		Scan(&budget.ID, &budget.CreatedAt, &budget.UpdatedAt)
	if err != nil {
		return wrap("upsert budget", err)
	}
	return nil
}

// UpdateBudget overwrites category, amount and month of an owned budget
func (r *Repository) UpdateBudget(ctx context.Context, budget *models.Budget) error {
	query := `
		UPDATE budgets
		SET category_id = $3, amount = $4, month = $5, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2
		RETURNING created_at, updated_at`
	err := r.q.QueryRowContext(ctx, query,
		budget.ID, budget.UserID, budget.CategoryID, budget.Amount, budget.Month).
		Scan(&budget.CreatedAt, &budget.UpdatedAt)
	if err != nil {
		return wrap("update budget", err)
	}
	return nil
}

// DeleteBudget removes an owned budget
func (r *Repository) DeleteBudget(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return wrap("delete budget", err)
	}
	return expectOne(res)
}

// InsertBudgets bulk-inserts budgets for one user and month in a single statement.
// Rows whose category is already budgeted for the month are skipped; only the
// inserted rows are returned.
func (r *Repository) InsertBudgets(ctx context.Context, userID uuid.UUID, month string, budgets []models.Budget) ([]models.Budget, error) {
	if len(budgets) == 0 {
		return []models.Budget{}, nil
	}
	ids := make([]string, len(budgets))
	categoryIDs := make([]string, len(budgets))
	amounts := make([]int64, len(budgets))
	for i, b := range budgets {
		id := b.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		ids[i] = id.String()
		categoryIDs[i] = b.CategoryID.String()
		amounts[i] = b.Amount
	}

	rows, err := r.q.QueryContext(ctx, `
		INSERT INTO budgets (id, user_id, category_id, amount, month, created_at, updated_at)
		SELECT u.id, $1, u.category_id, u.amount, $2, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP
		FROM unnest($3::uuid[], $4::uuid[], $5::bigint[]) AS u(id, category_id, amount)
		ON CONFLICT (user_id, category_id, month) DO NOTHING
		RETURNING `+budgetColumns,
		userID, month, pq.Array(ids), pq.Array(categoryIDs), pq.Array(amounts))
	if err != nil {
		return nil, wrap("insert budgets", err)
	}
	defer rows.Close()

	created := []models.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, wrap("scan budget", err)
		}
		created = append(created, *b)
	}
	return created, rows.Err()
}
