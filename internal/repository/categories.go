package repository

import (
	"context"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/google/uuid"
)

const categoryColumns = `id, user_id, name, type, color, icon, is_active, created_at, updated_at`

func scanCategory(s scanner) (*models.Category, error) {
	c := &models.Category{}
	err := s.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Color, &c.Icon, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCategories returns the user's active categories, optionally of one type
func (r *Repository) ListCategories(ctx context.Context, userID uuid.UUID, typ *models.TransactionType) ([]models.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE user_id = $1 AND is_active`
	args := []any{userID}
	if typ != nil {
		query += ` AND type = $2`
		args = append(args, *typ)
	}
	query += ` ORDER BY name`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("list categories", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, wrap("scan category", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// GetCategory retrieves an owned category, archived ones included
func (r *Repository) GetCategory(ctx context.Context, id, userID uuid.UUID) (*models.Category, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE id = $1 AND user_id = $2`, id, userID)
	c, err := scanCategory(row)
	if err != nil {
		return nil, wrap("get category", err)
	}
	return c, nil
}

// CreateCategory inserts an active category
func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	category.IsActive = true
	query := `
		INSERT INTO categories (id, user_id, name, type, color, icon, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.q.QueryRowContext(ctx, query,
		category.ID, category.UserID, category.Name, category.Type, category.Color, category.Icon).
		Scan(&category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return wrap("create category", err)
	}
	return nil
}

// LockCategory loads an owned category with a row lock held until the unit of
// work ends. Transaction inserts referencing the category wait on the lock.
func (r *Repository) LockCategory(ctx context.Context, id, userID uuid.UUID) (*models.Category, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE id = $1 AND user_id = $2
		FOR UPDATE`, id, userID)
	c, err := scanCategory(row)
	if err != nil {
		return nil, wrap("lock category", err)
	}
	return c, nil
}

// CountCategoryTransactions counts the user's transactions referencing a category
func (r *Repository) CountCategoryTransactions(ctx context.Context, categoryID, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM transactions
		WHERE category_id = $1 AND user_id = $2`, categoryID, userID).Scan(&n)
	if err != nil {
		return 0, wrap("count category transactions", err)
	}
	return n, nil
}

// UpdateCategory overwrites the editable fields of an owned category
func (r *Repository) UpdateCategory(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $3, type = $4, color = $5, icon = $6, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2
		RETURNING is_active, created_at, updated_at`
	err := r.q.QueryRowContext(ctx, query,
		category.ID, category.UserID, category.Name, category.Type, category.Color, category.Icon).
		Scan(&category.IsActive, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return wrap("update category", err)
	}
	return nil
}

// ArchiveCategory soft-deletes an owned category and returns it
func (r *Repository) ArchiveCategory(ctx context.Context, id, userID uuid.UUID) (*models.Category, error) {
	row := r.q.QueryRowContext(ctx, `
		UPDATE categories
		SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2
		RETURNING `+categoryColumns, id, userID)
	c, err := scanCategory(row)
	if err != nil {
		return nil, wrap("archive category", err)
	}
	return c, nil
}
