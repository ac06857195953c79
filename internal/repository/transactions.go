package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/google/uuid"
)

const transactionColumns = `id, user_id, type, category_id, account_id, amount, description, date, created_at, updated_at`

const transactionWithRelationsQuery = `
	SELECT t.id, t.user_id, t.type, t.category_id, t.account_id, t.amount, t.description, t.date,
	       t.created_at, t.updated_at, c.name, c.color, c.icon, a.name, a.currency
	FROM transactions t
	JOIN accounts a ON a.id = t.account_id
	LEFT JOIN categories c ON c.id = t.category_id`

func scanTransaction(s scanner) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := s.Scan(&t.ID, &t.UserID, &t.Type, &t.CategoryID, &t.AccountID, &t.Amount,
		&t.Description, &t.Date, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func scanTransactionWithRelations(s scanner) (*models.TransactionWithRelations, error) {
	t := &models.TransactionWithRelations{}
	err := s.Scan(&t.ID, &t.UserID, &t.Type, &t.CategoryID, &t.AccountID, &t.Amount,
		&t.Description, &t.Date, &t.CreatedAt, &t.UpdatedAt,
		&t.CategoryName, &t.CategoryColor, &t.CategoryIcon, &t.AccountName, &t.Currency)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTransactions returns the user's transactions matching filter, newest first.
// Ties on date are broken by creation time.
func (r *Repository) ListTransactions(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) ([]models.TransactionWithRelations, error) {
	conds := []string{"t.user_id = $1", "a.user_id = $1"}
	args := []any{userID}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.AccountID != nil {
		add("t.account_id = $%d", *filter.AccountID)
	}
	if filter.CategoryID != nil {
		add("t.category_id = $%d", *filter.CategoryID)
	}
	if filter.Type != nil {
		add("t.type = $%d", *filter.Type)
	}
	if filter.StartDate != nil {
		add("t.date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("t.date <= $%d", *filter.EndDate)
	}

	query := transactionWithRelationsQuery +
		"\n\tWHERE " + strings.Join(conds, " AND ") +
		"\n\tORDER BY t.date DESC, t.created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("list transactions", err)
	}
	defer rows.Close()

	list := []models.TransactionWithRelations{}
	for rows.Next() {
		t, err := scanTransactionWithRelations(rows)
		if err != nil {
			return nil, wrap("scan transaction", err)
		}
		list = append(list, *t)
	}
	return list, rows.Err()
}

// GetTransaction retrieves an owned transaction with its category and account
func (r *Repository) GetTransaction(ctx context.Context, id, userID uuid.UUID) (*models.TransactionWithRelations, error) {
	row := r.q.QueryRowContext(ctx, transactionWithRelationsQuery+`
	WHERE t.id = $1 AND t.user_id = $2`, id, userID)
	t, err := scanTransactionWithRelations(row)
	if err != nil {
		return nil, wrap("get transaction", err)
	}
	return t, nil
}

// LockTransaction loads an owned transaction and holds a row lock on it until
// the surrounding database transaction ends. Outside InTx the lock is released immediately.
func (r *Repository) LockTransaction(ctx context.Context, id, userID uuid.UUID) (*models.Transaction, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = $1 AND user_id = $2
		FOR UPDATE`, id, userID)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, wrap("load transaction", err)
	}
	return t, nil
}

// InsertTransaction writes the transaction row only; balance effects are the caller's job
func (r *Repository) InsertTransaction(ctx context.Context, t *models.Transaction) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	query := `
		INSERT INTO transactions (id, user_id, type, category_id, account_id, amount, description, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.q.QueryRowContext(ctx, query,
		t.ID, t.UserID, t.Type, t.CategoryID, t.AccountID, t.Amount, t.Description, t.Date).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return wrap("insert transaction", err)
	}
	return nil
}

// UpdateTransaction persists every mutable field of an owned transaction and bumps updated_at
func (r *Repository) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	query := `
		UPDATE transactions
		SET type = $3, category_id = $4, account_id = $5, amount = $6, description = $7, date = $8,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2
		RETURNING created_at, updated_at`
	err := r.q.QueryRowContext(ctx, query,
		t.ID, t.UserID, t.Type, t.CategoryID, t.AccountID, t.Amount, t.Description, t.Date).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return wrap("update transaction", err)
	}
	return nil
}

// DeleteTransaction removes an owned transaction row
func (r *Repository) DeleteTransaction(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return wrap("delete transaction", err)
	}
	return expectOne(res)
}
