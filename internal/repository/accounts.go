package repository

import (
	"context"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/google/uuid"
)

const accountColumns = `id, user_id, name, type, balance, currency, created_at, updated_at`

func scanAccount(s scanner) (*models.Account, error) {
	a := &models.Account{}
	err := s.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Balance, &a.Currency, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListAccounts returns the user's accounts ordered by name
func (r *Repository) ListAccounts(ctx context.Context, userID uuid.UUID) ([]models.Account, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE user_id = $1
		ORDER BY name, created_at`, userID)
	if err != nil {
		return nil, wrap("list accounts", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, wrap("scan account", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// GetAccount retrieves one of the user's accounts
func (r *Repository) GetAccount(ctx context.Context, id, userID uuid.UUID) (*models.Account, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1 AND user_id = $2`, id, userID)
	a, err := scanAccount(row)
	if err != nil {
		return nil, wrap("get account", err)
	}
	return a, nil
}

// CreateAccount creates a new account in the database
func (r *Repository) CreateAccount(ctx context.Context, account *models.Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	query := `
		INSERT INTO accounts (id, user_id, name, type, balance, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.q.QueryRowContext(ctx, query,
		account.ID, account.UserID, account.Name, account.Type, account.Balance, account.Currency).
		Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return wrap("create account", err)
	}
	return nil
}

// UpdateAccount overwrites name and type of an owned account. A non-nil balance
// is the explicit override path (e.g. correcting an opening balance); nil keeps
// the running balance. An empty currency keeps the stored one.
func (r *Repository) UpdateAccount(ctx context.Context, id, userID uuid.UUID, input models.AccountUpdateInput) (*models.Account, error) {
	row := r.q.QueryRowContext(ctx, `
		UPDATE accounts
		SET name = $3, type = $4,
			balance = COALESCE($5, balance),
			currency = COALESCE(NULLIF($6, ''), currency),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2
		RETURNING `+accountColumns,
		id, userID, input.Name, input.Type, input.Balance, input.Currency)
	a, err := scanAccount(row)
	if err != nil {
		return nil, wrap("update account", err)
	}
	return a, nil
}

// DeleteAccount removes an owned account; its transactions cascade
func (r *Repository) DeleteAccount(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return wrap("delete account", err)
	}
	return expectOne(res)
}

// AdjustAccountBalance applies a relative delta to an owned account's balance.
// The addition is evaluated by the database so concurrent writers never lose updates.
func (r *Repository) AdjustAccountBalance(ctx context.Context, id, userID uuid.UUID, delta int64) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE accounts
		SET balance = balance + $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2`, id, userID, delta)
	if err != nil {
		return wrap("adjust account balance", err)
	}
	return expectOne(res)
}
