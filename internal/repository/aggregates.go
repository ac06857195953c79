package repository

import (
	"context"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/google/uuid"
)

// Aggregates join through accounts so only transactions on the caller's own
// accounts are ever counted.

// AccountTotals returns the summed balance and number of the user's accounts
func (r *Repository) AccountTotals(ctx context.Context, userID uuid.UUID) (int64, int64, error) {
	var total, count int64
	err := r.q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(balance), 0), COUNT(*)
		FROM accounts
		WHERE user_id = $1`, userID).Scan(&total, &count)
	if err != nil {
		return 0, 0, wrap("sum account balances", err)
	}
	return total, count, nil
}

// SumByType totals transaction amounts per type within [from, to]
func (r *Repository) SumByType(ctx context.Context, userID uuid.UUID, from, to models.Date) ([]models.TypeTotal, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT t.type, COALESCE(SUM(t.amount), 0)
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.user_id = $1 AND t.user_id = $1 AND t.date >= $2 AND t.date <= $3
		GROUP BY t.type`, userID, from, to)
	if err != nil {
		return nil, wrap("sum transactions by type", err)
	}
	defer rows.Close()

	var totals []models.TypeTotal
	for rows.Next() {
		var tt models.TypeTotal
		if err := rows.Scan(&tt.Type, &tt.Total); err != nil {
			return nil, wrap("scan type total", err)
		}
		totals = append(totals, tt)
	}
	return totals, rows.Err()
}

// SumByCategory totals transaction amounts of one type per category within
// [from, to], largest total first
func (r *Repository) SumByCategory(ctx context.Context, userID uuid.UUID, typ models.TransactionType, from, to models.Date) ([]models.CategoryTotal, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT c.id, c.name, c.color, c.icon, COALESCE(SUM(t.amount), 0) AS total, COUNT(*)
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		JOIN categories c ON c.id = t.category_id
		WHERE a.user_id = $1 AND t.user_id = $1 AND t.type = $2 AND t.date >= $3 AND t.date <= $4
		GROUP BY c.id, c.name, c.color, c.icon
		ORDER BY total DESC, c.name`, userID, typ, from, to)
	if err != nil {
		return nil, wrap("sum transactions by category", err)
	}
	defer rows.Close()

	totals := []models.CategoryTotal{}
	for rows.Next() {
		var ct models.CategoryTotal
		if err := rows.Scan(&ct.CategoryID, &ct.CategoryName, &ct.CategoryColor, &ct.CategoryIcon, &ct.Total, &ct.Count); err != nil {
			return nil, wrap("scan category total", err)
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

// SumByMonth totals transaction amounts per calendar month and type within
// [from, to]. Months without activity are absent from the result.
func (r *Repository) SumByMonth(ctx context.Context, userID uuid.UUID, from, to models.Date) ([]models.MonthTypeTotal, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT to_char(t.date, 'YYYY-MM') AS month, t.type, COALESCE(SUM(t.amount), 0)
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.user_id = $1 AND t.user_id = $1 AND t.date >= $2 AND t.date <= $3
		GROUP BY month, t.type
		ORDER BY month`, userID, from, to)
	if err != nil {
		return nil, wrap("sum transactions by month", err)
	}
	defer rows.Close()

	var totals []models.MonthTypeTotal
	for rows.Next() {
		var mt models.MonthTypeTotal
		if err := rows.Scan(&mt.Month, &mt.Type, &mt.Total); err != nil {
			return nil, wrap("scan month total", err)
		}
		totals = append(totals, mt)
	}
	return totals, rows.Err()
}

// RecentTransactions returns the latest transactions by date, then creation time
func (r *Repository) RecentTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.RecentTransaction, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT t.id, t.type, t.amount, t.description, t.date, c.name, c.color, c.icon, a.name
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE a.user_id = $1 AND t.user_id = $1
		ORDER BY t.date DESC, t.created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, wrap("list recent transactions", err)
	}
	defer rows.Close()

	recent := []models.RecentTransaction{}
	for rows.Next() {
		var rt models.RecentTransaction
		err := rows.Scan(&rt.ID, &rt.Type, &rt.Amount, &rt.Description, &rt.Date,
			&rt.CategoryName, &rt.CategoryColor, &rt.CategoryIcon, &rt.AccountName)
		if err != nil {
			return nil, wrap("scan recent transaction", err)
		}
		recent = append(recent, rt)
	}
	return recent, rows.Err()
}
