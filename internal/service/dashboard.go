package service

import (
	"context"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Dashboard defaults
const (
	DefaultTrendMonths      = 6
	LongTrendMonths         = 12
	MaxTrendMonths          = 24
	RecentTransactionsLimit = 5
)

// Dashboard computes every dashboard projection concurrently
func (s *Service) Dashboard(ctx context.Context, userID uuid.UUID, trendMonths int) (*models.Dashboard, error) {
	if trendMonths == 0 {
		trendMonths = DefaultTrendMonths
	}
	if trendMonths < 1 || trendMonths > MaxTrendMonths {
		return nil, models.NewValidationError("trend", "must be between 1 and 24")
	}

	d := &models.Dashboard{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := s.DashboardStats(gctx, userID)
		if err != nil {
			return err
		}
		d.Stats = *stats
		return nil
	})
	g.Go(func() error {
		var err error
		d.SpendingByCategory, err = s.SpendingByCategory(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		d.RecentTransactions, err = s.RecentTransactions(gctx, userID, RecentTransactionsLimit)
		return err
	})
	g.Go(func() error {
		var err error
		d.Trend, err = s.MonthlyTrend(gctx, userID, trendMonths)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

// DashboardStats returns the total balance and this month's income and expense
func (s *Service) DashboardStats(ctx context.Context, userID uuid.UUID) (*models.DashboardStats, error) {
	m := s.currentMonth()

	total, count, err := s.store.AccountTotals(ctx, userID)
	if err != nil {
		return nil, err
	}
	sums, err := s.store.SumByType(ctx, userID, m.FirstDay(), m.LastDay())
	if err != nil {
		return nil, err
	}

	stats := &models.DashboardStats{TotalBalance: total, AccountCount: count}
	stats.IncomeThisMonth, stats.ExpenseThisMonth = splitTypeTotals(sums)
	stats.NetThisMonth = stats.IncomeThisMonth - stats.ExpenseThisMonth
	return stats, nil
}

// SpendingByCategory returns this month's expense per category, largest first
func (s *Service) SpendingByCategory(ctx context.Context, userID uuid.UUID) ([]models.SpendingByCategory, error) {
	m := s.currentMonth()
	totals, err := s.store.SumByCategory(ctx, userID, models.TransactionTypeExpense, m.FirstDay(), m.LastDay())
	if err != nil {
		return nil, err
	}

	spending := make([]models.SpendingByCategory, 0, len(totals))
	for _, ct := range totals {
		spending = append(spending, models.SpendingByCategory{
			CategoryID:    ct.CategoryID,
			CategoryName:  ct.CategoryName,
			CategoryColor: ct.CategoryColor,
			CategoryIcon:  ct.CategoryIcon,
			Total:         ct.Total,
		})
	}
	return spending, nil
}

// RecentTransactions returns the latest limit transactions
func (s *Service) RecentTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.RecentTransaction, error) {
	if limit <= 0 {
		limit = RecentTransactionsLimit
	}
	return s.store.RecentTransactions(ctx, userID, limit)
}

// MonthlyTrend returns income and expense for the months trailing up to and
// including the current one, oldest first. Months without activity are zero.
func (s *Service) MonthlyTrend(ctx context.Context, userID uuid.UUID, months int) ([]models.MonthlyTrend, error) {
	if months <= 0 {
		months = DefaultTrendMonths
	}
	current := s.currentMonth()
	first := current.AddMonths(-(months - 1))

	totals, err := s.store.SumByMonth(ctx, userID, first.FirstDay(), current.LastDay())
	if err != nil {
		return nil, err
	}
	return denseTrend(first, months, totals), nil
}

func denseTrend(first models.Month, months int, totals []models.MonthTypeTotal) []models.MonthlyTrend {
	trend := make([]models.MonthlyTrend, months)
	index := make(map[string]int, months)
	for i := range trend {
		m := first.AddMonths(i)
		trend[i] = models.MonthlyTrend{Month: m.String(), Label: m.Label()}
		index[m.String()] = i
	}
	for _, mt := range totals {
		i, ok := index[mt.Month]
		if !ok {
			continue
		}
		switch mt.Type {
		case models.TransactionTypeIncome:
			trend[i].Income += mt.Total
		case models.TransactionTypeExpense:
			trend[i].Expense += mt.Total
		}
	}
	return trend
}

func splitTypeTotals(sums []models.TypeTotal) (income, expense int64) {
	for _, tt := range sums {
		switch tt.Type {
		case models.TransactionTypeIncome:
			income += tt.Total
		case models.TransactionTypeExpense:
			expense += tt.Total
		}
	}
	return income, expense
}
