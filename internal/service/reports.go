package service

import (
	"context"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/money"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// IncomeExpenseSummary totals income and expense over period
func (s *Service) IncomeExpenseSummary(ctx context.Context, userID uuid.UUID, period models.ReportPeriod) (*models.IncomeExpenseSummary, error) {
	sums, err := s.store.SumByType(ctx, userID, period.StartDate, period.EndDate)
	if err != nil {
		return nil, err
	}
	summary := summarize(sums)
	return &summary, nil
}

func summarize(sums []models.TypeTotal) models.IncomeExpenseSummary {
	income, expense := splitTypeTotals(sums)
	net := income - expense
	return models.IncomeExpenseSummary{
		TotalIncome:  income,
		TotalExpense: expense,
		NetFlow:      net,
		SavingsRate:  money.Percent(net, income),
	}
}

// CategoryBreakdown returns each category's share of the period's total of
// one type. Income and expense breakdowns each sum to roughly 100 on their own.
func (s *Service) CategoryBreakdown(ctx context.Context, userID uuid.UUID, period models.ReportPeriod, typ models.TransactionType) ([]models.CategoryBreakdown, error) {
	if !typ.Valid() {
		return nil, models.NewValidationError("type", "must be one of: income, expense")
	}
	totals, err := s.store.SumByCategory(ctx, userID, typ, period.StartDate, period.EndDate)
	if err != nil {
		return nil, err
	}
	return breakdown(totals), nil
}

func breakdown(totals []models.CategoryTotal) []models.CategoryBreakdown {
	var whole int64
	for _, ct := range totals {
		whole += ct.Total
	}

	out := make([]models.CategoryBreakdown, 0, len(totals))
	for _, ct := range totals {
		out = append(out, models.CategoryBreakdown{
			CategoryID:       ct.CategoryID,
			CategoryName:     ct.CategoryName,
			CategoryColor:    ct.CategoryColor,
			CategoryIcon:     ct.CategoryIcon,
			Amount:           ct.Total,
			Percentage:       money.Percent(ct.Total, whole),
			TransactionCount: ct.Count,
		})
	}
	return out
}

// MonthlyComparison returns income and expense per month of the period.
// Only months with activity are listed.
func (s *Service) MonthlyComparison(ctx context.Context, userID uuid.UUID, period models.ReportPeriod) ([]models.MonthlyComparison, error) {
	totals, err := s.store.SumByMonth(ctx, userID, period.StartDate, period.EndDate)
	if err != nil {
		return nil, err
	}
	return sparseComparison(totals), nil
}

// sparseComparison groups rows that arrive ordered by month
func sparseComparison(totals []models.MonthTypeTotal) []models.MonthlyComparison {
	out := []models.MonthlyComparison{}
	for _, mt := range totals {
		if len(out) == 0 || out[len(out)-1].Month != mt.Month {
			label := mt.Month
			if m, err := models.ParseMonth(mt.Month); err == nil {
				label = m.Label()
			}
			out = append(out, models.MonthlyComparison{Month: mt.Month, Label: label})
		}
		row := &out[len(out)-1]
		switch mt.Type {
		case models.TransactionTypeIncome:
			row.Income += mt.Total
		case models.TransactionTypeExpense:
			row.Expense += mt.Total
		}
		row.NetFlow = row.Income - row.Expense
	}
	return out
}

// Report computes every report projection for period concurrently
func (s *Service) Report(ctx context.Context, userID uuid.UUID, period models.ReportPeriod) (*models.ReportData, error) {
	data := &models.ReportData{Period: period}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, err := s.IncomeExpenseSummary(gctx, userID, period)
		if err != nil {
			return err
		}
		data.Summary = *summary
		return nil
	})
	g.Go(func() error {
		var err error
		data.ExpenseByCategory, err = s.CategoryBreakdown(gctx, userID, period, models.TransactionTypeExpense)
		return err
	})
	g.Go(func() error {
		var err error
		data.IncomeByCategory, err = s.CategoryBreakdown(gctx, userID, period, models.TransactionTypeIncome)
		return err
	})
	g.Go(func() error {
		var err error
		data.MonthlyComparison, err = s.MonthlyComparison(gctx, userID, period)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}
