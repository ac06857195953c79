package service

import (
	"context"
	"errors"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/money"
	"github.com/Dan9191/finance-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func parseMonthField(field, value string) (models.Month, error) {
	m, err := models.ParseMonth(value)
	if err != nil {
		return models.Month{}, models.NewValidationError(field, "must be a month in YYYY-MM format")
	}
	return m, nil
}

// GetBudgetsForMonth joins the month's budgets with the user's actual expense
// per category and summarizes them
func (s *Service) GetBudgetsForMonth(ctx context.Context, userID uuid.UUID, month string) (*models.MonthlyBudgetSummary, error) {
	m, err := parseMonthField("month", month)
	if err != nil {
		return nil, err
	}

	var (
		budgets []models.BudgetWithCategory
		spend   []models.CategoryTotal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		budgets, err = s.store.ListBudgets(gctx, userID, m.String())
		return err
	})
	g.Go(func() error {
		var err error
		spend, err = s.store.SumByCategory(gctx, userID, models.TransactionTypeExpense, m.FirstDay(), m.LastDay())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return summarizeBudgets(m.String(), budgets, spend), nil
}

func summarizeBudgets(month string, budgets []models.BudgetWithCategory, spend []models.CategoryTotal) *models.MonthlyBudgetSummary {
	spent := make(map[uuid.UUID]int64, len(spend))
	for _, ct := range spend {
		spent[ct.CategoryID] = ct.Total
	}

	summary := &models.MonthlyBudgetSummary{
		Month:   month,
		Budgets: make([]models.BudgetWithSpending, 0, len(budgets)),
	}
	for _, b := range budgets {
		bs := budgetWithSpending(b, spent[b.CategoryID])
		summary.TotalBudget += bs.Amount
		summary.TotalSpent += bs.Spent
		summary.Budgets = append(summary.Budgets, bs)
	}
	summary.TotalRemaining = summary.TotalBudget - summary.TotalSpent
	summary.Percentage = money.Percent(summary.TotalSpent, summary.TotalBudget)
	return summary
}

func budgetWithSpending(b models.BudgetWithCategory, spent int64) models.BudgetWithSpending {
	pct := money.Percent(spent, b.Amount)
	return models.BudgetWithSpending{
		Budget:       b.Budget,
		Category:     b.Category,
		Spent:        spent,
		Remaining:    b.Amount - spent,
		Percentage:   pct,
		IsOverBudget: spent > b.Amount,
		Status:       models.StatusForPercentage(pct),
	}
}

// CreateBudget sets the budget of a category for a month. An existing budget
// for the same category and month has its amount replaced.
func (s *Service) CreateBudget(ctx context.Context, userID uuid.UUID, input models.BudgetInput) (*models.Budget, error) {
	if err := s.Validate(input); err != nil {
		return nil, err
	}
	if err := s.checkBudgetCategory(ctx, userID, input.CategoryID); err != nil {
		return nil, err
	}

	budget := &models.Budget{
		UserID:     userID,
		CategoryID: input.CategoryID,
		Amount:     input.Amount,
		Month:      input.Month,
	}
	if err := s.store.UpsertBudget(ctx, budget); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":     userID,
		"category_id": budget.CategoryID,
	}).Infof("Budget set for %s: %d", budget.Month, budget.Amount)
	return budget, nil
}

// UpdateBudget replaces an owned budget. Moving it onto a category and month
// that already has a budget yields ErrConflict.
func (s *Service) UpdateBudget(ctx context.Context, id, userID uuid.UUID, input models.BudgetInput) (*models.Budget, error) {
	if err := s.Validate(input); err != nil {
		return nil, err
	}
	if err := s.checkBudgetCategory(ctx, userID, input.CategoryID); err != nil {
		return nil, err
	}

	budget := &models.Budget{
		ID:         id,
		UserID:     userID,
		CategoryID: input.CategoryID,
		Amount:     input.Amount,
		Month:      input.Month,
	}
	if err := s.store.UpdateBudget(ctx, budget); err != nil {
		return nil, err
	}
	return budget, nil
}

// DeleteBudget removes an owned budget
func (s *Service) DeleteBudget(ctx context.Context, id, userID uuid.UUID) error {
	return s.store.DeleteBudget(ctx, id, userID)
}

// CopyBudgetsFromPreviousMonth copies the budgets of the calendar month before
// target into target. Categories already budgeted in target are left alone.
// Only the newly created budgets are returned; nothing to copy is not an error.
func (s *Service) CopyBudgetsFromPreviousMonth(ctx context.Context, userID uuid.UUID, target string) ([]models.Budget, error) {
	m, err := parseMonthField("month", target)
	if err != nil {
		return nil, err
	}

	var created []models.Budget
	err = s.store.InTx(ctx, func(st repository.Store) error {
		previous, err := st.ListBudgets(ctx, userID, m.Previous().String())
		if err != nil {
			return err
		}
		if len(previous) == 0 {
			created = []models.Budget{}
			return nil
		}

		existing, err := st.ListBudgets(ctx, userID, m.String())
		if err != nil {
			return err
		}
		budgeted := make(map[uuid.UUID]bool, len(existing))
		for _, b := range existing {
			budgeted[b.CategoryID] = true
		}

		toCopy := make([]models.Budget, 0, len(previous))
		for _, b := range previous {
			if budgeted[b.CategoryID] {
				continue
			}
			toCopy = append(toCopy, models.Budget{
				UserID:     userID,
				CategoryID: b.CategoryID,
				Amount:     b.Amount,
				Month:      m.String(),
			})
		}

		created, err = st.InsertBudgets(ctx, userID, m.String(), toCopy)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID}).
		Infof("Copied %d budgets from %s into %s", len(created), m.Previous(), m)
	return created, nil
}

func (s *Service) checkBudgetCategory(ctx context.Context, userID, categoryID uuid.UUID) error {
	_, err := s.store.GetCategory(ctx, categoryID, userID)
	if errors.Is(err, models.ErrNotFound) {
		return models.NewValidationError("category_id", "category not found")
	}
	return err
}
