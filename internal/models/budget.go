package models

import (
	"time"

	"github.com/google/uuid"
)

// Budget is a monthly spending limit for one category.
// (UserID, CategoryID, Month) is unique.
type Budget struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	CategoryID uuid.UUID `json:"category_id"`
	Amount     int64     `json:"amount"`
	Month      string    `json:"month"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BudgetInput is the validated payload for creating or replacing a budget
type BudgetInput struct {
	CategoryID uuid.UUID `json:"category_id" validate:"required"`
	Amount     int64     `json:"amount" validate:"min=1"`
	Month      string    `json:"month" validate:"required,month"`
}

// BudgetStatus summarizes how close spending is to the limit
type BudgetStatus string

const (
	BudgetStatusOK      BudgetStatus = "ok"
	BudgetStatusWarning BudgetStatus = "warning"
	BudgetStatusOver    BudgetStatus = "over"
)

// Thresholds in percent of the budget amount
const (
	BudgetWarningThreshold = 80
	BudgetDangerThreshold  = 100
)

// StatusForPercentage maps a spent percentage onto a BudgetStatus
func StatusForPercentage(pct int64) BudgetStatus {
	switch {
	case pct >= BudgetDangerThreshold:
		return BudgetStatusOver
	case pct >= BudgetWarningThreshold:
		return BudgetStatusWarning
	}
	return BudgetStatusOK
}

// BudgetWithSpending is a budget joined with its category and the month's actual spend
type BudgetWithSpending struct {
	Budget
	Category     Category     `json:"category"`
	Spent        int64        `json:"spent"`
	Remaining    int64        `json:"remaining"`
	Percentage   int64        `json:"percentage"`
	IsOverBudget bool         `json:"is_over_budget"`
	Status       BudgetStatus `json:"status"`
}

// BudgetWithCategory is a stored budget with its category, before spend is applied
type BudgetWithCategory struct {
	Budget
	Category Category
}

// MonthlyBudgetSummary aggregates all budgets of one month
type MonthlyBudgetSummary struct {
	Month          string               `json:"month"`
	TotalBudget    int64                `json:"total_budget"`
	TotalSpent     int64                `json:"total_spent"`
	TotalRemaining int64                `json:"total_remaining"`
	Percentage     int64                `json:"percentage"`
	Budgets        []BudgetWithSpending `json:"budgets"`
}
