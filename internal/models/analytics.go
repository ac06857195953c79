package models

import "github.com/google/uuid"

// DashboardStats represents the headline numbers of the dashboard
type DashboardStats struct {
	TotalBalance     int64 `json:"total_balance"`
	IncomeThisMonth  int64 `json:"income_this_month"`
	ExpenseThisMonth int64 `json:"expense_this_month"`
	NetThisMonth     int64 `json:"net_this_month"`
	AccountCount     int64 `json:"account_count"`
}

// SpendingByCategory represents one category's expense total for the current month
type SpendingByCategory struct {
	CategoryID    uuid.UUID `json:"category_id"`
	CategoryName  string    `json:"category_name"`
	CategoryColor string    `json:"category_color"`
	CategoryIcon  *string   `json:"category_icon"`
	Total         int64     `json:"total"`
}

// RecentTransaction represents a row of the recent activity feed
type RecentTransaction struct {
	ID            uuid.UUID       `json:"id"`
	Type          TransactionType `json:"type"`
	Amount        int64           `json:"amount"`
	Description   string          `json:"description"`
	Date          Date            `json:"date"`
	CategoryName  *string         `json:"category_name"`
	CategoryColor *string         `json:"category_color"`
	CategoryIcon  *string         `json:"category_icon"`
	AccountName   string          `json:"account_name"`
}

// MonthlyTrend represents income and expense of one month in the trend chart
type MonthlyTrend struct {
	Month   string `json:"month"` // Format: YYYY-MM
	Label   string `json:"label"`
	Income  int64  `json:"income"`
	Expense int64  `json:"expense"`
}

// Dashboard bundles every dashboard projection
type Dashboard struct {
	Stats              DashboardStats       `json:"stats"`
	SpendingByCategory []SpendingByCategory `json:"spending_by_category"`
	RecentTransactions []RecentTransaction  `json:"recent_transactions"`
	Trend              []MonthlyTrend       `json:"trend"`
}

// ReportPeriod is an inclusive date range with a display label
type ReportPeriod struct {
	StartDate Date   `json:"start_date"`
	EndDate   Date   `json:"end_date"`
	Label     string `json:"label"`
}

// PresetPeriod names a commonly used ReportPeriod
type PresetPeriod struct {
	Value  string       `json:"value"`
	Label  string       `json:"label"`
	Period ReportPeriod `json:"period"`
}

// IncomeExpenseSummary represents totals over a report period
type IncomeExpenseSummary struct {
	TotalIncome  int64 `json:"total_income"`
	TotalExpense int64 `json:"total_expense"`
	NetFlow      int64 `json:"net_flow"`
	SavingsRate  int64 `json:"savings_rate"` // percent of income, 0 when there is no income
}

// CategoryBreakdown represents one category's share of a period's income or expense
type CategoryBreakdown struct {
	CategoryID       uuid.UUID `json:"category_id"`
	CategoryName     string    `json:"category_name"`
	CategoryColor    string    `json:"category_color"`
	CategoryIcon     *string   `json:"category_icon"`
	Amount           int64     `json:"amount"`
	Percentage       int64     `json:"percentage"`
	TransactionCount int64     `json:"transaction_count"`
}

// MonthlyComparison represents one month with activity inside a report period
type MonthlyComparison struct {
	Month   string `json:"month"`
	Label   string `json:"label"`
	Income  int64  `json:"income"`
	Expense int64  `json:"expense"`
	NetFlow int64  `json:"net_flow"`
}

// ReportData bundles every report projection for a period
type ReportData struct {
	Period            ReportPeriod         `json:"period"`
	Summary           IncomeExpenseSummary `json:"summary"`
	ExpenseByCategory []CategoryBreakdown  `json:"expense_by_category"`
	IncomeByCategory  []CategoryBreakdown  `json:"income_by_category"`
	MonthlyComparison []MonthlyComparison  `json:"monthly_comparison"`
}

// TypeTotal is a raw sum of transaction amounts for one type
type TypeTotal struct {
	Type  TransactionType
	Total int64
}

// MonthTypeTotal is a raw sum of transaction amounts for one month and type
type MonthTypeTotal struct {
	Month string // Format: YYYY-MM
	Type  TransactionType
	Total int64
}

// CategoryTotal is a raw per-category sum used by breakdowns and budgets
type CategoryTotal struct {
	CategoryID    uuid.UUID
	CategoryName  string
	CategoryColor string
	CategoryIcon  *string
	Total         int64
	Count         int64
}
