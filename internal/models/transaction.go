package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType is shared by transactions and categories
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// BalanceEffect returns the signed change a transaction of this type and amount
// applies to its account: income adds, expense subtracts.
func (t TransactionType) BalanceEffect(amount int64) int64 {
	if t == TransactionTypeIncome {
		return amount
	}
	return -amount
}

// Transaction represents a financial transaction.
// Amount is always positive; the sign is derived from Type.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Type        TransactionType `json:"type"`
	CategoryID  uuid.UUID       `json:"category_id"`
	AccountID   uuid.UUID       `json:"account_id"`
	Amount      int64           `json:"amount"`
	Description string          `json:"description"`
	Date        Date            `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BalanceEffect is the signed change this transaction applies to its account
func (t Transaction) BalanceEffect() int64 {
	return t.Type.BalanceEffect(t.Amount)
}

// TransactionWithRelations is a transaction joined with its category and account
type TransactionWithRelations struct {
	Transaction
	CategoryName  *string  `json:"category_name"`
	CategoryColor *string  `json:"category_color"`
	CategoryIcon  *string  `json:"category_icon"`
	AccountName   string   `json:"account_name"`
	Currency      Currency `json:"currency"`
}

// TransactionInput is the validated payload for creating a transaction
type TransactionInput struct {
	Type        TransactionType `json:"type" validate:"required,oneof=income expense"`
	CategoryID  uuid.UUID       `json:"category_id" validate:"required"`
	AccountID   uuid.UUID       `json:"account_id" validate:"required"`
	Amount      int64           `json:"amount" validate:"gt=0"`
	Description string          `json:"description" validate:"required,min=1,max=255"`
	Date        Date            `json:"date" validate:"required"`
}

// TransactionPatch carries the fields of an update; nil fields keep their stored value
type TransactionPatch struct {
	Type        *TransactionType `json:"type" validate:"omitempty,oneof=income expense"`
	CategoryID  *uuid.UUID       `json:"category_id"`
	AccountID   *uuid.UUID       `json:"account_id"`
	Amount      *int64           `json:"amount" validate:"omitempty,gt=0"`
	Description *string          `json:"description" validate:"omitempty,min=1,max=255"`
	Date        *Date            `json:"date"`
}

// Apply returns a copy of t with the patch fields applied
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.CategoryID != nil {
		t.CategoryID = *p.CategoryID
	}
	if p.AccountID != nil {
		t.AccountID = *p.AccountID
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	return t
}

// TransactionFilter narrows a transaction listing; zero values mean "no filter"
type TransactionFilter struct {
	AccountID  *uuid.UUID
	CategoryID *uuid.UUID
	Type       *TransactionType
	StartDate  *Date
	EndDate    *Date
	Limit      int
	Offset     int
}
