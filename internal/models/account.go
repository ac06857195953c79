package models

import (
	"time"

	"github.com/google/uuid"
)

// AccountType classifies where the money is held
type AccountType string

const (
	AccountTypeCash       AccountType = "cash"
	AccountTypeBank       AccountType = "bank"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeSavings    AccountType = "savings"
)

// Currency is an ISO 4217 code supported by the tracker
type Currency string

const (
	CurrencyIDR Currency = "IDR"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencySGD Currency = "SGD"
	CurrencyMYR Currency = "MYR"
)

// Valid reports whether c is a supported currency
func (c Currency) Valid() bool {
	switch c {
	case CurrencyIDR, CurrencyUSD, CurrencyEUR, CurrencySGD, CurrencyMYR:
		return true
	}
	return false
}

// DefaultCurrency is used when an account is created without one
const DefaultCurrency = CurrencyIDR

// Account holds a running balance in minor units.
// Balance equals the signed sum of the account's transactions unless it was overridden by an update.
type Account struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	Name      string      `json:"name"`
	Type      AccountType `json:"type"`
	Balance   int64       `json:"balance"`
	Currency  Currency    `json:"currency"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// AccountInput is the validated payload for creating an account
type AccountInput struct {
	Name     string      `json:"name" validate:"required,min=1,max=100"`
	Type     AccountType `json:"type" validate:"required,oneof=cash bank credit_card savings"`
	Balance  int64       `json:"balance" validate:"min=0"`
	Currency Currency    `json:"currency" validate:"omitempty,oneof=IDR USD EUR SGD MYR"`
}

// AccountUpdateInput is the validated payload for editing an account.
// A nil Balance keeps the running balance and an empty Currency keeps the stored one.
type AccountUpdateInput struct {
	Name     string      `json:"name" validate:"required,min=1,max=100"`
	Type     AccountType `json:"type" validate:"required,oneof=cash bank credit_card savings"`
	Balance  *int64      `json:"balance" validate:"omitempty,min=0"`
	Currency Currency    `json:"currency" validate:"omitempty,oneof=IDR USD EUR SGD MYR"`
}
