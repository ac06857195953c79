package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCategoryColor is applied when a category is created without a color
const DefaultCategoryColor = "#6366f1"

// Category groups transactions. Categories are archived (IsActive=false), never deleted,
// so historical transactions and budgets keep their reference.
type Category struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Name      string          `json:"name"`
	Type      TransactionType `json:"type"`
	Color     string          `json:"color"`
	Icon      *string         `json:"icon"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CategoryInput is the validated payload for creating or replacing a category
type CategoryInput struct {
	Name  string          `json:"name" validate:"required,min=1,max=50"`
	Type  TransactionType `json:"type" validate:"required,oneof=income expense"`
	Color string          `json:"color" validate:"omitempty,hexcolor,len=7"`
	Icon  *string         `json:"icon" validate:"omitempty,max=50"`
}
