package service

import (
	"context"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/google/uuid"
)

// MaxPageSize caps the limit of a transaction listing
const MaxPageSize = 100

// ListTransactions returns the user's transactions matching filter, newest first
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) ([]models.TransactionWithRelations, error) {
	if filter.Limit < 0 {
		return nil, models.NewValidationError("limit", "must be at least 0")
	}
	if filter.Offset < 0 {
		return nil, models.NewValidationError("offset", "must be at least 0")
	}
	if filter.Limit > MaxPageSize {
		filter.Limit = MaxPageSize
	}
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, models.NewValidationError("type", "must be one of: income, expense")
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(filter.StartDate.Time) {
		return nil, models.NewValidationError("end_date", "must not be before start_date")
	}
	return s.store.ListTransactions(ctx, userID, filter)
}

// GetTransaction returns an owned transaction with its category and account names
func (s *Service) GetTransaction(ctx context.Context, id, userID uuid.UUID) (*models.TransactionWithRelations, error) {
	return s.store.GetTransaction(ctx, id, userID)
}
