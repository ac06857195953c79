package service

import (
	"context"
	"strings"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ListCategories returns the user's active categories, optionally of one type
func (s *Service) ListCategories(ctx context.Context, userID uuid.UUID, typ *models.TransactionType) ([]models.Category, error) {
	if typ != nil && !typ.Valid() {
		return nil, models.NewValidationError("type", "must be one of: income, expense")
	}
	return s.store.ListCategories(ctx, userID, typ)
}

// GetCategory returns an owned category, archived or not
func (s *Service) GetCategory(ctx context.Context, id, userID uuid.UUID) (*models.Category, error) {
	return s.store.GetCategory(ctx, id, userID)
}

// CreateCategory creates an active category for the user
func (s *Service) CreateCategory(ctx context.Context, userID uuid.UUID, input models.CategoryInput) (*models.Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := s.Validate(input); err != nil {
		return nil, err
	}
	if input.Color == "" {
		input.Color = models.DefaultCategoryColor
	}

	category := &models.Category{
		UserID: userID,
		Name:   input.Name,
		Type:   input.Type,
		Color:  input.Color,
		Icon:   input.Icon,
	}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID}).Infof("Category created: %s", category.Name)
	return category, nil
}

// UpdateCategory replaces the editable fields of an owned category. The type
// is fixed once a transaction references the category.
func (s *Service) UpdateCategory(ctx context.Context, id, userID uuid.UUID, input models.CategoryInput) (*models.Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := s.Validate(input); err != nil {
		return nil, err
	}
	if input.Color == "" {
		input.Color = models.DefaultCategoryColor
	}

	category := &models.Category{
		ID:     id,
		UserID: userID,
		Name:   input.Name,
		Type:   input.Type,
		Color:  input.Color,
		Icon:   input.Icon,
	}
	err := s.store.InTx(ctx, func(st repository.Store) error {
		existing, err := st.LockCategory(ctx, id, userID)
		if err != nil {
			return err
		}
		if existing.Type != input.Type {
			used, err := st.CountCategoryTransactions(ctx, id, userID)
			if err != nil {
				return err
			}
			if used > 0 {
				return models.NewValidationError("type", "cannot be changed while transactions use this category")
			}
		}
		return st.UpdateCategory(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// ArchiveCategory soft-deletes an owned category. Transactions and budgets
// referencing it are kept.
func (s *Service) ArchiveCategory(ctx context.Context, id, userID uuid.UUID) (*models.Category, error) {
	category, err := s.store.ArchiveCategory(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID}).Infof("Category archived: %s", category.Name)
	return category, nil
}
