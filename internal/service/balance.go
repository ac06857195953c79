package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// balanceAdjustment is one relative update of an account balance
type balanceAdjustment struct {
	AccountID uuid.UUID
	Delta     int64
}

// balanceAdjustments computes the updates that move an account set from the
// effect of before to the effect of after. Both sides are derived from their
// own (account, type, amount) triple, so any combination of changes is handled.
func balanceAdjustments(before, after models.Transaction) []balanceAdjustment {
	reversal := -before.BalanceEffect()
	effect := after.BalanceEffect()
	if before.AccountID != after.AccountID {
		return []balanceAdjustment{
			{AccountID: before.AccountID, Delta: reversal},
			{AccountID: after.AccountID, Delta: effect},
		}
	}
	return []balanceAdjustment{{AccountID: after.AccountID, Delta: reversal + effect}}
}

// CreateTransaction inserts a transaction and applies its balance effect to the
// account in one unit of work
func (s *Service) CreateTransaction(ctx context.Context, userID uuid.UUID, input models.TransactionInput) (*models.Transaction, error) {
	input.Description = strings.TrimSpace(input.Description)
	if err := s.Validate(input); err != nil {
		return nil, err
	}

	t := &models.Transaction{
		UserID:      userID,
		Type:        input.Type,
		CategoryID:  input.CategoryID,
		AccountID:   input.AccountID,
		Amount:      input.Amount,
		Description: input.Description,
		Date:        input.Date,
	}

	err := s.store.InTx(ctx, func(st repository.Store) error {
		if err := checkCategory(ctx, st, userID, t.CategoryID, t.Type, true); err != nil {
			return err
		}
		if err := st.InsertTransaction(ctx, t); err != nil {
			return err
		}
		return st.AdjustAccountBalance(ctx, t.AccountID, userID, t.BalanceEffect())
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":        userID,
		"transaction_id": t.ID,
		"account_id":     t.AccountID,
	}).Infof("Transaction created: %s %d", t.Type, t.Amount)
	s.publish(ctx, models.NewTransactionEvent(models.TransactionCreated, *t, s.now()))
	return t, nil
}

// UpdateTransaction applies patch to an owned transaction. The old balance
// effect is reversed and the new one applied in the same unit of work as the
// row update; the row is locked for the duration.
func (s *Service) UpdateTransaction(ctx context.Context, id, userID uuid.UUID, patch models.TransactionPatch) (*models.Transaction, error) {
	if patch.Description != nil {
		trimmed := strings.TrimSpace(*patch.Description)
		patch.Description = &trimmed
	}
	if err := s.Validate(patch); err != nil {
		return nil, err
	}

	var before, after models.Transaction
	err := s.store.InTx(ctx, func(st repository.Store) error {
		existing, err := st.LockTransaction(ctx, id, userID)
		if err != nil {
			return err
		}
		before = *existing
		after = patch.Apply(before)

		if after.Amount <= 0 {
			return models.NewValidationError("amount", "must be greater than 0")
		}
		categoryChanged := after.CategoryID != before.CategoryID
		if categoryChanged || after.Type != before.Type {
			if err := checkCategory(ctx, st, userID, after.CategoryID, after.Type, categoryChanged); err != nil {
				return err
			}
		}

		for _, adj := range balanceAdjustments(before, after) {
			if err := st.AdjustAccountBalance(ctx, adj.AccountID, userID, adj.Delta); err != nil {
				return err
			}
		}
		return st.UpdateTransaction(ctx, &after)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":        userID,
		"transaction_id": id,
		"account_id":     after.AccountID,
	}).Info("Transaction updated")

	event := models.NewTransactionEvent(models.TransactionUpdated, after, s.now())
	if before.AccountID != after.AccountID {
		previous := before.AccountID
		event.PreviousAccountID = &previous
	}
	s.publish(ctx, event)
	return &after, nil
}

// DeleteTransaction reverses the balance effect of an owned transaction and
// removes it in one unit of work. The deleted record is returned.
func (s *Service) DeleteTransaction(ctx context.Context, id, userID uuid.UUID) (*models.Transaction, error) {
	var deleted models.Transaction
	err := s.store.InTx(ctx, func(st repository.Store) error {
		existing, err := st.LockTransaction(ctx, id, userID)
		if err != nil {
			return err
		}
		deleted = *existing

		if err := st.AdjustAccountBalance(ctx, deleted.AccountID, userID, -deleted.BalanceEffect()); err != nil {
			return err
		}
		return st.DeleteTransaction(ctx, id, userID)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":        userID,
		"transaction_id": id,
		"account_id":     deleted.AccountID,
	}).Info("Transaction deleted")
	s.publish(ctx, models.NewTransactionEvent(models.TransactionDeleted, deleted, s.now()))
	return &deleted, nil
}

// checkCategory verifies that categoryID is owned by the user and has the
// transaction's type. Archived categories are rejected only when requireActive.
func checkCategory(ctx context.Context, st repository.Store, userID, categoryID uuid.UUID, typ models.TransactionType, requireActive bool) error {
	c, err := st.GetCategory(ctx, categoryID, userID)
	if errors.Is(err, models.ErrNotFound) {
		return models.NewValidationError("category_id", "category not found")
	}
	if err != nil {
		return err
	}
	if requireActive && !c.IsActive {
		return models.NewValidationError("category_id", "category is archived")
	}
	if c.Type != typ {
		return models.NewValidationError("category_id", "category type must match transaction type")
	}
	return nil
}
