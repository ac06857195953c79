package service

import (
	"context"
	"strings"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ListAccounts returns the user's accounts
func (s *Service) ListAccounts(ctx context.Context, userID uuid.UUID) ([]models.Account, error) {
	return s.store.ListAccounts(ctx, userID)
}

// GetAccount returns one of the user's accounts
func (s *Service) GetAccount(ctx context.Context, id, userID uuid.UUID) (*models.Account, error) {
	return s.store.GetAccount(ctx, id, userID)
}

// CreateAccount creates a new account for the user. Balance starts at the
// supplied opening balance (0 by default) and currency defaults to IDR.
func (s *Service) CreateAccount(ctx context.Context, userID uuid.UUID, input models.AccountInput) (*models.Account, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := s.Validate(input); err != nil {
		return nil, err
	}
	if input.Currency == "" {
		input.Currency = models.DefaultCurrency
	}

	account := &models.Account{
		UserID:   userID,
		Name:     input.Name,
		Type:     input.Type,
		Balance:  input.Balance,
		Currency: input.Currency,
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":    userID,
		"account_id": account.ID,
	}).Infof("Account created: %s (%s)", account.Name, account.Currency)
	return account, nil
}

// UpdateAccount edits an owned account. The running balance is only
// overridden when the input carries one.
func (s *Service) UpdateAccount(ctx context.Context, id, userID uuid.UUID, input models.AccountUpdateInput) (*models.Account, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := s.Validate(input); err != nil {
		return nil, err
	}

	account, err := s.store.UpdateAccount(ctx, id, userID, input)
	if err != nil {
		return nil, err
	}

	entry := s.log.WithFields(logrus.Fields{
		"user_id":    userID,
		"account_id": id,
	})
	if input.Balance != nil {
		entry.Infof("Account updated, balance overridden to %d", *input.Balance)
	} else {
		entry.Info("Account updated")
	}
	return account, nil
}

// DeleteAccount removes an owned account together with its transactions
func (s *Service) DeleteAccount(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.store.DeleteAccount(ctx, id, userID); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"user_id":    userID,
		"account_id": id,
	}).Info("Account deleted")
	return nil
}
