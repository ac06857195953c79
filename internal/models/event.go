package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TransactionAction names a committed balance-affecting mutation
type TransactionAction string

const (
	TransactionCreated TransactionAction = "created"
	TransactionUpdated TransactionAction = "updated"
	TransactionDeleted TransactionAction = "deleted"
)

// TransactionEvent is emitted after a transaction mutation has committed
type TransactionEvent struct {
	Action            TransactionAction `json:"action"`
	TransactionID     uuid.UUID         `json:"transaction_id"`
	UserID            uuid.UUID         `json:"user_id"`
	AccountID         uuid.UUID         `json:"account_id"`
	PreviousAccountID *uuid.UUID        `json:"previous_account_id,omitempty"`
	Type              TransactionType   `json:"type"`
	Amount            int64             `json:"amount"`
	OccurredAt        time.Time         `json:"occurred_at"`
}

// NewTransactionEvent describes action applied to t at the given time
func NewTransactionEvent(action TransactionAction, t Transaction, at time.Time) TransactionEvent {
	return TransactionEvent{
		Action:        action,
		TransactionID: t.ID,
		UserID:        t.UserID,
		AccountID:     t.AccountID,
		Type:          t.Type,
		Amount:        t.Amount,
		OccurredAt:    at,
	}
}

// RoutingKey is the topic the event is published under, e.g. "transaction.created"
func (e TransactionEvent) RoutingKey() string {
	return "transaction." + string(e.Action)
}

// ToJSON converts the event to JSON bytes
func (e TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
