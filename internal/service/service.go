package service

import (
	"context"
	"time"

	"github.com/Dan9191/finance-service/internal/config"
	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// EventPublisher receives transaction mutations once they have committed
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, event models.TransactionEvent) error
}

// Service handles business logic
type Service struct {
	store    repository.Store
	log      *logrus.Logger
	config   *config.Config
	events   EventPublisher
	validate *validator.Validate
	now      func() time.Time
}

// Option customizes a Service
type Option func(*Service)

// WithEvents attaches a publisher for committed transaction mutations
func WithEvents(p EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

// WithClock replaces the wall clock used for "this month" computations
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService initializes a new service
func NewService(store repository.Store, log *logrus.Logger, cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		store:    store,
		log:      log,
		config:   cfg,
		validate: newValidator(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// publish sends an event after commit. Failures never reach the caller.
func (s *Service) publish(ctx context.Context, event models.TransactionEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishTransactionEvent(ctx, event); err != nil {
		s.log.WithFields(logrus.Fields{
			"transaction_id": event.TransactionID,
			"action":         event.Action,
		}).WithError(err).Error("Failed to publish transaction event")
	}
}

func (s *Service) currentMonth() models.Month {
	return models.MonthOf(s.now())
}
