// Package scheduler runs the periodic monthly budget rollover.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/finance-service/internal/config"
	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/notify"
	"github.com/Dan9191/finance-service/internal/service"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// FinanceService is the part of the service layer the rollover needs
type FinanceService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ListAccounts(ctx context.Context, userID uuid.UUID) ([]models.Account, error)
	CopyBudgetsFromPreviousMonth(ctx context.Context, userID uuid.UUID, target string) ([]models.Budget, error)
	GetBudgetsForMonth(ctx context.Context, userID uuid.UUID, month string) (*models.MonthlyBudgetSummary, error)
	IncomeExpenseSummary(ctx context.Context, userID uuid.UUID, period models.ReportPeriod) (*models.IncomeExpenseSummary, error)
}

// SummaryMailer delivers the monthly summary
type SummaryMailer interface {
	Enabled() bool
	SendMonthlySummary(to string, s notify.MonthlySummary) error
}

// RolloverResult counts what one rollover run did
type RolloverResult struct {
	Users         int
	BudgetsCopied int
	Mailed        int
	Failed        int
}

// Scheduler copies budgets into the new month and mails last month's summary
type Scheduler struct {
	cron   *cron.Cron
	svc    FinanceService
	mailer SummaryMailer
	log    *logrus.Logger
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// New registers the rollover job on cfg.RolloverSchedule
func New(cfg *config.Config, svc FinanceService, mailer SummaryMailer, log *logrus.Logger) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		svc:    svc,
		mailer: mailer,
		log:    log,
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}

	logger := cron.PrintfLogger(log)
	s.cron = cron.New(
		cron.WithParser(config.ScheduleParser),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := s.cron.AddFunc(cfg.RolloverSchedule, s.runScheduled); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid rollover schedule %q: %w", cfg.RolloverSchedule, err)
	}
	return s, nil
}

// Start runs the cron loop in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started")
}

// Stop cancels a running rollover and waits for it to return
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.log.Info("Scheduler stopped")
}

func (s *Scheduler) runScheduled() {
	result, err := s.RunRollover(s.ctx)
	if err != nil {
		s.log.WithError(err).Error("Budget rollover failed")
		return
	}
	s.log.WithFields(logrus.Fields{
		"users":          result.Users,
		"budgets_copied": result.BudgetsCopied,
		"mailed":         result.Mailed,
		"failed":         result.Failed,
	}).Info("Budget rollover complete")
}

// RunRollover processes every user once. A failure for one user is logged and
// counted; only failing to list users aborts the run.
func (s *Scheduler) RunRollover(ctx context.Context) (RolloverResult, error) {
	users, err := s.svc.ListUsers(ctx)
	if err != nil {
		return RolloverResult{}, fmt.Errorf("failed to list users: %w", err)
	}

	current := models.MonthOf(s.now())
	previous := current.Previous()
	result := RolloverResult{Users: len(users)}

	for _, u := range users {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		entry := s.log.WithField("user_id", u.ID)
		failed := false

		copied, err := s.svc.CopyBudgetsFromPreviousMonth(ctx, u.ID, current.String())
		if err != nil {
			entry.WithError(err).Error("Failed to copy budgets")
			failed = true
		} else {
			result.BudgetsCopied += len(copied)
		}

		if s.mailer.Enabled() && u.Email != "" {
			if err := s.mailSummary(ctx, u, previous); err != nil {
				entry.WithError(err).Error("Failed to mail monthly summary")
				failed = true
			} else {
				result.Mailed++
			}
		}

		if failed {
			result.Failed++
		}
	}
	return result, nil
}

func (s *Scheduler) mailSummary(ctx context.Context, u models.User, month models.Month) error {
	period := service.MonthPeriod(month)

	summary, err := s.svc.IncomeExpenseSummary(ctx, u.ID, period)
	if err != nil {
		return err
	}
	budgets, err := s.svc.GetBudgetsForMonth(ctx, u.ID, month.String())
	if err != nil {
		return err
	}
	accounts, err := s.svc.ListAccounts(ctx, u.ID)
	if err != nil {
		return err
	}

	msg := notify.MonthlySummary{
		Username: u.Username,
		Period:   period,
		Currency: models.DefaultCurrency,
		Summary:  *summary,
	}
	if len(accounts) > 0 {
		msg.Currency = accounts[0].Currency
	}
	for _, b := range budgets.Budgets {
		if b.IsOverBudget {
			msg.OverBudget = append(msg.OverBudget, b)
		}
	}
	return s.mailer.SendMonthlySummary(u.Email, msg)
}
