package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Dan9191/finance-service/internal/config"
	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/notify"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type fakeService struct {
	users     []models.User
	listErr   error
	copyErr   map[uuid.UUID]error
	copied    map[uuid.UUID]string
	periods   []models.ReportPeriod
	budgetFor []string
	currency  models.Currency
}

func (f *fakeService) ListUsers(context.Context) ([]models.User, error) {
	return f.users, f.listErr
}

func (f *fakeService) ListAccounts(_ context.Context, userID uuid.UUID) ([]models.Account, error) {
	if f.currency == "" {
		return nil, nil
	}
	return []models.Account{{UserID: userID, Currency: f.currency}}, nil
}

func (f *fakeService) CopyBudgetsFromPreviousMonth(_ context.Context, userID uuid.UUID, target string) ([]models.Budget, error) {
	if err := f.copyErr[userID]; err != nil {
		return nil, err
	}
	if f.copied == nil {
		f.copied = map[uuid.UUID]string{}
	}
	f.copied[userID] = target
	return []models.Budget{{UserID: userID, Month: target}, {UserID: userID, Month: target}}, nil
}

func (f *fakeService) GetBudgetsForMonth(_ context.Context, _ uuid.UUID, month string) (*models.MonthlyBudgetSummary, error) {
	f.budgetFor = append(f.budgetFor, month)
	return &models.MonthlyBudgetSummary{
		Month: month,
		Budgets: []models.BudgetWithSpending{
			{Category: models.Category{Name: "Dining"}, IsOverBudget: true},
			{Category: models.Category{Name: "Rent"}},
		},
	}, nil
}

func (f *fakeService) IncomeExpenseSummary(_ context.Context, _ uuid.UUID, period models.ReportPeriod) (*models.IncomeExpenseSummary, error) {
	f.periods = append(f.periods, period)
	return &models.IncomeExpenseSummary{TotalIncome: 100, TotalExpense: 40, NetFlow: 60, SavingsRate: 60}, nil
}

type fakeMailer struct {
	enabled bool
	err     error
	sent    map[string]notify.MonthlySummary
}

func (m *fakeMailer) Enabled() bool { return m.enabled }

func (m *fakeMailer) SendMonthlySummary(to string, s notify.MonthlySummary) error {
	if m.err != nil {
		return m.err
	}
	if m.sent == nil {
		m.sent = map[string]notify.MonthlySummary{}
	}
	m.sent[to] = s
	return nil
}

func newTestScheduler(t *testing.T, svc FinanceService, mailer SummaryMailer) *Scheduler {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	s, err := New(&config.Config{RolloverSchedule: "0 5 0 1 * *"}, svc, mailer, log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.now = func() time.Time { return time.Date(2025, time.April, 1, 0, 5, 0, 0, time.UTC) }
	return s
}

func TestNew_InvalidSchedule(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	if _, err := New(&config.Config{RolloverSchedule: "every tuesday"}, &fakeService{}, &fakeMailer{}, log); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestRunRollover(t *testing.T) {
	alice := models.User{ID: uuid.New(), Username: "alice", Email: "alice@example.com"}
	bob := models.User{ID: uuid.New(), Username: "bob", Email: "bob@example.com"}
	svc := &fakeService{users: []models.User{alice, bob}, currency: models.CurrencyUSD}
	mailer := &fakeMailer{enabled: true}

	result, err := newTestScheduler(t, svc, mailer).RunRollover(context.Background())
	if err != nil {
		t.Fatalf("RunRollover: %v", err)
	}

	want := RolloverResult{Users: 2, BudgetsCopied: 4, Mailed: 2}
	if result != want {
		t.Fatalf("result = %+v, want %+v", result, want)
	}
	if svc.copied[alice.ID] != "2025-04" || svc.copied[bob.ID] != "2025-04" {
		t.Errorf("budgets copied into %v, want 2025-04", svc.copied)
	}

	msg, ok := mailer.sent["alice@example.com"]
	if !ok {
		t.Fatal("alice was not mailed")
	}
	if msg.Period.Label != "March 2025" || msg.Period.StartDate.String() != "2025-03-01" || msg.Period.EndDate.String() != "2025-03-31" {
		t.Errorf("summary period = %+v", msg.Period)
	}
	if msg.Currency != models.CurrencyUSD || msg.Summary.NetFlow != 60 {
		t.Errorf("unexpected summary %+v", msg)
	}
	if len(msg.OverBudget) != 1 || msg.OverBudget[0].Category.Name != "Dining" {
		t.Errorf("over budget = %+v", msg.OverBudget)
	}
	for _, m := range svc.budgetFor {
		if m != "2025-03" {
			t.Errorf("budgets read for %s, want 2025-03", m)
		}
	}
}

func TestRunRollover_ContinuesAfterUserFailure(t *testing.T) {
	alice := models.User{ID: uuid.New(), Email: "alice@example.com"}
	bob := models.User{ID: uuid.New(), Email: "bob@example.com"}
	svc := &fakeService{
		users:   []models.User{alice, bob},
		copyErr: map[uuid.UUID]error{alice.ID: errors.New("db down")},
	}
	mailer := &fakeMailer{enabled: true}

	result, err := newTestScheduler(t, svc, mailer).RunRollover(context.Background())
	if err != nil {
		t.Fatalf("RunRollover: %v", err)
	}
	if result.Failed != 1 || result.BudgetsCopied != 2 || result.Mailed != 2 {
		t.Fatalf("result = %+v", result)
	}
	if _, ok := svc.copied[bob.ID]; !ok {
		t.Error("bob's budgets were not copied")
	}
	if mailer.sent["bob@example.com"].Currency != models.DefaultCurrency {
		t.Errorf("user without accounts should get the default currency")
	}
}

func TestRunRollover_MailDisabledOrFailing(t *testing.T) {
	alice := models.User{ID: uuid.New(), Email: "alice@example.com"}
	noEmail := models.User{ID: uuid.New()}

	t.Run("disabled", func(t *testing.T) {
		svc := &fakeService{users: []models.User{alice, noEmail}}
		mailer := &fakeMailer{enabled: false}
		result, err := newTestScheduler(t, svc, mailer).RunRollover(context.Background())
		if err != nil {
			t.Fatalf("RunRollover: %v", err)
		}
		if result.Mailed != 0 || len(svc.periods) != 0 {
			t.Fatalf("disabled mailer should skip summaries: %+v", result)
		}
	})

	t.Run("delivery error", func(t *testing.T) {
		svc := &fakeService{users: []models.User{alice, noEmail}}
		mailer := &fakeMailer{enabled: true, err: errors.New("smtp refused")}
		result, err := newTestScheduler(t, svc, mailer).RunRollover(context.Background())
		if err != nil {
			t.Fatalf("RunRollover: %v", err)
		}
		if result.Failed != 1 || result.Mailed != 0 || result.BudgetsCopied != 4 {
			t.Fatalf("result = %+v", result)
		}
	})
}

func TestRunRollover_ListUsersError(t *testing.T) {
	svc := &fakeService{listErr: errors.New("db down")}
	if _, err := newTestScheduler(t, svc, &fakeMailer{}).RunRollover(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunRollover_Cancelled(t *testing.T) {
	svc := &fakeService{users: []models.User{{ID: uuid.New()}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestScheduler(t, svc, &fakeMailer{}).RunRollover(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(svc.copied) != 0 {
		t.Fatal("no user should be processed after cancellation")
	}
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler(t, &fakeService{}, &fakeMailer{})
	s.Start()
	s.Stop()
	if s.ctx.Err() == nil {
		t.Fatal("Stop should cancel the run context")
	}
}
