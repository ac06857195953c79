package notify

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Dan9191/finance-service/internal/config"
	"github.com/Dan9191/finance-service/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

func newTestMailer(host string) (*Mailer, *[]*email.Email) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := &config.Config{SMTPHost: host, SMTPPort: "587", SenderEmail: "no-reply@finance.local"}

	m := NewMailer(cfg, logger)
	var sent []*email.Email
	m.send = func(e *email.Email) error {
		sent = append(sent, e)
		return nil
	}
	return m, &sent
}

func summary() MonthlySummary {
	return MonthlySummary{
		Username: "alice",
		Period: models.ReportPeriod{
			StartDate: models.NewDate(2025, time.February, 1),
			EndDate:   models.NewDate(2025, time.February, 28),
			Label:     "February 2025",
		},
		Currency: models.CurrencyUSD,
		Summary:  models.IncomeExpenseSummary{TotalIncome: 500000, TotalExpense: 125050, NetFlow: 374950, SavingsRate: 75},
		OverBudget: []models.BudgetWithSpending{
			{
				Budget:     models.Budget{Amount: 10000},
				Category:   models.Category{Name: "Dining"},
				Spent:      12000,
				Percentage: 120,
			},
		},
	}
}

func TestSendMonthlySummary(t *testing.T) {
	m, sent := newTestMailer("smtp.example.com")

	if err := m.SendMonthlySummary("alice@example.com", summary()); err != nil {
		t.Fatalf("SendMonthlySummary: %v", err)
	}
	if len(*sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(*sent))
	}

	e := (*sent)[0]
	if e.From != "no-reply@finance.local" || len(e.To) != 1 || e.To[0] != "alice@example.com" {
		t.Errorf("unexpected envelope from=%q to=%v", e.From, e.To)
	}
	if e.Subject != "Your February 2025 summary" {
		t.Errorf("subject = %q", e.Subject)
	}

	body := string(e.Text)
	for _, want := range []string{
		"Dear alice,",
		"Income:       5000.00 USD",
		"Expense:      1250.50 USD",
		"Net flow:     3749.50 USD",
		"Savings rate: 75%",
		"- Dining: spent 120.00 USD of 100.00 USD (120%)",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestSendMonthlySummary_NoOverBudgetSection(t *testing.T) {
	m, sent := newTestMailer("smtp.example.com")
	s := summary()
	s.OverBudget = nil

	if err := m.SendMonthlySummary("alice@example.com", s); err != nil {
		t.Fatalf("SendMonthlySummary: %v", err)
	}
	if strings.Contains(string((*sent)[0].Text), "over budget") {
		t.Errorf("over budget section should be omitted")
	}
}

func TestSendMonthlySummary_Disabled(t *testing.T) {
	m, sent := newTestMailer("")

	if m.Enabled() {
		t.Fatal("mailer without SMTP host should be disabled")
	}
	if err := m.SendMonthlySummary("alice@example.com", summary()); err != nil {
		t.Fatalf("disabled mailer returned %v", err)
	}
	if len(*sent) != 0 {
		t.Fatalf("disabled mailer sent %d mails", len(*sent))
	}
}

func TestSendMonthlySummary_DeliveryError(t *testing.T) {
	m, _ := newTestMailer("smtp.example.com")
	refused := errors.New("connection refused")
	m.send = func(*email.Email) error { return refused }

	err := m.SendMonthlySummary("alice@example.com", summary())
	if !errors.Is(err, refused) {
		t.Fatalf("err = %v, want wrapped %v", err, refused)
	}
}
