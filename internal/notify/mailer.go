package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Dan9191/finance-service/internal/config"
	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/money"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// MonthlySummary is the content of the monthly summary mail
type MonthlySummary struct {
	Username   string
	Period     models.ReportPeriod
	Currency   models.Currency
	Summary    models.IncomeExpenseSummary
	OverBudget []models.BudgetWithSpending
}

// Mailer sends notification emails via SMTP
type Mailer struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email) error
}

// NewMailer creates a new mailer. It is disabled when no SMTP host is configured.
func NewMailer(cfg *config.Config, logger *logrus.Logger) *Mailer {
	m := &Mailer{
		cfg:    cfg,
		logger: logger,
	}
	m.send = m.sendSMTP
	return m
}

// Enabled reports whether mail delivery is configured
func (m *Mailer) Enabled() bool {
	return m.cfg.MailEnabled()
}

// SendMonthlySummary mails income, expense, net flow, savings rate and
// over-budget categories of one month
func (m *Mailer) SendMonthlySummary(to string, s MonthlySummary) error {
	if !m.Enabled() {
		return nil
	}

	e := email.NewEmail()
	e.From = m.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Your %s summary", s.Period.Label)
	e.Text = []byte(monthlySummaryBody(s))

	if err := m.send(e); err != nil {
		m.logger.Errorf("Failed to send monthly summary to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

func (m *Mailer) sendSMTP(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", m.cfg.SMTPHost, m.cfg.SMTPPort)
	var auth smtp.Auth
	if m.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUsername, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	}
	return e.Send(addr, auth)
}

func monthlySummaryBody(s MonthlySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", s.Username)
	fmt.Fprintf(&b, "Here is your summary for %s.\n\n", s.Period.Label)
	fmt.Fprintf(&b, "Income:       %s\n", money.Format(s.Summary.TotalIncome, s.Currency))
	fmt.Fprintf(&b, "Expense:      %s\n", money.Format(s.Summary.TotalExpense, s.Currency))
	fmt.Fprintf(&b, "Net flow:     %s\n", money.Format(s.Summary.NetFlow, s.Currency))
	fmt.Fprintf(&b, "Savings rate: %d%%\n", s.Summary.SavingsRate)

	if len(s.OverBudget) > 0 {
		b.WriteString("\nCategories over budget:\n")
		for _, budget := range s.OverBudget {
			fmt.Fprintf(&b, "- %s: spent %s of %s (%d%%)\n",
				budget.Category.Name,
				money.Format(budget.Spent, s.Currency),
				money.Format(budget.Amount, s.Currency),
				budget.Percentage,
			)
		}
	}

	b.WriteString("\nBest regards,\nFinance Service")
	return b.String()
}
