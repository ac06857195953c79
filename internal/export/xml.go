// Package export renders reports into downloadable documents.
package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/money"
	"github.com/beevik/etree"
)

// ReportXML renders report as an indented XML document. Amounts are written in
// major units of currency; the raw minor-unit value is kept in a "minor" attribute.
func ReportXML(report *models.ReportData, currency models.Currency, generatedAt time.Time) ([]byte, error) {
	if currency == "" {
		currency = models.DefaultCurrency
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("report")
	root.CreateAttr("currency", string(currency))
	root.CreateAttr("generated_at", generatedAt.UTC().Format(time.RFC3339))

	period := root.CreateElement("period")
	period.CreateAttr("start", report.Period.StartDate.String())
	period.CreateAttr("end", report.Period.EndDate.String())
	period.CreateAttr("label", report.Period.Label)

	summary := root.CreateElement("summary")
	addAmount(summary, "total_income", report.Summary.TotalIncome, currency)
	addAmount(summary, "total_expense", report.Summary.TotalExpense, currency)
	addAmount(summary, "net_flow", report.Summary.NetFlow, currency)
	summary.CreateElement("savings_rate").SetText(strconv.FormatInt(report.Summary.SavingsRate, 10))

	addBreakdown(root.CreateElement("expense_by_category"), report.ExpenseByCategory, currency)
	addBreakdown(root.CreateElement("income_by_category"), report.IncomeByCategory, currency)

	months := root.CreateElement("monthly_comparison")
	for _, m := range report.MonthlyComparison {
		el := months.CreateElement("month")
		el.CreateAttr("value", m.Month)
		el.CreateAttr("label", m.Label)
		addAmount(el, "income", m.Income, currency)
		addAmount(el, "expense", m.Expense, currency)
		addAmount(el, "net_flow", m.NetFlow, currency)
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to write XML: %w", err)
	}
	return out, nil
}

func addBreakdown(parent *etree.Element, rows []models.CategoryBreakdown, currency models.Currency) {
	for _, row := range rows {
		el := parent.CreateElement("category")
		el.CreateAttr("id", row.CategoryID.String())
		el.CreateAttr("name", row.CategoryName)
		el.CreateAttr("color", row.CategoryColor)
		el.CreateAttr("percentage", strconv.FormatInt(row.Percentage, 10))
		el.CreateAttr("transactions", strconv.FormatInt(row.TransactionCount, 10))
		addAmount(el, "amount", row.Amount, currency)
	}
}

func addAmount(parent *etree.Element, tag string, amount int64, currency models.Currency) {
	el := parent.CreateElement(tag)
	el.CreateAttr("minor", strconv.FormatInt(amount, 10))
	el.SetText(money.ToMajor(amount, currency).StringFixed(money.Exponent(currency)))
}
