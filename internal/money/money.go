// Package money formats minor-unit amounts and computes rounded percentages
// without going through floating point.
package money

import (
	"github.com/Dan9191/finance-service/internal/models"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.New(5, -1)
)

// Exponent returns the number of minor-unit digits of a currency.
// Rupiah is tracked in whole units.
func Exponent(c models.Currency) int32 {
	if c == models.CurrencyIDR {
		return 0
	}
	return 2
}

// ToMajor converts a minor-unit amount to a decimal in major units
func ToMajor(amount int64, c models.Currency) decimal.Decimal {
	return decimal.New(amount, -Exponent(c))
}

// Format renders an amount as "<major> <code>", e.g. "12.50 USD" or "10000 IDR"
func Format(amount int64, c models.Currency) string {
	if c == "" {
		c = models.DefaultCurrency
	}
	return ToMajor(amount, c).StringFixed(Exponent(c)) + " " + string(c)
}

// Percent returns part/whole*100 rounded half up, or 0 when whole is 0
func Percent(part, whole int64) int64 {
	if whole == 0 {
		return 0
	}
	ratio := decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(whole))
	return ratio.Add(half).Floor().IntPart()
}
