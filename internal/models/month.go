package models

import (
	"fmt"
	"time"
)

// MonthLayout is the wire format of budget and trend months
const MonthLayout = "2006-01"

// Month identifies a calendar month, serialized as YYYY-MM
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a YYYY-MM string
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil || len(s) != len(MonthLayout) {
		return Month{}, fmt.Errorf("invalid month %q", s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the month containing t
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// AddMonths shifts the month by n calendar months, n may be negative
func (m Month) AddMonths(n int) Month {
	t := time.Date(m.Year, m.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return MonthOf(t)
}

// Previous returns the calendar month before m
func (m Month) Previous() Month {
	return m.AddMonths(-1)
}

// FirstDay returns the first day of the month
func (m Month) FirstDay() Date {
	return NewDate(m.Year, m.Month, 1)
}

// LastDay returns the last day of the month
func (m Month) LastDay() Date {
	// day 0 of the following month
	return Date{Time: time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC)}
}

// Label returns the short English month name, e.g. "Jan"
func (m Month) Label() string {
	return m.Month.String()[:3]
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}
