package service

import (
	"strconv"

	"github.com/Dan9191/finance-service/internal/models"
)

// Preset period identifiers accepted by ResolvePeriod
const (
	PeriodThisMonth    = "this-month"
	PeriodLastMonth    = "last-month"
	PeriodLast3Months  = "last-3-months"
	PeriodLast6Months  = "last-6-months"
	PeriodThisYear     = "this-year"
	DefaultReportRange = PeriodThisMonth
)

// PresetPeriods returns the named report periods relative to the current month
func (s *Service) PresetPeriods() []models.PresetPeriod {
	return presetPeriods(s.currentMonth())
}

func presetPeriods(current models.Month) []models.PresetPeriod {
	last := current.Previous()
	last3 := current.AddMonths(-2)
	last6 := current.AddMonths(-5)
	yearStart := models.Month{Year: current.Year, Month: 1}
	yearEnd := models.Month{Year: current.Year, Month: 12}

	return []models.PresetPeriod{
		{
			Value:  PeriodThisMonth,
			Label:  "This Month",
			Period: MonthPeriod(current),
		},
		{
			Value:  PeriodLastMonth,
			Label:  "Last Month",
			Period: MonthPeriod(last),
		},
		{
			Value:  PeriodLast3Months,
			Label:  "Last 3 Months",
			Period: models.ReportPeriod{
				StartDate: last3.FirstDay(),
				EndDate:   current.LastDay(),
				Label:     last3.Label() + " - " + current.Label() + " " + strconv.Itoa(current.Year),
			},
		},
		{
			Value:  PeriodLast6Months,
			Label:  "Last 6 Months",
			Period: models.ReportPeriod{
				StartDate: last6.FirstDay(),
				EndDate:   current.LastDay(),
				Label:     last6.Label() + " - " + current.Label() + " " + strconv.Itoa(current.Year),
			},
		},
		{
			Value:  PeriodThisYear,
			Label:  "This Year",
			Period: models.ReportPeriod{
				StartDate: yearStart.FirstDay(),
				EndDate:   yearEnd.LastDay(),
				Label:     strconv.Itoa(current.Year),
			},
		},
	}
}

// ResolvePeriod returns the period of a preset; an empty value means this month
func (s *Service) ResolvePeriod(preset string) (models.ReportPeriod, error) {
	if preset == "" {
		preset = DefaultReportRange
	}
	for _, p := range s.PresetPeriods() {
		if p.Value == preset {
			return p.Period, nil
		}
	}
	return models.ReportPeriod{}, models.NewValidationError("period",
		"must be one of: this-month, last-month, last-3-months, last-6-months, this-year")
}

// CustomPeriod builds an inclusive period from two dates
func CustomPeriod(start, end models.Date) (models.ReportPeriod, error) {
	if end.Before(start.Time) {
		return models.ReportPeriod{}, models.NewValidationError("end", "must not be before start")
	}
	return models.ReportPeriod{
		StartDate: start,
		EndDate:   end,
		Label:     start.Format("Jan 2, 2006") + " - " + end.Format("Jan 2, 2006"),
	}, nil
}

// MonthPeriod covers a whole calendar month, labeled like "March 2025"
func MonthPeriod(m models.Month) models.ReportPeriod {
	return models.ReportPeriod{
		StartDate: m.FirstDay(),
		EndDate:   m.LastDay(),
		Label:     m.Month.String() + " " + strconv.Itoa(m.Year),
	}
}
