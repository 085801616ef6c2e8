package generic

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PERIOD - One fiscal year of a schedule
// =============================================================================

// Period is a closed date range [Start, End].
//
// Examples:
//   - Calendar year 2025: Jan 1 - Dec 31
//   - Indian fiscal year 2024-25: Apr 1 2024 - Mar 31 2025
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Days returns the actual length of the period in days (365 or 366 for a year).
func (p Period) Days() int {
	return DaysBetween(p.Start, p.End) + 1
}

// Next returns the period of the same calendar shape that follows p.
func (p Period) Next() Period {
	start := p.End.AddDays(1)
	return Period{Start: start, End: start.AddYears(1).AddDays(-1)}
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// FISCAL CALENDAR - Maps dates to fiscal years
// =============================================================================

// FiscalCalendar defines where a fiscal year starts.
// India uses April 1; a calendar-year book uses January 1.
type FiscalCalendar struct {
	StartMonth time.Month
	StartDay   int
}

var (
	IndianFiscalYear = FiscalCalendar{StartMonth: time.April, StartDay: 1}
	CalendarYear     = FiscalCalendar{StartMonth: time.January, StartDay: 1}
)

func (fc FiscalCalendar) normalized() FiscalCalendar {
	if fc.StartMonth < time.January || fc.StartMonth > time.December {
		fc.StartMonth = time.April
	}
	if fc.StartDay < 1 || fc.StartDay > 28 {
		fc.StartDay = 1
	}
	return fc
}

// IsCalendarYear reports whether fiscal years coincide with calendar years.
func (fc FiscalCalendar) IsCalendarYear() bool {
	fc = fc.normalized()
	return fc.StartMonth == time.January && fc.StartDay == 1
}

// PeriodFor returns the fiscal year containing date.
func (fc FiscalCalendar) PeriodFor(date TimePoint) Period {
	fc = fc.normalized()
	start := NewTimePoint(date.Year(), fc.StartMonth, fc.StartDay)

	// If date is before fiscal year start, we're in previous fiscal year
	if date.Before(start) {
		start = NewTimePoint(date.Year()-1, fc.StartMonth, fc.StartDay)
	}
	return Period{Start: start, End: start.AddYears(1).AddDays(-1)}
}

// YearPeriod returns the fiscal year yearNumber (1-based) counted from the
// fiscal year that contains anchor.
func (fc FiscalCalendar) YearPeriod(anchor TimePoint, yearNumber int) Period {
	first := fc.PeriodFor(anchor)
	start := first.Start.AddYears(yearNumber - 1)
	return Period{Start: start, End: start.AddYears(1).AddDays(-1)}
}

// Label renders a fiscal year: "2024" for calendar years, "FY 2024-2025" otherwise.
func (fc FiscalCalendar) Label(p Period) string {
	if fc.IsCalendarYear() {
		return fmt.Sprintf("%d", p.Start.Year())
	}
	return fmt.Sprintf("FY %d-%d", p.Start.Year(), p.Start.Year()+1)
}

// LabelFor labels fiscal year yearNumber (1-based) of an asset put to use on purchase.
func (fc FiscalCalendar) LabelFor(purchase TimePoint, yearNumber int) string {
	return fc.Label(fc.YearPeriod(purchase, yearNumber))
}

// DaysUsed counts days from date to the end of its fiscal year, both inclusive.
func (fc FiscalCalendar) DaysUsed(date TimePoint) int {
	p := fc.PeriodFor(date)
	return DaysBetween(date, p.End) + 1
}

// DaysInYear is the actual length of the fiscal year containing date.
func (fc FiscalCalendar) DaysInYear(date TimePoint) int {
	return fc.PeriodFor(date).Days()
}

// MonthsRemaining counts fiscal months left in the year, including the month
// containing date. A January purchase in a calendar year gives 12, October 3.
func (fc FiscalCalendar) MonthsRemaining(date TimePoint) int {
	fc = fc.normalized()
	start := fc.PeriodFor(date).Start
	elapsed := (date.Year()-start.Year())*12 + int(date.Month()-start.Month())
	if date.Day() < start.Day() {
		elapsed--
	}
	return 12 - elapsed
}

// =============================================================================
// PRO-RATA - First-year usage fraction
// =============================================================================

type ProRataConvention string

const (
	ProRataMonths ProRataConvention = "months" // monthsRemaining / 12
	ProRataDays   ProRataConvention = "days"   // daysUsed / daysInFiscalYear
)

// FirstYearFraction returns the share of the first fiscal year the asset was
// in use, in (0, 1].
func (fc FiscalCalendar) FirstYearFraction(putToUse TimePoint, convention ProRataConvention) decimal.Decimal {
	switch convention {
	case ProRataDays:
		used := decimal.NewFromInt(int64(fc.DaysUsed(putToUse)))
		total := decimal.NewFromInt(int64(fc.DaysInYear(putToUse)))
		return used.Div(total)
	default:
		return decimal.NewFromInt(int64(fc.MonthsRemaining(putToUse))).Div(decimal.NewFromInt(12))
	}
}
