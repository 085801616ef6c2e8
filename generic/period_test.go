package generic_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/asset-engine/generic"
)

func tp(year int, month time.Month, day int) generic.TimePoint {
	return generic.NewTimePoint(year, month, day)
}

// =============================================================================
// FISCAL YEAR MAPPING
// =============================================================================

func TestPeriodFor_IndianFiscalYear(t *testing.T) {
	cal := generic.IndianFiscalYear

	tests := []struct {
		date      generic.TimePoint
		wantStart generic.TimePoint
		wantLabel string
	}{
		{tp(2024, time.April, 1), tp(2024, time.April, 1), "FY 2024-2025"},
		{tp(2025, time.January, 10), tp(2024, time.April, 1), "FY 2024-2025"},
		{tp(2025, time.March, 31), tp(2024, time.April, 1), "FY 2024-2025"},
		{tp(2025, time.April, 1), tp(2025, time.April, 1), "FY 2025-2026"},
		{tp(2024, time.February, 29), tp(2023, time.April, 1), "FY 2023-2024"},
	}

	for _, tt := range tests {
		p := cal.PeriodFor(tt.date)
		if !p.Start.Equal(tt.wantStart) {
			t.Errorf("PeriodFor(%s).Start = %s, want %s", tt.date, p.Start, tt.wantStart)
		}
		if !p.End.Equal(tt.wantStart.AddYears(1).AddDays(-1)) {
			t.Errorf("PeriodFor(%s).End = %s", tt.date, p.End)
		}
		if got := cal.Label(p); got != tt.wantLabel {
			t.Errorf("Label(%s) = %q, want %q", tt.date, got, tt.wantLabel)
		}
	}
}

func TestPeriodFor_CalendarYear(t *testing.T) {
	cal := generic.CalendarYear
	p := cal.PeriodFor(tp(2024, time.October, 1))

	if !p.Start.Equal(tp(2024, time.January, 1)) || !p.End.Equal(tp(2024, time.December, 31)) {
		t.Errorf("unexpected period %s", p)
	}
	if got := cal.Label(p); got != "2024" {
		t.Errorf("Label = %q, want 2024", got)
	}
}

func TestLabelFor_CountsFromPurchaseYear(t *testing.T) {
	cal := generic.IndianFiscalYear
	purchase := tp(2024, time.October, 1)

	if got := cal.LabelFor(purchase, 1); got != "FY 2024-2025" {
		t.Errorf("year 1 = %q", got)
	}
	if got := cal.LabelFor(purchase, 3); got != "FY 2026-2027" {
		t.Errorf("year 3 = %q", got)
	}
}

func TestFiscalCalendar_InvalidStartFallsBackToApril(t *testing.T) {
	cal := generic.FiscalCalendar{StartMonth: 0, StartDay: 40}
	p := cal.PeriodFor(tp(2024, time.May, 5))

	if !p.Start.Equal(tp(2024, time.April, 1)) {
		t.Errorf("Start = %s, want 2024-04-01", p.Start)
	}
}

// =============================================================================
// DAY AND MONTH COUNTS
// =============================================================================

func TestDaysUsed_InclusiveToFiscalYearEnd(t *testing.T) {
	cal := generic.IndianFiscalYear

	tests := []struct {
		date generic.TimePoint
		want int
	}{
		{tp(2024, time.April, 1), 365},
		{tp(2025, time.March, 31), 1},
		{tp(2025, time.January, 10), 81},
		{tp(2024, time.October, 3), 180},
		{tp(2024, time.October, 4), 179},
		{tp(2023, time.April, 1), 366}, // FY 2023-24 contains Feb 29
	}

	for _, tt := range tests {
		if got := cal.DaysUsed(tt.date); got != tt.want {
			t.Errorf("DaysUsed(%s) = %d, want %d", tt.date, got, tt.want)
		}
	}
}

func TestDaysInYear_LeapYearSpan(t *testing.T) {
	if got := generic.IndianFiscalYear.DaysInYear(tp(2023, time.June, 1)); got != 366 {
		t.Errorf("FY 2023-24 = %d days, want 366", got)
	}
	if got := generic.IndianFiscalYear.DaysInYear(tp(2024, time.June, 1)); got != 365 {
		t.Errorf("FY 2024-25 = %d days, want 365", got)
	}
	if got := generic.CalendarYear.DaysInYear(tp(2024, time.June, 1)); got != 366 {
		t.Errorf("2024 = %d days, want 366", got)
	}
}

func TestMonthsRemaining(t *testing.T) {
	tests := []struct {
		name string
		cal  generic.FiscalCalendar
		date generic.TimePoint
		want int
	}{
		{"calendar January", generic.CalendarYear, tp(2024, time.January, 15), 12},
		{"calendar October", generic.CalendarYear, tp(2024, time.October, 1), 3},
		{"calendar December", generic.CalendarYear, tp(2024, time.December, 31), 1},
		{"indian April", generic.IndianFiscalYear, tp(2024, time.April, 1), 12},
		{"indian October", generic.IndianFiscalYear, tp(2024, time.October, 1), 6},
		{"indian January", generic.IndianFiscalYear, tp(2025, time.January, 10), 3},
		{"indian March", generic.IndianFiscalYear, tp(2025, time.March, 31), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cal.MonthsRemaining(tt.date); got != tt.want {
				t.Errorf("MonthsRemaining(%s) = %d, want %d", tt.date, got, tt.want)
			}
		})
	}
}

func TestFirstYearFraction(t *testing.T) {
	months := generic.CalendarYear.FirstYearFraction(tp(2024, time.October, 1), generic.ProRataMonths)
	if !months.Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("months fraction = %s, want 0.25", months)
	}

	days := generic.IndianFiscalYear.FirstYearFraction(tp(2024, time.October, 3), generic.ProRataDays)
	want := decimal.NewFromInt(180).Div(decimal.NewFromInt(365))
	if !days.Equal(want) {
		t.Errorf("days fraction = %s, want %s", days, want)
	}

	full := generic.IndianFiscalYear.FirstYearFraction(tp(2024, time.April, 1), generic.ProRataDays)
	if !full.Equal(decimal.NewFromInt(1)) {
		t.Errorf("first day of year = %s, want 1", full)
	}
}

func TestPeriod_DaysAndNext(t *testing.T) {
	p := generic.IndianFiscalYear.PeriodFor(tp(2023, time.May, 1))
	if p.Days() != 366 {
		t.Errorf("Days = %d, want 366", p.Days())
	}
	next := p.Next()
	if !next.Start.Equal(tp(2024, time.April, 1)) || !next.End.Equal(tp(2025, time.March, 31)) {
		t.Errorf("Next = %s", next)
	}
	if !p.Contains(tp(2024, time.March, 31)) || p.Contains(tp(2024, time.April, 1)) {
		t.Error("Contains must be inclusive of both ends only")
	}
}

func TestParseDate(t *testing.T) {
	d, err := generic.ParseDate("2024-10-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Equal(tp(2024, time.October, 1)) {
		t.Errorf("ParseDate = %s", d)
	}
	if _, err := generic.ParseDate("01/10/2024"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}
