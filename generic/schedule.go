/*
schedule.go - Schedule assembly, lookups and invariant checks

PURPOSE:
  Calculators append entries through a ScheduleBuilder so that every law
  shares the same bookkeeping: accumulated depreciation, totals, the
  current written-down value and fiscal-year labels.

KEY INVARIANTS (checked by Validate):
  1. ClosingValue == OpeningValue - Depreciation - AdditionalDepreciation
  2. entries[i+1].OpeningValue == entries[i].ClosingValue
  3. No charge is negative; no closing value is below the floor
  4. Fiscal years strictly increase with no duplicates

AS-OF LOOKUPS:
  Reports ask "what did this schedule look like on date X?" EntryFor,
  AccumulatedThrough and ValueAsOf answer from the entries alone; nothing
  is persisted.

SEE ALSO:
  - companiesact/calculator.go, incometax/calculator.go: Use the builder
  - report/: Consumes schedules
*/
package generic

import "fmt"

// =============================================================================
// BUILDER
// =============================================================================

// ScheduleBuilder accumulates entries for one asset under one law.
type ScheduleBuilder struct {
	law      Law
	asset    Asset
	calendar FiscalCalendar
	entries  []Entry
	accum    Money
	current  Money
}

func NewScheduleBuilder(law Law, asset Asset, cfg Config) *ScheduleBuilder {
	return &ScheduleBuilder{
		law:      law,
		asset:    asset,
		calendar: cfg.Calendar,
		accum:    ZeroMoney(),
		current:  asset.OriginalCost,
	}
}

// Current is the written-down value carried into the next year.
func (b *ScheduleBuilder) Current() Money { return b.current }

// Len is the number of entries appended so far.
func (b *ScheduleBuilder) Len() int { return len(b.entries) }

// Append books one year. closing must already be clamped by the caller.
func (b *ScheduleBuilder) Append(depreciation, additional, closing Money, isProRata bool) Entry {
	yearIndex := len(b.entries) + 1
	period := b.calendar.YearPeriod(b.asset.PutToUse(), yearIndex)
	b.accum = b.accum.Add(depreciation).Add(additional)

	e := Entry{
		YearIndex:               yearIndex,
		FiscalYear:              period,
		Label:                   b.calendar.Label(period),
		OpeningValue:            b.current,
		Depreciation:            depreciation,
		AdditionalDepreciation:  additional,
		ClosingValue:            closing,
		AccumulatedDepreciation: b.accum,
		IsProRata:               isProRata,
	}
	b.entries = append(b.entries, e)
	b.current = closing
	return e
}

func (b *ScheduleBuilder) Build() Schedule {
	return Schedule{
		Law:               b.law,
		AssetID:           b.asset.ID,
		Entries:           b.entries,
		TotalDepreciation: b.accum,
		CurrentWDV:        b.current,
	}
}

// EmptySchedule is returned for degenerate input (non-positive cost, life or rate).
func EmptySchedule(law Law, asset Asset) Schedule {
	cost := asset.OriginalCost
	if cost.IsNegative() {
		cost = ZeroMoney()
	}
	return Schedule{Law: law, AssetID: asset.ID, TotalDepreciation: ZeroMoney(), CurrentWDV: cost}
}

// =============================================================================
// LOOKUPS
// =============================================================================

// EntryFor returns the entry whose fiscal year contains date.
func (s Schedule) EntryFor(date TimePoint) (Entry, bool) {
	for _, e := range s.Entries {
		if e.FiscalYear.Contains(date) {
			return e, true
		}
	}
	return Entry{}, false
}

// Opening is the value the schedule starts from.
func (s Schedule) Opening() Money {
	if len(s.Entries) == 0 {
		return s.CurrentWDV
	}
	return s.Entries[0].OpeningValue
}

// ValueAsOf is the written-down value at the end of the fiscal year containing
// date. Before the first entry it is the opening value; after the last entry
// it is CurrentWDV.
func (s Schedule) ValueAsOf(date TimePoint) Money {
	if len(s.Entries) == 0 {
		return s.CurrentWDV
	}
	if date.Before(s.Entries[0].FiscalYear.Start) {
		return s.Entries[0].OpeningValue
	}
	for _, e := range s.Entries {
		if e.FiscalYear.Contains(date) {
			return e.ClosingValue
		}
	}
	return s.CurrentWDV
}

// AccumulatedThrough is the depreciation booked up to and including the
// fiscal year containing date.
func (s Schedule) AccumulatedThrough(date TimePoint) Money {
	total := ZeroMoney()
	for _, e := range s.Entries {
		if e.FiscalYear.Start.After(date) {
			break
		}
		total = e.AccumulatedDepreciation
	}
	return total
}

// =============================================================================
// INVARIANTS
// =============================================================================

// Validate checks the schedule's arithmetic and ordering invariants against floor.
func (s Schedule) Validate(floor Money) error {
	var prev *Entry
	for i := range s.Entries {
		e := s.Entries[i]
		if !e.OpeningValue.Sub(e.Charge()).Equal(e.ClosingValue) {
			return fmt.Errorf("year %d: closing %s != opening %s - charge %s",
				e.YearIndex, e.ClosingValue, e.OpeningValue, e.Charge())
		}
		if e.Depreciation.IsNegative() || e.AdditionalDepreciation.IsNegative() {
			return fmt.Errorf("year %d: negative depreciation", e.YearIndex)
		}
		if e.ClosingValue.LessThan(floor) {
			return fmt.Errorf("year %d: closing %s below floor %s", e.YearIndex, e.ClosingValue, floor)
		}
		if prev != nil {
			if !prev.ClosingValue.Equal(e.OpeningValue) {
				return fmt.Errorf("year %d: opening %s != previous closing %s",
					e.YearIndex, e.OpeningValue, prev.ClosingValue)
			}
			if !e.FiscalYear.Start.After(prev.FiscalYear.End) {
				return fmt.Errorf("year %d: fiscal years overlap", e.YearIndex)
			}
		}
		prev = &s.Entries[i]
	}
	return nil
}
