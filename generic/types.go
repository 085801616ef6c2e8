/*
Package generic provides the core depreciation engine types.

PURPOSE:
  This package contains the law-agnostic types shared by every depreciation
  regime. Whether an asset is depreciated under Companies Act Schedule II or
  the Income Tax Act block rules, the same Asset goes in and the same
  year-indexed Schedule comes out.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A currency amount backed by decimal.Decimal
  - Asset: The fixed-asset record the engine reads
  - Law / Method: Which statute and which method a schedule follows
  - Schedule / Entry: The year-indexed output of a calculator

DESIGN PRINCIPLES:
  1. Purity: Calculators never mutate the Asset and never touch storage
  2. Precision: Uses decimal.Decimal to avoid floating-point drift
  3. Type Safety: Laws, methods and statuses are typed strings
  4. Recomputability: A Schedule is always derivable from its Asset + Config

USAGE:
  asset := generic.Asset{
      OriginalCost:       generic.NewMoney(100000),
      CapitalizationDate: generic.NewTimePoint(2024, time.October, 1),
      UsefulLifeYears:    5,
      Method:             generic.MethodSLM,
      Laws:               []generic.Law{generic.LawCompaniesAct},
  }

SEE ALSO:
  - schedule.go: Schedule / Entry helpers and invariant checks
  - period.go: Fiscal-year calendar
  - config.go: Explicit settings passed into every calculation
*/
package generic

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Currency amount (always INR-denominated in this system)
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value)}
}

func NewMoneyFromInt(value int64) Money {
	return Money{Value: decimal.NewFromInt(value)}
}

func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Value: d}
}

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func ZeroMoney() Money                           { return Money{Value: decimal.Zero} }
func (m Money) Add(b Money) Money                 { return Money{Value: m.Value.Add(b.Value)} }
func (m Money) Sub(b Money) Money                 { return Money{Value: m.Value.Sub(b.Value)} }
func (m Money) Mul(s decimal.Decimal) Money       { return Money{Value: m.Value.Mul(s)} }
func (m Money) Div(s decimal.Decimal) Money       { return Money{Value: m.Value.Div(s)} }
func (m Money) Neg() Money                        { return Money{Value: m.Value.Neg()} }
func (m Money) Round(places int32) Money          { return Money{Value: m.Value.Round(places)} }
func (m Money) IsNegative() bool                  { return m.Value.IsNegative() }
func (m Money) IsZero() bool                      { return m.Value.IsZero() }
func (m Money) IsPositive() bool                  { return m.Value.IsPositive() }
func (m Money) Equal(b Money) bool                { return m.Value.Equal(b.Value) }
func (m Money) GreaterThan(b Money) bool          { return m.Value.GreaterThan(b.Value) }
func (m Money) LessThan(b Money) bool             { return m.Value.LessThan(b.Value) }
func (m Money) LessThanOrEqual(b Money) bool      { return m.Value.LessThanOrEqual(b.Value) }
func (m Money) Float64() float64                  { return m.Value.InexactFloat64() }
func (m Money) String() string                    { return m.Value.String() }
func (m Money) StringFixed(places int32) string   { return m.Value.StringFixed(places) }

func (m Money) Min(b Money) Money {
	if m.LessThan(b) {
		return m
	}
	return b
}

func (m Money) Max(b Money) Money {
	if m.GreaterThan(b) {
		return m
	}
	return b
}

// Percent returns pct percent of m. pct is a whole-number percentage (5 = 5%).
func (m Money) Percent(pct decimal.Decimal) Money {
	return Money{Value: m.Value.Mul(pct).Div(hundred)}
}

var hundred = decimal.NewFromInt(100)

// =============================================================================
// LAW / METHOD / STATUS
// =============================================================================

// Law identifies the statute a schedule is computed under.
type Law string

const (
	LawCompaniesAct Law = "Companies Act"
	LawITAct        Law = "IT Act"
)

// AllLaws is the "Both" selection, in report order.
var AllLaws = []Law{LawCompaniesAct, LawITAct}

type Method string

const (
	MethodSLM Method = "SLM" // Straight Line Method
	MethodWDV Method = "WDV" // Written Down Value
)

type AssetStatus string

const (
	StatusActive   AssetStatus = "Active"
	StatusDisposed AssetStatus = "Disposed"
)

// =============================================================================
// ASSET - Input to every calculator
// =============================================================================

type AssetID string

type Asset struct {
	ID         AssetID
	Name       string
	Category   string
	Location   string
	Department string

	PurchaseDate       TimePoint
	CapitalizationDate TimePoint
	OriginalCost       Money

	// Companies Act
	UsefulLifeYears         int
	ResidualValuePercent    *decimal.Decimal // nil = Config.DefaultResidualPercent
	Method                  Method           // empty = Config.DefaultMethod
	CompaniesActRatePercent *decimal.Decimal // explicit WDV rate; nil = derive from life
	MultiShift              int              // 1, 2 or 3

	// Income Tax Act
	DepreciationRatePercent        decimal.Decimal
	AdditionalDepreciationEligible bool

	Laws []Law

	Status        AssetStatus
	DisposalDate  *TimePoint
	DisposalValue *Money

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UsedFor reports whether the asset requests a schedule under law.
func (a Asset) UsedFor(law Law) bool {
	for _, l := range a.Laws {
		if l == law {
			return true
		}
	}
	return false
}

// PutToUse returns the date driving pro-rata: capitalization, else purchase.
func (a Asset) PutToUse() TimePoint {
	if a.CapitalizationDate.IsZero() {
		return a.PurchaseDate
	}
	return a.CapitalizationDate
}

func (a Asset) IsDisposed() bool {
	return a.Status == StatusDisposed && a.DisposalDate != nil
}

// ShiftFactor maps multi-shift use to its Schedule II multiplier.
func (a Asset) ShiftFactor() decimal.Decimal {
	switch a.MultiShift {
	case 2:
		return decimal.NewFromFloat(1.5)
	case 3:
		return decimal.NewFromInt(2)
	default:
		return decimal.NewFromInt(1)
	}
}

// =============================================================================
// SCHEDULE - Output of every calculator
// =============================================================================

type Entry struct {
	YearIndex  int    // 1-based
	FiscalYear Period // the fiscal year this entry covers
	Label      string // "FY 2024-2025" or "2024"

	OpeningValue            Money
	Depreciation            Money
	AdditionalDepreciation  Money // IT Act, first year only
	ClosingValue            Money
	AccumulatedDepreciation Money

	IsProRata bool
}

// Charge is the total reduction booked in the entry.
func (e Entry) Charge() Money {
	return e.Depreciation.Add(e.AdditionalDepreciation)
}

type Schedule struct {
	Law               Law
	AssetID           AssetID
	Entries           []Entry
	TotalDepreciation Money
	CurrentWDV        Money
}

// Calculator computes one law's schedule for an asset.
// Implementations must be pure: same inputs, same schedule, no side effects.
type Calculator interface {
	Law() Law

	// Applicable returns false when the asset lacks the fields this law needs.
	// Missing fields mean "skip this schedule", never an error.
	Applicable(asset Asset) bool

	Compute(asset Asset, cfg Config) Schedule
}
