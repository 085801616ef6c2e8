/*
config.go - Explicit calculation settings

PURPOSE:
  Everything that used to be an environment-wide preference (default
  residual percentage, fiscal-year start, currency symbol, rounding) lives
  in a Config value that callers pass into every calculation. Calculators
  never read global state.

DEFAULTS (India):
  Fiscal year:       April 1
  Pro-rata:          day count (daysUsed / daysInFiscalYear)
  Residual value:    5% of original cost
  Method:            SLM
  Rounding:          whole rupees per year (Precision 0)
  IT Act cap:        20 years, stop once WDV <= 1
  Half-year rule:    fewer than 180 days of use

ROUNDING POLICY:
  Each year's depreciation is rounded half away from zero to Precision
  places at the end of that year's computation. The closing value is
  opening minus the rounded charge and is carried forward as-is. The floor
  clamp compares against the exact (unrounded) floor, so the terminal year
  lands exactly on it.

SEE ALSO:
  - period.go: FiscalCalendar and pro-rata conventions
  - config/config.go: Loads these values from env/.env/flags
*/
package generic

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Config struct {
	Calendar FiscalCalendar
	ProRata  ProRataConvention

	DefaultResidualPercent decimal.Decimal
	DefaultMethod          Method

	// Decimal places each year's depreciation is rounded to.
	Precision int32

	ITActMaxYears  int
	ITActTolerance Money // stop once the written-down value is at or below this
	HalfYearDays   int   // IT Act: fewer days of use than this halves the first-year rate

	CurrencySymbol string
	Grouping       Grouping
	DisplayPlaces  int32 // decimals used for on-screen currency (CSV always uses 2)
}

// Grouping selects the thousands separator convention for currency display.
type Grouping string

const (
	GroupingIndian  Grouping = "indian"  // 12,34,567
	GroupingWestern Grouping = "western" // 1,234,567
)

func DefaultConfig() Config {
	return Config{
		Calendar:               IndianFiscalYear,
		ProRata:                ProRataDays,
		DefaultResidualPercent: decimal.NewFromInt(5),
		DefaultMethod:          MethodSLM,
		Precision:              0,
		ITActMaxYears:          20,
		ITActTolerance:         NewMoneyFromInt(1),
		HalfYearDays:           180,
		CurrencySymbol:         "₹",
		Grouping:               GroupingIndian,
		DisplayPlaces:          0,
	}
}

// CalendarYearConfig mirrors a calendar-year book with month-based pro-rata.
func CalendarYearConfig() Config {
	cfg := DefaultConfig()
	cfg.Calendar = CalendarYear
	cfg.ProRata = ProRataMonths
	return cfg
}

// Validate rejects settings no calculation could use.
func (c Config) Validate() error {
	if c.DefaultResidualPercent.IsNegative() || c.DefaultResidualPercent.GreaterThan(hundred) {
		return fmt.Errorf("%w: default residual percent must be within 0-100", ErrInvalidConfig)
	}
	if c.ProRata != ProRataMonths && c.ProRata != ProRataDays {
		return fmt.Errorf("%w: unknown pro-rata convention %q", ErrInvalidConfig, c.ProRata)
	}
	if c.DefaultMethod != MethodSLM && c.DefaultMethod != MethodWDV {
		return fmt.Errorf("%w: unknown default method %q", ErrInvalidConfig, c.DefaultMethod)
	}
	if c.Precision < 0 || c.Precision > 4 {
		return fmt.Errorf("%w: precision must be within 0-4", ErrInvalidConfig)
	}
	if c.ITActMaxYears <= 0 {
		return fmt.Errorf("%w: IT Act year cap must be positive", ErrInvalidConfig)
	}
	if c.Grouping != GroupingIndian && c.Grouping != GroupingWestern {
		return fmt.Errorf("%w: unknown grouping %q", ErrInvalidConfig, c.Grouping)
	}
	return nil
}

// ResidualPercent resolves the asset's residual percentage against defaults.
func (c Config) ResidualPercent(a Asset) decimal.Decimal {
	if a.ResidualValuePercent != nil {
		return *a.ResidualValuePercent
	}
	return c.DefaultResidualPercent
}

// MethodFor resolves the asset's Companies Act method against defaults.
func (c Config) MethodFor(a Asset) Method {
	if a.Method != "" {
		return a.Method
	}
	return c.DefaultMethod
}

// RoundCharge applies the yearly rounding policy.
func (c Config) RoundCharge(m Money) Money {
	return m.Round(c.Precision)
}
