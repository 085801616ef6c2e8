/*
Package companiesact implements Companies Act 2013 Schedule II depreciation.

PURPOSE:
  Implements generic.Calculator for book depreciation. The schedule runs
  over the asset's useful life and stops at the residual value floor.

METHODS:
  SLM (Straight Line):
    annual = (cost - residual) / usefulLife
    Same charge every year; first year scaled by the pro-rata fraction.

  WDV (Written Down Value):
    rate = 1 - (residual / cost) ^ (1 / usefulLife)
    charge = opening * rate; first year scaled by the pro-rata fraction.
    An explicit CompaniesActRatePercent on the asset replaces the derived rate.

MULTI-SHIFT:
  Schedule II allows extra depreciation for assets worked in shifts:
    single shift  x1
    double shift  x1.5
    triple shift  x2

PRO-RATA:
  Months convention: monthsRemaining / 12, counting the month of use.
  Days convention:   daysUsed / daysInFiscalYear (365 or 366).

FLOOR:
  closing = max(opening - charge, residual). The charge is then recomputed
  as opening - closing so the two always agree. Iteration stops as soon as
  the floor is reached, even before the useful life is exhausted.

EXAMPLE:
  // Rs 1,00,000 machine, 5-year life, 5% residual, put to use Oct 1
  asset := generic.Asset{
      OriginalCost:       generic.NewMoneyFromInt(100000),
      CapitalizationDate: generic.NewTimePoint(2024, time.October, 1),
      UsefulLifeYears:    5,
      Method:             generic.MethodSLM,
  }
  schedule := companiesact.Calculator{}.Compute(asset, generic.CalendarYearConfig())
  // Year 1: 19,000 x 3/12 = 4,750 (pro-rata)
  // Years 2-5: 19,000 each

SEE ALSO:
  - generic/schedule.go: ScheduleBuilder
  - incometax/calculator.go: Tax-side counterpart
*/
package companiesact

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/warp/asset-engine/generic"
)

// Calculator implements generic.Calculator for Schedule II.
type Calculator struct{}

var _ generic.Calculator = Calculator{}

func (Calculator) Law() generic.Law { return generic.LawCompaniesAct }

// Applicable is false without a useful life; the schedule is then skipped.
func (Calculator) Applicable(asset generic.Asset) bool {
	return asset.UsefulLifeYears > 0
}

func (c Calculator) Compute(asset generic.Asset, cfg generic.Config) generic.Schedule {
	cost := asset.OriginalCost
	life := asset.UsefulLifeYears
	if !cost.IsPositive() || life <= 0 {
		return generic.EmptySchedule(c.Law(), asset)
	}

	pct := clampPercent(cfg.ResidualPercent(asset))
	residual := cost.Percent(pct)
	depreciable := cost.Sub(residual)

	fraction := cfg.Calendar.FirstYearFraction(asset.PutToUse(), cfg.ProRata)
	if fraction.GreaterThan(decimal.NewFromInt(1)) {
		fraction = decimal.NewFromInt(1)
	}
	proRata := fraction.LessThan(decimal.NewFromInt(1))

	method := cfg.MethodFor(asset)
	shift := asset.ShiftFactor()
	rate := WDVRate(asset, pct)
	slmAnnual := depreciable.Div(decimal.NewFromInt(int64(life)))

	b := generic.NewScheduleBuilder(c.Law(), asset, cfg)
	for y := 0; y < life; y++ {
		opening := b.Current()

		var raw generic.Money
		if method == generic.MethodWDV {
			raw = opening.Mul(rate)
		} else {
			raw = slmAnnual
		}
		if y == 0 {
			raw = raw.Mul(fraction)
		}
		raw = raw.Mul(shift)

		dep := cfg.RoundCharge(raw).Max(generic.ZeroMoney())
		closing := opening.Sub(dep)
		if closing.LessThan(residual) {
			closing = residual
			dep = opening.Sub(closing)
		}

		b.Append(dep, generic.ZeroMoney(), closing, y == 0 && proRata)

		if closing.LessThanOrEqual(residual) {
			break
		}
	}
	return b.Build()
}

// Floor is the residual value the schedule never goes below.
func Floor(asset generic.Asset, cfg generic.Config) generic.Money {
	return asset.OriginalCost.Percent(clampPercent(cfg.ResidualPercent(asset)))
}

// WDVRate is the constant written-down-value rate as a fraction (0.63 = 63%).
// An explicit CompaniesActRatePercent wins; otherwise the rate is derived so
// that cost * (1 - rate)^life == residual.
func WDVRate(asset generic.Asset, residualPct decimal.Decimal) decimal.Decimal {
	if asset.CompaniesActRatePercent != nil {
		return asset.CompaniesActRatePercent.Div(decimal.NewFromInt(100))
	}
	return DeriveWDVRate(residualPct, asset.UsefulLifeYears)
}

// DeriveWDVRate solves (1 - rate)^life = residualPct/100 for rate.
func DeriveWDVRate(residualPct decimal.Decimal, life int) decimal.Decimal {
	if life <= 0 {
		return decimal.Zero
	}
	ratio := clampPercent(residualPct).Div(decimal.NewFromInt(100)).InexactFloat64()
	if ratio <= 0 {
		return decimal.NewFromInt(1)
	}
	// float64 for the fractional power, decimal for the money that uses it
	rate := 1 - math.Pow(ratio, 1/float64(life))
	return decimal.NewFromFloat(rate)
}

func clampPercent(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.NewFromInt(100)
	}
	return p
}
