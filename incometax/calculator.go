/*
Package incometax implements Income Tax Act section 32 depreciation.

PURPOSE:
  Implements generic.Calculator for tax depreciation under the
  block-of-assets written-down-value method, simplified to one asset per
  block (no pooled additions or sales).

RULES:
  WDV only:
    charge = opening * statutoryRate, every year.

  Half-year rule:
    If the asset is used for fewer than 180 days in the fiscal year of
    acquisition, the first-year rate is halved.

  Additional depreciation (eligible new plant & machinery):
    One-time extra charge in the first year only, on original cost:
      20% of cost, or 10% when the half-year rule applies.
    It reduces the written-down value along with the normal charge.

TERMINATION:
  Up to Config.ITActMaxYears entries (20 by default), stopping once the
  written-down value reaches zero or drops to Config.ITActTolerance.
  The closing value is clamped at zero; when clamping is needed the normal
  charge is kept and the additional charge absorbs the difference.

EXAMPLE:
  // Rs 1,00,000 computer at 40%, put to use Jan 10 in an April-March year
  // (81 days of use), eligible for additional depreciation
  schedule := incometax.Calculator{}.Compute(asset, generic.DefaultConfig())
  // Year 1: 1,00,000 x 20% = 20,000 normal + 10,000 additional -> 70,000
  // Year 2: 70,000 x 40% = 28,000 -> 42,000

SEE ALSO:
  - companiesact/calculator.go: Book-side counterpart
  - generic/period.go: Day counting for the half-year rule
*/
package incometax

import (
	"github.com/shopspring/decimal"
	"github.com/warp/asset-engine/generic"
)

var (
	additionalFullRate = decimal.RequireFromString("0.20")
	additionalHalfRate = decimal.RequireFromString("0.10")
)

// Calculator implements generic.Calculator for the IT Act.
type Calculator struct{}

var _ generic.Calculator = Calculator{}

func (Calculator) Law() generic.Law { return generic.LawITAct }

// Applicable is false without a statutory rate; the schedule is then skipped.
func (Calculator) Applicable(asset generic.Asset) bool {
	return asset.DepreciationRatePercent.IsPositive()
}

func (c Calculator) Compute(asset generic.Asset, cfg generic.Config) generic.Schedule {
	cost := asset.OriginalCost
	if !cost.IsPositive() || !asset.DepreciationRatePercent.IsPositive() {
		return generic.EmptySchedule(c.Law(), asset)
	}

	rate := asset.DepreciationRatePercent.Div(decimal.NewFromInt(100))
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		rate = decimal.NewFromInt(1)
	}

	halfYear := IsHalfYear(asset, cfg)
	maxYears := cfg.ITActMaxYears
	if maxYears <= 0 {
		maxYears = 20
	}

	b := generic.NewScheduleBuilder(c.Law(), asset, cfg)
	for y := 0; y < maxYears && b.Current().GreaterThan(cfg.ITActTolerance); y++ {
		opening := b.Current()

		applicable := rate
		if y == 0 && halfYear {
			applicable = rate.Div(decimal.NewFromInt(2))
		}
		dep := cfg.RoundCharge(opening.Mul(applicable)).Max(generic.ZeroMoney()).Min(opening)

		additional := generic.ZeroMoney()
		if y == 0 && asset.AdditionalDepreciationEligible {
			additional = cfg.RoundCharge(cost.Mul(AdditionalRate(halfYear)))
		}

		closing := opening.Sub(dep).Sub(additional)
		if closing.IsNegative() {
			closing = generic.ZeroMoney()
			additional = opening.Sub(dep)
		}

		b.Append(dep, additional, closing, y == 0 && halfYear)

		if !closing.IsPositive() {
			break
		}
	}
	return b.Build()
}

// IsHalfYear reports whether the asset was used for fewer than
// Config.HalfYearDays (180) days in its fiscal year of acquisition.
func IsHalfYear(asset generic.Asset, cfg generic.Config) bool {
	threshold := cfg.HalfYearDays
	if threshold <= 0 {
		threshold = 180
	}
	return cfg.Calendar.DaysUsed(asset.PutToUse()) < threshold
}

// AdditionalRate is the first-year additional depreciation rate on cost.
func AdditionalRate(halfYear bool) decimal.Decimal {
	if halfYear {
		return additionalHalfRate
	}
	return additionalFullRate
}
