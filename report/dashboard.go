package report

import (
	"github.com/warp/asset-engine/factory"
	"github.com/warp/asset-engine/generic"
)

// =============================================================================
// DASHBOARD - Headline figures across the register
// =============================================================================

// LawSummary aggregates active assets under one law as of a date.
type LawSummary struct {
	Law                     generic.Law
	Assets                  int
	CurrentYearDepreciation generic.Money
	WDV                     generic.Money
}

type Dashboard struct {
	AsOf               generic.TimePoint
	YearLabel          string
	TotalAssets        int
	ActiveAssets       int
	DisposedAssets     int
	TotalPurchaseValue generic.Money
	Laws               []LawSummary // generic.AllLaws order
}

// BuildDashboard counts every asset but only depreciates active ones that
// were in use by asOf.
func BuildDashboard(engine *factory.Engine, assets []generic.Asset, asOf generic.TimePoint, cfg generic.Config) Dashboard {
	d := Dashboard{
		AsOf:               asOf,
		YearLabel:          cfg.Calendar.Label(cfg.Calendar.PeriodFor(asOf)),
		TotalAssets:        len(assets),
		TotalPurchaseValue: generic.ZeroMoney(),
	}
	byLaw := make(map[generic.Law]*LawSummary, len(generic.AllLaws))
	for _, law := range generic.AllLaws {
		d.Laws = append(d.Laws, LawSummary{
			Law:                     law,
			CurrentYearDepreciation: generic.ZeroMoney(),
			WDV:                     generic.ZeroMoney(),
		})
	}
	for i := range d.Laws {
		byLaw[d.Laws[i].Law] = &d.Laws[i]
	}

	for _, a := range assets {
		d.TotalPurchaseValue = d.TotalPurchaseValue.Add(a.OriginalCost)
		if a.Status == generic.StatusDisposed {
			d.DisposedAssets++
			continue
		}
		d.ActiveAssets++
		if notYetAcquired(a, asOf, cfg) {
			continue
		}

		for _, s := range engine.Compute(a, cfg) {
			sum := byLaw[s.Law]
			sum.Assets++
			sum.WDV = sum.WDV.Add(s.ValueAsOf(asOf))
			if e, ok := s.EntryFor(asOf); ok {
				sum.CurrentYearDepreciation = sum.CurrentYearDepreciation.Add(e.Charge())
			}
		}
	}
	return d
}
