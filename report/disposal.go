package report

import (
	"sort"

	"github.com/warp/asset-engine/factory"
	"github.com/warp/asset-engine/generic"
)

// =============================================================================
// CLIPPING
// =============================================================================

// ClipAtDisposal drops the entries for fiscal years that start after the
// disposal date. The year of disposal is kept whole. Totals and CurrentWDV
// are recomputed from what remains.
func ClipAtDisposal(s generic.Schedule, disposal generic.TimePoint) generic.Schedule {
	clipped := s
	clipped.Entries = nil
	for _, e := range s.Entries {
		if e.FiscalYear.Start.After(disposal) {
			break
		}
		clipped.Entries = append(clipped.Entries, e)
	}
	if len(clipped.Entries) == len(s.Entries) {
		return s
	}
	if len(clipped.Entries) == 0 {
		clipped.TotalDepreciation = generic.ZeroMoney()
		clipped.CurrentWDV = s.Opening()
		return clipped
	}
	last := clipped.Entries[len(clipped.Entries)-1]
	clipped.TotalDepreciation = last.AccumulatedDepreciation
	clipped.CurrentWDV = last.ClosingValue
	return clipped
}

// clipFor applies ClipAtDisposal when the asset has been disposed.
func clipFor(asset generic.Asset, s generic.Schedule) generic.Schedule {
	if asset.IsDisposed() {
		return ClipAtDisposal(s, *asset.DisposalDate)
	}
	return s
}

// =============================================================================
// DISPOSAL REPORT
// =============================================================================

type DisposalRow struct {
	AssetID       generic.AssetID
	Name          string
	Category      string
	PurchaseDate  generic.TimePoint
	DisposalDate  generic.TimePoint
	PurchaseValue generic.Money
	WDVAtDisposal generic.Money
	DisposalValue generic.Money
	GainLoss      generic.Money
	// Law whose schedule supplied WDVAtDisposal; empty when cost was used.
	ValuedUnder generic.Law
}

type DisposalReport struct {
	Rows   []DisposalRow
	Totals DisposalRow
}

// DisposalFilter bounds the disposal date (both inclusive, nil = open).
type DisposalFilter struct {
	From *generic.TimePoint
	To   *generic.TimePoint
}

func (f DisposalFilter) contains(d generic.TimePoint) bool {
	if f.From != nil && d.Before(*f.From) {
		return false
	}
	if f.To != nil && d.After(*f.To) {
		return false
	}
	return true
}

// BuildDisposalReport values every disposed asset in range. WDV at disposal
// is the Companies Act closing value for the fiscal year containing the
// disposal date, falling back to the IT Act schedule and then to cost.
func BuildDisposalReport(engine *factory.Engine, assets []generic.Asset, filter DisposalFilter, cfg generic.Config) DisposalReport {
	r := DisposalReport{Totals: DisposalRow{
		PurchaseValue: generic.ZeroMoney(),
		WDVAtDisposal: generic.ZeroMoney(),
		DisposalValue: generic.ZeroMoney(),
		GainLoss:      generic.ZeroMoney(),
	}}

	for _, a := range assets {
		if !a.IsDisposed() || !filter.contains(*a.DisposalDate) {
			continue
		}
		row := DisposalRow{
			AssetID:       a.ID,
			Name:          a.Name,
			Category:      a.Category,
			PurchaseDate:  a.PurchaseDate,
			DisposalDate:  *a.DisposalDate,
			PurchaseValue: a.OriginalCost,
			WDVAtDisposal: a.OriginalCost,
			DisposalValue: generic.ZeroMoney(),
		}
		if a.DisposalValue != nil {
			row.DisposalValue = *a.DisposalValue
		}
		for _, law := range generic.AllLaws {
			if s, ok := engine.ComputeLaw(a, law, cfg); ok {
				row.WDVAtDisposal = s.ValueAsOf(row.DisposalDate)
				row.ValuedUnder = law
				break
			}
		}
		row.GainLoss = row.DisposalValue.Sub(row.WDVAtDisposal)

		r.Rows = append(r.Rows, row)
		r.Totals.PurchaseValue = r.Totals.PurchaseValue.Add(row.PurchaseValue)
		r.Totals.WDVAtDisposal = r.Totals.WDVAtDisposal.Add(row.WDVAtDisposal)
		r.Totals.DisposalValue = r.Totals.DisposalValue.Add(row.DisposalValue)
		r.Totals.GainLoss = r.Totals.GainLoss.Add(row.GainLoss)
	}

	sort.SliceStable(r.Rows, func(i, j int) bool {
		return r.Rows[i].DisposalDate.Before(r.Rows[j].DisposalDate)
	})
	return r
}
