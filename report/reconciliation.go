package report

import (
	"github.com/warp/asset-engine/factory"
	"github.com/warp/asset-engine/generic"
)

// =============================================================================
// RECONCILIATION - Book vs tax
// =============================================================================

// ReconciliationRow compares the two laws for one asset as of a date.
// Differences are Companies Act minus IT Act.
type ReconciliationRow struct {
	AssetID       generic.AssetID
	Name          string
	Category      string
	PurchaseValue generic.Money

	CompaniesActDepreciation generic.Money
	ITActDepreciation        generic.Money
	DepreciationDifference   generic.Money

	CompaniesActWDV generic.Money
	ITActWDV        generic.Money
	WDVDifference   generic.Money

	// Laws that could not be computed; their columns read zero.
	Missing []generic.Law
}

type ReconciliationReport struct {
	AsOf   generic.TimePoint
	Rows   []ReconciliationRow
	Totals ReconciliationRow
}

// BuildReconciliationReport covers assets that request both laws and were
// in use by asOf.
func BuildReconciliationReport(engine *factory.Engine, assets []generic.Asset, asOf generic.TimePoint, cfg generic.Config) ReconciliationReport {
	zero := generic.ZeroMoney()
	r := ReconciliationReport{AsOf: asOf, Totals: ReconciliationRow{
		PurchaseValue:            zero,
		CompaniesActDepreciation: zero,
		ITActDepreciation:        zero,
		DepreciationDifference:   zero,
		CompaniesActWDV:          zero,
		ITActWDV:                 zero,
		WDVDifference:            zero,
	}}

	for _, a := range assets {
		if !a.UsedFor(generic.LawCompaniesAct) || !a.UsedFor(generic.LawITAct) || notYetAcquired(a, asOf, cfg) {
			continue
		}
		row := ReconciliationRow{
			AssetID:                  a.ID,
			Name:                     a.Name,
			Category:                 a.Category,
			PurchaseValue:            a.OriginalCost,
			CompaniesActDepreciation: zero,
			ITActDepreciation:        zero,
			CompaniesActWDV:          zero,
			ITActWDV:                 zero,
		}
		if s, ok := engine.ComputeLaw(a, generic.LawCompaniesAct, cfg); ok {
			s = clipFor(a, s)
			row.CompaniesActDepreciation = s.AccumulatedThrough(asOf)
			row.CompaniesActWDV = s.ValueAsOf(asOf)
		} else {
			row.Missing = append(row.Missing, generic.LawCompaniesAct)
		}
		if s, ok := engine.ComputeLaw(a, generic.LawITAct, cfg); ok {
			s = clipFor(a, s)
			row.ITActDepreciation = s.AccumulatedThrough(asOf)
			row.ITActWDV = s.ValueAsOf(asOf)
		} else {
			row.Missing = append(row.Missing, generic.LawITAct)
		}
		row.DepreciationDifference = row.CompaniesActDepreciation.Sub(row.ITActDepreciation)
		row.WDVDifference = row.CompaniesActWDV.Sub(row.ITActWDV)

		r.Rows = append(r.Rows, row)
		t := &r.Totals
		t.PurchaseValue = t.PurchaseValue.Add(row.PurchaseValue)
		t.CompaniesActDepreciation = t.CompaniesActDepreciation.Add(row.CompaniesActDepreciation)
		t.ITActDepreciation = t.ITActDepreciation.Add(row.ITActDepreciation)
		t.DepreciationDifference = t.DepreciationDifference.Add(row.DepreciationDifference)
		t.CompaniesActWDV = t.CompaniesActWDV.Add(row.CompaniesActWDV)
		t.ITActWDV = t.ITActWDV.Add(row.ITActWDV)
		t.WDVDifference = t.WDVDifference.Add(row.WDVDifference)
	}
	return r
}
