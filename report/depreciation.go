package report

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/warp/asset-engine/companiesact"
	"github.com/warp/asset-engine/factory"
	"github.com/warp/asset-engine/generic"
)

// =============================================================================
// DEPRECIATION REPORT - One law, as of a date
// =============================================================================

type DepreciationRow struct {
	AssetID     generic.AssetID
	Name        string
	Category    string
	Method      generic.Method
	RatePercent decimal.Decimal
	UsefulLife  int

	PurchaseValue           generic.Money
	CurrentYearDepreciation generic.Money // charge booked in the as-of fiscal year
	AccumulatedDepreciation generic.Money // through the end of the as-of fiscal year
	WDV                     generic.Money
}

type DepreciationReport struct {
	Law       generic.Law
	AsOf      generic.TimePoint
	YearLabel string
	Rows      []DepreciationRow
	Totals    DepreciationRow
	// Assets that request the law but lack the fields to compute it.
	Skipped []generic.AssetID
}

type DepreciationRequest struct {
	Law    generic.Law
	AsOf   generic.TimePoint
	Config generic.Config
	// Parallelism bounds concurrent schedule computations; <= 0 means 8.
	Parallelism int
}

// BuildDepreciationReport computes every asset's schedule under req.Law in
// parallel and reads the as-of values from it. Row order follows assets.
func BuildDepreciationReport(ctx context.Context, engine *factory.Engine, assets []generic.Asset, req DepreciationRequest) (DepreciationReport, error) {
	if _, ok := engine.Calculator(req.Law); !ok {
		return DepreciationReport{}, fmt.Errorf("%w: %q", generic.ErrUnknownLaw, req.Law)
	}
	limit := req.Parallelism
	if limit <= 0 {
		limit = 8
	}

	rows := make([]*DepreciationRow, len(assets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, a := range assets {
		if !a.UsedFor(req.Law) || notYetAcquired(a, req.AsOf, req.Config) {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, ok := engine.ComputeLaw(a, req.Law, req.Config)
			if !ok {
				return nil
			}
			row := depreciationRow(a, clipFor(a, s), req)
			rows[i] = &row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return DepreciationReport{}, err
	}

	r := DepreciationReport{
		Law:       req.Law,
		AsOf:      req.AsOf,
		YearLabel: req.Config.Calendar.Label(req.Config.Calendar.PeriodFor(req.AsOf)),
		Totals: DepreciationRow{
			PurchaseValue:           generic.ZeroMoney(),
			CurrentYearDepreciation: generic.ZeroMoney(),
			AccumulatedDepreciation: generic.ZeroMoney(),
			WDV:                     generic.ZeroMoney(),
		},
	}
	for i, row := range rows {
		if row == nil {
			if assets[i].UsedFor(req.Law) && !notYetAcquired(assets[i], req.AsOf, req.Config) {
				r.Skipped = append(r.Skipped, assets[i].ID)
			}
			continue
		}
		r.Rows = append(r.Rows, *row)
		r.Totals.PurchaseValue = r.Totals.PurchaseValue.Add(row.PurchaseValue)
		r.Totals.CurrentYearDepreciation = r.Totals.CurrentYearDepreciation.Add(row.CurrentYearDepreciation)
		r.Totals.AccumulatedDepreciation = r.Totals.AccumulatedDepreciation.Add(row.AccumulatedDepreciation)
		r.Totals.WDV = r.Totals.WDV.Add(row.WDV)
	}
	return r, nil
}

// notYetAcquired reports whether asOf falls before the fiscal year the asset
// was put to use in. Such assets have no value to report yet.
func notYetAcquired(a generic.Asset, asOf generic.TimePoint, cfg generic.Config) bool {
	return asOf.Before(cfg.Calendar.PeriodFor(a.PutToUse()).Start)
}

func depreciationRow(a generic.Asset, s generic.Schedule, req DepreciationRequest) DepreciationRow {
	row := DepreciationRow{
		AssetID:                 a.ID,
		Name:                    a.Name,
		Category:                a.Category,
		PurchaseValue:           a.OriginalCost,
		CurrentYearDepreciation: generic.ZeroMoney(),
		AccumulatedDepreciation: s.AccumulatedThrough(req.AsOf),
		WDV:                     s.ValueAsOf(req.AsOf),
	}
	if e, ok := s.EntryFor(req.AsOf); ok {
		row.CurrentYearDepreciation = e.Charge()
	}

	switch req.Law {
	case generic.LawCompaniesAct:
		row.Method = req.Config.MethodFor(a)
		row.UsefulLife = a.UsefulLifeYears
		row.RatePercent = CompaniesActRatePercent(a, req.Config)
	case generic.LawITAct:
		row.Method = generic.MethodWDV
		row.RatePercent = a.DepreciationRatePercent
	}
	return row
}

// CompaniesActRatePercent is the effective annual rate shown next to a
// Companies Act schedule, rounded to 2 places. For SLM it is the depreciable
// share of cost spread over the useful life.
func CompaniesActRatePercent(a generic.Asset, cfg generic.Config) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	pct := cfg.ResidualPercent(a)
	if cfg.MethodFor(a) == generic.MethodWDV {
		return companiesact.WDVRate(a, pct).Mul(hundred).Round(2)
	}
	if a.UsefulLifeYears <= 0 {
		return decimal.Zero
	}
	return hundred.Sub(pct).Div(decimal.NewFromInt(int64(a.UsefulLifeYears))).Round(2)
}
