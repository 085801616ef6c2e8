package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/warp/asset-engine/generic"
)

// =============================================================================
// CSV EXPORT
// =============================================================================
// Currency cells are plain decimals with 2 places so spreadsheets can sum them.

// WriteScheduleCSV writes one schedule followed by its totals.
//
//	Year,Opening Value,Depreciation,Closing Value
//	FY 2024-2025,100000.00,9474.00,90526.00
//	...
//
//	Total Depreciation,95000.00
//	Current WDV,5000.00
//
// IT Act schedules add an Additional Depreciation column.
func WriteScheduleCSV(w io.Writer, s generic.Schedule) error {
	cw := csv.NewWriter(w)
	withAdditional := s.Law == generic.LawITAct

	header := []string{"Year", "Opening Value", "Depreciation"}
	if withAdditional {
		header = append(header, "Additional Depreciation")
	}
	header = append(header, "Closing Value")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, e := range s.Entries {
		row := []string{e.Label, CSV(e.OpeningValue), CSV(e.Depreciation)}
		if withAdditional {
			row = append(row, CSV(e.AdditionalDepreciation))
		}
		row = append(row, CSV(e.ClosingValue))
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	trailer := [][]string{
		{},
		{"Total Depreciation", CSV(s.TotalDepreciation)},
		{"Current WDV", CSV(s.CurrentWDV)},
	}
	if err := cw.WriteAll(trailer); err != nil {
		return err
	}
	return cw.Error()
}

// AssetSchedule pairs an asset with one of its schedules.
type AssetSchedule struct {
	Asset    generic.Asset
	Schedule generic.Schedule
}

// WriteSchedulesCSV flattens many schedules into one sheet, one row per year.
func WriteSchedulesCSV(w io.Writer, schedules []AssetSchedule, cfg generic.Config) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Asset Name", "Year", "Opening Value", "Depreciation", "Additional Depreciation", "Closing Value", "Method"}); err != nil {
		return err
	}
	for _, as := range schedules {
		method := string(generic.MethodWDV)
		if as.Schedule.Law == generic.LawCompaniesAct {
			method = string(cfg.MethodFor(as.Asset))
		}
		for _, e := range as.Schedule.Entries {
			err := cw.Write([]string{
				as.Asset.Name, e.Label,
				CSV(e.OpeningValue), CSV(e.Depreciation), CSV(e.AdditionalDepreciation), CSV(e.ClosingValue),
				method,
			})
			if err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteRegisterCSV(w io.Writer, r Register) error {
	rows := [][]string{{"Tag", "Asset Name", "Purchase Date", "Purchase Value", "Location", "Department", "Category", "Status"}}
	for _, row := range r.Rows {
		rows = append(rows, []string{
			string(row.Tag), row.Name, row.PurchaseDate.String(), CSV(row.PurchaseValue),
			row.Location, row.Department, row.Category, string(row.Status),
		})
	}
	rows = append(rows, []string{"", "Total", "", CSV(r.TotalPurchaseValue), "", "", "", ""})
	return csv.NewWriter(w).WriteAll(rows)
}

func WriteDepreciationCSV(w io.Writer, r DepreciationReport) error {
	rows := [][]string{{
		"Asset Name", "Category", "Method", "Rate %", "Useful Life",
		"Purchase Value", "Depreciation " + r.YearLabel, "Accumulated Depreciation", "WDV",
	}}
	for _, row := range r.Rows {
		life := ""
		if row.UsefulLife > 0 {
			life = strconv.Itoa(row.UsefulLife)
		}
		rows = append(rows, []string{
			row.Name, row.Category, string(row.Method), row.RatePercent.StringFixed(2), life,
			CSV(row.PurchaseValue), CSV(row.CurrentYearDepreciation), CSV(row.AccumulatedDepreciation), CSV(row.WDV),
		})
	}
	t := r.Totals
	rows = append(rows, []string{
		"Total", "", "", "", "",
		CSV(t.PurchaseValue), CSV(t.CurrentYearDepreciation), CSV(t.AccumulatedDepreciation), CSV(t.WDV),
	})
	return csv.NewWriter(w).WriteAll(rows)
}

func WriteDisposalCSV(w io.Writer, r DisposalReport) error {
	rows := [][]string{{
		"Asset Name", "Category", "Purchase Date", "Disposal Date",
		"Purchase Value", "WDV at Disposal", "Disposal Value", "Gain/Loss",
	}}
	for _, row := range r.Rows {
		rows = append(rows, []string{
			row.Name, row.Category, row.PurchaseDate.String(), row.DisposalDate.String(),
			CSV(row.PurchaseValue), CSV(row.WDVAtDisposal), CSV(row.DisposalValue), CSV(row.GainLoss),
		})
	}
	t := r.Totals
	rows = append(rows, []string{
		"Total", "", "", "",
		CSV(t.PurchaseValue), CSV(t.WDVAtDisposal), CSV(t.DisposalValue), CSV(t.GainLoss),
	})
	return csv.NewWriter(w).WriteAll(rows)
}

func WriteReconciliationCSV(w io.Writer, r ReconciliationReport) error {
	rows := [][]string{{
		"Asset Name", "Category", "Purchase Value",
		"Companies Act Depreciation", "IT Act Depreciation", "Depreciation Difference",
		"Companies Act WDV", "IT Act WDV", "WDV Difference",
	}}
	line := func(name, category string, r ReconciliationRow) []string {
		return []string{
			name, category, CSV(r.PurchaseValue),
			CSV(r.CompaniesActDepreciation), CSV(r.ITActDepreciation), CSV(r.DepreciationDifference),
			CSV(r.CompaniesActWDV), CSV(r.ITActWDV), CSV(r.WDVDifference),
		}
	}
	for _, row := range r.Rows {
		rows = append(rows, line(row.Name, row.Category, row))
	}
	rows = append(rows, line("Total", "", r.Totals))
	return csv.NewWriter(w).WriteAll(rows)
}
