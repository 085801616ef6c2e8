/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's decimal-backed types from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY:
  Amounts are emitted as JSON numbers with two decimals (json.Number built
  from the exact decimal), never through float64. *_display fields carry
  the currency-formatted string from report.Formatter.

TYPES:
  Assets:     AssetDTO (wraps factory.AssetJSON), DisposeRequest
  Schedules:  EntryDTO, ScheduleDTO, SchedulesResponse
  Reports:    Register, Depreciation, Disposal, Reconciliation DTOs
  Settings:   SettingsDTO
  Scenarios:  ScenarioDTO, LoadScenarioRequest

SEE ALSO:
  - handlers.go: Uses these types
  - factory/asset.go: AssetJSON type and its validation tags
*/
package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/asset-engine/factory"
	"github.com/warp/asset-engine/generic"
	"github.com/warp/asset-engine/report"
)

// =============================================================================
// ASSETS
// =============================================================================

// AssetDTO is an asset plus the laws the engine cannot compute for it.
type AssetDTO struct {
	factory.AssetJSON
	MissingLaws []string `json:"missing_laws,omitempty"`
}

type DisposeRequest struct {
	DisposalDate  string  `json:"disposal_date"`
	DisposalValue float64 `json:"disposal_value"`
}

// =============================================================================
// SCHEDULES
// =============================================================================

type EntryDTO struct {
	Year                    int         `json:"year"`
	Label                   string      `json:"label"`
	FiscalYearStart         string      `json:"fiscal_year_start"`
	FiscalYearEnd           string      `json:"fiscal_year_end"`
	OpeningValue            json.Number `json:"opening_value"`
	Depreciation            json.Number `json:"depreciation"`
	AdditionalDepreciation  json.Number `json:"additional_depreciation"`
	ClosingValue            json.Number `json:"closing_value"`
	AccumulatedDepreciation json.Number `json:"accumulated_depreciation"`
	IsProRata               bool        `json:"is_pro_rata"`
}

type ScheduleDTO struct {
	Law                      string      `json:"law"`
	AssetID                  string      `json:"asset_id"`
	Entries                  []EntryDTO  `json:"entries"`
	TotalDepreciation        json.Number `json:"total_depreciation"`
	CurrentWDV               json.Number `json:"current_wdv"`
	TotalDepreciationDisplay string      `json:"total_depreciation_display"`
	CurrentWDVDisplay        string      `json:"current_wdv_display"`
}

type SchedulesResponse struct {
	AssetID     string        `json:"asset_id"`
	Schedules   []ScheduleDTO `json:"schedules"`
	MissingLaws []string      `json:"missing_laws"`
	Cached      bool          `json:"cached"`
}

// =============================================================================
// REPORTS
// =============================================================================

type RegisterRowDTO struct {
	Tag           string      `json:"tag"`
	Name          string      `json:"name"`
	PurchaseDate  string      `json:"purchase_date"`
	PurchaseValue json.Number `json:"purchase_value"`
	Location      string      `json:"location"`
	Department    string      `json:"department"`
	Category      string      `json:"category"`
	Status        string      `json:"status"`
}

type RegisterDTO struct {
	Rows               []RegisterRowDTO `json:"rows"`
	TotalPurchaseValue json.Number      `json:"total_purchase_value"`
	TotalDisplay       string           `json:"total_display"`
}

type DepreciationRowDTO struct {
	AssetID                 string      `json:"asset_id,omitempty"`
	Name                    string      `json:"name"`
	Category                string      `json:"category,omitempty"`
	Method                  string      `json:"method,omitempty"`
	RatePercent             json.Number `json:"rate_percent,omitempty"`
	UsefulLife              int         `json:"useful_life,omitempty"`
	PurchaseValue           json.Number `json:"purchase_value"`
	CurrentYearDepreciation json.Number `json:"current_year_depreciation"`
	AccumulatedDepreciation json.Number `json:"accumulated_depreciation"`
	WDV                     json.Number `json:"wdv"`
}

type DepreciationReportDTO struct {
	Law       string               `json:"law"`
	AsOf      string               `json:"as_of"`
	YearLabel string               `json:"year_label"`
	Rows      []DepreciationRowDTO `json:"rows"`
	Totals    DepreciationRowDTO   `json:"totals"`
	Skipped   []string             `json:"skipped"`
}

type DisposalRowDTO struct {
	AssetID       string      `json:"asset_id,omitempty"`
	Name          string      `json:"name"`
	Category      string      `json:"category,omitempty"`
	PurchaseDate  string      `json:"purchase_date,omitempty"`
	DisposalDate  string      `json:"disposal_date,omitempty"`
	PurchaseValue json.Number `json:"purchase_value"`
	WDVAtDisposal json.Number `json:"wdv_at_disposal"`
	DisposalValue json.Number `json:"disposal_value"`
	GainLoss      json.Number `json:"gain_loss"`
	ValuedUnder   string      `json:"valued_under,omitempty"`
}

type DisposalReportDTO struct {
	Rows   []DisposalRowDTO `json:"rows"`
	Totals DisposalRowDTO   `json:"totals"`
}

type ReconciliationRowDTO struct {
	AssetID                  string      `json:"asset_id,omitempty"`
	Name                     string      `json:"name"`
	Category                 string      `json:"category,omitempty"`
	PurchaseValue            json.Number `json:"purchase_value"`
	CompaniesActDepreciation json.Number `json:"companies_act_depreciation"`
	ITActDepreciation        json.Number `json:"it_act_depreciation"`
	DepreciationDifference   json.Number `json:"depreciation_difference"`
	CompaniesActWDV          json.Number `json:"companies_act_wdv"`
	ITActWDV                 json.Number `json:"it_act_wdv"`
	WDVDifference            json.Number `json:"wdv_difference"`
	Missing                  []string    `json:"missing,omitempty"`
}

type ReconciliationReportDTO struct {
	AsOf   string                 `json:"as_of"`
	Rows   []ReconciliationRowDTO `json:"rows"`
	Totals ReconciliationRowDTO   `json:"totals"`
}

type LawSummaryDTO struct {
	Law                     string      `json:"law"`
	Assets                  int         `json:"assets"`
	CurrentYearDepreciation json.Number `json:"current_year_depreciation"`
	WDV                     json.Number `json:"wdv"`
	WDVDisplay              string      `json:"wdv_display"`
}

type DashboardDTO struct {
	AsOf               string          `json:"as_of"`
	YearLabel          string          `json:"year_label"`
	TotalAssets        int             `json:"total_assets"`
	ActiveAssets       int             `json:"active_assets"`
	DisposedAssets     int             `json:"disposed_assets"`
	TotalPurchaseValue json.Number     `json:"total_purchase_value"`
	Laws               []LawSummaryDTO `json:"laws"`
}

// CategoryDTO is one row of a category master.
type CategoryDTO struct {
	Name        string      `json:"name"`
	Law         string      `json:"law"`
	UsefulLife  int         `json:"useful_life"`
	RatePercent json.Number `json:"rate_percent"`
	Method      string      `json:"method"`
}

// =============================================================================
// SETTINGS
// =============================================================================

type SettingsDTO struct {
	FiscalYearStartMonth   int         `json:"fiscal_year_start_month"`
	FiscalYearStartDay     int         `json:"fiscal_year_start_day"`
	ProRataConvention      string      `json:"prorata_convention"`
	DefaultResidualPercent json.Number `json:"default_residual_percent"`
	DefaultMethod          string      `json:"default_method"`
	Precision              int32       `json:"precision"`
	ITActMaxYears          int         `json:"it_act_max_years"`
	ITActTolerance         json.Number `json:"it_act_tolerance"`
	HalfYearDays           int         `json:"half_year_days"`
	CurrencySymbol         string      `json:"currency_symbol"`
	Grouping               string      `json:"grouping"`
	DisplayPlaces          int32       `json:"display_places"`
}

// BackupDTO is a full export: settings plus every asset.
type BackupDTO struct {
	Version    string              `json:"version"`
	ExportDate string              `json:"export_date"`
	Settings   SettingsDTO         `json:"settings"`
	Assets     []factory.AssetJSON `json:"assets"`
}

// =============================================================================
// SCENARIOS / ERRORS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Assets      int    `json:"assets"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string               `json:"error"`
	Details string               `json:"details,omitempty"`
	Fields  []generic.FieldError `json:"fields,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func amount(m generic.Money) json.Number {
	return json.Number(report.CSV(m))
}

func percent(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func lawNames(laws []generic.Law) []string {
	names := make([]string, 0, len(laws))
	for _, l := range laws {
		names = append(names, string(l))
	}
	return names
}

func toScheduleDTO(s generic.Schedule, f report.Formatter) ScheduleDTO {
	dto := ScheduleDTO{
		Law:                      string(s.Law),
		AssetID:                  string(s.AssetID),
		Entries:                  make([]EntryDTO, len(s.Entries)),
		TotalDepreciation:        amount(s.TotalDepreciation),
		CurrentWDV:               amount(s.CurrentWDV),
		TotalDepreciationDisplay: f.Format(s.TotalDepreciation),
		CurrentWDVDisplay:        f.Format(s.CurrentWDV),
	}
	for i, e := range s.Entries {
		dto.Entries[i] = EntryDTO{
			Year:                    e.YearIndex,
			Label:                   e.Label,
			FiscalYearStart:         e.FiscalYear.Start.String(),
			FiscalYearEnd:           e.FiscalYear.End.String(),
			OpeningValue:            amount(e.OpeningValue),
			Depreciation:            amount(e.Depreciation),
			AdditionalDepreciation:  amount(e.AdditionalDepreciation),
			ClosingValue:            amount(e.ClosingValue),
			AccumulatedDepreciation: amount(e.AccumulatedDepreciation),
			IsProRata:               e.IsProRata,
		}
	}
	return dto
}

func toScheduleDTOs(schedules []generic.Schedule, f report.Formatter) []ScheduleDTO {
	dtos := make([]ScheduleDTO, len(schedules))
	for i, s := range schedules {
		dtos[i] = toScheduleDTO(s, f)
	}
	return dtos
}

func toRegisterDTO(r report.Register, f report.Formatter) RegisterDTO {
	dto := RegisterDTO{
		Rows:               make([]RegisterRowDTO, len(r.Rows)),
		TotalPurchaseValue: amount(r.TotalPurchaseValue),
		TotalDisplay:       f.Format(r.TotalPurchaseValue),
	}
	for i, row := range r.Rows {
		dto.Rows[i] = RegisterRowDTO{
			Tag:           string(row.Tag),
			Name:          row.Name,
			PurchaseDate:  row.PurchaseDate.String(),
			PurchaseValue: amount(row.PurchaseValue),
			Location:      row.Location,
			Department:    row.Department,
			Category:      row.Category,
			Status:        string(row.Status),
		}
	}
	return dto
}

func toDepreciationRowDTO(row report.DepreciationRow) DepreciationRowDTO {
	dto := DepreciationRowDTO{
		AssetID:                 string(row.AssetID),
		Name:                    row.Name,
		Category:                row.Category,
		Method:                  string(row.Method),
		UsefulLife:              row.UsefulLife,
		PurchaseValue:           amount(row.PurchaseValue),
		CurrentYearDepreciation: amount(row.CurrentYearDepreciation),
		AccumulatedDepreciation: amount(row.AccumulatedDepreciation),
		WDV:                     amount(row.WDV),
	}
	if !row.RatePercent.IsZero() {
		dto.RatePercent = percent(row.RatePercent)
	}
	return dto
}

func toDepreciationReportDTO(r report.DepreciationReport) DepreciationReportDTO {
	dto := DepreciationReportDTO{
		Law:       string(r.Law),
		AsOf:      r.AsOf.String(),
		YearLabel: r.YearLabel,
		Rows:      make([]DepreciationRowDTO, len(r.Rows)),
		Totals:    toDepreciationRowDTO(r.Totals),
		Skipped:   make([]string, len(r.Skipped)),
	}
	dto.Totals.Name = "Total"
	for i, row := range r.Rows {
		dto.Rows[i] = toDepreciationRowDTO(row)
	}
	for i, id := range r.Skipped {
		dto.Skipped[i] = string(id)
	}
	return dto
}

func toDisposalRowDTO(row report.DisposalRow) DisposalRowDTO {
	return DisposalRowDTO{
		AssetID:       string(row.AssetID),
		Name:          row.Name,
		Category:      row.Category,
		PurchaseDate:  row.PurchaseDate.String(),
		DisposalDate:  row.DisposalDate.String(),
		PurchaseValue: amount(row.PurchaseValue),
		WDVAtDisposal: amount(row.WDVAtDisposal),
		DisposalValue: amount(row.DisposalValue),
		GainLoss:      amount(row.GainLoss),
		ValuedUnder:   string(row.ValuedUnder),
	}
}

func toDisposalReportDTO(r report.DisposalReport) DisposalReportDTO {
	dto := DisposalReportDTO{
		Rows:   make([]DisposalRowDTO, len(r.Rows)),
		Totals: toDisposalRowDTO(r.Totals),
	}
	dto.Totals.Name = "Total"
	for i, row := range r.Rows {
		dto.Rows[i] = toDisposalRowDTO(row)
	}
	return dto
}

func toReconciliationRowDTO(row report.ReconciliationRow) ReconciliationRowDTO {
	dto := ReconciliationRowDTO{
		AssetID:                  string(row.AssetID),
		Name:                     row.Name,
		Category:                 row.Category,
		PurchaseValue:            amount(row.PurchaseValue),
		CompaniesActDepreciation: amount(row.CompaniesActDepreciation),
		ITActDepreciation:        amount(row.ITActDepreciation),
		DepreciationDifference:   amount(row.DepreciationDifference),
		CompaniesActWDV:          amount(row.CompaniesActWDV),
		ITActWDV:                 amount(row.ITActWDV),
		WDVDifference:            amount(row.WDVDifference),
	}
	if len(row.Missing) > 0 {
		dto.Missing = lawNames(row.Missing)
	}
	return dto
}

func toReconciliationReportDTO(r report.ReconciliationReport) ReconciliationReportDTO {
	dto := ReconciliationReportDTO{
		AsOf:   r.AsOf.String(),
		Rows:   make([]ReconciliationRowDTO, len(r.Rows)),
		Totals: toReconciliationRowDTO(r.Totals),
	}
	dto.Totals.Name = "Total"
	for i, row := range r.Rows {
		dto.Rows[i] = toReconciliationRowDTO(row)
	}
	return dto
}

func toDashboardDTO(d report.Dashboard, f report.Formatter) DashboardDTO {
	dto := DashboardDTO{
		AsOf:               d.AsOf.String(),
		YearLabel:          d.YearLabel,
		TotalAssets:        d.TotalAssets,
		ActiveAssets:       d.ActiveAssets,
		DisposedAssets:     d.DisposedAssets,
		TotalPurchaseValue: amount(d.TotalPurchaseValue),
		Laws:               make([]LawSummaryDTO, len(d.Laws)),
	}
	for i, l := range d.Laws {
		dto.Laws[i] = LawSummaryDTO{
			Law:                     string(l.Law),
			Assets:                  l.Assets,
			CurrentYearDepreciation: amount(l.CurrentYearDepreciation),
			WDV:                     amount(l.WDV),
			WDVDisplay:              f.Format(l.WDV),
		}
	}
	return dto
}

func toSettingsDTO(c generic.Config) SettingsDTO {
	return SettingsDTO{
		FiscalYearStartMonth:   int(c.Calendar.StartMonth),
		FiscalYearStartDay:     c.Calendar.StartDay,
		ProRataConvention:      string(c.ProRata),
		DefaultResidualPercent: percent(c.DefaultResidualPercent),
		DefaultMethod:          string(c.DefaultMethod),
		Precision:              c.Precision,
		ITActMaxYears:          c.ITActMaxYears,
		ITActTolerance:         json.Number(c.ITActTolerance.String()),
		HalfYearDays:           c.HalfYearDays,
		CurrencySymbol:         c.CurrencySymbol,
		Grouping:               string(c.Grouping),
		DisplayPlaces:          c.DisplayPlaces,
	}
}

// fromSettingsDTO converts and validates. Omitted decimal fields keep base.
func fromSettingsDTO(dto SettingsDTO, base generic.Config) (generic.Config, error) {
	cfg := base
	if dto.FiscalYearStartMonth < 1 || dto.FiscalYearStartMonth > 12 {
		return generic.Config{}, fmt.Errorf("%w: fiscal_year_start_month must be within 1-12", generic.ErrInvalidConfig)
	}
	if dto.FiscalYearStartDay < 1 || dto.FiscalYearStartDay > 28 {
		return generic.Config{}, fmt.Errorf("%w: fiscal_year_start_day must be within 1-28", generic.ErrInvalidConfig)
	}
	cfg.Calendar = generic.FiscalCalendar{StartMonth: time.Month(dto.FiscalYearStartMonth), StartDay: dto.FiscalYearStartDay}
	cfg.ProRata = generic.ProRataConvention(dto.ProRataConvention)
	cfg.DefaultMethod = generic.Method(dto.DefaultMethod)
	cfg.Precision = dto.Precision
	cfg.ITActMaxYears = dto.ITActMaxYears
	cfg.HalfYearDays = dto.HalfYearDays
	cfg.CurrencySymbol = dto.CurrencySymbol
	cfg.Grouping = generic.Grouping(dto.Grouping)
	cfg.DisplayPlaces = dto.DisplayPlaces

	if dto.DefaultResidualPercent != "" {
		d, err := decimal.NewFromString(string(dto.DefaultResidualPercent))
		if err != nil {
			return generic.Config{}, fmt.Errorf("%w: default_residual_percent: %v", generic.ErrInvalidConfig, err)
		}
		cfg.DefaultResidualPercent = d
	}
	if dto.ITActTolerance != "" {
		d, err := decimal.NewFromString(string(dto.ITActTolerance))
		if err != nil {
			return generic.Config{}, fmt.Errorf("%w: it_act_tolerance: %v", generic.ErrInvalidConfig, err)
		}
		cfg.ITActTolerance = generic.NewMoneyFromDecimal(d)
	}
	if err := cfg.Validate(); err != nil {
		return generic.Config{}, err
	}
	return cfg, nil
}
