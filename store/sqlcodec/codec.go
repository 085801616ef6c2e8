// Package sqlcodec maps engine types to the column values shared by the SQL
// stores. Both SQLite and PostgreSQL keep money and percentages as decimal
// strings and dates as YYYY-MM-DD text so values round-trip exactly.
package sqlcodec

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/asset-engine/generic"
)

// AssetColumns is the column list shared by INSERT and SELECT, in order.
var AssetColumns = []string{
	"id", "name", "category", "location", "department",
	"purchase_date", "capitalization_date", "original_cost",
	"useful_life_years", "residual_value_percent", "method", "companies_act_rate_percent", "multi_shift",
	"depreciation_rate_percent", "additional_depreciation_eligible",
	"laws", "status", "disposal_date", "disposal_value",
	"created_at", "updated_at",
}

// AssetArgs returns the values for AssetColumns.
func AssetArgs(a generic.Asset) []any {
	return []any{
		string(a.ID), a.Name, a.Category, a.Location, a.Department,
		a.PurchaseDate.String(), a.CapitalizationDate.String(), a.OriginalCost.String(),
		a.UsefulLifeYears, nullDecimal(a.ResidualValuePercent), string(a.Method), nullDecimal(a.CompaniesActRatePercent), a.MultiShift,
		a.DepreciationRatePercent.String(), a.AdditionalDepreciationEligible,
		EncodeLaws(a.Laws), string(a.Status), nullDate(a.DisposalDate), nullMoney(a.DisposalValue),
		FormatTimestamp(a.CreatedAt), FormatTimestamp(a.UpdatedAt),
	}
}

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanAsset reads one row selected with AssetColumns.
func ScanAsset(row Scanner) (generic.Asset, error) {
	var (
		a                                         generic.Asset
		id, method, laws, status                  string
		purchase, capitalization, cost, itRate    string
		residual, caRate, disposalDate, disposalV sql.NullString
		created, updated                          string
	)
	err := row.Scan(
		&id, &a.Name, &a.Category, &a.Location, &a.Department,
		&purchase, &capitalization, &cost,
		&a.UsefulLifeYears, &residual, &method, &caRate, &a.MultiShift,
		&itRate, &a.AdditionalDepreciationEligible,
		&laws, &status, &disposalDate, &disposalV,
		&created, &updated,
	)
	if err != nil {
		return generic.Asset{}, err
	}

	a.ID = generic.AssetID(id)
	a.Method = generic.Method(method)
	a.Status = generic.AssetStatus(status)
	a.PurchaseDate, _ = generic.ParseDate(purchase)
	a.CapitalizationDate, _ = generic.ParseDate(capitalization)
	a.OriginalCost = generic.NewMoneyFromDecimal(generic.MustParseDecimal(cost))
	a.DepreciationRatePercent = generic.MustParseDecimal(itRate)
	a.ResidualValuePercent = parseNullDecimal(residual)
	a.CompaniesActRatePercent = parseNullDecimal(caRate)
	if a.Laws, err = DecodeLaws(laws); err != nil {
		return generic.Asset{}, fmt.Errorf("asset %s: %w", id, err)
	}
	if disposalDate.Valid {
		d, _ := generic.ParseDate(disposalDate.String)
		a.DisposalDate = &d
	}
	if disposalV.Valid {
		v := generic.NewMoneyFromDecimal(generic.MustParseDecimal(disposalV.String))
		a.DisposalValue = &v
	}
	a.CreatedAt = ParseTimestamp(created)
	a.UpdatedAt = ParseTimestamp(updated)
	return a, nil
}

// =============================================================================
// SCHEDULE ROWS
// =============================================================================

// EntryColumns excludes asset_id and law, which every statement binds first.
var EntryColumns = []string{
	"year_index", "fiscal_year_start", "fiscal_year_end", "label",
	"opening_value", "depreciation", "additional_depreciation", "closing_value",
	"accumulated_depreciation", "is_pro_rata",
}

func EntryArgs(e generic.Entry) []any {
	return []any{
		e.YearIndex, e.FiscalYear.Start.String(), e.FiscalYear.End.String(), e.Label,
		e.OpeningValue.String(), e.Depreciation.String(), e.AdditionalDepreciation.String(), e.ClosingValue.String(),
		e.AccumulatedDepreciation.String(), e.IsProRata,
	}
}

func ScanEntry(row Scanner) (generic.Entry, error) {
	var (
		e                                             generic.Entry
		start, end                                    string
		opening, dep, additional, closing, accumulate string
	)
	if err := row.Scan(&e.YearIndex, &start, &end, &e.Label,
		&opening, &dep, &additional, &closing, &accumulate, &e.IsProRata); err != nil {
		return generic.Entry{}, err
	}
	e.FiscalYear.Start, _ = generic.ParseDate(start)
	e.FiscalYear.End, _ = generic.ParseDate(end)
	e.OpeningValue = money(opening)
	e.Depreciation = money(dep)
	e.AdditionalDepreciation = money(additional)
	e.ClosingValue = money(closing)
	e.AccumulatedDepreciation = money(accumulate)
	return e, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

// settingsJSON is the persisted form of generic.Config.
type settingsJSON struct {
	FiscalYearStartMonth   int    `json:"fiscal_year_start_month"`
	FiscalYearStartDay     int    `json:"fiscal_year_start_day"`
	ProRata                string `json:"prorata_convention"`
	DefaultResidualPercent string `json:"default_residual_percent"`
	DefaultMethod          string `json:"default_method"`
	Precision              int32  `json:"precision"`
	ITActMaxYears          int    `json:"it_act_max_years"`
	ITActTolerance         string `json:"it_act_tolerance"`
	HalfYearDays           int    `json:"half_year_days"`
	CurrencySymbol         string `json:"currency_symbol"`
	Grouping               string `json:"grouping"`
	DisplayPlaces          int32  `json:"display_places"`
}

// SettingsKey is the single row the config is stored under.
const SettingsKey = "config"

func EncodeConfig(c generic.Config) (string, error) {
	b, err := json.Marshal(settingsJSON{
		FiscalYearStartMonth:   int(c.Calendar.StartMonth),
		FiscalYearStartDay:     c.Calendar.StartDay,
		ProRata:                string(c.ProRata),
		DefaultResidualPercent: c.DefaultResidualPercent.String(),
		DefaultMethod:          string(c.DefaultMethod),
		Precision:              c.Precision,
		ITActMaxYears:          c.ITActMaxYears,
		ITActTolerance:         c.ITActTolerance.String(),
		HalfYearDays:           c.HalfYearDays,
		CurrencySymbol:         c.CurrencySymbol,
		Grouping:               string(c.Grouping),
		DisplayPlaces:          c.DisplayPlaces,
	})
	return string(b), err
}

// DecodeConfig starts from DefaultConfig so settings saved by older builds
// pick up defaults for fields they lack.
func DecodeConfig(s string) (generic.Config, error) {
	cfg := generic.DefaultConfig()
	sj := settingsJSON{
		FiscalYearStartMonth:   int(cfg.Calendar.StartMonth),
		FiscalYearStartDay:     cfg.Calendar.StartDay,
		ProRata:                string(cfg.ProRata),
		DefaultResidualPercent: cfg.DefaultResidualPercent.String(),
		DefaultMethod:          string(cfg.DefaultMethod),
		Precision:              cfg.Precision,
		ITActMaxYears:          cfg.ITActMaxYears,
		ITActTolerance:         cfg.ITActTolerance.String(),
		HalfYearDays:           cfg.HalfYearDays,
		CurrencySymbol:         cfg.CurrencySymbol,
		Grouping:               string(cfg.Grouping),
		DisplayPlaces:          cfg.DisplayPlaces,
	}
	if err := json.Unmarshal([]byte(s), &sj); err != nil {
		return generic.Config{}, fmt.Errorf("failed to decode settings: %w", err)
	}

	cfg.Calendar = generic.FiscalCalendar{StartMonth: time.Month(sj.FiscalYearStartMonth), StartDay: sj.FiscalYearStartDay}
	cfg.ProRata = generic.ProRataConvention(sj.ProRata)
	cfg.DefaultResidualPercent = generic.MustParseDecimal(sj.DefaultResidualPercent)
	cfg.DefaultMethod = generic.Method(sj.DefaultMethod)
	cfg.Precision = sj.Precision
	cfg.ITActMaxYears = sj.ITActMaxYears
	cfg.ITActTolerance = money(sj.ITActTolerance)
	cfg.HalfYearDays = sj.HalfYearDays
	cfg.CurrencySymbol = sj.CurrencySymbol
	cfg.Grouping = generic.Grouping(sj.Grouping)
	cfg.DisplayPlaces = sj.DisplayPlaces
	return cfg, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// EncodeLaws stores laws as a JSON array so filters can match on the quoted name.
func EncodeLaws(laws []generic.Law) string {
	if laws == nil {
		laws = []generic.Law{}
	}
	b, _ := json.Marshal(laws)
	return string(b)
}

func DecodeLaws(s string) ([]generic.Law, error) {
	var laws []generic.Law
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(s), &laws); err != nil {
		return nil, fmt.Errorf("invalid laws column %q: %w", s, err)
	}
	return laws, nil
}

// LawPattern is the LIKE pattern matching an encoded laws column containing law.
func LawPattern(law generic.Law) string {
	return `%"` + string(law) + `"%`
}

func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func ParseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func money(s string) generic.Money {
	return generic.NewMoneyFromDecimal(generic.MustParseDecimal(s))
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullMoney(m *generic.Money) sql.NullString {
	if m == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: m.String(), Valid: true}
}

func nullDate(d *generic.TimePoint) sql.NullString {
	if d == nil || d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseNullDecimal(s sql.NullString) *decimal.Decimal {
	if !s.Valid {
		return nil
	}
	d := generic.MustParseDecimal(s.String)
	return &d
}
