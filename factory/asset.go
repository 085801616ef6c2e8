/*
Package factory provides JSON to Go asset conversion and the engine fan-out.

PURPOSE:
  Converts JSON asset definitions into generic.Asset values and routes them
  through every calculator the asset asks for. The API, the demo scenarios
  and the schedule refresher all go through this package, so validation and
  category defaults are applied the same way everywhere.

JSON SCHEMA:
  {
    "id": "b6f3...",                      // optional, uuid assigned when empty
    "name": "CNC Lathe",
    "category_name": "Plant & Machinery (General)",
    "location": "Pune",
    "department": "Production",
    "purchase_date": "2024-09-20",
    "capitalization_date": "2024-10-01",  // optional, defaults to purchase_date
    "purchase_value": 100000,
    "used_for": ["Companies Act", "IT Act"],  // or ["Both"]
    "useful_life_years": 5,
    "residual_value_percent": 5,
    "depreciation_method": "SLM",
    "depreciation_rate_percent": 15,
    "multi_shift": 1,
    "additional_depreciation_eligible": false,
    "status": "Active"
  }

KEY FEATURES:
  - Struct-tag validation (go-playground/validator) plus cross-field rules
  - Every problem reported at once as a generic.ValidationError
  - Useful life, method and IT rate default from the category masters
  - "Both" expands to every law

USAGE:
  f := factory.NewAssetFactory()
  asset, err := f.ParseAsset(jsonString)
  schedules := factory.NewEngine().Compute(asset, generic.DefaultConfig())

SEE ALSO:
  - factory/engine.go: Calculator fan-out
  - companiesact/categories.go, incometax/categories.go: Category masters
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/asset-engine/companiesact"
	"github.com/warp/asset-engine/generic"
	"github.com/warp/asset-engine/incometax"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// AssetJSON is the wire representation of an asset.
type AssetJSON struct {
	ID                 string  `json:"id,omitempty" validate:"omitempty,max=64"`
	Name               string  `json:"name" validate:"required,max=200"`
	CategoryName       string  `json:"category_name" validate:"required,max=100"`
	Location           string  `json:"location" validate:"max=100"`
	Department         string  `json:"department" validate:"max=100"`
	PurchaseDate       string  `json:"purchase_date" validate:"required,datetime=2006-01-02"`
	CapitalizationDate string  `json:"capitalization_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PurchaseValue      float64 `json:"purchase_value" validate:"gt=0"`

	UsedFor []string `json:"used_for" validate:"required,min=1,dive,oneof='Companies Act' 'IT Act' Both"`

	UsefulLifeYears         int      `json:"useful_life_years,omitempty" validate:"gte=0,lte=100"`
	ResidualValuePercent    *float64 `json:"residual_value_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	DepreciationMethod      string   `json:"depreciation_method,omitempty" validate:"omitempty,oneof=SLM WDV"`
	CompaniesActRatePercent *float64 `json:"companies_act_rate_percent,omitempty" validate:"omitempty,gt=0,lte=100"`
	MultiShift              int      `json:"multi_shift,omitempty" validate:"omitempty,oneof=1 2 3"`

	DepreciationRatePercent        float64 `json:"depreciation_rate_percent,omitempty" validate:"gte=0,lte=100"`
	AdditionalDepreciationEligible bool    `json:"additional_depreciation_eligible,omitempty"`

	Status        string   `json:"status,omitempty" validate:"omitempty,oneof=Active Disposed"`
	DisposalDate  string   `json:"disposal_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DisposalValue *float64 `json:"disposal_value,omitempty" validate:"omitempty,gte=0"`

	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// =============================================================================
// ASSET FACTORY
// =============================================================================

// AssetFactory converts and validates JSON assets.
type AssetFactory struct {
	validate *validator.Validate
	newID    func() string
}

// NewAssetFactory creates a factory that assigns random UUIDs to new assets.
func NewAssetFactory() *AssetFactory {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names, not Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &AssetFactory{validate: v, newID: uuid.NewString}
}

// ParseAsset parses a JSON string into a validated Asset.
func (f *AssetFactory) ParseAsset(jsonStr string) (generic.Asset, error) {
	var aj AssetJSON
	if err := json.Unmarshal([]byte(jsonStr), &aj); err != nil {
		return generic.Asset{}, fmt.Errorf("%w: failed to parse asset JSON: %v", generic.ErrInvalidAsset, err)
	}
	return f.FromJSON(aj)
}

// FromJSON validates aj, fills category defaults and converts it to an Asset.
// An empty ID is replaced with a fresh UUID.
func (f *AssetFactory) FromJSON(aj AssetJSON) (generic.Asset, error) {
	if err := f.Validate(aj); err != nil {
		return generic.Asset{}, err
	}

	laws, _ := ParseLaws(aj.UsedFor)
	purchase, _ := generic.ParseDate(aj.PurchaseDate)

	asset := generic.Asset{
		ID:                             generic.AssetID(aj.ID),
		Name:                           strings.TrimSpace(aj.Name),
		Category:                       strings.TrimSpace(aj.CategoryName),
		Location:                       strings.TrimSpace(aj.Location),
		Department:                     strings.TrimSpace(aj.Department),
		PurchaseDate:                   purchase,
		CapitalizationDate:             purchase,
		OriginalCost:                   generic.NewMoney(aj.PurchaseValue),
		UsefulLifeYears:                aj.UsefulLifeYears,
		Method:                         generic.Method(aj.DepreciationMethod),
		MultiShift:                     aj.MultiShift,
		DepreciationRatePercent:        decimal.NewFromFloat(aj.DepreciationRatePercent),
		AdditionalDepreciationEligible: aj.AdditionalDepreciationEligible,
		Laws:                           laws,
		Status:                         generic.StatusActive,
	}
	if asset.ID == "" {
		asset.ID = generic.AssetID(f.newID())
	}
	if aj.CapitalizationDate != "" {
		asset.CapitalizationDate, _ = generic.ParseDate(aj.CapitalizationDate)
	}
	if asset.MultiShift == 0 {
		asset.MultiShift = 1
	}
	if aj.ResidualValuePercent != nil {
		pct := decimal.NewFromFloat(*aj.ResidualValuePercent)
		asset.ResidualValuePercent = &pct
	}
	if aj.CompaniesActRatePercent != nil {
		pct := decimal.NewFromFloat(*aj.CompaniesActRatePercent)
		asset.CompaniesActRatePercent = &pct
	}
	if aj.Status != "" {
		asset.Status = generic.AssetStatus(aj.Status)
	}
	if aj.DisposalDate != "" {
		d, _ := generic.ParseDate(aj.DisposalDate)
		asset.DisposalDate = &d
	}
	if aj.DisposalValue != nil {
		v := generic.NewMoney(*aj.DisposalValue)
		asset.DisposalValue = &v
	}

	ApplyCategoryDefaults(&asset)
	return asset, nil
}

// ToJSON converts an Asset to its wire form.
func (f *AssetFactory) ToJSON(asset generic.Asset) AssetJSON {
	aj := AssetJSON{
		ID:                             string(asset.ID),
		Name:                           asset.Name,
		CategoryName:                   asset.Category,
		Location:                       asset.Location,
		Department:                     asset.Department,
		PurchaseDate:                   asset.PurchaseDate.String(),
		CapitalizationDate:             asset.CapitalizationDate.String(),
		PurchaseValue:                  asset.OriginalCost.Float64(),
		UsefulLifeYears:                asset.UsefulLifeYears,
		DepreciationMethod:             string(asset.Method),
		MultiShift:                     asset.MultiShift,
		DepreciationRatePercent:        asset.DepreciationRatePercent.InexactFloat64(),
		AdditionalDepreciationEligible: asset.AdditionalDepreciationEligible,
		Status:                         string(asset.Status),
	}
	for _, l := range asset.Laws {
		aj.UsedFor = append(aj.UsedFor, string(l))
	}
	if asset.ResidualValuePercent != nil {
		v := asset.ResidualValuePercent.InexactFloat64()
		aj.ResidualValuePercent = &v
	}
	if asset.CompaniesActRatePercent != nil {
		v := asset.CompaniesActRatePercent.InexactFloat64()
		aj.CompaniesActRatePercent = &v
	}
	if asset.DisposalDate != nil {
		aj.DisposalDate = asset.DisposalDate.String()
	}
	if asset.DisposalValue != nil {
		v := asset.DisposalValue.Float64()
		aj.DisposalValue = &v
	}
	if !asset.CreatedAt.IsZero() {
		aj.CreatedAt = asset.CreatedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	if !asset.UpdatedAt.IsZero() {
		aj.UpdatedAt = asset.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return aj
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate runs struct-tag checks and the cross-field rules. All problems are
// collected into one *generic.ValidationError.
func (f *AssetFactory) Validate(aj AssetJSON) error {
	verr := &generic.ValidationError{}

	if err := f.validate.Struct(aj); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %v", generic.ErrInvalidAsset, err)
		}
		for _, fe := range fieldErrs {
			verr.Add(fieldName(fe), tagMessage(fe))
		}
	}

	laws, err := ParseLaws(aj.UsedFor)
	if err != nil && len(aj.UsedFor) > 0 && !verr.Has("used_for") {
		verr.Add("used_for", err.Error())
	}

	purchase, perr := generic.ParseDate(aj.PurchaseDate)
	if perr == nil && aj.CapitalizationDate != "" {
		if capDate, err := generic.ParseDate(aj.CapitalizationDate); err == nil && capDate.Before(purchase) {
			verr.Add("capitalization_date", "must not be before purchase date")
		}
	}

	// Category masters may fill the law-specific fields the form left blank.
	if containsLaw(laws, generic.LawCompaniesAct) && aj.UsefulLifeYears <= 0 {
		if _, ok := companiesact.LookupCategory(aj.CategoryName); !ok {
			verr.Add("useful_life_years", "useful life is required for Companies Act")
		}
	}
	if containsLaw(laws, generic.LawITAct) && aj.DepreciationRatePercent <= 0 {
		if _, ok := incometax.LookupCategory(aj.CategoryName); !ok {
			verr.Add("depreciation_rate_percent", "depreciation rate is required for IT Act")
		}
	}

	if aj.Status == string(generic.StatusDisposed) && aj.DisposalDate == "" {
		verr.Add("disposal_date", "disposal date is required for disposed assets")
	}
	if aj.DisposalDate != "" && perr == nil {
		if d, err := generic.ParseDate(aj.DisposalDate); err == nil && d.Before(purchase) {
			verr.Add("disposal_date", "must not be before purchase date")
		}
	}

	return verr.OrNil()
}

func fieldName(fe validator.FieldError) string {
	// Namespace is "AssetJSON.used_for[0]"; keep the field part only.
	if i := strings.Index(fe.Field(), "["); i > 0 {
		return fe.Field()[:i]
	}
	return fe.Field()
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "select at least one depreciation act"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "datetime":
		return "must be a date formatted YYYY-MM-DD"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

// ParseLaws maps wire law names to generic.Law, expanding "Both". Duplicates
// are dropped and the result follows generic.AllLaws order.
func ParseLaws(names []string) ([]generic.Law, error) {
	want := make(map[generic.Law]bool)
	for _, n := range names {
		switch strings.TrimSpace(n) {
		case "Both", "both":
			for _, l := range generic.AllLaws {
				want[l] = true
			}
		case string(generic.LawCompaniesAct):
			want[generic.LawCompaniesAct] = true
		case string(generic.LawITAct):
			want[generic.LawITAct] = true
		default:
			return nil, fmt.Errorf("%w: %q", generic.ErrUnknownLaw, n)
		}
	}
	var laws []generic.Law
	for _, l := range generic.AllLaws {
		if want[l] {
			laws = append(laws, l)
		}
	}
	return laws, nil
}

// ParseLaw parses a single law name (query parameters).
func ParseLaw(name string) (generic.Law, error) {
	laws, err := ParseLaws([]string{name})
	if err != nil {
		return "", err
	}
	if len(laws) != 1 {
		return "", fmt.Errorf("%w: %q names more than one law", generic.ErrUnknownLaw, name)
	}
	return laws[0], nil
}

// ApplyCategoryDefaults fills useful life, method and IT rate from the
// category masters when the asset leaves them unset.
func ApplyCategoryDefaults(asset *generic.Asset) {
	if asset.UsedFor(generic.LawCompaniesAct) {
		if c, ok := companiesact.LookupCategory(asset.Category); ok {
			if asset.UsefulLifeYears <= 0 {
				asset.UsefulLifeYears = c.UsefulLife
			}
			if asset.Method == "" {
				asset.Method = c.Method
			}
		}
	}
	if asset.UsedFor(generic.LawITAct) && !asset.DepreciationRatePercent.IsPositive() {
		if c, ok := incometax.LookupCategory(asset.Category); ok {
			asset.DepreciationRatePercent = c.RatePercent
		}
	}
}

func containsLaw(laws []generic.Law, law generic.Law) bool {
	for _, l := range laws {
		if l == law {
			return true
		}
	}
	return false
}
