package companiesact

import (
	"github.com/shopspring/decimal"
	"github.com/warp/asset-engine/generic"
)

// =============================================================================
// SCHEDULE II CATEGORY MASTER
// =============================================================================

// Category is an indicative Schedule II useful life with the equivalent rate.
type Category struct {
	Name        string
	UsefulLife  int
	RatePercent decimal.Decimal
	Method      generic.Method
}

var Categories = []Category{
	{Name: "Buildings (Factory)", UsefulLife: 30, RatePercent: decimal.RequireFromString("3.17"), Method: generic.MethodSLM},
	{Name: "Buildings (Other)", UsefulLife: 60, RatePercent: decimal.RequireFromString("1.58"), Method: generic.MethodSLM},
	{Name: "Plant & Machinery (General)", UsefulLife: 15, RatePercent: decimal.RequireFromString("10"), Method: generic.MethodWDV},
	{Name: "Computers / Servers", UsefulLife: 3, RatePercent: decimal.RequireFromString("31.67"), Method: generic.MethodWDV},
	{Name: "Furniture & Fixtures", UsefulLife: 10, RatePercent: decimal.RequireFromString("9.5"), Method: generic.MethodWDV},
	{Name: "Motor Vehicles", UsefulLife: 8, RatePercent: decimal.RequireFromString("11.88"), Method: generic.MethodWDV},
	{Name: "Office Equipment", UsefulLife: 5, RatePercent: decimal.RequireFromString("19"), Method: generic.MethodWDV},
}

// LookupCategory finds a category by exact name.
func LookupCategory(name string) (Category, bool) {
	for _, c := range Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}
