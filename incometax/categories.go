package incometax

import "github.com/shopspring/decimal"

// =============================================================================
// BLOCK-OF-ASSETS RATE MASTER
// =============================================================================

// Category is an Income Tax Act block with its statutory WDV rate.
type Category struct {
	Name        string
	RatePercent decimal.Decimal
	// Indicative life, shown alongside the rate in the category picker.
	UsefulLife int
}

var Categories = []Category{
	{Name: "Buildings (Residential)", RatePercent: decimal.NewFromInt(5), UsefulLife: 20},
	{Name: "Buildings (Commercial)", RatePercent: decimal.NewFromInt(10), UsefulLife: 10},
	{Name: "Furniture & Fittings", RatePercent: decimal.NewFromInt(10), UsefulLife: 10},
	{Name: "Plant & Machinery (General)", RatePercent: decimal.NewFromInt(15), UsefulLife: 7},
	{Name: "Motor Cars (non-commercial)", RatePercent: decimal.NewFromInt(15), UsefulLife: 7},
	{Name: "Computers & Software", RatePercent: decimal.NewFromInt(40), UsefulLife: 3},
	{Name: "Books (Professionals)", RatePercent: decimal.NewFromInt(60), UsefulLife: 2},
}

// LookupCategory finds a block by exact name.
func LookupCategory(name string) (Category, bool) {
	for _, c := range Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}
