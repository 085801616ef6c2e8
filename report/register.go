package report

import "github.com/warp/asset-engine/generic"

// =============================================================================
// FIXED ASSET REGISTER
// =============================================================================

type RegisterRow struct {
	Tag           generic.AssetID
	Name          string
	PurchaseDate  generic.TimePoint
	PurchaseValue generic.Money
	Location      string
	Department    string
	Category      string
	Status        generic.AssetStatus
}

type Register struct {
	Rows               []RegisterRow
	TotalPurchaseValue generic.Money
}

// BuildRegister lists assets as given. Callers filter through
// generic.AssetFilter at the store.
func BuildRegister(assets []generic.Asset) Register {
	r := Register{TotalPurchaseValue: generic.ZeroMoney()}
	for _, a := range assets {
		r.Rows = append(r.Rows, RegisterRow{
			Tag:           a.ID,
			Name:          a.Name,
			PurchaseDate:  a.PurchaseDate,
			PurchaseValue: a.OriginalCost,
			Location:      a.Location,
			Department:    a.Department,
			Category:      a.Category,
			Status:        a.Status,
		})
		r.TotalPurchaseValue = r.TotalPurchaseValue.Add(a.OriginalCost)
	}
	return r
}
