package factory

import (
	"github.com/warp/asset-engine/companiesact"
	"github.com/warp/asset-engine/generic"
	"github.com/warp/asset-engine/incometax"
)

// =============================================================================
// ENGINE - One pure call per requested law
// =============================================================================

// Engine fans an asset out to every calculator it asks for. It holds no
// state beyond the calculator list and is safe for concurrent use.
type Engine struct {
	calculators []generic.Calculator
}

// NewEngine returns an engine wired with the Companies Act and IT Act calculators.
func NewEngine() *Engine {
	return &Engine{calculators: []generic.Calculator{
		companiesact.Calculator{},
		incometax.Calculator{},
	}}
}

// Calculator returns the calculator registered for law.
func (e *Engine) Calculator(law generic.Law) (generic.Calculator, bool) {
	for _, c := range e.calculators {
		if c.Law() == law {
			return c, true
		}
	}
	return nil, false
}

// Compute returns one schedule per law in asset.Laws, in generic.AllLaws
// order. Laws the asset lacks fields for are skipped; see Missing.
func (e *Engine) Compute(asset generic.Asset, cfg generic.Config) []generic.Schedule {
	var schedules []generic.Schedule
	for _, c := range e.calculators {
		if !asset.UsedFor(c.Law()) || !c.Applicable(asset) {
			continue
		}
		schedules = append(schedules, c.Compute(asset, cfg))
	}
	return schedules
}

// ComputeLaw computes a single law. ok is false when the asset doesn't use
// the law or lacks its required fields.
func (e *Engine) ComputeLaw(asset generic.Asset, law generic.Law, cfg generic.Config) (generic.Schedule, bool) {
	c, found := e.Calculator(law)
	if !found || !asset.UsedFor(law) || !c.Applicable(asset) {
		return generic.Schedule{}, false
	}
	return c.Compute(asset, cfg), true
}

// Missing lists the requested laws whose schedule was skipped for lack of
// required fields.
func (e *Engine) Missing(asset generic.Asset) []generic.Law {
	var missing []generic.Law
	for _, c := range e.calculators {
		if asset.UsedFor(c.Law()) && !c.Applicable(asset) {
			missing = append(missing, c.Law())
		}
	}
	return missing
}
