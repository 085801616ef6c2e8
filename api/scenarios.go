/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built registers that populate the database with realistic
	assets for demos. Each scenario highlights specific engine behavior.

AVAILABLE SCENARIOS:

	manufacturing-plant: Buildings, machinery and vehicles under both laws,
	                     one machine on triple shift
	it-office:           Servers and laptops bought late in the year
	                     (IT Act half-year rule, additional depreciation)
	disposals:           Assets sold at a gain and at a loss
	calendar-year:       A January-December book with month-based pro-rata

HOW SCENARIOS WORK:
 1. Build every asset through the same factory the API uses
 2. Swap register and settings (previous state put back on failure)
 3. Refresh the schedule cache

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "manufacturing-plant"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Shared helpers
  - factory/asset.go: AssetJSON definitions
  - backup.go: replaceRegister, the rollback both loaders share
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/warp/asset-engine/factory"
	"github.com/warp/asset-engine/generic"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	config func() generic.Config
	assets func() []factory.AssetJSON
}

func f64(v float64) *float64 { return &v }

var both = []string{"Both"}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "manufacturing-plant",
			Name:        "Manufacturing Plant",
			Description: "Factory building, machinery and vehicles under both laws; one machine on triple shift",
		},
		config: generic.DefaultConfig,
		assets: func() []factory.AssetJSON {
			return []factory.AssetJSON{
				{
					ID: "plant-building", Name: "Factory Shed, Pune", CategoryName: "Buildings (Factory)",
					Location: "Pune", Department: "Production", PurchaseDate: "2021-04-01",
					PurchaseValue: 12500000, UsedFor: []string{"Companies Act"},
				},
				{
					ID: "plant-cnc", Name: "CNC Machining Centre", CategoryName: "Plant & Machinery (General)",
					Location: "Pune", Department: "Production", PurchaseDate: "2023-06-15",
					PurchaseValue: 2400000, UsedFor: both, DepreciationMethod: "SLM",
				},
				{
					ID: "plant-press", Name: "Hydraulic Press", CategoryName: "Plant & Machinery (General)",
					Location: "Pune", Department: "Production", PurchaseDate: "2024-05-10",
					CapitalizationDate: "2024-07-01", PurchaseValue: 1800000, UsedFor: both,
					MultiShift: 3, AdditionalDepreciationEligible: true,
				},
				{
					ID: "plant-truck", Name: "Delivery Truck", CategoryName: "Motor Vehicles",
					Location: "Pune", Department: "Logistics", PurchaseDate: "2022-11-20",
					PurchaseValue: 1650000, UsedFor: both, DepreciationRatePercent: 15,
				},
			}
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "it-office",
			Name:        "IT Office",
			Description: "Servers and laptops bought late in the fiscal year; IT Act half-year rule and additional depreciation",
		},
		config: generic.DefaultConfig,
		assets: func() []factory.AssetJSON {
			return []factory.AssetJSON{
				{
					ID: "it-servers", Name: "Rack Servers", CategoryName: "Computers / Servers",
					Location: "Bengaluru", Department: "IT", PurchaseDate: "2025-01-10",
					PurchaseValue: 100000, UsedFor: both, DepreciationRatePercent: 40,
					AdditionalDepreciationEligible: true,
				},
				{
					ID: "it-laptops", Name: "Developer Laptops", CategoryName: "Computers & Software",
					Location: "Bengaluru", Department: "Engineering", PurchaseDate: "2024-10-04",
					PurchaseValue: 450000, UsedFor: []string{"IT Act"},
				},
				{
					ID: "it-furniture", Name: "Workstations", CategoryName: "Furniture & Fixtures",
					Location: "Bengaluru", Department: "Admin", PurchaseDate: "2024-04-15",
					PurchaseValue: 300000, UsedFor: both, DepreciationRatePercent: 10,
					ResidualValuePercent: f64(0),
				},
			}
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "disposals",
			Name:        "Disposals",
			Description: "Assets sold at a gain and at a loss, plus one still in use",
		},
		config: generic.DefaultConfig,
		assets: func() []factory.AssetJSON {
			return []factory.AssetJSON{
				{
					ID: "disp-car", Name: "Director's Car", CategoryName: "Motor Vehicles",
					Location: "Mumbai", Department: "Admin", PurchaseDate: "2022-04-01",
					PurchaseValue: 1200000, UsedFor: both, DepreciationRatePercent: 15,
					Status: "Disposed", DisposalDate: "2025-02-15", DisposalValue: f64(800000),
				},
				{
					ID: "disp-copier", Name: "Copier", CategoryName: "Office Equipment",
					Location: "Mumbai", Department: "Admin", PurchaseDate: "2021-08-01",
					PurchaseValue: 150000, UsedFor: []string{"Companies Act"},
					Status: "Disposed", DisposalDate: "2024-12-31", DisposalValue: f64(5000),
				},
				{
					ID: "disp-ac", Name: "Air Conditioning", CategoryName: "Plant & Machinery (General)",
					Location: "Mumbai", Department: "Facilities", PurchaseDate: "2023-04-01",
					PurchaseValue: 600000, UsedFor: both,
				},
			}
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "calendar-year",
			Name:        "Calendar-Year Book",
			Description: "January-December fiscal year with month-based pro-rata",
		},
		config: generic.CalendarYearConfig,
		assets: func() []factory.AssetJSON {
			return []factory.AssetJSON{
				{
					ID: "cal-lathe", Name: "Lathe", CategoryName: "Plant & Machinery (General)",
					Location: "Chennai", Department: "Workshop", PurchaseDate: "2024-10-01",
					PurchaseValue: 120000, UsedFor: []string{"Companies Act"},
					UsefulLifeYears: 5, DepreciationMethod: "SLM",
				},
				{
					ID: "cal-van", Name: "Service Van", CategoryName: "Motor Vehicles",
					Location: "Chennai", Department: "Service", PurchaseDate: "2024-03-01",
					PurchaseValue: 900000, UsedFor: []string{"Companies Act"},
					DepreciationMethod: "WDV",
				},
			}
		},
	},
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
		dtos[i].Assets = len(s.assets())
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	s, _ := findScenario(current)
	dto := s.ScenarioDTO
	dto.Assets = len(s.assets())
	writeJSON(w, http.StatusOK, dto)
}

// LoadScenario resets the database and loads a scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s, ok := findScenario(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	n, err := h.loadScenario(r.Context(), s)
	if err != nil {
		h.fail(w, r, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "loaded", "scenario": s.ID, "assets": n})
}

// ResetDatabase clears all assets and cached schedules.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}
	h.setScenario("")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// SCENARIO LOADER
// =============================================================================

func (h *Handler) loadScenario(ctx context.Context, s scenario) (int, error) {
	specs := s.assets()
	assets := make([]generic.Asset, len(specs))
	for i, aj := range specs {
		asset, err := h.Assets.FromJSON(aj)
		if err != nil {
			return 0, fmt.Errorf("asset %s: %w", aj.ID, err)
		}
		assets[i] = asset
	}

	if err := h.replaceRegister(ctx, s.config(), assets); err != nil {
		return 0, err
	}
	h.setScenario("")
	n, err := h.Refresher.RefreshAll(ctx)
	if err != nil {
		return 0, err
	}

	h.setScenario(s.ID)
	h.log.WithFields(logrus.Fields{"scenario": s.ID, "assets": n}).Info("scenario loaded")
	return n, nil
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
}
