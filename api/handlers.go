/*
handlers.go - HTTP API handlers for the asset register and depreciation engine

PURPOSE:
  Exposes the engine via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to the factory, engine and report packages.

ENDPOINTS:
  Assets:
    GET    /api/assets                     List (department, location, status, law, from, to)
    POST   /api/assets                     Create from AssetJSON
    GET    /api/assets/{id}                Get one
    PUT    /api/assets/{id}                Replace
    DELETE /api/assets/{id}                Delete with cached schedules
    POST   /api/assets/{id}/dispose        Mark disposed

  Schedules:
    GET    /api/assets/{id}/schedules      Cached or freshly computed (?law=)
    GET    /api/assets/{id}/schedules/csv  One law as CSV (?law= required)
    GET    /api/schedules/csv              Every asset's schedule rows (?law=)
    POST   /api/schedules/preview          Compute without saving

  Reports (?format=csv for a download):
    GET    /api/reports/register           Fixed asset register
    GET    /api/reports/depreciation       Per law as of a date (?law=&as_of=)
    GET    /api/reports/disposals          Disposals in a range (?from=&to=)
    GET    /api/reports/reconciliation     Companies Act vs IT Act (?as_of=)
    GET    /api/dashboard                  Headline totals (?as_of=)

  Masters / Settings:
    GET    /api/categories                 Category masters (?law=)
    GET    /api/settings                   Current settings
    PUT    /api/settings                   Save settings, then refresh caches

  Backup:
    GET    /api/backup                     Export settings and assets as JSON
    POST   /api/backup/restore             Replace everything from an export

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: generic.Store (SQLite, PostgreSQL, or in-memory)
  - Assets: JSON to Asset conversion and validation
  - Engine: per-law calculators
  - Refresher: rebuilds cached schedules

  Settings are loaded from the store on every request that computes, so a
  saved change applies immediately.

ERROR HANDLING:
  Errors are returned as JSON {error, details, fields}:
  - 400: Validation errors, invalid input
  - 404: Asset not found
  - 409: Duplicate asset ID
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - backup.go: Export and restore
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/warp/asset-engine/companiesact"
	"github.com/warp/asset-engine/factory"
	"github.com/warp/asset-engine/generic"
	"github.com/warp/asset-engine/incometax"
	"github.com/warp/asset-engine/report"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     generic.Store
	Assets    *factory.AssetFactory
	Engine    *factory.Engine
	Refresher *ScheduleRefresher

	log *logrus.Entry

	mu              sync.RWMutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store generic.Store, log *logrus.Entry) *Handler {
	engine := factory.NewEngine()
	return &Handler{
		Store:     store,
		Assets:    factory.NewAssetFactory(),
		Engine:    engine,
		Refresher: NewScheduleRefresher(store, engine, log.WithField("component", "refresher")),
		log:       log,
	}
}

// =============================================================================
// ASSET HANDLERS
// =============================================================================

// ListAssets returns assets matching the query filters.
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	filter, err := assetFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	assets, err := h.Store.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "Failed to list assets", err)
		return
	}

	dtos := make([]AssetDTO, len(assets))
	for i, a := range assets {
		dtos[i] = h.toAssetDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAsset returns a single asset.
func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := h.Store.Get(r.Context(), generic.AssetID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, r, "Failed to get asset", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toAssetDTO(asset))
}

// CreateAsset validates and stores a new asset, then caches its schedules.
func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var aj factory.AssetJSON
	if err := decodeJSON(r, &aj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	asset, err := h.Assets.FromJSON(aj)
	if err != nil {
		h.fail(w, r, "Invalid asset", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Create(ctx, asset); err != nil {
		h.fail(w, r, "Failed to create asset", err)
		return
	}
	stored, err := h.Store.Get(ctx, asset.ID)
	if err != nil {
		h.fail(w, r, "Failed to reload asset", err)
		return
	}
	h.refresh(ctx, stored)

	writeJSON(w, http.StatusCreated, h.toAssetDTO(stored))
}

// UpdateAsset replaces an asset. The path ID wins over any ID in the body.
func (h *Handler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := generic.AssetID(chi.URLParam(r, "id"))

	existing, err := h.Store.Get(ctx, id)
	if err != nil {
		h.fail(w, r, "Failed to get asset", err)
		return
	}

	var aj factory.AssetJSON
	if err := decodeJSON(r, &aj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	aj.ID = string(id)

	asset, err := h.Assets.FromJSON(aj)
	if err != nil {
		h.fail(w, r, "Invalid asset", err)
		return
	}
	asset.CreatedAt = existing.CreatedAt

	if err := h.Store.Update(ctx, asset); err != nil {
		h.fail(w, r, "Failed to update asset", err)
		return
	}
	stored, err := h.Store.Get(ctx, id)
	if err != nil {
		h.fail(w, r, "Failed to reload asset", err)
		return
	}
	h.refresh(ctx, stored)

	writeJSON(w, http.StatusOK, h.toAssetDTO(stored))
}

// DeleteAsset removes an asset and its cached schedules.
func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Delete(r.Context(), generic.AssetID(chi.URLParam(r, "id"))); err != nil {
		h.fail(w, r, "Failed to delete asset", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DisposeAsset records a sale or write-off. The schedule itself is not cut;
// reports clip it at the disposal date.
func (h *Handler) DisposeAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := generic.AssetID(chi.URLParam(r, "id"))

	existing, err := h.Store.Get(ctx, id)
	if err != nil {
		h.fail(w, r, "Failed to get asset", err)
		return
	}
	if existing.Status == generic.StatusDisposed {
		h.fail(w, r, "Asset already disposed", generic.ErrAlreadyDisposed)
		return
	}

	var req DisposeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	aj := h.Assets.ToJSON(existing)
	aj.Status = string(generic.StatusDisposed)
	aj.DisposalDate = req.DisposalDate
	value := req.DisposalValue
	aj.DisposalValue = &value

	asset, err := h.Assets.FromJSON(aj)
	if err != nil {
		h.fail(w, r, "Invalid disposal", err)
		return
	}
	// Keep the stored decimal cost rather than its float round trip.
	asset.OriginalCost = existing.OriginalCost
	asset.CreatedAt = existing.CreatedAt

	if err := h.Store.Update(ctx, asset); err != nil {
		h.fail(w, r, "Failed to dispose asset", err)
		return
	}
	stored, err := h.Store.Get(ctx, id)
	if err != nil {
		h.fail(w, r, "Failed to reload asset", err)
		return
	}
	h.refresh(ctx, stored)

	writeJSON(w, http.StatusOK, h.toAssetDTO(stored))
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// GetSchedules returns cached schedules, computing and caching on a miss.
func (h *Handler) GetSchedules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	law, err := optionalLaw(r)
	if err != nil {
		h.fail(w, r, "Invalid law", err)
		return
	}

	asset, err := h.Store.Get(ctx, generic.AssetID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, r, "Failed to get asset", err)
		return
	}
	cfg, err := h.Store.LoadConfig(ctx)
	if err != nil {
		h.fail(w, r, "Failed to load settings", err)
		return
	}

	schedules, cached, err := h.Store.LoadSchedules(ctx, asset.ID)
	if err != nil {
		h.fail(w, r, "Failed to load schedules", err)
		return
	}
	if !cached {
		if schedules, err = h.Refresher.Refresh(ctx, asset, cfg); err != nil {
			h.fail(w, r, "Failed to compute schedules", err)
			return
		}
	}

	if law != "" {
		schedules = filterLaw(schedules, law)
	}

	writeJSON(w, http.StatusOK, SchedulesResponse{
		AssetID:     string(asset.ID),
		Schedules:   toScheduleDTOs(schedules, report.NewFormatter(cfg)),
		MissingLaws: lawNames(h.Engine.Missing(asset)),
		Cached:      cached,
	})
}

// GetScheduleCSV downloads one law's schedule for an asset.
func (h *Handler) GetScheduleCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	law, err := factory.ParseLaw(r.URL.Query().Get("law"))
	if err != nil {
		h.fail(w, r, "Invalid law", err)
		return
	}

	asset, err := h.Store.Get(ctx, generic.AssetID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, r, "Failed to get asset", err)
		return
	}
	cfg, err := h.Store.LoadConfig(ctx)
	if err != nil {
		h.fail(w, r, "Failed to load settings", err)
		return
	}

	schedule, ok := h.Engine.ComputeLaw(asset, law, cfg)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No %s schedule for this asset", law), nil)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteScheduleCSV(&buf, schedule); err != nil {
		h.fail(w, r, "Failed to write CSV", err)
		return
	}
	writeCSV(w, fmt.Sprintf("%s-%s-schedule.csv", asset.ID, lawSlug(law)), &buf)
}

// ExportSchedulesCSV writes every asset's schedule rows into one sheet.
func (h *Handler) ExportSchedulesCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	law, err := optionalLaw(r)
	if err != nil {
		h.fail(w, r, "Invalid law", err)
		return
	}
	cfg, err := h.Store.LoadConfig(ctx)
	if err != nil {
		h.fail(w, r, "Failed to load settings", err)
		return
	}
	assets, err := h.Store.List(ctx, generic.AssetFilter{Law: law})
	if err != nil {
		h.fail(w, r, "Failed to list assets", err)
		return
	}

	var rows []report.AssetSchedule
	for _, a := range assets {
		for _, s := range h.Engine.Compute(a, cfg) {
			if law != "" && s.Law != law {
				continue
			}
			rows = append(rows, report.AssetSchedule{Asset: a, Schedule: s})
		}
	}

	var buf bytes.Buffer
	if err := report.WriteSchedulesCSV(&buf, rows, cfg); err != nil {
		h.fail(w, r, "Failed to write CSV", err)
		return
	}
	writeCSV(w, "depreciation-schedules.csv", &buf)
}

// PreviewSchedules computes schedules for an unsaved asset.
func (h *Handler) PreviewSchedules(w http.ResponseWriter, r *http.Request) {
	var aj factory.AssetJSON
	if err := decodeJSON(r, &aj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	asset, err := h.Assets.FromJSON(aj)
	if err != nil {
		h.fail(w, r, "Invalid asset", err)
		return
	}
	cfg, err := h.Store.LoadConfig(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to load settings", err)
		return
	}

	writeJSON(w, http.StatusOK, SchedulesResponse{
		AssetID:     string(asset.ID),
		Schedules:   toScheduleDTOs(h.Engine.Compute(asset, cfg), report.NewFormatter(cfg)),
		MissingLaws: lawNames(h.Engine.Missing(asset)),
	})
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// RegisterReport lists the fixed asset register.
func (h *Handler) RegisterReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := assetFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}
	cfg, err := h.Store.LoadConfig(ctx)
	if err != nil {
		h.fail(w, r, "Failed to load settings", err)
		return
	}
	assets, err := h.Store.List(ctx, filter)
	if err != nil {
		h.fail(w, r, "Failed to list assets", err)
		return
	}

	reg := report.BuildRegister(assets)
	if wantsCSV(r) {
		h.respondCSV(w, r, "fixed-asset-register.csv", func(out io.Writer) error {
			return report.WriteRegisterCSV(out, reg)
		})
		return
	}
	writeJSON(w, http.StatusOK, toRegisterDTO(reg, report.NewFormatter(cfg)))
}

// DepreciationReport reports one law as of a date (default today).
func (h *Handler) DepreciationReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	law, err := factory.ParseLaw(r.URL.Query().Get("law"))
	if err != nil {
		h.fail(w, r, "Invalid law", err)
		return
	}
	asOf, err := dateParamOr(r, "as_of", generic.Today())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of", err)
		return
	}
	filter, err := assetFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}
	cfg, err := h.Store.LoadConfig(ctx)
	if err != nil {
		h.fail(w, r, "Failed to load settings", err)
		return
	}
	assets, err := h.Store.List(ctx, filter)
	if err != nil {
		h.fail(w, r, "Failed to list assets", err)
		return
	}

	rep, err := report.BuildDepreciationReport(ctx, h.Engine, assets, report.DepreciationRequest{
		Law:    law,
		AsOf:   asOf,
		Config: cfg,
	})
	if err != nil {
		h.fail(w, r, "Failed to build depreciation report", err)
		return
	}

	if wantsCSV(r) {
		h.respondCSV(w, r, fmt.Sprintf("depreciation-%s-%s.csv", lawSlug(law), asOf), func(out io.Writer) error {
			return report.WriteDepreciationCSV(out, rep)
		})
		return
	}
	writeJSON(w, http.StatusOK, toDepreciationReportDTO(rep))
}

// DisposalReport lists disposed assets whose disposal date is in [from, to].
func (h *Handler) DisposalReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var filter report.DisposalFilter
	var err error
	if filter.From, err = dateParam(r, "from"); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from", err)
		return
	}
	if filter.To, err = dateParam(r, "to"); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to", err)
		return
	}
	cfg, err := h.Store.LoadConfig(ctx)
	if err != nil {
		h.fail(w, r, "Failed to load settings", err)
		return
	}
	assets, err := h.Store.List(ctx, generic.AssetFilter{Status: generic.StatusDisposed})
	if err != nil {
		h.fail(w, r, "Failed to list assets", err)
		return
	}

	rep := report.BuildDisposalReport(h.Engine, assets, filter, cfg)
	if wantsCSV(r) {
		h.respondCSV(w, r, "disposals.csv", func(out io.Writer) error {
			return report.WriteDisposalCSV(out, rep)
		})
		return
	}
	writeJSON(w, http.StatusOK, toDisposalReportDTO(rep))
}

// ReconciliationReport compares both laws for assets that use both.
func (h *Handler) ReconciliationReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	asOf, err := dateParamOr(r, "as_of", generic.Today())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of", err)
		return
	}
	cfg, err := h.Store.LoadConfig(ctx)
	if err != nil {
		h.fail(w, r, "Failed to load settings", err)
		return
	}
	assets, err := h.Store.List(ctx, generic.AssetFilter{})
	if err != nil {
		h.fail(w, r, "Failed to list assets", err)
		return
	}

	rep := report.BuildReconciliationReport(h.Engine, assets, asOf, cfg)
	if wantsCSV(r) {
		h.respondCSV(w, r, fmt.Sprintf("reconciliation-%s.csv", asOf), func(out io.Writer) error {
			return report.WriteReconciliationCSV(out, rep)
		})
		return
	}
	writeJSON(w, http.StatusOK, toReconciliationReportDTO(rep))
}

// Dashboard returns headline totals as of a date (default today).
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	asOf, err := dateParamOr(r, "as_of", generic.Today())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of", err)
		return
	}
	cfg, err := h.Store.LoadConfig(ctx)
	if err != nil {
		h.fail(w, r, "Failed to load settings", err)
		return
	}
	assets, err := h.Store.List(ctx, generic.AssetFilter{})
	if err != nil {
		h.fail(w, r, "Failed to list assets", err)
		return
	}
	d := report.BuildDashboard(h.Engine, assets, asOf, cfg)
	writeJSON(w, http.StatusOK, toDashboardDTO(d, report.NewFormatter(cfg)))
}

// =============================================================================
// CATEGORY / SETTINGS HANDLERS
// =============================================================================

// ListCategories returns the category masters, optionally for one law.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	law, err := optionalLaw(r)
	if err != nil {
		h.fail(w, r, "Invalid law", err)
		return
	}

	dtos := []CategoryDTO{}
	if law == "" || law == generic.LawCompaniesAct {
		for _, c := range companiesact.Categories {
			dtos = append(dtos, CategoryDTO{
				Name:        c.Name,
				Law:         string(generic.LawCompaniesAct),
				UsefulLife:  c.UsefulLife,
				RatePercent: percent(c.RatePercent),
				Method:      string(c.Method),
			})
		}
	}
	if law == "" || law == generic.LawITAct {
		for _, c := range incometax.Categories {
			dtos = append(dtos, CategoryDTO{
				Name:        c.Name,
				Law:         string(generic.LawITAct),
				UsefulLife:  c.UsefulLife,
				RatePercent: percent(c.RatePercent),
				Method:      string(generic.MethodWDV),
			})
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSettings returns the stored settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Store.LoadConfig(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(cfg))
}

// UpdateSettings saves new settings and rebuilds every cached schedule.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	current, err := h.Store.LoadConfig(ctx)
	if err != nil {
		h.fail(w, r, "Failed to load settings", err)
		return
	}

	var dto SettingsDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	cfg, err := fromSettingsDTO(dto, current)
	if err != nil {
		h.fail(w, r, "Invalid settings", err)
		return
	}
	if err := h.Store.SaveConfig(ctx, cfg); err != nil {
		h.fail(w, r, "Failed to save settings", err)
		return
	}

	n, err := h.Refresher.RefreshAll(ctx)
	if err != nil {
		h.log.WithError(err).Warn("settings saved but schedule refresh failed")
	} else {
		h.log.WithField("assets", n).Info("settings saved, schedules refreshed")
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(cfg))
}

// Health pings the store when it supports it.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Store.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Store unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) toAssetDTO(a generic.Asset) AssetDTO {
	dto := AssetDTO{AssetJSON: h.Assets.ToJSON(a)}
	if missing := h.Engine.Missing(a); len(missing) > 0 {
		dto.MissingLaws = lawNames(missing)
	}
	return dto
}

// refresh recomputes the cache for one asset. Failures are logged only.
// Store.Update has already dropped the old entries, so a failed refresh
// leaves a miss that the next read or tick computes.
func (h *Handler) refresh(ctx context.Context, asset generic.Asset) {
	cfg, err := h.Store.LoadConfig(ctx)
	if err == nil {
		_, err = h.Refresher.Refresh(ctx, asset, cfg)
	}
	if err != nil {
		h.log.WithError(err).WithField("asset_id", asset.ID).Warn("failed to refresh schedule cache")
	}
}

// fail maps domain errors to HTTP status codes.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case generic.IsNotFound(err):
		status = http.StatusNotFound
	case generic.IsConflict(err):
		status = http.StatusConflict
	case generic.IsClientError(err):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		h.log.WithError(err).
			WithField("request_id", middleware.GetReqID(r.Context())).
			Error(message)
	}
	writeError(w, status, message, err)
}

func (h *Handler) respondCSV(w http.ResponseWriter, r *http.Request, filename string, write func(io.Writer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		h.fail(w, r, "Failed to write CSV", err)
		return
	}
	writeCSV(w, filename, &buf)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
		var verr *generic.ValidationError
		if errors.As(err, &verr) {
			resp.Fields = verr.Fields
		}
	}
	writeJSON(w, status, resp)
}

func writeCSV(w http.ResponseWriter, filename string, body *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	body.WriteTo(w)
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func wantsCSV(r *http.Request) bool {
	return r.URL.Query().Get("format") == "csv"
}

// optionalLaw parses ?law=, where empty means every law.
func optionalLaw(r *http.Request) (generic.Law, error) {
	name := r.URL.Query().Get("law")
	if name == "" {
		return "", nil
	}
	return factory.ParseLaw(name)
}

func assetFilterFromQuery(r *http.Request) (generic.AssetFilter, error) {
	q := r.URL.Query()
	f := generic.AssetFilter{
		Department: q.Get("department"),
		Location:   q.Get("location"),
	}

	switch status := generic.AssetStatus(q.Get("status")); status {
	case "", generic.StatusActive, generic.StatusDisposed:
		f.Status = status
	default:
		return f, fmt.Errorf("unknown status %q", status)
	}

	if name := q.Get("law"); name != "" {
		law, err := factory.ParseLaw(name)
		if err != nil {
			return f, err
		}
		f.Law = law
	}

	var err error
	if f.From, err = dateParam(r, "from"); err != nil {
		return f, err
	}
	if f.To, err = dateParam(r, "to"); err != nil {
		return f, err
	}
	return f, nil
}

// dateParam parses an optional YYYY-MM-DD query parameter.
func dateParam(r *http.Request, name string) (*generic.TimePoint, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	d, err := generic.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("%s must be YYYY-MM-DD: %w", name, err)
	}
	return &d, nil
}

func dateParamOr(r *http.Request, name string, fallback generic.TimePoint) (generic.TimePoint, error) {
	d, err := dateParam(r, name)
	if err != nil || d == nil {
		return fallback, err
	}
	return *d, nil
}

func filterLaw(schedules []generic.Schedule, law generic.Law) []generic.Schedule {
	var out []generic.Schedule
	for _, s := range schedules {
		if s.Law == law {
			out = append(out, s)
		}
	}
	return out
}

func lawSlug(law generic.Law) string {
	switch law {
	case generic.LawCompaniesAct:
		return "companies-act"
	case generic.LawITAct:
		return "it-act"
	default:
		return "schedule"
	}
}
