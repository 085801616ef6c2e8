/*
handlers_test.go - HTTP tests for the asset, schedule, report and settings endpoints

Every test drives the real router over httptest against the in-memory store.
The reference asset is a Rs 1,00,000 lathe bought Apr 1 2024: Companies Act
SLM over 5 years (19,000 a year), IT Act 15% WDV (15,000 then 12,750).
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/asset-engine/factory"
	"github.com/warp/asset-engine/generic"
	memstore "github.com/warp/asset-engine/generic/store"
	"github.com/warp/asset-engine/logging"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestServer(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	return newTestServerWith(t, memstore.NewMemory())
}

func newTestServerWith(t *testing.T, store generic.Store) (*Handler, http.Handler) {
	t.Helper()
	h := NewHandler(store, logging.Component(logging.Discard(), "api"))
	return h, NewRouter(h)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func latheJSON() factory.AssetJSON {
	return factory.AssetJSON{
		ID:                 "lathe",
		Name:               "CNC Lathe",
		CategoryName:       "Plant & Machinery (General)",
		Location:           "Pune",
		Department:         "Production",
		PurchaseDate:       "2024-04-01",
		PurchaseValue:      100000,
		UsedFor:            []string{"Both"},
		UsefulLifeYears:    5,
		DepreciationMethod: "SLM",
	}
}

func createLathe(t *testing.T, router http.Handler) AssetDTO {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/assets", latheJSON())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[AssetDTO](t, rec)
}

func q(s string) string { return url.QueryEscape(s) }

// =============================================================================
// ASSETS
// =============================================================================

func TestCreateAsset_AppliesCategoryDefaults(t *testing.T) {
	// GIVEN: A lathe without an IT Act rate
	_, router := newTestServer(t)

	// WHEN: It is created
	created := createLathe(t, router)

	// THEN: The Plant & Machinery block rate fills in and both laws apply
	assert.Equal(t, "lathe", created.ID)
	assert.Equal(t, 15.0, created.DepreciationRatePercent)
	assert.Equal(t, []string{"Companies Act", "IT Act"}, created.UsedFor)
	assert.Equal(t, "Active", created.Status)
	assert.Empty(t, created.MissingLaws)
	assert.NotEmpty(t, created.CreatedAt)
}

func TestCreateAsset_AssignsID(t *testing.T) {
	_, router := newTestServer(t)
	aj := latheJSON()
	aj.ID = ""

	rec := do(t, router, http.MethodPost, "/api/assets", aj)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, decode[AssetDTO](t, rec).ID, 36)
}

func TestCreateAsset_ValidationErrors(t *testing.T) {
	// GIVEN: An asset with no value and no applicable law
	_, router := newTestServer(t)
	body := map[string]any{"name": "Desk", "category_name": "Furniture", "purchase_date": "2024-01-01"}

	// WHEN: It is posted
	rec := do(t, router, http.MethodPost, "/api/assets", body)

	// THEN: 400 with field-level detail
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	fields := map[string]bool{}
	for _, f := range resp.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["purchase_value"], "fields: %+v", resp.Fields)
	assert.True(t, fields["used_for"], "fields: %+v", resp.Fields)
}

func TestCreateAsset_MalformedBody(t *testing.T) {
	_, router := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/assets", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAsset_DuplicateIsConflict(t *testing.T) {
	_, router := newTestServer(t)
	createLathe(t, router)

	rec := do(t, router, http.MethodPost, "/api/assets", latheJSON())
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetAsset_NotFound(t *testing.T) {
	_, router := newTestServer(t)
	rec := do(t, router, http.MethodGet, "/api/assets/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "asset not found", decode[ErrorResponse](t, rec).Details)
}

func TestListAssets_Filters(t *testing.T) {
	_, router := newTestServer(t)
	createLathe(t, router)

	desk := latheJSON()
	desk.ID, desk.Name, desk.Department = "desk", "Desk", "Admin"
	desk.UsedFor = []string{"Companies Act"}
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/assets", desk).Code)

	all := decode[[]AssetDTO](t, do(t, router, http.MethodGet, "/api/assets", nil))
	assert.Len(t, all, 2)

	admin := decode[[]AssetDTO](t, do(t, router, http.MethodGet, "/api/assets?department=Admin", nil))
	require.Len(t, admin, 1)
	assert.Equal(t, "desk", admin[0].ID)

	tax := decode[[]AssetDTO](t, do(t, router, http.MethodGet, "/api/assets?law="+q("IT Act"), nil))
	require.Len(t, tax, 1)
	assert.Equal(t, "lathe", tax[0].ID)

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/assets?status=Lost", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/assets?from=01-01-2024", nil).Code)
}

func TestUpdateAsset_KeepsCreatedAtAndRecomputes(t *testing.T) {
	// GIVEN: A stored lathe
	_, router := newTestServer(t)
	created := createLathe(t, router)

	// WHEN: Its cost is doubled
	aj := latheJSON()
	aj.ID = "ignored-body-id"
	aj.PurchaseValue = 200000
	rec := do(t, router, http.MethodPut, "/api/assets/lathe", aj)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: The path ID wins, created_at is kept and the cache is rebuilt
	updated := decode[AssetDTO](t, rec)
	assert.Equal(t, "lathe", updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	resp := decode[SchedulesResponse](t, do(t, router, http.MethodGet, "/api/assets/lathe/schedules?law="+q("Companies Act"), nil))
	require.Len(t, resp.Schedules, 1)
	assert.Equal(t, json.Number("38000.00"), resp.Schedules[0].Entries[0].Depreciation)

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodPut, "/api/assets/ghost", aj).Code)
}

func TestUpdateAsset_FailedRefreshDoesNotServeOldSchedules(t *testing.T) {
	// GIVEN: A cached lathe and a cache that stops accepting writes
	store := &flakyStore{Memory: memstore.NewMemory()}
	_, router := newTestServerWith(t, store)
	createLathe(t, router)
	store.cacheDown = true

	// WHEN: Its cost is doubled and the cache comes back
	aj := latheJSON()
	aj.PurchaseValue = 200000
	rec := do(t, router, http.MethodPut, "/api/assets/lathe", aj)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	store.cacheDown = false

	// THEN: The next read recomputes from the new cost
	resp := decode[SchedulesResponse](t, do(t, router, http.MethodGet, "/api/assets/lathe/schedules?law="+q("Companies Act"), nil))
	assert.False(t, resp.Cached)
	require.Len(t, resp.Schedules, 1)
	assert.Equal(t, json.Number("38000.00"), resp.Schedules[0].Entries[0].Depreciation)
}

func TestDeleteAsset(t *testing.T) {
	_, router := newTestServer(t)
	createLathe(t, router)

	assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, "/api/assets/lathe", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/assets/lathe", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodDelete, "/api/assets/lathe", nil).Code)
}

func TestDisposeAsset(t *testing.T) {
	// GIVEN: A stored lathe
	_, router := newTestServer(t)
	createLathe(t, router)

	// WHEN: Disposal predates purchase
	rec := do(t, router, http.MethodPost, "/api/assets/lathe/dispose", DisposeRequest{DisposalDate: "2023-01-01", DisposalValue: 1})
	// THEN: Rejected on the disposal_date field
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "disposal_date", decode[ErrorResponse](t, rec).Fields[0].Field)

	// WHEN: Disposed properly
	rec = do(t, router, http.MethodPost, "/api/assets/lathe/dispose", DisposeRequest{DisposalDate: "2025-06-30", DisposalValue: 70000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	asset := decode[AssetDTO](t, rec)
	assert.Equal(t, "Disposed", asset.Status)
	assert.Equal(t, "2025-06-30", asset.DisposalDate)
	require.NotNil(t, asset.DisposalValue)
	assert.Equal(t, 70000.0, *asset.DisposalValue)

	// THEN: A second disposal is refused
	rec = do(t, router, http.MethodPost, "/api/assets/lathe/dispose", DisposeRequest{DisposalDate: "2025-07-01", DisposalValue: 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// SCHEDULES
// =============================================================================

func TestGetSchedules_BothLaws(t *testing.T) {
	_, router := newTestServer(t)
	createLathe(t, router)

	rec := do(t, router, http.MethodGet, "/api/assets/lathe/schedules", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[SchedulesResponse](t, rec)

	assert.True(t, resp.Cached, "create warms the cache")
	require.Len(t, resp.Schedules, 2)

	ca := resp.Schedules[0]
	assert.Equal(t, "Companies Act", ca.Law)
	require.Len(t, ca.Entries, 5)
	assert.Equal(t, "FY 2024-2025", ca.Entries[0].Label)
	assert.Equal(t, json.Number("19000.00"), ca.Entries[0].Depreciation)
	assert.Equal(t, json.Number("5000.00"), ca.CurrentWDV)
	assert.Equal(t, "₹5,000", ca.CurrentWDVDisplay)

	it := resp.Schedules[1]
	assert.Equal(t, "IT Act", it.Law)
	assert.Equal(t, json.Number("15000.00"), it.Entries[0].Depreciation)
	assert.Equal(t, json.Number("12750.00"), it.Entries[1].Depreciation)
}

func TestGetSchedules_ComputesOnCacheMiss(t *testing.T) {
	// GIVEN: An asset written straight to the store, bypassing the cache
	h, router := newTestServer(t)
	asset, err := h.Assets.FromJSON(latheJSON())
	require.NoError(t, err)
	require.NoError(t, h.Store.Create(context.Background(), asset))

	// WHEN: Schedules are read twice
	first := decode[SchedulesResponse](t, do(t, router, http.MethodGet, "/api/assets/lathe/schedules", nil))
	second := decode[SchedulesResponse](t, do(t, router, http.MethodGet, "/api/assets/lathe/schedules", nil))

	// THEN: The first computes, the second is served from cache
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Schedules, second.Schedules)
}

func TestGetSchedules_ReportsMissingLaw(t *testing.T) {
	// GIVEN: An IT Act asset whose category has no block rate and no explicit rate
	h, router := newTestServer(t)
	asset, err := h.Assets.FromJSON(latheJSON())
	require.NoError(t, err)
	asset.DepreciationRatePercent = generic.MustParseDecimal("0")
	require.NoError(t, h.Store.Create(context.Background(), asset))

	resp := decode[SchedulesResponse](t, do(t, router, http.MethodGet, "/api/assets/lathe/schedules", nil))
	require.Len(t, resp.Schedules, 1)
	assert.Equal(t, []string{"IT Act"}, resp.MissingLaws)
}

func TestGetScheduleCSV(t *testing.T) {
	_, router := newTestServer(t)
	createLathe(t, router)

	rec := do(t, router, http.MethodGet, "/api/assets/lathe/schedules/csv?law="+q("IT Act"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "lathe-it-act-schedule.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Equal(t, "Year,Opening Value,Depreciation,Additional Depreciation,Closing Value", strings.TrimSpace(lines[0]))
	assert.Contains(t, rec.Body.String(), "Total Depreciation")

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/assets/lathe/schedules/csv", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/assets/lathe/schedules/csv?law=Both", nil).Code)
}

func TestExportSchedulesCSV(t *testing.T) {
	_, router := newTestServer(t)
	createLathe(t, router)

	rec := do(t, router, http.MethodGet, "/api/schedules/csv?law="+q("Companies Act"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 1+5, "header plus five Companies Act years")
	assert.True(t, strings.HasPrefix(lines[1], "CNC Lathe,FY 2024-2025,"))
}

func TestPreviewSchedules_DoesNotPersist(t *testing.T) {
	// GIVEN: Servers bought Jan 10 2025, IT Act 40% with additional depreciation
	_, router := newTestServer(t)
	aj := factory.AssetJSON{
		Name:                           "Rack Servers",
		CategoryName:                   "Computers / Servers",
		PurchaseDate:                   "2025-01-10",
		PurchaseValue:                  100000,
		UsedFor:                        []string{"IT Act"},
		DepreciationRatePercent:        40,
		AdditionalDepreciationEligible: true,
	}

	// WHEN: Previewed
	rec := do(t, router, http.MethodPost, "/api/schedules/preview", aj)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[SchedulesResponse](t, rec)

	// THEN: Half-year rule applies and nothing is stored
	require.Len(t, resp.Schedules, 1)
	first := resp.Schedules[0].Entries[0]
	assert.Equal(t, json.Number("20000.00"), first.Depreciation)
	assert.Equal(t, json.Number("10000.00"), first.AdditionalDepreciation)
	assert.Equal(t, json.Number("70000.00"), first.ClosingValue)
	assert.True(t, first.IsProRata)
	assert.False(t, resp.Cached)

	assert.Empty(t, decode[[]AssetDTO](t, do(t, router, http.MethodGet, "/api/assets", nil)))
}

// =============================================================================
// REPORTS
// =============================================================================

func TestRegisterReport(t *testing.T) {
	_, router := newTestServer(t)
	createLathe(t, router)

	reg := decode[RegisterDTO](t, do(t, router, http.MethodGet, "/api/reports/register", nil))
	require.Len(t, reg.Rows, 1)
	assert.Equal(t, "lathe", reg.Rows[0].Tag)
	assert.Equal(t, json.Number("100000.00"), reg.TotalPurchaseValue)
	assert.Equal(t, "₹1,00,000", reg.TotalDisplay)

	rec := do(t, router, http.MethodGet, "/api/reports/register?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Body.String(), "CNC Lathe")
}

func TestDepreciationReport(t *testing.T) {
	_, router := newTestServer(t)
	createLathe(t, router)

	rec := do(t, router, http.MethodGet, "/api/reports/depreciation?law="+q("Companies Act")+"&as_of=2025-06-30", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rep := decode[DepreciationReportDTO](t, rec)

	assert.Equal(t, "FY 2025-2026", rep.YearLabel)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, json.Number("19000.00"), rep.Rows[0].CurrentYearDepreciation)
	assert.Equal(t, json.Number("38000.00"), rep.Rows[0].AccumulatedDepreciation)
	assert.Equal(t, json.Number("62000.00"), rep.Rows[0].WDV)
	assert.Equal(t, "Total", rep.Totals.Name)

	it := decode[DepreciationReportDTO](t, do(t, router, http.MethodGet, "/api/reports/depreciation?law="+q("IT Act")+"&as_of=2025-06-30", nil))
	require.Len(t, it.Rows, 1)
	assert.Equal(t, json.Number("72250.00"), it.Rows[0].WDV)

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/reports/depreciation?law=GAAP", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/reports/depreciation?law="+q("IT Act")+"&as_of=yesterday", nil).Code)

	csvRec := do(t, router, http.MethodGet, "/api/reports/depreciation?law="+q("IT Act")+"&as_of=2025-06-30&format=csv", nil)
	require.Equal(t, http.StatusOK, csvRec.Code)
	assert.Contains(t, csvRec.Header().Get("Content-Disposition"), "depreciation-it-act-2025-06-30.csv")
}

func TestDisposalReport(t *testing.T) {
	_, router := newTestServer(t)
	createLathe(t, router)
	rec := do(t, router, http.MethodPost, "/api/assets/lathe/dispose", DisposeRequest{DisposalDate: "2025-06-30", DisposalValue: 70000})
	require.Equal(t, http.StatusOK, rec.Code)

	rep := decode[DisposalReportDTO](t, do(t, router, http.MethodGet, "/api/reports/disposals?from=2025-04-01&to=2026-03-31", nil))
	require.Len(t, rep.Rows, 1)
	row := rep.Rows[0]
	assert.Equal(t, "Companies Act", row.ValuedUnder)
	assert.Equal(t, json.Number("62000.00"), row.WDVAtDisposal)
	assert.Equal(t, json.Number("8000.00"), row.GainLoss)

	outside := decode[DisposalReportDTO](t, do(t, router, http.MethodGet, "/api/reports/disposals?to=2025-03-31", nil))
	assert.Empty(t, outside.Rows)
}

func TestReconciliationReport(t *testing.T) {
	_, router := newTestServer(t)
	createLathe(t, router)

	rep := decode[ReconciliationReportDTO](t, do(t, router, http.MethodGet, "/api/reports/reconciliation?as_of=2025-06-30", nil))
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, json.Number("10250.00"), rep.Rows[0].DepreciationDifference)
	assert.Equal(t, json.Number("-10250.00"), rep.Rows[0].WDVDifference)
	assert.Equal(t, json.Number("-10250.00"), rep.Totals.WDVDifference)
}

func TestDashboard(t *testing.T) {
	_, router := newTestServer(t)
	createLathe(t, router)

	d := decode[DashboardDTO](t, do(t, router, http.MethodGet, "/api/dashboard?as_of=2025-06-30", nil))
	assert.Equal(t, 1, d.TotalAssets)
	assert.Equal(t, 1, d.ActiveAssets)
	require.Len(t, d.Laws, 2)
	assert.Equal(t, json.Number("62000.00"), d.Laws[0].WDV)
	assert.Equal(t, "₹62,000", d.Laws[0].WDVDisplay)
}

// =============================================================================
// MASTERS / SETTINGS / BACKUP
// =============================================================================

func TestListCategories(t *testing.T) {
	_, router := newTestServer(t)

	all := decode[[]CategoryDTO](t, do(t, router, http.MethodGet, "/api/categories", nil))
	assert.Len(t, all, 14)

	tax := decode[[]CategoryDTO](t, do(t, router, http.MethodGet, "/api/categories?law="+q("IT Act"), nil))
	require.Len(t, tax, 7)
	for _, c := range tax {
		assert.Equal(t, "IT Act", c.Law)
		assert.Equal(t, "WDV", c.Method)
	}

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/categories?law=GAAP", nil).Code)
}

func TestSettings_UpdateRecomputesSchedules(t *testing.T) {
	// GIVEN: A lathe cached under Indian fiscal year settings
	_, router := newTestServer(t)
	createLathe(t, router)

	settings := decode[SettingsDTO](t, do(t, router, http.MethodGet, "/api/settings", nil))
	assert.Equal(t, 4, settings.FiscalYearStartMonth)
	assert.Equal(t, "days", settings.ProRataConvention)

	// WHEN: Switching to a calendar year
	settings.FiscalYearStartMonth = 1
	settings.ProRataConvention = "months"
	rec := do(t, router, http.MethodPut, "/api/settings", settings)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: Cached schedules use calendar-year labels and Apr-Dec pro-rata
	resp := decode[SchedulesResponse](t, do(t, router, http.MethodGet, "/api/assets/lathe/schedules?law="+q("Companies Act"), nil))
	require.Len(t, resp.Schedules, 1)
	assert.True(t, resp.Cached)
	first := resp.Schedules[0].Entries[0]
	assert.Equal(t, "2024", first.Label)
	assert.Equal(t, json.Number("14250.00"), first.Depreciation)
}

func TestSettings_RejectsInvalid(t *testing.T) {
	_, router := newTestServer(t)
	settings := decode[SettingsDTO](t, do(t, router, http.MethodGet, "/api/settings", nil))

	bad := settings
	bad.Grouping = "french"
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPut, "/api/settings", bad).Code)

	bad = settings
	bad.FiscalYearStartMonth = 13
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPut, "/api/settings", bad).Code)

	again := decode[SettingsDTO](t, do(t, router, http.MethodGet, "/api/settings", nil))
	assert.Equal(t, "indian", again.Grouping)
}

func TestBackup_RoundTrip(t *testing.T) {
	// GIVEN: A server with a lathe and custom settings
	_, source := newTestServer(t)
	createLathe(t, source)
	settings := decode[SettingsDTO](t, do(t, source, http.MethodGet, "/api/settings", nil))
	settings.CurrencySymbol = "Rs "
	require.Equal(t, http.StatusOK, do(t, source, http.MethodPut, "/api/settings", settings).Code)

	rec := do(t, source, http.MethodGet, "/api/backup", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	backup := decode[BackupDTO](t, rec)
	assert.Equal(t, "1.0", backup.Version)
	require.Len(t, backup.Assets, 1)

	// WHEN: Restored into an empty server
	_, target := newTestServer(t)
	rec = do(t, target, http.MethodPost, "/api/backup/restore", backup)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: Assets, settings and caches are back
	assets := decode[[]AssetDTO](t, do(t, target, http.MethodGet, "/api/assets", nil))
	require.Len(t, assets, 1)
	assert.Equal(t, "lathe", assets[0].ID)
	assert.Equal(t, "Rs ", decode[SettingsDTO](t, do(t, target, http.MethodGet, "/api/settings", nil)).CurrencySymbol)
	assert.True(t, decode[SchedulesResponse](t, do(t, target, http.MethodGet, "/api/assets/lathe/schedules", nil)).Cached)
}

func TestBackup_RejectsBadInputBeforeReset(t *testing.T) {
	_, router := newTestServer(t)
	createLathe(t, router)

	backup := decode[BackupDTO](t, do(t, router, http.MethodGet, "/api/backup", nil))
	backup.Assets[0].PurchaseValue = -1
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/backup/restore", backup).Code)

	backup.Version = "0.1"
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/backup/restore", backup).Code)

	assert.Len(t, decode[[]AssetDTO](t, do(t, router, http.MethodGet, "/api/assets", nil)), 1, "store untouched")
}

func TestBackup_RejectsDuplicateIDsBeforeReset(t *testing.T) {
	// GIVEN: A stored lathe and a backup listing the same ID twice
	_, router := newTestServer(t)
	createLathe(t, router)
	backup := decode[BackupDTO](t, do(t, router, http.MethodGet, "/api/backup", nil))
	dup := backup.Assets[0]
	dup.ID = "dup"
	backup.Assets = []factory.AssetJSON{dup, dup}

	// WHEN: It is restored
	rec := do(t, router, http.MethodPost, "/api/backup/restore", backup)

	// THEN: The second entry is named and the register is untouched
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	resp := decode[ErrorResponse](t, rec)
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "assets[1].id", resp.Fields[0].Field)

	assets := decode[[]AssetDTO](t, do(t, router, http.MethodGet, "/api/assets", nil))
	require.Len(t, assets, 1)
	assert.Equal(t, "lathe", assets[0].ID)
}

func TestBackup_FailedRestorePutsRegisterBack(t *testing.T) {
	// GIVEN: A lathe with custom settings and a store that rejects asset "b"
	store := &flakyStore{Memory: memstore.NewMemory(), failCreate: "b"}
	_, router := newTestServerWith(t, store)
	createLathe(t, router)
	settings := decode[SettingsDTO](t, do(t, router, http.MethodGet, "/api/settings", nil))
	settings.CurrencySymbol = "Rs "
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPut, "/api/settings", settings).Code)

	backup := decode[BackupDTO](t, do(t, router, http.MethodGet, "/api/backup", nil))
	a, b := backup.Assets[0], backup.Assets[0]
	a.ID, b.ID = "a", "b"
	backup.Assets = []factory.AssetJSON{a, b}
	backup.Settings.CurrencySymbol = "$"

	// WHEN: The restore fails part way through
	rec := do(t, router, http.MethodPost, "/api/backup/restore", backup)

	// THEN: The previous register, settings and cache are back
	assert.Equal(t, http.StatusInternalServerError, rec.Code, rec.Body.String())
	assets := decode[[]AssetDTO](t, do(t, router, http.MethodGet, "/api/assets", nil))
	require.Len(t, assets, 1)
	assert.Equal(t, "lathe", assets[0].ID)
	assert.Equal(t, "Rs ", decode[SettingsDTO](t, do(t, router, http.MethodGet, "/api/settings", nil)).CurrencySymbol)
	assert.True(t, decode[SchedulesResponse](t, do(t, router, http.MethodGet, "/api/assets/lathe/schedules", nil)).Cached)
}

func TestHealth(t *testing.T) {
	_, router := newTestServer(t)
	rec := do(t, router, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
