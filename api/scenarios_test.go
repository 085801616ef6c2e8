package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListScenarios(t *testing.T) {
	_, router := newTestServer(t)

	list := decode[[]ScenarioDTO](t, do(t, router, http.MethodGet, "/api/scenarios", nil))
	require.Len(t, list, 4)
	assert.Equal(t, "manufacturing-plant", list[0].ID)
	assert.Equal(t, 4, list[0].Assets)
}

func TestLoadScenario_EveryScenario(t *testing.T) {
	tests := []struct {
		id      string
		assets  int
		fyMonth int
	}{
		{"manufacturing-plant", 4, 4},
		{"it-office", 3, 4},
		{"disposals", 3, 4},
		{"calendar-year", 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			// GIVEN: A server with one unrelated asset
			_, router := newTestServer(t)
			createLathe(t, router)

			// WHEN: The scenario is loaded
			rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: tt.id})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			// THEN: Only the scenario's assets remain, with its settings and warm caches
			assets := decode[[]AssetDTO](t, do(t, router, http.MethodGet, "/api/assets", nil))
			assert.Len(t, assets, tt.assets)
			for _, a := range assets {
				assert.NotEqual(t, "lathe", a.ID)
				assert.Empty(t, a.MissingLaws, a.ID)
				resp := decode[SchedulesResponse](t, do(t, router, http.MethodGet, "/api/assets/"+a.ID+"/schedules", nil))
				assert.True(t, resp.Cached, a.ID)
				assert.NotEmpty(t, resp.Schedules, a.ID)
			}

			settings := decode[SettingsDTO](t, do(t, router, http.MethodGet, "/api/settings", nil))
			assert.Equal(t, tt.fyMonth, settings.FiscalYearStartMonth)

			current := decode[ScenarioDTO](t, do(t, router, http.MethodGet, "/api/scenarios/current", nil))
			assert.Equal(t, tt.id, current.ID)
		})
	}
}

func TestLoadScenario_ITOfficeHalfYear(t *testing.T) {
	_, router := newTestServer(t)
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "it-office"}).Code)

	resp := decode[SchedulesResponse](t, do(t, router, http.MethodGet, "/api/assets/it-servers/schedules?law="+q("IT Act"), nil))
	require.Len(t, resp.Schedules, 1)
	first := resp.Schedules[0].Entries[0]
	assert.True(t, first.IsProRata)
	assert.Equal(t, "20000.00", string(first.Depreciation))
	assert.Equal(t, "10000.00", string(first.AdditionalDepreciation))
}

func TestLoadScenario_DisposalsReport(t *testing.T) {
	_, router := newTestServer(t)
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "disposals"}).Code)

	rep := decode[DisposalReportDTO](t, do(t, router, http.MethodGet, "/api/reports/disposals", nil))
	assert.Len(t, rep.Rows, 2)
	assert.Equal(t, "Total", rep.Totals.Name)
}

func TestLoadScenario_Unknown(t *testing.T) {
	_, router := newTestServer(t)
	createLathe(t, router)

	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, decode[[]AssetDTO](t, do(t, router, http.MethodGet, "/api/assets", nil)), 1)
}

func TestResetDatabase(t *testing.T) {
	// GIVEN: A loaded scenario
	_, router := newTestServer(t)
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "calendar-year"}).Code)

	// WHEN: The database is reset
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/scenarios/reset", nil).Code)

	// THEN: No assets and no current scenario; settings survive
	assert.Empty(t, decode[[]AssetDTO](t, do(t, router, http.MethodGet, "/api/assets", nil)))
	rec := do(t, router, http.MethodGet, "/api/scenarios/current", nil)
	assert.Equal(t, "null", string(trimNewline(rec.Body.Bytes())))
	assert.Equal(t, 1, decode[SettingsDTO](t, do(t, router, http.MethodGet, "/api/settings", nil)).FiscalYearStartMonth)
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}
