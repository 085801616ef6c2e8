package config

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/asset-engine/generic"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"PORT", "DATABASE_URL", "SQLITE_PATH", "ENVIRONMENT", "REFRESH_INTERVAL_MINUTES",
		"FY_START_MONTH", "FY_START_DAY", "CURRENCY_SYMBOL", "DEFAULT_RESIDUAL_PERCENT", "PRORATA_CONVENTION",
	} {
		t.Setenv(key, "")
	}
}

func TestParse_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := parse(nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "assets.db", cfg.SQLitePath)
	assert.False(t, cfg.UsePostgres())
	assert.Equal(t, time.Hour, cfg.RefreshInterval)

	ec, err := cfg.EngineConfig()
	require.NoError(t, err)
	assert.Equal(t, generic.IndianFiscalYear, ec.Calendar)
	assert.Equal(t, generic.ProRataDays, ec.ProRata)
	assert.True(t, ec.DefaultResidualPercent.Equal(decimal.NewFromInt(5)))
}

func TestParse_EnvironmentThenFlags(t *testing.T) {
	clearEnv(t)
	// GIVEN environment overrides
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/assets?sslmode=disable")
	t.Setenv("REFRESH_INTERVAL_MINUTES", "15")
	t.Setenv("FY_START_MONTH", "1")
	t.Setenv("CURRENCY_SYMBOL", "$")
	t.Setenv("DEFAULT_RESIDUAL_PERCENT", "0")
	t.Setenv("PRORATA_CONVENTION", "months")

	// WHEN a flag also sets the port
	cfg, err := parse([]string{"-port", "3000"})
	require.NoError(t, err)

	// THEN the flag wins and the env fills the rest
	assert.Equal(t, 3000, cfg.Port)
	assert.True(t, cfg.UsePostgres())
	assert.Equal(t, 15*time.Minute, cfg.RefreshInterval)

	ec, err := cfg.EngineConfig()
	require.NoError(t, err)
	assert.True(t, ec.Calendar.IsCalendarYear())
	assert.Equal(t, generic.ProRataMonths, ec.ProRata)
	assert.Equal(t, "$", ec.CurrencySymbol)
	assert.True(t, ec.DefaultResidualPercent.IsZero())
}

func TestParse_InvalidIntFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "eighty")

	cfg, err := parse(nil)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
}

func TestParse_RejectsBadEngineSettings(t *testing.T) {
	cases := map[string][2]string{
		"month":      {"FY_START_MONTH", "13"},
		"day":        {"FY_START_DAY", "31"},
		"residual":   {"DEFAULT_RESIDUAL_PERCENT", "abc"},
		"over 100":   {"DEFAULT_RESIDUAL_PERCENT", "150"},
		"convention": {"PRORATA_CONVENTION", "weeks"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			_, err := parse(nil)
			assert.True(t, errors.Is(err, generic.ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestParse_UnknownFlag(t *testing.T) {
	clearEnv(t)
	_, err := parse([]string{"-nope"})
	assert.Error(t, err)
}
