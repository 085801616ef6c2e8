/*
config.go - Process configuration for the server

PURPOSE:
  Collects everything the binary needs at startup: where to listen, which
  database to use, how often to refresh the schedule cache, and the seed
  values for the calculation settings.

PRECEDENCE (lowest to highest):
  1. Built-in defaults
  2. .env file (bin/.env, .env, or next to the executable)
  3. Environment variables
  4. Command-line flags

ENVIRONMENT VARIABLES:
  PORT                       HTTP port (8080)
  DATABASE_URL               PostgreSQL DSN; when set, SQLite is not used
  SQLITE_PATH                SQLite file (assets.db), ":memory:" allowed
  ENVIRONMENT                local, dev, production (local)
  REFRESH_INTERVAL_MINUTES   schedule cache refresh period, 0 disables (60)
  FY_START_MONTH             fiscal year start month 1-12 (4)
  FY_START_DAY               fiscal year start day 1-28 (1)
  CURRENCY_SYMBOL            display symbol (₹)
  DEFAULT_RESIDUAL_PERCENT   Companies Act residual default (5)
  PRORATA_CONVENTION         days or months (days)

SETTINGS:
  These values only seed generic.Config. Once settings are saved through
  the API the persisted copy wins; see api/handlers.go.
*/
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/warp/asset-engine/generic"
)

// Config holds application level configuration.
type Config struct {
	Port            int
	DatabaseURL     string
	SQLitePath      string
	Environment     string
	RefreshInterval time.Duration

	FiscalYearStartMonth   int
	FiscalYearStartDay     int
	CurrencySymbol         string
	DefaultResidualPercent string
	ProRataConvention      string
}

// UsePostgres reports whether DATABASE_URL selects PostgreSQL.
func (c Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// Load reads .env, then the environment, then args (typically os.Args[1:]).
func Load(args []string) (Config, error) {
	loadDotEnv()
	return parse(args)
}

func parse(args []string) (Config, error) {
	cfg := Config{
		Port:                   getInt("PORT", 8080),
		DatabaseURL:            getString("DATABASE_URL", ""),
		SQLitePath:             getString("SQLITE_PATH", "assets.db"),
		Environment:            getString("ENVIRONMENT", "local"),
		RefreshInterval:        getDurationMinutes("REFRESH_INTERVAL_MINUTES", 60),
		FiscalYearStartMonth:   getInt("FY_START_MONTH", 4),
		FiscalYearStartDay:     getInt("FY_START_DAY", 1),
		CurrencySymbol:         getString("CURRENCY_SYMBOL", "₹"),
		DefaultResidualPercent: getString("DEFAULT_RESIDUAL_PERCENT", "5"),
		ProRataConvention:      getString("PRORATA_CONVENTION", string(generic.ProRataDays)),
	}

	fs := flag.NewFlagSet("asset-engine", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	fs.StringVar(&cfg.SQLitePath, "db", cfg.SQLitePath, "SQLite database path (\":memory:\" for in-memory)")
	fs.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "PostgreSQL DSN (overrides -db)")
	fs.StringVar(&cfg.Environment, "env", cfg.Environment, "environment name")
	fs.DurationVar(&cfg.RefreshInterval, "refresh", cfg.RefreshInterval, "schedule cache refresh interval (0 disables)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if _, err := cfg.EngineConfig(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// EngineConfig builds the default calculation settings from the loaded values.
func (c Config) EngineConfig() (generic.Config, error) {
	ec := generic.DefaultConfig()
	if c.FiscalYearStartMonth < 1 || c.FiscalYearStartMonth > 12 {
		return generic.Config{}, fmt.Errorf("%w: FY_START_MONTH must be within 1-12", generic.ErrInvalidConfig)
	}
	if c.FiscalYearStartDay < 1 || c.FiscalYearStartDay > 28 {
		return generic.Config{}, fmt.Errorf("%w: FY_START_DAY must be within 1-28", generic.ErrInvalidConfig)
	}
	ec.Calendar = generic.FiscalCalendar{StartMonth: time.Month(c.FiscalYearStartMonth), StartDay: c.FiscalYearStartDay}

	residual, err := decimal.NewFromString(c.DefaultResidualPercent)
	if err != nil {
		return generic.Config{}, fmt.Errorf("%w: DEFAULT_RESIDUAL_PERCENT %q is not a number", generic.ErrInvalidConfig, c.DefaultResidualPercent)
	}
	ec.DefaultResidualPercent = residual
	ec.ProRata = generic.ProRataConvention(c.ProRataConvention)
	if c.CurrencySymbol != "" {
		ec.CurrencySymbol = c.CurrencySymbol
	}
	if err := ec.Validate(); err != nil {
		return generic.Config{}, err
	}
	return ec, nil
}

func loadDotEnv() {
	candidates := []string{
		filepath.Join("bin", ".env"),
		".env",
	}

	if exePath, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exePath)
		candidates = append([]string{
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "bin", ".env"),
		}, candidates...)
	}

	for _, path := range candidates {
		if err := godotenv.Load(path); err == nil {
			return
		}
	}
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			logrus.WithError(err).Warnf("invalid value for %s, using fallback %d", key, fallback)
			return fallback
		}
		return n
	}
	return fallback
}

func getDurationMinutes(key string, fallback int) time.Duration {
	return time.Duration(getInt(key, fallback)) * time.Minute
}
