/*
Package sqlite provides a SQLite-backed implementation of generic.Store.

PURPOSE:
  Persists asset records, the schedule cache and the settings row. This is
  the default store for a single-node deployment; store/postgres implements
  the same interface for a shared database.

INTERFACES IMPLEMENTED:
  generic.AssetStore:    Asset CRUD
  generic.ScheduleCache: Per-year schedule rows
  generic.SettingsStore: The persisted generic.Config

CACHE SEMANTICS:
  schedule_entries is never authoritative. ReplaceSchedules deletes and
  re-inserts an asset's rows in one transaction; deleting the asset
  cascades to its cached rows.

KEY TABLES:
  assets:           One row per fixed asset
  schedule_cache:   Marks an asset's schedules as cached, with totals per law
  schedule_entries: One row per (asset, law, year)
  settings:         Key/value JSON settings

INDEXES:
  - idx_assets_purchase_date: Register ordering and date-range filters
  - idx_assets_department / idx_assets_location: Report filters

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  the schedule refresher's writes.

USAGE:
  store, err := sqlite.New("./data/assets.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - generic/store.go: Interface definitions
  - store/sqlcodec/codec.go: Column encoding shared with PostgreSQL
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/asset-engine/generic"
	"github.com/warp/asset-engine/store/sqlcodec"
)

// Store implements generic.Store using SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

var _ generic.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection (health endpoint).
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		purchase_date TEXT NOT NULL,
		capitalization_date TEXT NOT NULL,
		original_cost TEXT NOT NULL,
		useful_life_years INTEGER NOT NULL DEFAULT 0,
		residual_value_percent TEXT,
		method TEXT NOT NULL DEFAULT '',
		companies_act_rate_percent TEXT,
		multi_shift INTEGER NOT NULL DEFAULT 1,
		depreciation_rate_percent TEXT NOT NULL DEFAULT '0',
		additional_depreciation_eligible BOOLEAN NOT NULL DEFAULT FALSE,
		laws TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'Active',
		disposal_date TEXT,
		disposal_value TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assets_purchase_date
		ON assets(purchase_date, name);
	CREATE INDEX IF NOT EXISTS idx_assets_department
		ON assets(department);
	CREATE INDEX IF NOT EXISTS idx_assets_location
		ON assets(location);

	-- One row per cached schedule; an asset with no rows is uncached
	CREATE TABLE IF NOT EXISTS schedule_cache (
		asset_id TEXT NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
		law TEXT NOT NULL,
		total_depreciation TEXT NOT NULL,
		current_wdv TEXT NOT NULL,
		computed_at TEXT NOT NULL,
		PRIMARY KEY (asset_id, law)
	);

	CREATE TABLE IF NOT EXISTS schedule_entries (
		asset_id TEXT NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
		law TEXT NOT NULL,
		year_index INTEGER NOT NULL,
		fiscal_year_start TEXT NOT NULL,
		fiscal_year_end TEXT NOT NULL,
		label TEXT NOT NULL,
		opening_value TEXT NOT NULL,
		depreciation TEXT NOT NULL,
		additional_depreciation TEXT NOT NULL,
		closing_value TEXT NOT NULL,
		accumulated_depreciation TEXT NOT NULL,
		is_pro_rata BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (asset_id, law, year_index)
	);

	-- Marks assets whose schedule set (possibly empty) has been computed
	CREATE TABLE IF NOT EXISTS schedule_cache_state (
		asset_id TEXT PRIMARY KEY REFERENCES assets(id) ON DELETE CASCADE,
		computed_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ASSET STORE (generic.AssetStore interface)
// =============================================================================

func (s *Store) Create(ctx context.Context, asset generic.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = now
	}
	asset.UpdatedAt = now

	query := fmt.Sprintf("INSERT INTO assets (%s) VALUES (%s)",
		strings.Join(sqlcodec.AssetColumns, ", "), placeholders(len(sqlcodec.AssetColumns)))

	if _, err := s.db.ExecContext(ctx, query, sqlcodec.AssetArgs(asset)...); err != nil {
		if isUniqueConstraintError(err) {
			return generic.ErrDuplicateAsset
		}
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, asset generic.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset.UpdatedAt = s.now().UTC()

	// created_at is kept from the existing row.
	var sets []string
	var args []any
	values := sqlcodec.AssetArgs(asset)
	for i, col := range sqlcodec.AssetColumns {
		if col == "id" || col == "created_at" {
			continue
		}
		sets = append(sets, col+" = ?")
		args = append(args, values[i])
	}
	args = append(args, string(asset.ID))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE assets SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return generic.ErrAssetNotFound
	}

	// Cached schedules were computed from the old row.
	for _, table := range []string{"schedule_entries", "schedule_cache", "schedule_cache_state"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE asset_id = ?", string(asset.ID)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (s *Store) Get(ctx context.Context, id generic.AssetID) (generic.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+strings.Join(sqlcodec.AssetColumns, ", ")+" FROM assets WHERE id = ?", string(id))
	a, err := sqlcodec.ScanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return generic.Asset{}, generic.ErrAssetNotFound
	}
	if err != nil {
		return generic.Asset{}, fmt.Errorf("failed to get asset: %w", err)
	}
	return a, nil
}

func (s *Store) List(ctx context.Context, filter generic.AssetFilter) ([]generic.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var where []string
	var args []any
	if filter.Department != "" {
		where = append(where, "department = ?")
		args = append(args, filter.Department)
	}
	if filter.Location != "" {
		where = append(where, "location = ?")
		args = append(args, filter.Location)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Law != "" {
		where = append(where, "laws LIKE ?")
		args = append(args, sqlcodec.LawPattern(filter.Law))
	}
	if filter.From != nil {
		where = append(where, "purchase_date >= ?")
		args = append(args, filter.From.String())
	}
	if filter.To != nil {
		where = append(where, "purchase_date <= ?")
		args = append(args, filter.To.String())
	}

	query := "SELECT " + strings.Join(sqlcodec.AssetColumns, ", ") + " FROM assets"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY purchase_date ASC, name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []generic.Asset
	for rows.Next() {
		a, err := sqlcodec.ScanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id generic.AssetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM assets WHERE id = ?", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return generic.ErrAssetNotFound
	}
	return nil
}

// =============================================================================
// SCHEDULE CACHE (generic.ScheduleCache interface)
// =============================================================================

func (s *Store) ReplaceSchedules(ctx context.Context, id generic.AssetID, schedules []generic.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"schedule_entries", "schedule_cache", "schedule_cache_state"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE asset_id = ?", string(id)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	computedAt := sqlcodec.FormatTimestamp(s.now())
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schedule_cache_state (asset_id, computed_at) VALUES (?, ?)", string(id), computedAt); err != nil {
		if isForeignKeyError(err) {
			return generic.ErrAssetNotFound
		}
		return fmt.Errorf("failed to mark cache: %w", err)
	}

	entryInsert := fmt.Sprintf("INSERT INTO schedule_entries (asset_id, law, %s) VALUES (?, ?, %s)",
		strings.Join(sqlcodec.EntryColumns, ", "), placeholders(len(sqlcodec.EntryColumns)))

	for _, sched := range schedules {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schedule_cache (asset_id, law, total_depreciation, current_wdv, computed_at) VALUES (?, ?, ?, ?, ?)",
			string(id), string(sched.Law), sched.TotalDepreciation.String(), sched.CurrentWDV.String(), computedAt); err != nil {
			return fmt.Errorf("failed to cache schedule: %w", err)
		}
		for _, e := range sched.Entries {
			args := append([]any{string(id), string(sched.Law)}, sqlcodec.EntryArgs(e)...)
			if _, err := tx.ExecContext(ctx, entryInsert, args...); err != nil {
				return fmt.Errorf("failed to cache schedule entry: %w", err)
			}
		}
	}

	return tx.Commit()
}

func (s *Store) LoadSchedules(ctx context.Context, id generic.AssetID) ([]generic.Schedule, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var computedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT computed_at FROM schedule_cache_state WHERE asset_id = ?", string(id)).Scan(&computedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache state: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT law, total_depreciation, current_wdv FROM schedule_cache WHERE asset_id = ?", string(id))
	if err != nil {
		return nil, false, fmt.Errorf("failed to load cached schedules: %w", err)
	}
	var schedules []generic.Schedule
	for rows.Next() {
		var law, total, wdv string
		if err := rows.Scan(&law, &total, &wdv); err != nil {
			rows.Close()
			return nil, false, err
		}
		schedules = append(schedules, generic.Schedule{
			Law:               generic.Law(law),
			AssetID:           id,
			TotalDepreciation: generic.NewMoneyFromDecimal(generic.MustParseDecimal(total)),
			CurrentWDV:        generic.NewMoneyFromDecimal(generic.MustParseDecimal(wdv)),
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	sortByLaw(schedules)

	entryQuery := "SELECT " + strings.Join(sqlcodec.EntryColumns, ", ") +
		" FROM schedule_entries WHERE asset_id = ? AND law = ? ORDER BY year_index ASC"
	for i := range schedules {
		entries, err := s.queryEntries(ctx, entryQuery, string(id), string(schedules[i].Law))
		if err != nil {
			return nil, false, err
		}
		schedules[i].Entries = entries
	}
	return schedules, true, nil
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]generic.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load cached entries: %w", err)
	}
	defer rows.Close()

	var entries []generic.Entry
	for rows.Next() {
		e, err := sqlcodec.ScanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// SETTINGS (generic.SettingsStore interface)
// =============================================================================

func (s *Store) LoadConfig(ctx context.Context) (generic.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value_json FROM settings WHERE key = ?", sqlcodec.SettingsKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return generic.DefaultConfig(), nil
	}
	if err != nil {
		return generic.Config{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return sqlcodec.DecodeConfig(value)
}

func (s *Store) SaveConfig(ctx context.Context, cfg generic.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	value, err := sqlcodec.EncodeConfig(cfg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value_json, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value_json = excluded.value_json, updated_at = excluded.updated_at`,
		sqlcodec.SettingsKey, value, sqlcodec.FormatTimestamp(s.now()))
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all asset data (for testing/demo). Settings are kept.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"schedule_entries", "schedule_cache", "schedule_cache_state", "assets"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func sortByLaw(schedules []generic.Schedule) {
	rank := func(l generic.Law) int {
		for i, law := range generic.AllLaws {
			if law == l {
				return i
			}
		}
		return len(generic.AllLaws)
	}
	for i := 1; i < len(schedules); i++ {
		for j := i; j > 0 && rank(schedules[j].Law) < rank(schedules[j-1].Law); j-- {
			schedules[j], schedules[j-1] = schedules[j-1], schedules[j]
		}
	}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
