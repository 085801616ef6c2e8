// Package postgres implements generic.Store on PostgreSQL via lib/pq.
//
// The schema mirrors store/sqlite; both share column encoding through
// store/sqlcodec. Concurrency is left to the database, so unlike the SQLite
// store there is no process-level lock.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/warp/asset-engine/generic"
	"github.com/warp/asset-engine/store/sqlcodec"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Store implements generic.Store backed by PostgreSQL.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ generic.Store = (*Store)(nil)

func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Open connects, pings and migrates.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Migrate creates the schema if it doesn't exist.
func (s *Store) Migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		purchase_date TEXT NOT NULL,
		capitalization_date TEXT NOT NULL,
		original_cost NUMERIC NOT NULL,
		useful_life_years INTEGER NOT NULL DEFAULT 0,
		residual_value_percent NUMERIC,
		method TEXT NOT NULL DEFAULT '',
		companies_act_rate_percent NUMERIC,
		multi_shift INTEGER NOT NULL DEFAULT 1,
		depreciation_rate_percent NUMERIC NOT NULL DEFAULT 0,
		additional_depreciation_eligible BOOLEAN NOT NULL DEFAULT FALSE,
		laws TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'Active',
		disposal_date TEXT,
		disposal_value NUMERIC,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_assets_purchase_date ON assets(purchase_date, name);
	CREATE INDEX IF NOT EXISTS idx_assets_department ON assets(department);
	CREATE INDEX IF NOT EXISTS idx_assets_location ON assets(location);

	CREATE TABLE IF NOT EXISTS schedule_cache_state (
		asset_id TEXT PRIMARY KEY REFERENCES assets(id) ON DELETE CASCADE,
		computed_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS schedule_cache (
		asset_id TEXT NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
		law TEXT NOT NULL,
		total_depreciation NUMERIC NOT NULL,
		current_wdv NUMERIC NOT NULL,
		computed_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (asset_id, law)
	);

	CREATE TABLE IF NOT EXISTS schedule_entries (
		asset_id TEXT NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
		law TEXT NOT NULL,
		year_index INTEGER NOT NULL,
		fiscal_year_start TEXT NOT NULL,
		fiscal_year_end TEXT NOT NULL,
		label TEXT NOT NULL,
		opening_value NUMERIC NOT NULL,
		depreciation NUMERIC NOT NULL,
		additional_depreciation NUMERIC NOT NULL,
		closing_value NUMERIC NOT NULL,
		accumulated_depreciation NUMERIC NOT NULL,
		is_pro_rata BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (asset_id, law, year_index)
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value_json TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate postgres: %w", err)
	}
	return nil
}

// =============================================================================
// ASSETS
// =============================================================================

func (s *Store) Create(ctx context.Context, asset generic.Asset) error {
	now := s.now().UTC()
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = now
	}
	asset.UpdatedAt = now

	query := fmt.Sprintf("INSERT INTO assets (%s) VALUES (%s)",
		strings.Join(sqlcodec.AssetColumns, ", "), placeholders(1, len(sqlcodec.AssetColumns)))
	if _, err := s.db.ExecContext(ctx, query, sqlcodec.AssetArgs(asset)...); err != nil {
		if hasCode(err, codeUniqueViolation) {
			return generic.ErrDuplicateAsset
		}
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, asset generic.Asset) error {
	asset.UpdatedAt = s.now().UTC()

	var sets []string
	var args []any
	values := sqlcodec.AssetArgs(asset)
	for i, col := range sqlcodec.AssetColumns {
		if col == "id" || col == "created_at" {
			continue
		}
		args = append(args, values[i])
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	args = append(args, string(asset.ID))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf("UPDATE assets SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return generic.ErrAssetNotFound
	}

	// Cached schedules were computed from the old row.
	for _, table := range []string{"schedule_entries", "schedule_cache", "schedule_cache_state"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+pq.QuoteIdentifier(table)+" WHERE asset_id = $1", string(asset.ID)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (s *Store) Get(ctx context.Context, id generic.AssetID) (generic.Asset, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+selectColumns()+" FROM assets WHERE id = $1", string(id))
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
	var where []string
	var args []any
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if filter.Department != "" {
		add("department = $%d", filter.Department)
	}
	if filter.Location != "" {
		add("location = $%d", filter.Location)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.Law != "" {
		add("laws LIKE $%d", sqlcodec.LawPattern(filter.Law))
	}
	if filter.From != nil {
		add("purchase_date >= $%d", filter.From.String())
	}
	if filter.To != nil {
		add("purchase_date <= $%d", filter.To.String())
	}

	query := "SELECT " + selectColumns() + " FROM assets"
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
	res, err := s.db.ExecContext(ctx, "DELETE FROM assets WHERE id = $1", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return generic.ErrAssetNotFound
	}
	return nil
}

// =============================================================================
// SCHEDULE CACHE
// =============================================================================

func (s *Store) ReplaceSchedules(ctx context.Context, id generic.AssetID, schedules []generic.Schedule) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"schedule_entries", "schedule_cache", "schedule_cache_state"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+pq.QuoteIdentifier(table)+" WHERE asset_id = $1", string(id)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	computedAt := s.now().UTC()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schedule_cache_state (asset_id, computed_at) VALUES ($1, $2)", string(id), computedAt); err != nil {
		if hasCode(err, codeForeignKeyViolation) {
			return generic.ErrAssetNotFound
		}
		return fmt.Errorf("failed to mark cache: %w", err)
	}

	entryInsert := fmt.Sprintf("INSERT INTO schedule_entries (asset_id, law, %s) VALUES ($1, $2, %s)",
		strings.Join(sqlcodec.EntryColumns, ", "), placeholders(3, len(sqlcodec.EntryColumns)))

	for _, sched := range schedules {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schedule_cache (asset_id, law, total_depreciation, current_wdv, computed_at) VALUES ($1, $2, $3, $4, $5)",
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
	var computedAt time.Time
	err := s.db.QueryRowContext(ctx,
		"SELECT computed_at FROM schedule_cache_state WHERE asset_id = $1", string(id)).Scan(&computedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache state: %w", err)
	}

	// array_position keeps the generic.AllLaws order.
	rows, err := s.db.QueryContext(ctx, `
		SELECT law, total_depreciation::text, current_wdv::text FROM schedule_cache
		WHERE asset_id = $1
		ORDER BY array_position($2::text[], law)`,
		string(id), pq.Array(lawNames()))
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

	for i := range schedules {
		entries, err := s.loadEntries(ctx, id, schedules[i].Law)
		if err != nil {
			return nil, false, err
		}
		schedules[i].Entries = entries
	}
	return schedules, true, nil
}

func (s *Store) loadEntries(ctx context.Context, id generic.AssetID, law generic.Law) ([]generic.Entry, error) {
	cols := make([]string, len(sqlcodec.EntryColumns))
	for i, c := range sqlcodec.EntryColumns {
		cols[i] = textCast(c)
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+strings.Join(cols, ", ")+" FROM schedule_entries WHERE asset_id = $1 AND law = $2 ORDER BY year_index",
		string(id), string(law))
	if err != nil {
		return nil, fmt.Errorf("failed to load cached entries: %w", err)
	}
	defer rows.Close()

	var entries []generic.Entry
	for rows.Next() {
		e, err := sqlcodec.ScanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// SETTINGS
// =============================================================================

func (s *Store) LoadConfig(ctx context.Context) (generic.Config, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value_json FROM settings WHERE key = $1", sqlcodec.SettingsKey).Scan(&value)
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
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value_json, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value_json = EXCLUDED.value_json, updated_at = EXCLUDED.updated_at`,
		sqlcodec.SettingsKey, value, s.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Reset clears all asset data. Settings are kept.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "TRUNCATE schedule_entries, schedule_cache, schedule_cache_state, assets")
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

// placeholders renders "$from, $from+1, ..." for n parameters.
func placeholders(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(parts, ", ")
}

// numericColumns are NUMERIC in postgres and scanned back as text.
var numericColumns = map[string]bool{
	"original_cost": true, "residual_value_percent": true, "companies_act_rate_percent": true,
	"depreciation_rate_percent": true, "disposal_value": true,
	"opening_value": true, "depreciation": true, "additional_depreciation": true,
	"closing_value": true, "accumulated_depreciation": true,
}

func textCast(col string) string {
	if numericColumns[col] {
		return col + "::text"
	}
	return col
}

func selectColumns() string {
	cols := make([]string, len(sqlcodec.AssetColumns))
	for i, c := range sqlcodec.AssetColumns {
		cols[i] = textCast(c)
	}
	return strings.Join(cols, ", ")
}

func lawNames() []string {
	names := make([]string, len(generic.AllLaws))
	for i, l := range generic.AllLaws {
		names[i] = string(l)
	}
	return names
}

func hasCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == code
	}
	return false
}
