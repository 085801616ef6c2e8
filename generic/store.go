/*
store.go - Persistence interfaces for assets, cached schedules and settings

PURPOSE:
  Defines the boundary between the engine and the database. The engine
  never calls these; the API and the refresher do. Any implementation
  (SQLite, PostgreSQL, in-memory) is interchangeable.

KEY INTERFACES:
  AssetStore:    CRUD for asset records
  ScheduleCache: One row per schedule year, purely a cache
  SettingsStore: The persisted Config used by the API

CACHE CONTRACT:
  Cached schedules are never authoritative. ReplaceSchedules deletes and
  re-inserts the rows for an asset atomically; a missing or stale cache is
  always repaired by recomputing from the AssetStore record.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite (default)
  - store/postgres/postgres.go: PostgreSQL
  - generic/store/memory.go: In-memory for testing

SEE ALSO:
  - api/handlers.go: Uses these interfaces
  - api/scheduler.go: Refreshes the cache in the background
*/
package generic

import "context"

// =============================================================================
// ASSET STORE
// =============================================================================

// AssetFilter narrows List results. Zero values mean "no filter".
type AssetFilter struct {
	Department string
	Location   string
	Status     AssetStatus
	Law        Law
	From       *TimePoint // purchase date lower bound (inclusive)
	To         *TimePoint // purchase date upper bound (inclusive)
}

// Matches applies the filter in memory.
func (f AssetFilter) Matches(a Asset) bool {
	if f.Department != "" && a.Department != f.Department {
		return false
	}
	if f.Location != "" && a.Location != f.Location {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.Law != "" && !a.UsedFor(f.Law) {
		return false
	}
	if f.From != nil && a.PurchaseDate.Before(*f.From) {
		return false
	}
	if f.To != nil && a.PurchaseDate.After(*f.To) {
		return false
	}
	return true
}

type AssetStore interface {
	// Create inserts a new asset. Returns ErrDuplicateAsset if the ID exists.
	Create(ctx context.Context, asset Asset) error

	// Update replaces an existing asset and drops its cached schedules.
	// Returns ErrAssetNotFound if missing.
	Update(ctx context.Context, asset Asset) error

	// Get returns ErrAssetNotFound if missing.
	Get(ctx context.Context, id AssetID) (Asset, error)

	// List returns matching assets ordered by purchase date, then name.
	List(ctx context.Context, filter AssetFilter) ([]Asset, error)

	// Delete removes the asset and its cached schedules.
	Delete(ctx context.Context, id AssetID) error
}

// =============================================================================
// SCHEDULE CACHE
// =============================================================================

type ScheduleCache interface {
	// ReplaceSchedules atomically swaps every cached schedule of an asset.
	ReplaceSchedules(ctx context.Context, id AssetID, schedules []Schedule) error

	// LoadSchedules returns cached schedules; ok is false when nothing is cached.
	LoadSchedules(ctx context.Context, id AssetID) (schedules []Schedule, ok bool, err error)
}

// =============================================================================
// SETTINGS STORE
// =============================================================================

type SettingsStore interface {
	// LoadConfig returns DefaultConfig() when nothing has been saved.
	LoadConfig(ctx context.Context) (Config, error)
	SaveConfig(ctx context.Context, cfg Config) error
}

// Store bundles everything the API needs.
type Store interface {
	AssetStore
	ScheduleCache
	SettingsStore

	// Reset clears all data (demo scenarios only).
	Reset(ctx context.Context) error
}
