// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/asset-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	assets    map[generic.AssetID]generic.Asset
	schedules map[generic.AssetID][]generic.Schedule
	config    *generic.Config
}

func NewMemory() *Memory {
	return &Memory{
		assets:    make(map[generic.AssetID]generic.Asset),
		schedules: make(map[generic.AssetID][]generic.Schedule),
	}
}

func (m *Memory) Create(_ context.Context, asset generic.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.assets[asset.ID]; exists {
		return generic.ErrDuplicateAsset
	}
	now := time.Now().UTC()
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = now
	}
	asset.UpdatedAt = now
	m.assets[asset.ID] = cloneAsset(asset)
	return nil
}

func (m *Memory) Update(_ context.Context, asset generic.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.assets[asset.ID]; !exists {
		return generic.ErrAssetNotFound
	}
	asset.UpdatedAt = time.Now().UTC()
	m.assets[asset.ID] = cloneAsset(asset)
	// Cached schedules were computed from the old asset.
	delete(m.schedules, asset.ID)
	return nil
}

func (m *Memory) Get(_ context.Context, id generic.AssetID) (generic.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.assets[id]
	if !ok {
		return generic.Asset{}, generic.ErrAssetNotFound
	}
	return cloneAsset(a), nil
}

func (m *Memory) List(_ context.Context, filter generic.AssetFilter) ([]generic.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]generic.Asset, 0, len(m.assets))
	for _, a := range m.assets {
		if filter.Matches(a) {
			result = append(result, cloneAsset(a))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].PurchaseDate.Equal(result[j].PurchaseDate) {
			return result[i].PurchaseDate.Before(result[j].PurchaseDate)
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (m *Memory) Delete(_ context.Context, id generic.AssetID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.assets[id]; !ok {
		return generic.ErrAssetNotFound
	}
	delete(m.assets, id)
	delete(m.schedules, id)
	return nil
}

// =============================================================================
// SCHEDULE CACHE
// =============================================================================

func (m *Memory) ReplaceSchedules(_ context.Context, id generic.AssetID, schedules []generic.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.assets[id]; !ok {
		return generic.ErrAssetNotFound
	}
	cp := make([]generic.Schedule, len(schedules))
	for i, s := range schedules {
		cp[i] = s
		cp[i].Entries = append([]generic.Entry(nil), s.Entries...)
	}
	m.schedules[id] = cp
	return nil
}

func (m *Memory) LoadSchedules(_ context.Context, id generic.AssetID) ([]generic.Schedule, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.schedules[id]
	if !ok {
		return nil, false, nil
	}
	result := make([]generic.Schedule, len(s))
	copy(result, s)
	return result, true, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (m *Memory) LoadConfig(_ context.Context) (generic.Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return generic.DefaultConfig(), nil
	}
	return *m.config, nil
}

func (m *Memory) SaveConfig(_ context.Context, cfg generic.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = &cfg
	return nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.assets = make(map[generic.AssetID]generic.Asset)
	m.schedules = make(map[generic.AssetID][]generic.Schedule)
	return nil
}

func cloneAsset(a generic.Asset) generic.Asset {
	a.Laws = append([]generic.Law(nil), a.Laws...)
	return a
}
