package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/asset-engine/generic"
	"github.com/warp/asset-engine/generic/store"
)

func asset(id, name string, purchased generic.TimePoint) generic.Asset {
	return generic.Asset{
		ID:           generic.AssetID(id),
		Name:         name,
		Department:   "Finance",
		Location:     "Pune",
		PurchaseDate: purchased,
		OriginalCost: generic.NewMoneyFromInt(1000),
		Laws:         []generic.Law{generic.LawCompaniesAct},
		Status:       generic.StatusActive,
	}
}

func TestMemory_CRUD(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	a := asset("a1", "Lathe", generic.NewTimePoint(2024, time.May, 1))
	require.NoError(t, m.Create(ctx, a))
	assert.True(t, errors.Is(m.Create(ctx, a), generic.ErrDuplicateAsset))

	got, err := m.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Lathe", got.Name)

	got.Name = "CNC Lathe"
	require.NoError(t, m.Update(ctx, got))
	got, _ = m.Get(ctx, "a1")
	assert.Equal(t, "CNC Lathe", got.Name)

	require.NoError(t, m.Delete(ctx, "a1"))
	_, err = m.Get(ctx, "a1")
	assert.True(t, errors.Is(err, generic.ErrAssetNotFound))
	assert.True(t, errors.Is(m.Update(ctx, a), generic.ErrAssetNotFound))
}

func TestMemory_ListOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	b := asset("b", "Bravo", generic.NewTimePoint(2024, time.June, 1))
	a := asset("a", "Alpha", generic.NewTimePoint(2024, time.June, 1))
	c := asset("c", "Charlie", generic.NewTimePoint(2023, time.January, 1))
	c.Department = "Ops"
	for _, x := range []generic.Asset{b, a, c} {
		require.NoError(t, m.Create(ctx, x))
	}

	all, err := m.List(ctx, generic.AssetFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Charlie", "Alpha", "Bravo"}, []string{all[0].Name, all[1].Name, all[2].Name})

	finance, _ := m.List(ctx, generic.AssetFilter{Department: "Finance"})
	assert.Len(t, finance, 2)

	from := generic.NewTimePoint(2024, time.January, 1)
	recent, _ := m.List(ctx, generic.AssetFilter{From: &from})
	assert.Len(t, recent, 2)

	tax, _ := m.List(ctx, generic.AssetFilter{Law: generic.LawITAct})
	assert.Empty(t, tax)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.Create(ctx, asset("a1", "Lathe", generic.NewTimePoint(2024, time.May, 1))))

	got, _ := m.Get(ctx, "a1")
	got.Laws[0] = generic.LawITAct

	again, _ := m.Get(ctx, "a1")
	assert.Equal(t, generic.LawCompaniesAct, again.Laws[0])
}

func TestMemory_ScheduleCache(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.Create(ctx, asset("a1", "Lathe", generic.NewTimePoint(2024, time.May, 1))))

	_, ok, err := m.LoadSchedules(ctx, "a1")
	require.NoError(t, err)
	assert.False(t, ok)

	s := generic.Schedule{Law: generic.LawCompaniesAct, AssetID: "a1", Entries: []generic.Entry{{YearIndex: 1}}}
	require.NoError(t, m.ReplaceSchedules(ctx, "a1", []generic.Schedule{s}))

	cached, ok, err := m.LoadSchedules(ctx, "a1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, cached, 1)

	assert.ErrorIs(t, m.ReplaceSchedules(ctx, "ghost", nil), generic.ErrAssetNotFound)

	require.NoError(t, m.Delete(ctx, "a1"))
	_, ok, _ = m.LoadSchedules(ctx, "a1")
	assert.False(t, ok, "deleting an asset drops its cache")
}

func TestMemory_UpdateDropsScheduleCache(t *testing.T) {
	// GIVEN: An asset with cached schedules
	ctx := context.Background()
	m := store.NewMemory()
	a := asset("a1", "Lathe", generic.NewTimePoint(2024, time.May, 1))
	require.NoError(t, m.Create(ctx, a))
	require.NoError(t, m.ReplaceSchedules(ctx, "a1", []generic.Schedule{{Law: generic.LawCompaniesAct, AssetID: "a1"}}))

	// WHEN: The asset is updated
	a.OriginalCost = generic.NewMoneyFromInt(2000)
	require.NoError(t, m.Update(ctx, a))

	// THEN: The old schedules are no longer served
	_, ok, err := m.LoadSchedules(ctx, "a1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_Settings(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	cfg, err := m.LoadConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, generic.DefaultConfig().Calendar, cfg.Calendar)

	cfg.DefaultResidualPercent = decimal.NewFromInt(10)
	require.NoError(t, m.SaveConfig(ctx, cfg))
	loaded, _ := m.LoadConfig(ctx)
	assert.True(t, loaded.DefaultResidualPercent.Equal(decimal.NewFromInt(10)))

	cfg.ProRata = "fortnights"
	assert.True(t, errors.Is(m.SaveConfig(ctx, cfg), generic.ErrInvalidConfig))
}

func TestMemory_Reset(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.Create(ctx, asset("a1", "Lathe", generic.NewTimePoint(2024, time.May, 1))))

	require.NoError(t, m.Reset(ctx))
	all, _ := m.List(ctx, generic.AssetFilter{})
	assert.Empty(t, all)
}
