package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/asset-engine/factory"
	"github.com/warp/asset-engine/generic"
	memstore "github.com/warp/asset-engine/generic/store"
	"github.com/warp/asset-engine/logging"
)

// flakyStore injects write failures into the in-memory store.
type flakyStore struct {
	*memstore.Memory
	failFor    generic.AssetID // ReplaceSchedules fails for this asset
	failCreate generic.AssetID // Create fails for this asset
	cacheDown  bool            // ReplaceSchedules fails for every asset
}

func (s *flakyStore) ReplaceSchedules(ctx context.Context, id generic.AssetID, schedules []generic.Schedule) error {
	if s.cacheDown || id == s.failFor {
		return errors.New("disk full")
	}
	return s.Memory.ReplaceSchedules(ctx, id, schedules)
}

func (s *flakyStore) Create(ctx context.Context, asset generic.Asset) error {
	if asset.ID == s.failCreate {
		return errors.New("disk full")
	}
	return s.Memory.Create(ctx, asset)
}

// racingStore updates an asset between the refresher's compute and its
// cache write.
type racingStore struct {
	*memstore.Memory
	once bool
}

func (s *racingStore) Get(ctx context.Context, id generic.AssetID) (generic.Asset, error) {
	if !s.once {
		s.once = true
		a, err := s.Memory.Get(ctx, id)
		if err != nil {
			return a, err
		}
		a.OriginalCost = generic.NewMoneyFromInt(200000)
		if err := s.Memory.Update(ctx, a); err != nil {
			return generic.Asset{}, err
		}
	}
	return s.Memory.Get(ctx, id)
}

func seedAssets(t *testing.T, store generic.Store, ids ...string) {
	t.Helper()
	f := factory.NewAssetFactory()
	for _, id := range ids {
		aj := latheJSON()
		aj.ID = id
		a, err := f.FromJSON(aj)
		require.NoError(t, err)
		require.NoError(t, store.Create(context.Background(), a))
	}
}

func newRefresher(store generic.Store) *ScheduleRefresher {
	return NewScheduleRefresher(store, factory.NewEngine(), logging.Component(logging.Discard(), "refresher"))
}

func TestRefreshAll_CachesEveryAsset(t *testing.T) {
	// GIVEN: Two assets with no cached schedules
	store := memstore.NewMemory()
	seedAssets(t, store, "a", "b")
	sr := newRefresher(store)

	// WHEN: Refreshing everything
	n, err := sr.RefreshAll(context.Background())

	// THEN: Both are cached with both laws
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	for _, id := range []generic.AssetID{"a", "b"} {
		schedules, cached, err := store.LoadSchedules(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, cached)
		assert.Len(t, schedules, 2)
	}
}

func TestRefreshAll_SkipsFailingAsset(t *testing.T) {
	store := &flakyStore{Memory: memstore.NewMemory(), failFor: "b"}
	seedAssets(t, store, "a", "b", "c")

	n, err := newRefresher(store).RefreshAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, cached, _ := store.LoadSchedules(context.Background(), "c")
	assert.True(t, cached)
}

func TestRefreshAll_StopsOnCancelledContext(t *testing.T) {
	store := memstore.NewMemory()
	seedAssets(t, store, "a")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := newRefresher(store).RefreshAll(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
}

func TestRefresh_SkipsCacheWhenAssetChanged(t *testing.T) {
	// GIVEN: A listed asset that is updated before its schedules are written
	ctx := context.Background()
	store := &racingStore{Memory: memstore.NewMemory()}
	seedAssets(t, store, "a")
	listed, err := store.Memory.List(ctx, generic.AssetFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	// WHEN: Refreshing from the stale listing
	schedules, err := newRefresher(store).Refresh(ctx, listed[0], generic.DefaultConfig())

	// THEN: The caller still gets schedules but nothing stale is cached
	require.NoError(t, err)
	assert.Len(t, schedules, 2)
	_, cached, err := store.LoadSchedules(ctx, "a")
	require.NoError(t, err)
	assert.False(t, cached)
}

func TestRefreshAll_DoesNotCacheOverFreshUpdate(t *testing.T) {
	ctx := context.Background()
	store := &racingStore{Memory: memstore.NewMemory()}
	seedAssets(t, store, "a")

	_, err := newRefresher(store).RefreshAll(ctx)
	require.NoError(t, err)

	_, cached, _ := store.LoadSchedules(ctx, "a")
	assert.False(t, cached, "schedules for the pre-update cost must not be cached")
}

func TestRefresh_UnknownAsset(t *testing.T) {
	sr := newRefresher(memstore.NewMemory())
	a, err := factory.NewAssetFactory().FromJSON(latheJSON())
	require.NoError(t, err)

	_, err = sr.Refresh(context.Background(), a, generic.DefaultConfig())
	assert.ErrorIs(t, err, generic.ErrAssetNotFound)
}

func TestRefresher_StartRefreshesImmediately(t *testing.T) {
	// GIVEN: An uncached asset and a running refresher
	store := memstore.NewMemory()
	seedAssets(t, store, "a")
	sr := newRefresher(store)
	sr.Interval = 10 * time.Millisecond

	sr.Start()
	sr.Start()
	defer sr.Stop()

	// THEN: The cache fills without any request
	assert.Eventually(t, func() bool {
		_, cached, _ := store.LoadSchedules(context.Background(), "a")
		return cached
	}, time.Second, 5*time.Millisecond)
}

func TestRefresher_DisabledInterval(t *testing.T) {
	store := memstore.NewMemory()
	seedAssets(t, store, "a")
	sr := newRefresher(store)
	sr.Interval = 0

	sr.Start()
	sr.Stop()

	_, cached, _ := store.LoadSchedules(context.Background(), "a")
	assert.False(t, cached)
}

func TestRefresher_StopWithoutStart(t *testing.T) {
	assert.NotPanics(t, func() { newRefresher(memstore.NewMemory()).Stop() })
}
