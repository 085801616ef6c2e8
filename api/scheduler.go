/*
scheduler.go - Background schedule cache refresher

PURPOSE:
  Persisted schedules are a cache of what the engine computes from the
  asset record and the current settings. The refresher rebuilds that cache
  periodically so reads stay fast, and on demand after settings change.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Recomputes every asset on each tick, then ReplaceSchedules per asset
  - An asset that fails is logged and skipped; the rest still refresh
  - Interval <= 0 disables the ticker (RefreshAll still works)

USAGE:
  refresher := NewScheduleRefresher(store, engine, log)
  refresher.Start()
  // ... later
  refresher.Stop()

SEE ALSO:
  - handlers.go: Refreshes a single asset after create/update/dispose
  - generic/store.go: ScheduleCache contract
*/
package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/asset-engine/factory"
	"github.com/warp/asset-engine/generic"
)

// ScheduleRefresher keeps cached schedules in step with assets and settings.
type ScheduleRefresher struct {
	Store    generic.Store
	Engine   *factory.Engine
	Interval time.Duration

	log    *logrus.Entry
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewScheduleRefresher creates a refresher with a one hour interval.
func NewScheduleRefresher(store generic.Store, engine *factory.Engine, log *logrus.Entry) *ScheduleRefresher {
	return &ScheduleRefresher{
		Store:    store,
		Engine:   engine,
		Interval: time.Hour,
		log:      log,
	}
}

// Start begins periodic refreshes. Calling Start twice is a no-op.
func (sr *ScheduleRefresher) Start() {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	if sr.Interval <= 0 {
		sr.log.Info("schedule refresher disabled")
		return
	}
	if sr.ticker != nil {
		return
	}

	sr.ticker = time.NewTicker(sr.Interval)
	sr.stop = make(chan struct{})
	sr.wg.Add(1)
	go sr.run()

	sr.log.WithField("interval", sr.Interval.String()).Info("schedule refresher started")
}

// Stop halts the ticker and waits for an in-flight refresh to finish.
func (sr *ScheduleRefresher) Stop() {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	if sr.ticker == nil {
		return
	}
	sr.ticker.Stop()
	close(sr.stop)
	sr.wg.Wait()
	sr.ticker = nil
	sr.log.Info("schedule refresher stopped")
}

func (sr *ScheduleRefresher) run() {
	defer sr.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-sr.stop
		cancel()
	}()

	sr.tick(ctx)
	for {
		select {
		case <-sr.ticker.C:
			sr.tick(ctx)
		case <-sr.stop:
			return
		}
	}
}

func (sr *ScheduleRefresher) tick(ctx context.Context) {
	n, err := sr.RefreshAll(ctx)
	if err != nil {
		sr.log.WithError(err).Warn("schedule refresh failed")
		return
	}
	sr.log.WithField("assets", n).Debug("schedule cache refreshed")
}

// RefreshAll recomputes every asset with the stored settings and returns
// how many were refreshed.
func (sr *ScheduleRefresher) RefreshAll(ctx context.Context) (int, error) {
	cfg, err := sr.Store.LoadConfig(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load settings: %w", err)
	}
	assets, err := sr.Store.List(ctx, generic.AssetFilter{})
	if err != nil {
		return 0, fmt.Errorf("failed to list assets: %w", err)
	}

	refreshed := 0
	for _, a := range assets {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		if _, err := sr.Refresh(ctx, a, cfg); err != nil {
			sr.log.WithError(err).WithField("asset_id", a.ID).Warn("failed to refresh asset schedules")
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

// Refresh recomputes one asset and replaces its cached schedules. When the
// stored asset changed since asset was read, the schedules are returned but
// not cached.
func (sr *ScheduleRefresher) Refresh(ctx context.Context, asset generic.Asset, cfg generic.Config) ([]generic.Schedule, error) {
	schedules := sr.Engine.Compute(asset, cfg)

	current, err := sr.Store.Get(ctx, asset.ID)
	if err != nil {
		return nil, err
	}
	if !current.UpdatedAt.Equal(asset.UpdatedAt) {
		sr.log.WithField("asset_id", asset.ID).Debug("asset changed during refresh, cache left alone")
		return schedules, nil
	}

	if err := sr.Store.ReplaceSchedules(ctx, asset.ID, schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}
