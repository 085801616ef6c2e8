package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/asset-engine/factory"
	"github.com/warp/asset-engine/generic"
)

const backupVersion = "1.0"

// =============================================================================
// BACKUP / RESTORE
// =============================================================================

// ExportBackup returns settings and every asset as one JSON document.
func (h *Handler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg, err := h.Store.LoadConfig(ctx)
	if err != nil {
		h.fail(w, r, "Failed to load settings", err)
		return
	}
	assets, err := h.Store.List(ctx, generic.AssetFilter{})
	if err != nil {
		h.fail(w, r, "Failed to list assets", err)
		return
	}

	backup := BackupDTO{
		Version:    backupVersion,
		ExportDate: time.Now().UTC().Format(time.RFC3339),
		Settings:   toSettingsDTO(cfg),
		Assets:     make([]factory.AssetJSON, len(assets)),
	}
	for i, a := range assets {
		backup.Assets[i] = h.Assets.ToJSON(a)
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "asset-register-backup-"+time.Now().UTC().Format("2006-01-02-1504")+".json"))
	writeJSON(w, http.StatusOK, backup)
}

// RestoreBackup replaces all assets and settings with an export. Everything
// is validated before the store is touched.
func (h *Handler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	var backup BackupDTO
	if err := decodeJSON(r, &backup); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if backup.Version != backupVersion {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported backup version %q", backup.Version), nil)
		return
	}

	cfg, err := fromSettingsDTO(backup.Settings, generic.DefaultConfig())
	if err != nil {
		h.fail(w, r, "Invalid settings in backup", err)
		return
	}
	assets := make([]generic.Asset, len(backup.Assets))
	seen := make(map[generic.AssetID]int, len(backup.Assets))
	dups := &generic.ValidationError{}
	for i, aj := range backup.Assets {
		a, err := h.Assets.FromJSON(aj)
		if err != nil {
			h.fail(w, r, fmt.Sprintf("Invalid asset at index %d", i), err)
			return
		}
		if first, ok := seen[a.ID]; ok {
			dups.Add(fmt.Sprintf("assets[%d].id", i), fmt.Sprintf("duplicates assets[%d].id %q", first, a.ID))
		}
		seen[a.ID] = i
		assets[i] = a
	}
	if err := dups.OrNil(); err != nil {
		h.fail(w, r, "Duplicate asset IDs in backup", err)
		return
	}

	ctx := r.Context()
	if err := h.replaceRegister(ctx, cfg, assets); err != nil {
		h.fail(w, r, "Failed to restore backup", err)
		return
	}
	if _, err := h.Refresher.RefreshAll(ctx); err != nil {
		h.log.WithError(err).Warn("restore finished but schedule refresh failed")
	}

	h.setScenario("")
	writeJSON(w, http.StatusOK, map[string]any{"status": "restored", "assets": len(assets)})
}

// replaceRegister swaps the whole register and settings. When any step fails
// the previous register and settings are put back before returning.
func (h *Handler) replaceRegister(ctx context.Context, cfg generic.Config, assets []generic.Asset) error {
	oldCfg, err := h.Store.LoadConfig(ctx)
	if err != nil {
		return fmt.Errorf("snapshot settings: %w", err)
	}
	oldAssets, err := h.Store.List(ctx, generic.AssetFilter{})
	if err != nil {
		return fmt.Errorf("snapshot assets: %w", err)
	}

	err = h.writeRegister(ctx, cfg, assets)
	if err == nil {
		return nil
	}
	if rbErr := h.writeRegister(ctx, oldCfg, oldAssets); rbErr != nil {
		h.log.WithError(rbErr).Error("rollback after failed restore also failed")
		return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
	}
	if _, rbErr := h.Refresher.RefreshAll(ctx); rbErr != nil {
		h.log.WithError(rbErr).Warn("schedule refresh after rollback failed")
	}
	h.log.WithError(err).Warn("restore failed, previous register put back")
	return err
}

func (h *Handler) writeRegister(ctx context.Context, cfg generic.Config, assets []generic.Asset) error {
	if err := h.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := h.Store.SaveConfig(ctx, cfg); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	for _, a := range assets {
		if err := h.Store.Create(ctx, a); err != nil {
			return fmt.Errorf("asset %s: %w", a.ID, err)
		}
	}
	return nil
}
