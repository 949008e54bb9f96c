package compositor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultTuning(t *testing.T) {
	tun := DefaultTuning()

	if tun.ClipTileSize != 128 {
		t.Errorf("ClipTileSize = %d, want 128", tun.ClipTileSize)
	}
	if tun.ClipTilingAreaThreshold != 128*128*4 {
		t.Errorf("ClipTilingAreaThreshold = %d, want %d", tun.ClipTilingAreaThreshold, 128*128*4)
	}
	if tun.OpaqueLookbackCount != 16 {
		t.Errorf("OpaqueLookbackCount = %d, want 16", tun.OpaqueLookbackCount)
	}
	if tun.OpaqueAreaFractionForNewBatch != 0.25 {
		t.Errorf("OpaqueAreaFractionForNewBatch = %g, want 0.25", tun.OpaqueAreaFractionForNewBatch)
	}
	if tun.TextRunInstanceReserve != 128 {
		t.Errorf("TextRunInstanceReserve = %d, want 128", tun.TextRunInstanceReserve)
	}
	if tun.DefaultInstanceReserve != 16 {
		t.Errorf("DefaultInstanceReserve = %d, want 16", tun.DefaultInstanceReserve)
	}
	if err := tun.validate(); err != nil {
		t.Errorf("DefaultTuning().validate() = %v, want nil", err)
	}
}

func TestLoadTuningOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.toml")
	content := []byte("clip_tile_size = 256\nopaque_lookback_count = 8\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	tun, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("LoadTuning() error = %v", err)
	}

	if tun.ClipTileSize != 256 {
		t.Errorf("ClipTileSize = %d, want 256 (overridden)", tun.ClipTileSize)
	}
	if tun.OpaqueLookbackCount != 8 {
		t.Errorf("OpaqueLookbackCount = %d, want 8 (overridden)", tun.OpaqueLookbackCount)
	}
	// Unspecified fields keep defaults.
	if tun.TextRunInstanceReserve != 128 {
		t.Errorf("TextRunInstanceReserve = %d, want 128 (default)", tun.TextRunInstanceReserve)
	}
}

func TestLoadTuningMissingFile(t *testing.T) {
	_, err := LoadTuning(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Error("LoadTuning() of a missing file should return an error")
	}
}

func TestLoadTuningRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.toml")
	if err := os.WriteFile(path, []byte("clip_tile_size = -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadTuning(path)
	if err == nil {
		t.Fatal("LoadTuning() with negative clip_tile_size should error")
	}
	// On error the defaults come back, so callers can proceed.
	if got != DefaultTuning() {
		t.Errorf("LoadTuning() on error = %+v, want defaults", got)
	}
}
