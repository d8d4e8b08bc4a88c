package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/pulse.track/internal/lightcap"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTuningConfig_Partial(t *testing.T) {
	path := writeConfig(t, `{"stabilise_events": 50, "emit_confidence": 60}`)

	cfg, err := LoadTuningConfig(path)
	if err != nil {
		t.Fatalf("LoadTuningConfig: %v", err)
	}

	params := cfg.Params()
	if params.StabiliseEvents != 50 {
		t.Errorf("StabiliseEvents = %d, want 50", params.StabiliseEvents)
	}
	if params.EmitConfidence != 60 {
		t.Errorf("EmitConfidence = %d, want 60", params.EmitConfidence)
	}

	// Unset fields keep the compiled-in defaults.
	def := lightcap.DefaultParams()
	if params.SyncErrorLimit != def.SyncErrorLimit {
		t.Errorf("SyncErrorLimit = %d, want default %d", params.SyncErrorLimit, def.SyncErrorLimit)
	}
	if params.MaxSweepPulse != def.MaxSweepPulse {
		t.Errorf("MaxSweepPulse = %d, want default %d", params.MaxSweepPulse, def.MaxSweepPulse)
	}
}

func TestLoadTuningConfig_RejectsBadExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTuningConfig(path); err == nil {
		t.Error("expected error for non-json extension")
	}
}

func TestLoadTuningConfig_RejectsBadJSON(t *testing.T) {
	path := writeConfig(t, `{"stabilise_events": `)
	if _, err := LoadTuningConfig(path); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestValidate(t *testing.T) {
	neg := -1
	if err := (&TuningConfig{StabiliseEvents: &neg}).Validate(); err == nil {
		t.Error("expected error for negative stabilise_events")
	}

	zero := 0
	if err := (&TuningConfig{MinSyncPulseTicks: &zero}).Validate(); err == nil {
		t.Error("expected error for zero min_sync_pulse_ticks")
	}

	long, max := 8000, 7000
	cfg := &TuningConfig{LongSweepPulseTicks: &long, MaxSweepPulseTicks: &max}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for long_sweep_pulse_ticks above max_sweep_pulse_ticks")
	}
}

func TestLoadTuningConfig_Missing(t *testing.T) {
	if _, err := LoadTuningConfig(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
