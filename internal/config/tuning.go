package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/pulse.track/internal/lightcap"
)

// TuningConfig holds file-based overrides for the disambiguator parameters.
// Every field is optional; fields omitted from the JSON keep the compiled-in
// defaults, so partial configs are safe.
type TuningConfig struct {
	StabiliseEvents     *int `json:"stabilise_events,omitempty"`
	EmitConfidence      *int `json:"emit_confidence,omitempty"`
	SyncErrorLimitTicks *int `json:"sync_error_limit_ticks,omitempty"`
	MinSyncPulseTicks   *int `json:"min_sync_pulse_ticks,omitempty"`
	MaxSweepPulseTicks  *int `json:"max_sweep_pulse_ticks,omitempty"`
	LongSweepPulseTicks *int `json:"long_sweep_pulse_ticks,omitempty"`
	DriftWarnTicks      *int `json:"drift_warn_ticks,omitempty"`
	FailureReportEvery  *int `json:"failure_report_every,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The path must
// have a .json extension and the file must be under the max file size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configured values are usable.
func (c *TuningConfig) Validate() error {
	nonNegative := map[string]*int{
		"stabilise_events":     c.StabiliseEvents,
		"emit_confidence":      c.EmitConfidence,
		"drift_warn_ticks":     c.DriftWarnTicks,
		"failure_report_every": c.FailureReportEvery,
	}
	for name, v := range nonNegative {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", name, *v)
		}
	}

	positive := map[string]*int{
		"sync_error_limit_ticks": c.SyncErrorLimitTicks,
		"min_sync_pulse_ticks":   c.MinSyncPulseTicks,
		"max_sweep_pulse_ticks":  c.MaxSweepPulseTicks,
		"long_sweep_pulse_ticks": c.LongSweepPulseTicks,
	}
	for name, v := range positive {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, *v)
		}
	}

	if c.MaxSweepPulseTicks != nil && c.LongSweepPulseTicks != nil &&
		*c.LongSweepPulseTicks > *c.MaxSweepPulseTicks {
		return fmt.Errorf("long_sweep_pulse_ticks (%d) must not exceed max_sweep_pulse_ticks (%d)",
			*c.LongSweepPulseTicks, *c.MaxSweepPulseTicks)
	}

	return nil
}

// Apply overlays the configured fields onto a parameter set.
func (c *TuningConfig) Apply(p *lightcap.Params) {
	if c.StabiliseEvents != nil {
		p.StabiliseEvents = *c.StabiliseEvents
	}
	if c.EmitConfidence != nil {
		p.EmitConfidence = *c.EmitConfidence
	}
	if c.SyncErrorLimitTicks != nil {
		p.SyncErrorLimit = uint32(*c.SyncErrorLimitTicks)
	}
	if c.MinSyncPulseTicks != nil {
		p.MinSyncPulse = uint32(*c.MinSyncPulseTicks)
	}
	if c.MaxSweepPulseTicks != nil {
		p.MaxSweepPulse = uint32(*c.MaxSweepPulseTicks)
	}
	if c.LongSweepPulseTicks != nil {
		p.LongSweepPulse = uint32(*c.LongSweepPulseTicks)
	}
	if c.DriftWarnTicks != nil {
		p.DriftWarnTicks = uint32(*c.DriftWarnTicks)
	}
	if c.FailureReportEvery != nil {
		p.FailureReportEvery = *c.FailureReportEvery
	}
}

// Params returns the compiled-in defaults with this config applied.
func (c *TuningConfig) Params() lightcap.Params {
	p := lightcap.DefaultParams()
	c.Apply(&p)
	return p
}
