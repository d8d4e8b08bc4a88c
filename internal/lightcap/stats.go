package lightcap

import (
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// maxSampleHistory bounds the drift and sweep-offset sample rings so a
// long-running process keeps a recent window rather than everything.
const maxSampleHistory = 4096

// Stats tracks disambiguator activity with thread-safe operations so the
// monitor can read while ingest runs on another goroutine.
type Stats struct {
	mu sync.Mutex

	eventCount  int64
	syncCount   int64
	sweepCount  int64
	recordCount int64
	lockCount   int64

	mode       Mode
	confidence int
	single60hz bool

	driftSamples []float64
	sweepOffsets []float64

	lastReset time.Time
}

// Snapshot is a point-in-time copy of the counters plus summary statistics
// over the recent drift window.
type Snapshot struct {
	Events  int64 `json:"events"`
	Syncs   int64 `json:"syncs"`
	Sweeps  int64 `json:"sweeps"`
	Records int64 `json:"records"`
	Locks   int64 `json:"locks"`

	Mode       string `json:"mode"`
	Confidence int    `json:"confidence"`
	Single60Hz bool   `json:"single_60hz"`

	DriftMeanTicks   float64 `json:"drift_mean_ticks"`
	DriftStdDevTicks float64 `json:"drift_stddev_ticks"`

	Uptime time.Duration `json:"uptime_ns"`
}

// NewStats creates a Stats instance.
func NewStats() *Stats {
	return &Stats{lastReset: time.Now()}
}

func (s *Stats) addEvent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventCount++
}

func (s *Stats) addSync() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncCount++
}

func (s *Stats) addSweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepCount++
}

func (s *Stats) addLock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockCount++
}

func (s *Stats) addRecord(rec LightRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordCount++
	if !rec.IsSync() {
		s.sweepOffsets = appendBounded(s.sweepOffsets, float64(rec.SweepOffset))
	}
}

func (s *Stats) observeDrift(ticks float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.driftSamples = appendBounded(s.driftSamples, ticks)
}

func (s *Stats) setStatus(mode Mode, confidence int, single60hz bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
	s.confidence = confidence
	s.single60hz = single60hz
}

func appendBounded(samples []float64, v float64) []float64 {
	if len(samples) >= maxSampleHistory {
		copy(samples, samples[1:])
		samples = samples[:maxSampleHistory-1]
	}
	return append(samples, v)
}

// Snapshot returns the current counters and drift summary.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Events:     s.eventCount,
		Syncs:      s.syncCount,
		Sweeps:     s.sweepCount,
		Records:    s.recordCount,
		Locks:      s.lockCount,
		Mode:       s.mode.String(),
		Confidence: s.confidence,
		Single60Hz: s.single60hz,
		Uptime:     time.Since(s.lastReset),
	}
	if len(s.driftSamples) > 0 {
		snap.DriftMeanTicks = stat.Mean(s.driftSamples, nil)
	}
	if len(s.driftSamples) > 1 {
		snap.DriftStdDevTicks = stat.StdDev(s.driftSamples, nil)
	}
	return snap
}

// DriftSamples returns a copy of the recent anchor-correction window.
func (s *Stats) DriftSamples() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float64, len(s.driftSamples))
	copy(out, s.driftSamples)
	return out
}

// SweepOffsets returns a copy of the recent emitted sweep offsets.
func (s *Stats) SweepOffsets() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float64, len(s.sweepOffsets))
	copy(out, s.sweepOffsets)
	return out
}
