package lightcap

import (
	"sync"

	"github.com/banshee-data/pulse.track/internal/monitoring"
)

// Params holds the tuning knobs of the disambiguator. Defaults match the
// shipped base stations; see internal/config for file-based overrides.
type Params struct {
	// StabiliseEvents raw events dropped after startup while the sensor
	// hardware settles.
	StabiliseEvents int
	// TimebaseHz is the tick clock rate, used for gap detection.
	TimebaseHz uint32
	// EmitConfidence is the confidence a lock must exceed before records
	// are emitted upstream.
	EmitConfidence int
	// MaxConfidence caps the confidence counter.
	MaxConfidence int
	// SyncPenalty is subtracted from confidence on a sync width mismatch.
	SyncPenalty int
	// SyncErrorLimit is the widest acceptable acode timing error in ticks.
	SyncErrorLimit uint32
	// MinSyncPulse rejects reflections in sync slots.
	MinSyncPulse uint32
	// MaxSweepPulse rejects saturation noise in sweep slots.
	MaxSweepPulse uint32
	// LongSweepPulse is the width above which a sweep hit costs confidence.
	LongSweepPulse uint32
	// DriftWarnTicks is the anchor correction above which a warning logs.
	DriftWarnTicks uint32
	// FailureReportEvery bounds discovery failure warnings to one per N.
	FailureReportEvery int
}

// DefaultParams returns the production defaults.
func DefaultParams() Params {
	return Params{
		StabiliseEvents:    200,
		TimebaseHz:         TimebaseHz,
		EmitConfidence:     80,
		MaxConfidence:      100,
		SyncPenalty:        3,
		SyncErrorLimit:     1250,
		MinSyncPulse:       400,
		MaxSweepPulse:      7000,
		LongSweepPulse:     3000,
		DriftWarnTicks:     100,
		FailureReportEvery: 1000,
	}
}

// Context is the state shared by every disambiguator in a process. Once any
// object locks the timing regime the others skip rediscovering it, and the
// 60hz flag is cleared again only when the last locked object drops out.
// Only these two regime transitions need the mutex; everything else is
// per-object.
type Context struct {
	mu           sync.Mutex
	single60hz   bool
	lockedCount  int
	regimeLogged bool
}

// NewContext creates an empty shared context.
func NewContext() *Context { return &Context{} }

// Single60Hz reports whether any locked object established the
// single-lighthouse 60hz regime.
func (c *Context) Single60Hz() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.single60hz
}

// regime returns whether some object is locked and, if so, which regime.
func (c *Context) regime() (known, sixtyHz bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lockedCount > 0, c.single60hz
}

// noteLock records a fresh lock and the regime it discovered.
func (c *Context) noteLock(sixtyHz bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lockedCount++
	c.single60hz = sixtyHz
	if sixtyHz && !c.regimeLogged {
		monitoring.Logf("disambiguator is in 60hz mode (mode A)")
		c.regimeLogged = true
	}
}

// noteUnlock records a demotion; the regime flag resets once nothing is
// locked.
func (c *Context) noteUnlock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lockedCount > 0 {
		c.lockedCount--
	}
	if c.lockedCount == 0 {
		if c.single60hz {
			monitoring.Logf("disambiguator resetting 60hz mode flag")
		}
		c.single60hz = false
		c.regimeLogged = false
	}
}

// Disambiguator runs the phase-locked state machine for one tracked
// object. All calls must be serialized by the caller; Ingest has no
// internal suspension points.
type Disambiguator struct {
	ctx     *Context
	emitter Emitter
	params  Params
	name    string
	stats   *Stats

	sensorCt int

	mode       Mode
	modOffset  [2]uint32 // per-lighthouse phase anchor
	confidence int

	acc     syncAccumulator
	history syncHistory
	sweep   []LightEvent // per-sensor, longest hit wins within a slot

	stabilise     int
	lastTimestamp uint32
	failures      int
	lastWasSync   bool
}

// New creates a disambiguator for one tracked object. A zero sensorCt is
// allowed; events are dropped until SetSensorCount is called with the
// object's configuration.
func New(ctx *Context, name string, sensorCt int, emitter Emitter, params Params) *Disambiguator {
	d := &Disambiguator{
		ctx:     ctx,
		emitter: emitter,
		params:  params,
		name:    name,
	}
	if sensorCt > 0 {
		d.SetSensorCount(sensorCt)
	}
	return d
}

// SetSensorCount sizes the per-sensor sweep buffer once the object's
// configuration is known.
func (d *Disambiguator) SetSensorCount(n int) {
	d.sensorCt = n
	d.sweep = make([]LightEvent, n)
}

// SetStats attaches an optional stats collector.
func (d *Disambiguator) SetStats(s *Stats) { d.stats = s }

// Mode returns the current slot lock, or ModeUnknown.
func (d *Disambiguator) Mode() Mode { return d.mode }

// Confidence returns the current lock confidence.
func (d *Disambiguator) Confidence() int { return d.confidence }

// ModOffset returns the phase anchor for a lighthouse.
func (d *Disambiguator) ModOffset(lighthouse int) uint32 { return d.modOffset[lighthouse] }

// Ingest routes one raw light event through the state machine. This is the
// only entry point.
func (d *Disambiguator) Ingest(le LightEvent) {
	// No sensor configuration yet; nothing can be validated.
	if d.sensorCt == 0 {
		return
	}

	// The first couple hundred events off the hardware are unreliable.
	if d.stabilise < d.params.StabiliseEvents {
		d.stabilise++
		return
	}

	if int(le.SensorID) >= d.sensorCt {
		monitoring.Logf("invalid sensor %d detected hit on %s", le.SensorID, d.name)
		return
	}

	if d.stats != nil {
		d.stats.addEvent()
	}

	if d.mode == ModeUnknown {
		d.attemptFindMode(le)
	} else {
		d.track(le)
	}

	d.lastTimestamp = le.Timestamp
}

// period returns the schedule length for the regime currently in effect.
func (d *Disambiguator) period() uint32 {
	return Period(d.ctx.Single60Hz())
}

// setMode transitions the state machine, clearing the per-slot buffers. A
// transition to ModeUnknown also drops the sync history and releases this
// object's claim on the shared regime.
func (d *Disambiguator) setMode(m Mode) {
	wasLocked := d.mode != ModeUnknown
	d.mode = m

	if m == ModeUnknown {
		d.history.reset()
		if wasLocked {
			d.ctx.noteUnlock()
		}
	}

	d.acc.reset()
	for i := range d.sweep {
		d.sweep[i] = LightEvent{}
	}

	if d.stats != nil {
		d.stats.setStatus(m, d.confidence, d.ctx.Single60Hz())
	}
}
