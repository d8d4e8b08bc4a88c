package lightcap

import "math/rand"

// Schedule-true event synthesis. Tests and the gen-lightcap tool build
// replayable streams from the slot table itself: sync pulses with
// acode-encoded widths seen by every sensor, per-sensor sweep hits, and
// optional jitter, drift and data bits.

// SynthConfig controls synthetic stream generation.
type SynthConfig struct {
	Sensors        int
	Periods        int
	SixtyHz        bool   // emit only the first half of the table at half period
	JitterTicks    uint32 // max absolute timing/width jitter per pulse
	DriftPerPeriod int32  // schedule drift in ticks applied each period
	DataBits       bool   // alternate the data bit across sync pulses
	StartTimestamp uint32
	SweepHitTicks  uint32 // on-duration of a sweep hit
	Seed           int64
}

// DefaultSynthConfig returns a clean two-station stream: ten sensors, no
// jitter, no drift.
func DefaultSynthConfig() SynthConfig {
	return SynthConfig{
		Sensors:        10,
		Periods:        8,
		SweepHitTicks:  120,
		StartTimestamp: 1000000,
		Seed:           1,
	}
}

// Synthesize generates a chronological raw event stream following the slot
// table. Timestamps wrap naturally at 32 bits.
func Synthesize(cfg SynthConfig) []LightEvent {
	r := rand.New(rand.NewSource(cfg.Seed))
	jitter := func() int32 {
		if cfg.JitterTicks == 0 {
			return 0
		}
		return int32(r.Int63n(int64(2*cfg.JitterTicks+1))) - int32(cfg.JitterTicks)
	}

	lastSlot := Mode(SlotCount)
	if cfg.SixtyHz {
		lastSlot = sixtyHzBoundary - 1
	}

	var events []LightEvent
	base := cfg.StartTimestamp
	dataBit := false

	for p := 0; p < cfg.Periods; p++ {
		for m := Mode(1); m <= lastSlot; m++ {
			s := Slot(m)
			// Single-lighthouse mode: station B does not transmit.
			if cfg.SixtyHz && s.Lighthouse == LighthouseB {
				continue
			}
			start := base + SlotStart(m)

			if !s.IsSweep {
				acode := s.Acode
				if cfg.DataBits {
					dataBit = !dataBit
					if dataBit {
						acode |= acodeDataBit
					}
				}
				width := uint32(int32(acodeTiming(acode)) + jitter())
				pulse := uint32(int32(start) + jitter())
				// Every sensor sees the omnidirectional flash, skewed by
				// a tick or two of detection latency.
				for i := 0; i < cfg.Sensors; i++ {
					events = append(events, LightEvent{
						SensorID:  uint8(i),
						Timestamp: pulse + uint32(i),
						Length:    width,
					})
				}
				continue
			}

			// The beam crosses the sensors one at a time as it sweeps.
			for i := 0; i < cfg.Sensors; i++ {
				hit := uint32(int32(start) + 60000 + int32(i)*3000 + jitter())
				events = append(events, LightEvent{
					SensorID:  uint8(i),
					Timestamp: hit,
					Length:    cfg.SweepHitTicks,
				})
			}
		}
		base += Period(cfg.SixtyHz)
		base = uint32(int32(base) + cfg.DriftPerPeriod)
	}

	return events
}
