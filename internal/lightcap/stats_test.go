package lightcap

import (
	"math"
	"testing"
)

func TestStats_Counters(t *testing.T) {
	s := NewStats()

	s.addEvent()
	s.addEvent()
	s.addSync()
	s.addSweep()
	s.addLock()
	s.addRecord(LightRecord{Index: 3, Sensor: 3, SweepOffset: 120000})
	s.addRecord(LightRecord{Index: SyncIndex, Sensor: -4})
	s.setStatus(Mode(2), 90, false)

	snap := s.Snapshot()
	if snap.Events != 2 || snap.Syncs != 1 || snap.Sweeps != 1 || snap.Locks != 1 || snap.Records != 2 {
		t.Errorf("bad counters: %+v", snap)
	}
	if snap.Mode != "AX-sync" || snap.Confidence != 90 || snap.Single60Hz {
		t.Errorf("bad status: %+v", snap)
	}

	// Only sweep records contribute offsets.
	if got := s.SweepOffsets(); len(got) != 1 || got[0] != 120000 {
		t.Errorf("SweepOffsets = %v, want [120000]", got)
	}
}

func TestStats_DriftSummary(t *testing.T) {
	s := NewStats()
	for _, v := range []float64{10, 20, 30} {
		s.observeDrift(v)
	}

	snap := s.Snapshot()
	if math.Abs(snap.DriftMeanTicks-20) > 1e-9 {
		t.Errorf("DriftMeanTicks = %v, want 20", snap.DriftMeanTicks)
	}
	if math.Abs(snap.DriftStdDevTicks-10) > 1e-9 {
		t.Errorf("DriftStdDevTicks = %v, want 10", snap.DriftStdDevTicks)
	}
}

func TestStats_BoundedSamples(t *testing.T) {
	s := NewStats()
	for i := 0; i < maxSampleHistory+100; i++ {
		s.observeDrift(float64(i))
	}

	samples := s.DriftSamples()
	if len(samples) != maxSampleHistory {
		t.Fatalf("len(samples) = %d, want %d", len(samples), maxSampleHistory)
	}
	// Oldest samples are evicted first.
	if samples[0] != 100 {
		t.Errorf("samples[0] = %v, want 100", samples[0])
	}
	if samples[len(samples)-1] != float64(maxSampleHistory+99) {
		t.Errorf("last sample = %v, want %d", samples[len(samples)-1], maxSampleHistory+99)
	}
}
