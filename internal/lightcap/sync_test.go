package lightcap

import "testing"

func TestSyncAccumulator_Register(t *testing.T) {
	var acc syncAccumulator

	if _, ok := acc.seal(); ok {
		t.Fatal("empty accumulator sealed")
	}

	// Three sensors report the same flash with slight skew.
	acc.register(LightEvent{SensorID: 0, Timestamp: 1000, Length: 4750})
	acc.register(LightEvent{SensorID: 1, Timestamp: 1002, Length: 4730})
	acc.register(LightEvent{SensorID: 2, Timestamp: 998, Length: 4790})

	entry, ok := acc.seal()
	if !ok {
		t.Fatal("expected sealed entry")
	}
	if entry.firstTimestamp != 998 {
		t.Errorf("firstTimestamp = %d, want 998", entry.firstTimestamp)
	}
	if entry.longestLength != 4790 {
		t.Errorf("longestLength = %d, want 4790", entry.longestLength)
	}
	if entry.count != 3 {
		t.Errorf("count = %d, want 3", entry.count)
	}

	acc.reset()
	if _, ok := acc.seal(); ok {
		t.Error("reset accumulator sealed")
	}
}

func TestSyncAccumulator_Overlaps(t *testing.T) {
	var acc syncAccumulator
	if acc.overlapsWith(LightEvent{Timestamp: 0, Length: 100}) {
		t.Error("empty accumulator reported overlap")
	}

	acc.register(LightEvent{Timestamp: 1000, Length: 4000})

	cases := []struct {
		name string
		le   LightEvent
		want bool
	}{
		{"identical", LightEvent{Timestamp: 1000, Length: 4000}, true},
		{"small skew", LightEvent{Timestamp: 1010, Length: 4000}, true},
		{"shorter fully inside", LightEvent{Timestamp: 2000, Length: 1000}, true},
		{"half the shorter exactly", LightEvent{Timestamp: 3000, Length: 4000}, false},
		{"just over half", LightEvent{Timestamp: 2990, Length: 4000}, true},
		{"adjacent", LightEvent{Timestamp: 5000, Length: 4000}, false},
		{"next sync slot", LightEvent{Timestamp: 21000, Length: 4000}, false},
	}
	for _, c := range cases {
		if got := acc.overlapsWith(c.le); got != c.want {
			t.Errorf("%s: overlapsWith = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestSyncHistory(t *testing.T) {
	var h syncHistory

	if h.latest() != nil {
		t.Error("empty history returned a latest entry")
	}

	// Zero-length entries are dropped.
	h.push(syncEntry{firstTimestamp: 5})
	if h.latest() != nil {
		t.Error("zero-length entry was recorded")
	}

	for i := 1; i <= SyncHistoryLen+3; i++ {
		h.push(syncEntry{firstTimestamp: uint32(i * 1000), longestLength: 4750, count: 1})
	}

	re := h.latest()
	if re == nil {
		t.Fatal("expected latest entry")
	}
	if re.firstTimestamp != uint32((SyncHistoryLen+3)*1000) {
		t.Errorf("latest firstTimestamp = %d, want %d", re.firstTimestamp, (SyncHistoryLen+3)*1000)
	}

	// The ring keeps exactly SyncHistoryLen entries.
	n := 0
	for i := range h.entries {
		if h.entries[i].longestLength > 0 {
			n++
		}
	}
	if n != SyncHistoryLen {
		t.Errorf("ring holds %d entries, want %d", n, SyncHistoryLen)
	}

	h.reset()
	if h.latest() != nil {
		t.Error("reset history returned a latest entry")
	}
}
