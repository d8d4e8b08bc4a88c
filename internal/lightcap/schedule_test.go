package lightcap

import "testing"

func TestSlotStarts(t *testing.T) {
	want := []uint32{
		0, 20000, 40000,
		400000, 420000, 440000,
		800000, 820000, 840000,
		1200000, 1220000, 1240000,
	}
	for i, w := range want {
		if got := SlotStart(Mode(i + 1)); got != w {
			t.Errorf("SlotStart(%d) = %d, want %d", i+1, got, w)
		}
	}

	// Starts must be the prefix sums of the windows.
	var sum uint32
	for m := Mode(1); m <= SlotCount; m++ {
		if SlotStart(m) != sum {
			t.Errorf("SlotStart(%d) = %d, want prefix sum %d", m, SlotStart(m), sum)
		}
		sum += Slot(m).Window
	}
	if sum != Period(false) {
		t.Errorf("window sum = %d, want full period %d", sum, Period(false))
	}
}

func TestPeriod(t *testing.T) {
	if got := Period(false); got != 1600000 {
		t.Errorf("Period(false) = %d, want 1600000", got)
	}
	if got := Period(true); got != 800000 {
		t.Errorf("Period(true) = %d, want 800000", got)
	}
}

func TestScheduleTable(t *testing.T) {
	type slotSpec struct {
		acode, lh, axis int
		isSweep         bool
	}
	want := []slotSpec{
		{4, LighthouseB, 0, false},
		{0, LighthouseA, 0, false},
		{4, LighthouseA, 0, true},
		{5, LighthouseB, 1, false},
		{1, LighthouseA, 1, false},
		{1, LighthouseA, 1, true},
		{0, LighthouseB, 0, false},
		{4, LighthouseA, 0, false},
		{4, LighthouseB, 0, true},
		{1, LighthouseB, 1, false},
		{5, LighthouseA, 1, false},
		{5, LighthouseB, 1, true},
	}
	for i, w := range want {
		s := Slot(Mode(i + 1))
		if s.Acode != w.acode || s.Lighthouse != w.lh || s.Axis != w.axis || s.IsSweep != w.isSweep {
			t.Errorf("slot %d = %+v, want %+v", i+1, s, w)
		}
	}
}

func TestAcodeTiming(t *testing.T) {
	cases := map[int]uint32{
		0: 2750,
		1: 3250,
		2: 3750,
		3: 4250,
		4: 4750,
		5: 5250,
		6: 5750,
		7: 6250,
	}
	for acode, want := range cases {
		if got := acodeTiming(acode); got != want {
			t.Errorf("acodeTiming(%d) = %d, want %d", acode, got, want)
		}
	}
}

func TestFindSlotByOffset_ExactStarts(t *testing.T) {
	for m := Mode(1); m <= SlotCount; m++ {
		slot, dist := FindSlotByOffset(SlotStart(m))
		if slot != m {
			t.Errorf("FindSlotByOffset(SlotStart(%d)) = %d, want %d", m, slot, m)
		}
		if dist != 0 {
			t.Errorf("FindSlotByOffset(SlotStart(%d)) dist = %d, want 0", m, dist)
		}
	}
}

func TestFindSlotByOffset_Boundaries(t *testing.T) {
	cases := []struct {
		offset uint32
		want   Mode
		dist   uint32
	}{
		// Middle of the first sync slot.
		{10000, 1, 10000},
		// Near the end of a sync slot snaps forward.
		{19500, 2, 500},
		// Deep inside a sweep slot.
		{200000, 3, 160000},
		// The sweep tail stays with the sweep even though the next sync
		// start is nearer; the distance reported is to the kept slot.
		{398000, 3, 358000},
		// Within 1000 ticks of the next sync the tie-break lapses.
		{399500, 4, 500},
		// Tail of the final sweep wraps to slot 1.
		{1599800, 1, 200},
	}
	for _, c := range cases {
		slot, dist := FindSlotByOffset(c.offset)
		if slot != c.want || dist != c.dist {
			t.Errorf("FindSlotByOffset(%d) = (%d, %d), want (%d, %d)",
				c.offset, slot, dist, c.want, c.dist)
		}
	}
}

func TestApplyMod(t *testing.T) {
	period := Period(false)

	if got := applyMod(20000, 0, period); got != 20000 {
		t.Errorf("applyMod(20000, 0) = %d, want 20000", got)
	}

	// Offsets are invariant under whole-period shifts.
	for _, k := range []uint32{1, 2, 100} {
		if got := applyMod(20000+k*period, 0, period); got != 20000 {
			t.Errorf("applyMod(+%d periods) = %d, want 20000", k, got)
		}
	}

	// Anchor from before a 32-bit rollover, timestamp after it.
	anchor := uint32(0xFFFFFFFF) - 100000
	ts := anchor + 3*period + 420000 // wraps
	if ts >= anchor {
		t.Fatal("test setup: expected wrapped timestamp")
	}
	if got := applyMod(ts, anchor, period); got != 420000 {
		t.Errorf("applyMod across wrap = %d, want 420000", got)
	}

	// A genuinely out-of-order timestamp still lands in [0, period).
	if got := applyMod(990000, 1000000, period); got >= period {
		t.Errorf("applyMod backward = %d, want < %d", got, period)
	}
}

func TestApplyMod_SixtyHz(t *testing.T) {
	period := Period(true)
	if got := applyMod(900000, 100000, period); got != 0 {
		t.Errorf("applyMod 60hz = %d, want 0", got)
	}
}

func TestTimecodeDifference(t *testing.T) {
	if got := timecodeDifference(100, 40); got != 60 {
		t.Errorf("timecodeDifference(100, 40) = %d, want 60", got)
	}
	// Across the wrap.
	if got := timecodeDifference(50, 0xFFFFFFFF-49); got != 100 {
		t.Errorf("timecodeDifference across wrap = %d, want 100", got)
	}
}

func TestModeString(t *testing.T) {
	if got := ModeUnknown.String(); got != "unknown" {
		t.Errorf("ModeUnknown.String() = %q", got)
	}
	if got := Mode(1).String(); got != "BX-sync" {
		t.Errorf("Mode(1).String() = %q, want BX-sync", got)
	}
	if got := Mode(3).String(); got != "AX-sweep" {
		t.Errorf("Mode(3).String() = %q, want AX-sweep", got)
	}
}
