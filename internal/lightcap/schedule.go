package lightcap

// The base stations follow a fixed schedule within each 1.6M-tick period:
//
//	     Ticks  Slot
//	         0  sync  B  acode 0b1x0 (4)
//	    20 000  sync  A  acode 0b0x0 (0)
//	    40 000  sweep A  X
//	   400 000  sync  B  acode 0b1x1 (5)
//	   420 000  sync  A  acode 0b0x1 (1)
//	   440 000  sweep A  Y
//	   800 000  sync  B  acode 0b0x0 (0)
//	   820 000  sync  A  acode 0b1x0 (4)
//	   840 000  sweep B  X
//	 1 200 000  sync  B  acode 0b0x1 (1)
//	 1 220 000  sync  A  acode 0b1x1 (5)
//	 1 240 000  sweep B  Y
//	 1 600 000  <repeat>
//
// In 60hz single-lighthouse mode only the first six slots run and the
// period halves to 800k ticks. The data bit is excluded from the acodes
// above; pulse widths carry it separately.

const (
	// PulseWindow is the scheduled width of one sync slot in ticks.
	PulseWindow = 20000
	// CaptureWindow is the scheduled width of one sweep slot in ticks.
	CaptureWindow = 360000

	// SlotCount is the number of scheduled slots in a full period.
	SlotCount = 12

	// TimebaseHz is the tick rate of the sensor clock.
	TimebaseHz = 48000000

	// sixtyHzBoundary is the first slot of the second half of the table;
	// 60hz mode wraps just before it.
	sixtyHzBoundary = 7
)

// Mode identifies the slot the state machine believes the schedule is in.
// ModeUnknown means no lock; values 1..SlotCount are slots of the table.
type Mode int

// ModeUnknown is the unlocked state.
const ModeUnknown Mode = 0

// Lighthouse indices. The schedule interleaves both stations.
const (
	LighthouseA = 0
	LighthouseB = 1
)

// ScheduleSlot describes one scheduled position in the period.
type ScheduleSlot struct {
	Acode      int    // base acode bits, data bit clear
	Lighthouse int    // LighthouseA or LighthouseB
	Axis       int    // 0 = X, 1 = Y
	Window     uint32 // slot width in ticks
	IsSweep    bool
}

// schedule is indexed by Mode. Index 0 and SlotCount+1 are guards so a
// linear scan over slot starts needs no boundary special-casing.
var schedule = [SlotCount + 2]ScheduleSlot{
	{},

	{Acode: 4, Lighthouse: LighthouseB, Axis: 0, Window: PulseWindow},
	{Acode: 0, Lighthouse: LighthouseA, Axis: 0, Window: PulseWindow},
	{Acode: 4, Lighthouse: LighthouseA, Axis: 0, Window: CaptureWindow, IsSweep: true},

	{Acode: 5, Lighthouse: LighthouseB, Axis: 1, Window: PulseWindow},
	{Acode: 1, Lighthouse: LighthouseA, Axis: 1, Window: PulseWindow},
	{Acode: 1, Lighthouse: LighthouseA, Axis: 1, Window: CaptureWindow, IsSweep: true},

	{Acode: 0, Lighthouse: LighthouseB, Axis: 0, Window: PulseWindow},
	{Acode: 4, Lighthouse: LighthouseA, Axis: 0, Window: PulseWindow},
	{Acode: 4, Lighthouse: LighthouseB, Axis: 0, Window: CaptureWindow, IsSweep: true},

	{Acode: 1, Lighthouse: LighthouseB, Axis: 1, Window: PulseWindow},
	{Acode: 5, Lighthouse: LighthouseA, Axis: 1, Window: PulseWindow},
	{Acode: 5, Lighthouse: LighthouseB, Axis: 1, Window: CaptureWindow, IsSweep: true},

	{},
}

// slotStarts[i] is the offset of slot i from the start of the period.
// slotStarts[SlotCount+1] is the full period length.
var slotStarts = [SlotCount + 2]uint32{
	0,
	0, 20000, 40000,
	400000, 420000, 440000,
	800000, 820000, 840000,
	1200000, 1220000, 1240000,
	1600000,
}

// Slot returns the schedule entry for a slot mode.
func Slot(m Mode) ScheduleSlot { return schedule[m] }

// SlotStart returns the offset in ticks of a slot from the period start.
func SlotStart(m Mode) uint32 { return slotStarts[m] }

// Period returns the schedule length in ticks for the given regime.
func Period(sixtyHz bool) uint32 {
	if sixtyHz {
		return slotStarts[sixtyHzBoundary]
	}
	return slotStarts[SlotCount+1]
}

func (m Mode) String() string {
	if m == ModeUnknown {
		return "unknown"
	}
	s := schedule[m]
	lh := "A"
	if s.Lighthouse == LighthouseB {
		lh = "B"
	}
	axis := "X"
	if s.Axis == 1 {
		axis = "Y"
	}
	kind := "sync"
	if s.IsSweep {
		kind = "sweep"
	}
	return lh + axis + "-" + kind
}

// acodeTiming returns the nominal pulse width in ticks for an acode.
func acodeTiming(acode int) uint32 {
	return uint32(3000+(acode&1)*500+((acode>>1)&1)*1000+((acode>>2)&1)*2000) - 250
}

// FindSlotByOffset locates the slot a period offset falls in and the
// distance in ticks to the nearest slot boundary. An offset in the tail of
// a sweep slot sticks with the sweep unless it is within 1000 ticks of the
// next sync; sweeps are wide and their trailing hits must not be taken for
// the following sync slot. Offsets within 1000 ticks of the period end wrap
// to slot 1.
func FindSlotByOffset(offset uint32) (Mode, uint32) {
	for i := 2; i <= SlotCount+1; i++ {
		if slotStarts[i] <= offset {
			continue
		}
		distFromLast := offset - slotStarts[i-1]
		distFromThis := slotStarts[i] - offset

		thisIsClosest := distFromLast > distFromThis
		if schedule[i-1].IsSweep && distFromThis > 1000 {
			thisIsClosest = false
		}

		if !thisIsClosest {
			return Mode(i - 1), distFromLast
		}
		if i == SlotCount+1 {
			return Mode(1), distFromThis
		}
		return Mode(i), distFromThis
	}
	panic("lightcap: offset outside schedule period")
}

// applyMod reduces a timestamp to an offset in [0, period) relative to an
// anchor, tolerating a 32-bit counter wrap between the anchor and the
// timestamp. A timestamp far below the anchor is taken as post-wrap; a
// timestamp slightly below it is a genuinely out-of-order event and is
// reduced in signed arithmetic instead.
func applyMod(ts, anchor, period uint32) uint32 {
	if ts >= anchor {
		return (ts - anchor) % period
	}

	if anchor-ts > 1<<31 {
		return uint32(((1 << 32) - uint64(anchor) + uint64(ts)) % uint64(period))
	}

	t := int32(ts % period)
	a := int32(anchor % period)
	r := (t - a) % int32(period)
	if r < 0 {
		r += int32(period)
	}
	return uint32(r)
}

// timecodeDifference returns the wrap-aware distance between two 32-bit
// timestamps.
func timecodeDifference(a, b uint32) uint32 {
	d := a - b
	if d > 1<<31 {
		return -d
	}
	return d
}
