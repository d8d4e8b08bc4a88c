package lightcap

// LightEvent is one raw detection from a sensor: a monotonic 32-bit tick
// timestamp (wrapping) and the number of ticks the sensor saw light.
type LightEvent struct {
	SensorID  uint8
	Timestamp uint32
	Length    uint32
}

// Sync pulse width bounds in ticks. The window deliberately brackets every
// legal acode timing with margin for sensor jitter.
const (
	lowerSyncTicks = 2250
	upperSyncTicks = 6750
)

// Classification of a raw pulse by width alone.
type Classification int

const (
	ClassSweep Classification = iota
	ClassSync
)

// Classify decides sync vs sweep purely on pulse width.
func Classify(length uint32) Classification {
	if length < lowerSyncTicks || length > upperSyncTicks {
		return ClassSweep
	}
	return ClassSync
}

// findAcode maps a sync pulse width to its acode by 500-tick buckets, or -1
// when the width is outside the legal range. Only phase discovery uses
// this; in locked mode the expected acode is known and verified instead.
func findAcode(length uint32) int {
	const offset = 50
	if length < 2500+offset {
		return -1
	}
	for acode := 0; acode < 8; acode++ {
		if length < uint32(3000+acode*500+offset) {
			return acode
		}
	}
	return -1
}

// acodeError returns how far a pulse width is from the nominal timing of an
// acode, taking whichever of the data-bit-set and data-bit-clear widths is
// nearer.
func acodeError(targetAcode int, length uint32) uint32 {
	errNoData := absDiff(acodeTiming(targetAcode), length)
	errData := absDiff(acodeTiming(targetAcode|acodeDataBit), length)
	if errNoData > errData {
		return errData
	}
	return errNoData
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

// divRoundClosest divides rounding to the nearest integer.
func divRoundClosest(n, d uint64) uint64 {
	return (n + d/2) / d
}
