package lightcap

// Acode bit positions in the packed integer form.
const (
	acodeSkipBit = 4
	acodeDataBit = 2
	acodeAxisBit = 1
)

// Acode is the 3-bit code a base station encodes in the width of its sync
// pulse. It is kept unpacked at rest and packed only at the emit boundary.
type Acode struct {
	Skip bool // this station's sweep is suppressed this cycle
	Data bool // OOTX data bit presence; the payload itself is not decoded
	Axis int  // 0 = X, 1 = Y
}

// Bits packs the acode into the integer form the upstream callback expects.
func (a Acode) Bits() int {
	bits := a.Axis & acodeAxisBit
	if a.Data {
		bits |= acodeDataBit
	}
	if a.Skip {
		bits |= acodeSkipBit
	}
	return bits
}

// AcodeFromBits unpacks the integer acode form.
func AcodeFromBits(bits int) Acode {
	return Acode{
		Skip: bits&acodeSkipBit != 0,
		Data: bits&acodeDataBit != 0,
		Axis: bits & acodeAxisBit,
	}
}

// SyncIndex marks a LightRecord as a merged sync rather than a sensor
// sweep hit.
const SyncIndex = -2

// LightRecord is one normalized observation handed to the upstream pose
// solver. For a sweep hit Index and Sensor both carry the sensor id and
// SweepOffset is the tick offset from the start of the preceding sync slot.
// For a merged sync Index is SyncIndex, Sensor is the negated count of
// coalesced pulses and SweepOffset is zero.
type LightRecord struct {
	Index       int
	Sensor      int
	Acode       Acode
	SweepOffset uint32
	Timestamp   uint32
	Length      uint32
	Lighthouse  int
}

// IsSync reports whether the record is a merged sync pulse.
func (r LightRecord) IsSync() bool { return r.Index == SyncIndex }

// Emitter receives normalized light records as slots complete.
type Emitter interface {
	EmitLight(rec LightRecord)
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(rec LightRecord)

// EmitLight calls f(rec).
func (f EmitterFunc) EmitLight(rec LightRecord) { f(rec) }
