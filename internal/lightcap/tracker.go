package lightcap

import "github.com/banshee-data/pulse.track/internal/monitoring"

// Locked-mode tracking. Once the phase is known every event is predicted
// into a slot from its timestamp alone; the pulse then either validates the
// slot or costs confidence. The machine rides out noise and short outages
// and demotes itself back to discovery when the tally runs dry.

// track runs one event through the locked path, applying the long-gap
// penalty first. A gap over a second of ticks means the signal was lost;
// confidence pays proportionally and the lock drops if it cannot.
func (d *Disambiguator) track(le LightEvent) {
	gap := timecodeDifference(le.Timestamp, d.lastTimestamp)
	if gap > d.params.TimebaseHz {
		penalty := int(gap/d.params.TimebaseHz) * 10
		if d.confidence < penalty {
			d.setMode(ModeUnknown)
			monitoring.Logf("disambiguator got lost at %d (sync timeout %d); refinding state for %s",
				le.Timestamp, gap, d.name)
			return
		}
		d.confidence -= penalty
	}

	d.propagate(le)
}

// propagate predicts the slot the event belongs to, processes any slot
// transition, and validates the event against the (possibly new) slot.
func (d *Disambiguator) propagate(le LightEvent) {
	lh := Slot(d.mode).Lighthouse
	center := le.Timestamp + le.Length/2
	offset := applyMod(center, d.modOffset[lh], d.period())

	// Slots can be skipped outright when a station is occluded for a
	// while; the prediction simply lands further along the schedule.
	newMode, _ := FindSlotByOffset(offset)
	if newMode != d.mode {
		d.processTransition(newMode)
	}

	slot := Slot(d.mode)
	if !slot.IsSweep {
		d.runSyncCapture(slot.Acode, le)
		return
	}

	// Sweep slot: buffer the longest hit per sensor; the whole slot
	// flushes at once on the next transition.
	if le.Length > d.params.MaxSweepPulse {
		return
	}
	if le.Length > d.params.LongSweepPulse && d.confidence > -d.params.SyncPenalty {
		// Legitimate sweep hits are short; a long one smells like a
		// reflection even if we keep it.
		d.confidence--
	}
	if le.Length > d.sweep[le.SensorID].Length {
		d.sweep[le.SensorID] = le
	}
}

// runSyncCapture validates a pulse against the expected acode of the
// current sync slot. Hits feed the accumulator and confidence; misses are
// penalized and eventually force rediscovery.
func (d *Disambiguator) runSyncCapture(targetAcode int, le LightEvent) {
	// Reflections show up as tiny pulses; dropping them measurably helps.
	if le.Length < d.params.MinSyncPulse {
		return
	}

	if err := acodeError(targetAcode, le.Length); err > d.params.SyncErrorLimit {
		if d.confidence < d.params.SyncPenalty {
			d.setMode(ModeUnknown)
			monitoring.Logf("disambiguator got lost at %d; refinding state for %s", le.Timestamp, d.name)
		}
		d.confidence -= d.params.SyncPenalty
		if d.confidence < -d.params.SyncPenalty {
			d.confidence = -d.params.SyncPenalty
		}
		return
	}

	if d.confidence < d.params.MaxConfidence {
		d.confidence++
	}

	d.acc.register(le)
}

// processTransition flushes the slot being left and advances the machine.
// Leaving a sync slot refreshes the phase anchor and emits the merged
// sync; leaving a sweep slot flushes the buffered per-sensor hits.
func (d *Disambiguator) processTransition(newMode Mode) {
	if !Slot(d.mode).IsSweep {
		d.endTrackedSync()
	} else {
		d.flushSweep()
	}
	d.setMode(newMode)
}

// endTrackedSync seals the accumulated sync from the slot being left,
// refreshes that lighthouse's anchor from it, infers the data bit, and
// emits the merged sync record.
func (d *Disambiguator) endTrackedSync() {
	entry, ok := d.acc.seal()
	if !ok {
		return
	}
	d.history.push(entry)
	if d.stats != nil {
		d.stats.addSync()
	}

	slot := Slot(d.mode)
	period := d.period()

	// The earliest pulse start re-anchors the phase for this lighthouse.
	// That absorbs long-term oscillator drift; large corrections are worth
	// knowing about but are still applied.
	newOffset := entry.firstTimestamp - SlotStart(d.mode)
	delta := int64(int32(newOffset - d.modOffset[slot.Lighthouse]))
	delta %= int64(period)
	if delta > int64(period)/2 {
		delta -= int64(period)
	} else if delta < -int64(period)/2 {
		delta += int64(period)
	}
	if delta > int64(d.params.DriftWarnTicks) || delta < -int64(d.params.DriftWarnTicks) {
		monitoring.Logf("drift in timecodes %s %d", d.name, delta)
	}
	d.modOffset[slot.Lighthouse] = newOffset
	if d.stats != nil {
		d.stats.observeDrift(float64(delta))
	}

	// Decide whether the pulse carried the data bit. Only its presence is
	// reported; the OOTX payload is upstream's problem.
	lengthData := acodeTiming(slot.Acode | acodeDataBit)
	lengthNoData := acodeTiming(slot.Acode)
	acode := AcodeFromBits(slot.Acode)
	acode.Data = absDiff(lengthData, entry.longestLength) < absDiff(lengthNoData, entry.longestLength)

	if d.confidence > d.params.EmitConfidence {
		d.emit(LightRecord{
			Index:      SyncIndex,
			Sensor:     -entry.count,
			Acode:      acode,
			Timestamp:  entry.firstTimestamp,
			Length:     entry.longestLength,
			Lighthouse: slot.Lighthouse,
		})
	}
}

// flushSweep emits the buffered sweep hits for the slot being left. Hits
// far from the average width across sensors are noise and are dropped.
func (d *Disambiguator) flushSweep() {
	var lengthSum, cnt uint64
	for i := range d.sweep {
		if d.sweep[i].Length > 0 {
			lengthSum += uint64(d.sweep[i].Length)
			cnt++
		}
	}
	if cnt == 0 {
		return
	}
	if d.stats != nil {
		d.stats.addSweep()
	}

	const minLength = 10
	maxLength := uint32(3 * divRoundClosest(lengthSum, cnt))

	slot := Slot(d.mode)
	period := d.period()
	start := SlotStart(d.mode)

	for i := range d.sweep {
		se := d.sweep[i]
		if se.Length < minLength || se.Length > maxLength {
			continue
		}

		leOffset := applyMod(se.Timestamp+se.Length/2, d.modOffset[slot.Lighthouse], period)

		// Rebase so zero is the start of the sync slot preceding this
		// sweep. Upstream converts the offset to a beam angle.
		sweepOffset := int64(leOffset) - int64(start) + PulseWindow
		if sweepOffset <= 0 {
			panic("lightcap: negative sweep offset; schedule table misconfigured")
		}

		if d.confidence > d.params.EmitConfidence {
			d.emit(LightRecord{
				Index:       i,
				Sensor:      i,
				Acode:       AcodeFromBits(slot.Acode),
				SweepOffset: uint32(sweepOffset),
				Timestamp:   se.Timestamp,
				Length:      se.Length,
				Lighthouse:  slot.Lighthouse,
			})
		}
	}
}

func (d *Disambiguator) emit(rec LightRecord) {
	if d.stats != nil {
		d.stats.addRecord(rec)
	}
	if d.emitter != nil {
		d.emitter.EmitLight(rec)
	}
}
