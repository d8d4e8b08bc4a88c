package lightcap

import "github.com/banshee-data/pulse.track/internal/monitoring"

// Phase discovery. A single sync pulse with the data bit masked out is
// ambiguous between two physical slots, so the search runs over the rolling
// sync history instead: guess the slot of the newest entry, derive the
// anchor that guess implies, and count how many history entries the anchor
// explains. Only one phase explains (nearly) all of them.

// inlier gates in ticks.
const (
	discoverAcodeError  = 500
	discoverOffsetError = 500
)

// attemptFindMode runs the unlocked path for one event: coalesce sync
// pulses, and each time an accumulated sync seals, try to discover the
// phase from the history.
func (d *Disambiguator) attemptFindMode(le LightEvent) {
	if Classify(le.Length) == ClassSync {
		if d.lastWasSync && d.acc.overlapsWith(le) {
			d.acc.register(le)
			return
		}

		// A new distinct sync. Sealing the previous one may complete the
		// history enough to lock; if so the triggering event is consumed
		// by the transition.
		if d.lastWasSync && d.endUnknownSync() {
			return
		}

		d.acc.reset()
		d.acc.register(le)
		d.lastWasSync = true
		return
	}

	// A sweep ends any pending sync.
	if d.lastWasSync {
		if d.endUnknownSync() {
			return
		}
		d.acc.reset()
	}
	d.lastWasSync = false
}

// endUnknownSync seals the accumulator into the history and attempts a
// lock. Returns true when the state machine locked.
func (d *Disambiguator) endUnknownSync() bool {
	entry, ok := d.acc.seal()
	if !ok {
		return false
	}
	d.history.push(entry)
	if d.stats != nil {
		d.stats.addSync()
	}

	mode, anchor, sixtyHz, ok := d.discover()
	if !ok {
		d.failures++
		if d.failures > d.params.FailureReportEvery {
			d.failures = 0
			monitoring.Logf("could not find disambiguator state for %s", d.name)
		}
		return false
	}

	d.modOffset[0] = anchor
	d.modOffset[1] = anchor
	d.confidence = 0
	d.failures = 0
	d.lastWasSync = false
	d.ctx.noteLock(sixtyHz)
	d.setMode(mode)
	if d.stats != nil {
		d.stats.addLock()
	}
	monitoring.Logf("locked onto state %d (%s) at %d for %s", mode, mode, anchor, d.name)
	return true
}

// discover searches for the unique period phase consistent with the sync
// history. It returns the slot of the newest entry, the anchor, and the
// regime.
func (d *Disambiguator) discover() (Mode, uint32, bool, bool) {
	re := d.history.latest()
	if re == nil {
		return ModeUnknown, 0, false, false
	}

	// Mask out the data bit; pulse width alone cannot resolve it.
	acode := findAcode(re.longestLength)
	if acode < 0 {
		return ModeUnknown, 0, false, false
	}
	acode &= acodeSkipBit | acodeAxisBit

	regimeKnown, knownSixty := d.ctx.regime()

	for guess := Mode(1); guess <= SlotCount; guess++ {
		s := Slot(guess)
		if s.Acode != acode || s.IsSweep {
			continue
		}

		anchor := re.firstTimestamp - SlotStart(guess)

		for _, sixtyHz := range []bool{false, true} {
			// A slot in the second half of the table only exists in the
			// full regime.
			if sixtyHz && guess >= sixtyHzBoundary {
				continue
			}
			// A sibling object already locked the regime; test only that.
			if regimeKnown && sixtyHz != knownSixty {
				continue
			}

			if d.countInliers(anchor, sixtyHz) >= SyncHistoryLen-1 {
				return guess, anchor, sixtyHz, true
			}
		}
	}

	return ModeUnknown, 0, false, false
}

// countInliers counts history entries the candidate anchor explains: the
// entry must land in a sync slot with both its timing and its phase offset
// within the gates. Under 60hz, entries landing in lighthouse B slots are
// excluded outright; that station does not transmit in that regime.
func (d *Disambiguator) countInliers(anchor uint32, sixtyHz bool) int {
	period := Period(sixtyHz)

	inliers := 0
	for i := range d.history.entries {
		e := &d.history.entries[i]
		if e.longestLength == 0 {
			continue
		}

		offset := applyMod(e.firstTimestamp, anchor, period)
		slot, offsetError := FindSlotByOffset(offset)

		s := Slot(slot)
		if s.IsSweep {
			continue
		}
		if sixtyHz && s.Lighthouse == LighthouseB {
			continue
		}

		if acodeError(s.Acode, e.longestLength) <= discoverAcodeError &&
			offsetError <= discoverOffsetError {
			inliers++
		}
	}
	return inliers
}
