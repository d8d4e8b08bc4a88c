// Package lightcap disambiguates the raw optical pulse stream of a
// lighthouse-tracked object.
//
// Two base stations alternately emit short sync flashes and long rotating
// sweeps on a strictly periodic schedule. Each sensor on the tracked
// object reports only (sensor, timestamp, on-duration); this package
// decides which station, slot and axis every pulse belongs to, locks onto
// the schedule phase, tracks drift, and emits normalized LightRecord
// values to the upstream pose solver.
//
// Key types: Disambiguator (per-object state machine), Context
// (process-wide regime state), LightEvent in, LightRecord out.
//
// All state mutation happens inside Ingest; callers serialize events per
// object. Stats is the one read-concurrent surface.
package lightcap
