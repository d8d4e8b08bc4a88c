// Package lightdb persists raw light events and the normalized records the
// disambiguator emits, grouped into replay runs. The store backs offline
// analysis and the monitor's historical views.
package lightdb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/pulse.track/internal/lightcap"
)

type DB struct {
	*sql.DB
}

// Open opens (creating if needed) a lightcap database at path. The base
// schema is applied inline; later schema changes ship as migrations (see
// migrate.go).
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id            TEXT PRIMARY KEY,
			source            TEXT,
			started_at        BIGINT,
			finished_at       BIGINT,
			event_count       BIGINT DEFAULT 0,
			record_count      BIGINT DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS light_events (
			run_id            TEXT,
			sensor_id         INTEGER,
			timestamp_ticks   BIGINT,
			length_ticks      BIGINT,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
		CREATE TABLE IF NOT EXISTS light_records (
			run_id            TEXT,
			idx               INTEGER,
			sensor            INTEGER,
			acode             INTEGER,
			sweep_offset      BIGINT,
			timestamp_ticks   BIGINT,
			length_ticks      BIGINT,
			lighthouse        INTEGER,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
		CREATE INDEX IF NOT EXISTS idx_light_events_run ON light_events(run_id);
		CREATE INDEX IF NOT EXISTS idx_light_records_run ON light_records(run_id);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply base schema: %w", err)
	}

	return &DB{db}, nil
}

// Run describes one recorded replay or capture session.
type Run struct {
	ID          string
	Source      string
	StartedAt   time.Time
	FinishedAt  *time.Time
	EventCount  int64
	RecordCount int64
}

// CreateRun registers a new run and returns its id.
func (db *DB) CreateRun(source string) (string, error) {
	id := uuid.New().String()
	_, err := db.Exec(`INSERT INTO runs (run_id, source, started_at) VALUES (?, ?, ?)`,
		id, source, time.Now().Unix())
	if err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// FinishRun stamps a run complete with its final counters.
func (db *DB) FinishRun(id string, events, records int64) error {
	_, err := db.Exec(
		`UPDATE runs SET finished_at = ?, event_count = ?, record_count = ? WHERE run_id = ?`,
		time.Now().Unix(), events, records, id)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", id, err)
	}
	return nil
}

// GetRun fetches one run's metadata.
func (db *DB) GetRun(id string) (*Run, error) {
	row := db.QueryRow(
		`SELECT run_id, source, started_at, finished_at, event_count, record_count FROM runs WHERE run_id = ?`, id)

	var r Run
	var startedUnix int64
	var finished sql.NullInt64
	if err := row.Scan(&r.ID, &r.Source, &startedUnix, &finished, &r.EventCount, &r.RecordCount); err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	r.StartedAt = time.Unix(startedUnix, 0)
	if finished.Valid {
		t := time.Unix(finished.Int64, 0)
		r.FinishedAt = &t
	}
	return &r, nil
}

// RecordEvents appends a batch of raw events to a run in one transaction.
func (db *DB) RecordEvents(runID string, events []lightcap.LightEvent) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin event batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO light_events (run_id, sensor_id, timestamp_ticks, length_ticks) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer stmt.Close()

	for _, le := range events {
		if _, err := stmt.Exec(runID, le.SensorID, le.Timestamp, le.Length); err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
	}

	return tx.Commit()
}

// RecordLight appends one emitted record to a run.
func (db *DB) RecordLight(runID string, rec lightcap.LightRecord) error {
	_, err := db.Exec(
		`INSERT INTO light_records (run_id, idx, sensor, acode, sweep_offset, timestamp_ticks, length_ticks, lighthouse)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, rec.Index, rec.Sensor, rec.Acode.Bits(), rec.SweepOffset, rec.Timestamp, rec.Length, rec.Lighthouse)
	if err != nil {
		return fmt.Errorf("failed to insert light record: %w", err)
	}
	return nil
}

// LightRecords loads every emitted record for a run in insertion order.
func (db *DB) LightRecords(runID string) ([]lightcap.LightRecord, error) {
	rows, err := db.Query(
		`SELECT idx, sensor, acode, sweep_offset, timestamp_ticks, length_ticks, lighthouse
		 FROM light_records WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query light records: %w", err)
	}
	defer rows.Close()

	var out []lightcap.LightRecord
	for rows.Next() {
		var rec lightcap.LightRecord
		var acodeBits int
		if err := rows.Scan(&rec.Index, &rec.Sensor, &acodeBits, &rec.SweepOffset,
			&rec.Timestamp, &rec.Length, &rec.Lighthouse); err != nil {
			return nil, fmt.Errorf("failed to scan light record: %w", err)
		}
		rec.Acode = lightcap.AcodeFromBits(acodeBits)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountEvents returns how many raw events a run holds.
func (db *DB) CountEvents(runID string) (int64, error) {
	var n int64
	err := db.QueryRow(`SELECT COUNT(*) FROM light_events WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}
