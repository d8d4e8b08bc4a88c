package lightdb

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/pulse.track/internal/lightcap"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunLifecycle(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreateRun("sample.lightcap")
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if id == "" {
		t.Fatal("empty run id")
	}

	run, err := db.GetRun(id)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Source != "sample.lightcap" {
		t.Errorf("Source = %q", run.Source)
	}
	if run.FinishedAt != nil {
		t.Error("fresh run already finished")
	}

	if err := db.FinishRun(id, 960, 150); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	run, err = db.GetRun(id)
	if err != nil {
		t.Fatalf("GetRun after finish: %v", err)
	}
	if run.FinishedAt == nil {
		t.Error("finished run has no finish time")
	}
	if run.EventCount != 960 || run.RecordCount != 150 {
		t.Errorf("counts = (%d, %d), want (960, 150)", run.EventCount, run.RecordCount)
	}
}

func TestRecordEvents(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreateRun("test")
	if err != nil {
		t.Fatal(err)
	}

	events := []lightcap.LightEvent{
		{SensorID: 0, Timestamp: 1000000, Length: 4750},
		{SensorID: 1, Timestamp: 1000001, Length: 4750},
		{SensorID: 3, Timestamp: 1100000, Length: 120},
	}
	if err := db.RecordEvents(id, events); err != nil {
		t.Fatalf("RecordEvents: %v", err)
	}

	n, err := db.CountEvents(id)
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if n != 3 {
		t.Errorf("CountEvents = %d, want 3", n)
	}
}

func TestLightRecordRoundTrip(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreateRun("test")
	if err != nil {
		t.Fatal(err)
	}

	records := []lightcap.LightRecord{
		{
			Index:      lightcap.SyncIndex,
			Sensor:     -12,
			Acode:      lightcap.AcodeFromBits(6),
			Timestamp:  2000000,
			Length:     5750,
			Lighthouse: lightcap.LighthouseA,
		},
		{
			Index:       4,
			Sensor:      4,
			Acode:       lightcap.AcodeFromBits(4),
			SweepOffset: 92000,
			Timestamp:   2100000,
			Length:      130,
			Lighthouse:  lightcap.LighthouseA,
		},
	}
	for _, rec := range records {
		if err := db.RecordLight(id, rec); err != nil {
			t.Fatalf("RecordLight: %v", err)
		}
	}

	got, err := db.LightRecords(id)
	if err != nil {
		t.Fatalf("LightRecords: %v", err)
	}
	if diff := cmp.Diff(records, got); diff != "" {
		t.Errorf("round trip mismatch (-wrote +read):\n%s", diff)
	}
}

func TestMigrations(t *testing.T) {
	db := openTestDB(t)

	migrationsDir := "../../migrations"

	if err := db.MigrateUp(migrationsDir); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}

	version, dirty, err := db.MigrateVersion(migrationsDir)
	if err != nil {
		t.Fatalf("MigrateVersion: %v", err)
	}
	if dirty {
		t.Error("migration left the database dirty")
	}
	if version == 0 {
		t.Error("no migration applied")
	}

	// The label column from the migration must be writable.
	if _, err := db.Exec(`UPDATE runs SET label = 'x' WHERE 1=0`); err != nil {
		t.Errorf("label column missing after migration: %v", err)
	}

	if err := db.MigrateDown(migrationsDir); err != nil {
		t.Fatalf("MigrateDown: %v", err)
	}
}
