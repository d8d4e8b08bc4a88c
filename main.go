// Command pulse-track replays a recorded lightcap event log through the
// disambiguator, optionally recording the stream and the emitted records
// to sqlite, and serves the monitoring interface once the replay completes.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/pulse.track/internal/config"
	"github.com/banshee-data/pulse.track/internal/lightcap"
	"github.com/banshee-data/pulse.track/internal/lightdb"
	"github.com/banshee-data/pulse.track/internal/monitor"
)

const DB_FILE = "lightcap_data.db"

var (
	logPath    = flag.String("log", "", "lightcap event log to replay")
	dbPath     = flag.String("db", DB_FILE, "sqlite database path")
	listen     = flag.String("listen", ":8080", "monitor listen address")
	sensors    = flag.Int("sensors", 32, "sensor count of the tracked object")
	objectName = flag.String("object", "WM0", "tracked object name used in diagnostics")
	tuningPath = flag.String("tuning", "", "optional tuning config JSON")
	record     = flag.Bool("record", true, "record events and emissions to the database")
	serve      = flag.Bool("serve", true, "serve the monitor after replay completes")
)

func main() {
	flag.Parse()

	if *logPath == "" {
		log.Fatal("missing -log: need a lightcap event log to replay")
	}

	params := lightcap.DefaultParams()
	if *tuningPath != "" {
		tuning, err := config.LoadTuningConfig(*tuningPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
		tuning.Apply(&params)
	}

	f, err := os.Open(*logPath)
	if err != nil {
		log.Fatalf("failed to open lightcap log: %v", err)
	}
	events, err := lightcap.ReadLog(f)
	f.Close()
	if err != nil {
		log.Fatalf("failed to parse lightcap log: %v", err)
	}
	log.Printf("loaded %d events from %s", len(events), *logPath)

	var db *lightdb.DB
	var runID string
	if *record {
		db, err = lightdb.Open(*dbPath)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		runID, err = db.CreateRun(*logPath)
		if err != nil {
			log.Fatalf("failed to create run: %v", err)
		}
		log.Printf("recording to run %s", runID)
	}

	stats := lightcap.NewStats()

	var recordCount int64
	emitter := lightcap.EmitterFunc(func(rec lightcap.LightRecord) {
		recordCount++
		if db != nil {
			if err := db.RecordLight(runID, rec); err != nil {
				log.Printf("failed to record light record: %v", err)
			}
		}
	})

	ctx := lightcap.NewContext()
	d := lightcap.New(ctx, *objectName, *sensors, emitter, params)
	d.SetStats(stats)

	for _, le := range events {
		d.Ingest(le)
	}
	log.Printf("replay complete: mode=%s confidence=%d records=%d",
		d.Mode(), d.Confidence(), recordCount)

	if db != nil {
		if err := db.RecordEvents(runID, events); err != nil {
			log.Printf("failed to record raw events: %v", err)
		}
		if err := db.FinishRun(runID, int64(len(events)), recordCount); err != nil {
			log.Printf("failed to finish run: %v", err)
		}
	}

	if !*serve {
		return
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ws := monitor.NewWebServer(monitor.WebServerConfig{
		Address: *listen,
		Stats:   stats,
		DB:      db,
		RunID:   runID,
	})
	if err := ws.Start(sigCtx); err != nil {
		log.Printf("monitor server error: %v", err)
	}
}
