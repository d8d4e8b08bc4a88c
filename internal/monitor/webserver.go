// Package monitor serves the HTTP interface for watching a running
// disambiguator: JSON status for dashboards and go-echarts views of the
// phase drift and sweep geometry.
package monitor

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/banshee-data/pulse.track/internal/lightcap"
	"github.com/banshee-data/pulse.track/internal/lightdb"
)

// WebServer handles the HTTP monitoring interface.
type WebServer struct {
	address string
	stats   *lightcap.Stats
	db      *lightdb.DB
	runID   string
	server  *http.Server
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address string
	Stats   *lightcap.Stats
	DB      *lightdb.DB // optional; enables run lookups
	RunID   string
}

// NewWebServer creates a monitor server with the provided configuration.
func NewWebServer(config WebServerConfig) *WebServer {
	ws := &WebServer{
		address: config.Address,
		stats:   config.Stats,
		db:      config.DB,
		runID:   config.RunID,
	}

	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}

	return ws
}

func (ws *WebServer) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// Start begins the HTTP server in a goroutine and handles graceful shutdown
// when the context is cancelled.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		log.Printf("starting monitor server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start monitor server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down monitor server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("monitor server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			log.Printf("monitor server force close error: %v", err)
		}
	}

	return nil
}

// setupRoutes configures the HTTP routes and handlers.
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/api/status", ws.handleStatus)
	mux.HandleFunc("/api/run", ws.handleRun)
	mux.HandleFunc("/charts/drift", ws.handleDriftChart)
	mux.HandleFunc("/charts/sweep-offsets", ws.handleSweepOffsetChart)

	return mux
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ws.writeJSON(w, map[string]string{"status": "ok"})
}

// handleStatus returns the live disambiguator counters and lock state.
func (ws *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if ws.stats == nil {
		ws.writeJSONError(w, http.StatusInternalServerError, "no stats source configured")
		return
	}
	ws.writeJSON(w, ws.stats.Snapshot())
}

// handleRun returns the metadata of the active recording run, if any.
func (ws *WebServer) handleRun(w http.ResponseWriter, r *http.Request) {
	if ws.db == nil || ws.runID == "" {
		ws.writeJSONError(w, http.StatusNotFound, "no recording run active")
		return
	}
	run, err := ws.db.GetRun(ws.runID)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	ws.writeJSON(w, map[string]interface{}{
		"run_id":       run.ID,
		"source":       run.Source,
		"started_at":   run.StartedAt,
		"event_count":  run.EventCount,
		"record_count": run.RecordCount,
	})
}
