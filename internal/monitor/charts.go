package monitor

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// handleDriftChart renders the recent anchor-correction window (ticks per
// sync) as an HTML line chart. A healthy lock sits near zero with
// occasional single-digit corrections; a ramp means the base station and
// sensor oscillators disagree.
func (ws *WebServer) handleDriftChart(w http.ResponseWriter, r *http.Request) {
	if ws.stats == nil {
		ws.writeJSONError(w, http.StatusInternalServerError, "no stats source configured")
		return
	}

	samples := ws.stats.DriftSamples()
	if len(samples) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no drift samples recorded yet")
		return
	}

	xs := make([]int, len(samples))
	data := make([]opts.LineData, len(samples))
	for i, v := range samples {
		xs[i] = i
		data[i] = opts.LineData{Value: v}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Anchor Drift", Theme: "dark", Width: "1200px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Phase anchor drift", Subtitle: fmt.Sprintf("last %d syncs", len(samples))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "sync"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ticks"}),
	)
	line.SetXAxis(xs)
	line.AddSeries("drift", data)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleSweepOffsetChart renders the recent emitted sweep offsets as an
// HTML scatter. Offsets cluster by sensor position; gaps or outliers point
// at occlusion or reflections.
func (ws *WebServer) handleSweepOffsetChart(w http.ResponseWriter, r *http.Request) {
	if ws.stats == nil {
		ws.writeJSONError(w, http.StatusInternalServerError, "no stats source configured")
		return
	}

	offsets := ws.stats.SweepOffsets()
	if len(offsets) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no sweep records emitted yet")
		return
	}

	data := make([]opts.ScatterData, len(offsets))
	for i, v := range offsets {
		data[i] = opts.ScatterData{Value: []interface{}{i, v}}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Sweep Offsets", Theme: "dark", Width: "1200px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Emitted sweep offsets", Subtitle: fmt.Sprintf("last %d records", len(offsets))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "record"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "offset (ticks)"}),
	)
	scatter.AddSeries("sweep_offset", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
