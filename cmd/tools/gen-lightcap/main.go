// Command gen-lightcap generates schedule-true lightcap event logs for
// testing replay without hardware.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/banshee-data/pulse.track/internal/lightcap"
)

func main() {
	output := flag.String("o", "sample.lightcap", "output path")
	periods := flag.Int("n", 8, "number of schedule periods")
	sensorCt := flag.Int("sensors", 10, "sensor count")
	sixtyHz := flag.Bool("60hz", false, "single-lighthouse 60hz regime")
	jitter := flag.Uint("jitter", 50, "max timing jitter in ticks")
	drift := flag.Int("drift", 0, "schedule drift per period in ticks")
	dataBits := flag.Bool("databits", true, "alternate the OOTX data bit")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	cfg := lightcap.DefaultSynthConfig()
	cfg.Periods = *periods
	cfg.Sensors = *sensorCt
	cfg.SixtyHz = *sixtyHz
	cfg.JitterTicks = uint32(*jitter)
	cfg.DriftPerPeriod = int32(*drift)
	cfg.DataBits = *dataBits
	cfg.Seed = *seed

	events := lightcap.Synthesize(cfg)

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("failed to create output: %v", err)
	}
	defer f.Close()

	if err := lightcap.WriteLog(f, events); err != nil {
		log.Fatalf("failed to write log: %v", err)
	}
	log.Printf("✓ Created %s: %d events, %d periods", *output, len(events), *periods)
}
