package lightcap

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Flat-file lightcap logs. Each line is
//
//	<seconds> <sensor> <length> <timestamp>
//
// where seconds is wall time since capture start (informational only; the
// tick timestamp is authoritative), sensor the sensor index, and length and
// timestamp in ticks. Capture rigs and the gen-lightcap tool write this
// format; the replay server reads it back.

// ReadLog parses a lightcap log stream. Blank lines and lines starting
// with '#' are skipped.
func ReadLog(r io.Reader) ([]LightEvent, error) {
	var events []LightEvent

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("lightcap log line %d: want 4 fields, got %d", lineNo, len(fields))
		}

		sensor, err := strconv.ParseUint(fields[1], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("lightcap log line %d: bad sensor %q: %w", lineNo, fields[1], err)
		}
		length, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("lightcap log line %d: bad length %q: %w", lineNo, fields[2], err)
		}
		timestamp, err := strconv.ParseUint(fields[3], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("lightcap log line %d: bad timestamp %q: %w", lineNo, fields[3], err)
		}

		events = append(events, LightEvent{
			SensorID:  uint8(sensor),
			Timestamp: uint32(timestamp),
			Length:    uint32(length),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading lightcap log: %w", err)
	}

	return events, nil
}

// WriteLog writes events in the flat-file format. The seconds column is
// reconstructed from tick deltas, accumulating across 32-bit wraps.
func WriteLog(w io.Writer, events []LightEvent) error {
	bw := bufio.NewWriter(w)

	var elapsed float64
	var last uint32
	for i, le := range events {
		if i > 0 {
			elapsed += float64(le.Timestamp-last) / float64(TimebaseHz)
		}
		last = le.Timestamp

		if _, err := fmt.Fprintf(bw, "%.6f %2d %4d %9d\n",
			elapsed, le.SensorID, le.Length, le.Timestamp); err != nil {
			return fmt.Errorf("writing lightcap log: %w", err)
		}
	}

	return bw.Flush()
}
