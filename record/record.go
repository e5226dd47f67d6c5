// Package record captures acquisition samples into marker-tagged CSV rows.
package record

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/F2HEAL/Sweep/acquire"
)

// pullTimeout bounds each chunk pull so the wall-clock duration check stays
// responsive.
const pullTimeout = 100 * time.Millisecond

// RowWriter receives one CSV row at a time. *csv.Writer satisfies it.
type RowWriter interface {
	Write(record []string) error
}

// Record pulls samples from src until duration has elapsed on the wall clock
// and writes them to w in arrival order, one row per sample:
// [timestamp, ch_0..ch_{N-1}, marker]. The marker labels only the first row
// of the call; it reports whether the marker landed on any row at all, which
// is false when no samples arrived in time.
func Record(src acquire.Source, duration time.Duration, w RowWriter, marker string) (bool, error) {
	start := time.Now()
	markerWritten := false

	for time.Since(start) < duration {
		chunk, err := src.PullChunk(pullTimeout)
		if err != nil {
			return markerWritten, fmt.Errorf("pull samples: %w", err)
		}
		for _, sample := range chunk {
			label := ""
			if marker != "" && !markerWritten {
				label = marker
				markerWritten = true
			}
			if err := w.Write(Row(sample, src.Channels(), label)); err != nil {
				return markerWritten, fmt.Errorf("write row: %w", err)
			}
		}
	}
	return markerWritten, nil
}

// Row renders one sample as a CSV record, truncated to the fixed channel
// count agreed at setup.
func Row(s acquire.Sample, channels int, marker string) []string {
	values := s.Values
	if len(values) > channels {
		values = values[:channels]
	}
	row := make([]string, 0, len(values)+2)
	row = append(row, formatFloat(s.Timestamp))
	for _, v := range values {
		row = append(row, formatFloat(v))
	}
	return append(row, marker)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// OpenNew creates (truncating) the per-sweep-point recording file.
func OpenNew(path string) (*Sink, error) {
	return open(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY)
}

// OpenAppend opens a baseline recording file, extending it across multiple
// recording calls within one run.
func OpenAppend(path string) (*Sink, error) {
	return open(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY)
}
