package acquire

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultReplayRate is the sample rate used when replaying a recording, in
// samples per second. Matches the FreeEEG32 default.
const DefaultReplayRate = 512

// ReplaySource replays a previously recorded CSV file as if it were a live
// device, paced at a nominal sample rate and looping at end-of-file. It backs
// the playback device configuration (Board.Master + Board.File).
type ReplaySource struct {
	samples   []Sample
	channels  int
	rate      float64
	start     time.Time
	delivered int64
	closed    bool
}

// OpenReplay loads the CSV recording at path. Rows are
// [timestamp, ch_0..ch_N, marker]; the marker column and rows that do not
// parse are skipped.
func OpenReplay(path string, rate float64) (*ReplaySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open playback file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse playback file %s: %w", path, err)
	}

	var samples []Sample
	for _, row := range rows {
		s, ok := parseRow(row)
		if ok {
			samples = append(samples, s)
		}
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("playback file %s contains no samples", path)
	}
	if rate <= 0 {
		rate = DefaultReplayRate
	}
	channels := min(DefaultChannels, len(samples[0].Values))
	log.Infof("Replaying %d samples from %s (%d ch @ %.0f Hz, looped)",
		len(samples), path, channels, rate)
	return &ReplaySource{
		samples:  samples,
		channels: channels,
		rate:     rate,
		start:    time.Now(),
	}, nil
}

// parseRow reads one [timestamp, ch_0..ch_N, marker] row. The trailing
// marker column is dropped; rows that do not parse (headers) are skipped.
func parseRow(row []string) (Sample, bool) {
	if len(row) < 3 {
		return Sample{}, false
	}
	ts, err := strconv.ParseFloat(row[0], 64)
	if err != nil {
		return Sample{}, false
	}
	values := make([]float64, 0, len(row)-2)
	for _, field := range row[1 : len(row)-1] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Sample{}, false
		}
		values = append(values, v)
	}
	return Sample{Timestamp: ts, Values: values}, true
}

// PullChunk returns the samples whose scheduled replay time has arrived,
// re-stamped against the wall clock so consecutive runs stay monotonic.
func (s *ReplaySource) PullChunk(timeout time.Duration) ([]Sample, error) {
	deadline := time.Now().Add(timeout)
	for {
		due := int64(time.Since(s.start).Seconds() * s.rate)
		if due > s.delivered {
			return s.take(due - s.delivered), nil
		}
		if !time.Now().Before(deadline) {
			return nil, nil
		}
		time.Sleep(time.Duration(float64(time.Second) / s.rate))
	}
}

func (s *ReplaySource) take(n int64) []Sample {
	startUnix := float64(s.start.UnixNano()) / float64(time.Second)
	chunk := make([]Sample, 0, n)
	for range n {
		src := s.samples[s.delivered%int64(len(s.samples))]
		chunk = append(chunk, Sample{
			Timestamp: startUnix + float64(s.delivered)/s.rate,
			Values:    src.Values,
		})
		s.delivered++
	}
	return chunk
}

func (s *ReplaySource) Live() bool { return !s.closed }

func (s *ReplaySource) Channels() int { return s.channels }

func (s *ReplaySource) Close() error {
	s.closed = true
	return nil
}
