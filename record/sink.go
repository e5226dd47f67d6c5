package record

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Sink is a CSV recording file. Rows are buffered by the csv writer and
// flushed on Close.
type Sink struct {
	f      *os.File
	w      *csv.Writer
	closed bool
}

func open(path string, flag int) (*Sink, error) {
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open recording file: %w", err)
	}
	return &Sink{f: f, w: csv.NewWriter(f)}, nil
}

func (s *Sink) Write(record []string) error {
	return s.w.Write(record)
}

// Close flushes buffered rows and closes the file. Subsequent calls are
// no-ops, so Close can sit both in a defer and on the success path.
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.w.Flush()
	err := s.w.Error()
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("close recording file %s: %w", s.f.Name(), err)
	}
	return nil
}

// Path returns the file path the sink writes to.
func (s *Sink) Path() string {
	return s.f.Name()
}
