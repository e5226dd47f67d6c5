// Package acquire abstracts the biosignal acquisition backends behind one
// chunk-pull interface, so the sweep orchestrator is written once and
// parameterized over where the samples come from: a named realtime stream, a
// hardware board API, or a playback file.
package acquire

import (
	"errors"
	"time"
)

// DefaultChannels is the number of signal channels kept per sample when the
// backend does not dictate one (the SynAmpsRT amplifier exposes 33).
const DefaultChannels = 33

var (
	// ErrNoStreamBackend is returned when the build carries no realtime
	// stream resolver.
	ErrNoStreamBackend = errors.New("acquire: no stream backend linked into this build")
	// ErrNoBoardBackend is returned when the build carries no hardware
	// board driver.
	ErrNoBoardBackend = errors.New("acquire: no board backend linked into this build")
)

// Sample is one timestamped multi-channel reading.
type Sample struct {
	Timestamp float64
	Values    []float64
}

// Source supplies timestamped samples in arrival order.
type Source interface {
	// PullChunk returns whatever samples arrived since the last pull,
	// waiting up to timeout for at least one. An empty chunk with a nil
	// error means nothing arrived in time.
	PullChunk(timeout time.Duration) ([]Sample, error)
	// Live reports whether the source is still delivering.
	Live() bool
	// Channels is the fixed per-sample channel count agreed at setup.
	Channels() int
	Close() error
}
