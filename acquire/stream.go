package acquire

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// Inlet is the collaborator boundary to the realtime streaming transport:
// an already-resolved named stream that samples can be pulled from.
type Inlet interface {
	Pull(timeout time.Duration) ([]Sample, error)
	Name() string
	ChannelCount() int
	NominalRate() float64
	Close() error
}

// Resolver locates a named stream and opens an inlet on it.
type Resolver func(name string) (Inlet, error)

// ResolveStream is the resolver used for live streams. The default build has
// no streaming transport linked in; an integration registers one at startup.
var ResolveStream Resolver = func(name string) (Inlet, error) {
	return nil, ErrNoStreamBackend
}

// StreamSource adapts an Inlet to the Source interface.
type StreamSource struct {
	inlet    Inlet
	channels int
	closed   bool
}

// OpenStream resolves the named stream and wraps it as a Source with the
// fixed channel count used for recording.
func OpenStream(resolve Resolver, name string) (*StreamSource, error) {
	log.Infof("Resolving stream: %s", name)
	inlet, err := resolve(name)
	if err != nil {
		return nil, fmt.Errorf("resolve stream %q: %w", name, err)
	}
	log.Infof("Connected to stream: %s (%d ch @ %.0f Hz)",
		inlet.Name(), inlet.ChannelCount(), inlet.NominalRate())
	return &StreamSource{inlet: inlet, channels: DefaultChannels}, nil
}

func (s *StreamSource) PullChunk(timeout time.Duration) ([]Sample, error) {
	return s.inlet.Pull(timeout)
}

func (s *StreamSource) Live() bool { return !s.closed }

func (s *StreamSource) Channels() int { return s.channels }

func (s *StreamSource) Close() error {
	s.closed = true
	return s.inlet.Close()
}
