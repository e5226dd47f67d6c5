package acquire

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Board is the collaborator boundary to the hardware acquisition API:
// prepare/start/stop/release plus a non-blocking read of newly buffered
// samples.
type Board interface {
	Prepare() error
	StartStream() error
	// Read returns whatever the device buffered since the last Read,
	// without waiting.
	Read() ([]Sample, error)
	StopStream() error
	Release() error
}

// OpenBoard is the board driver hook. The default build carries no hardware
// driver; an integration registers one at startup.
var OpenBoard = func(id, serial, mac string) (Board, error) {
	return nil, ErrNoBoardBackend
}

const boardPollInterval = 10 * time.Millisecond

// BoardSource adapts a Board to the Source interface. An optional keepalive
// loop polls the device so an idle BLE link does not disconnect between
// recording windows.
type BoardSource struct {
	mu       sync.Mutex
	board    Board
	channels int
	live     bool

	stopKeepalive chan struct{}
	keepaliveDone chan struct{}
}

// NewBoardSource prepares the board and starts its sample stream. When
// keepAlive is positive a background poll at that interval keeps the link up
// until Close.
func NewBoardSource(b Board, keepAlive time.Duration) (*BoardSource, error) {
	if err := b.Prepare(); err != nil {
		return nil, fmt.Errorf("prepare board session: %w", err)
	}
	if err := b.StartStream(); err != nil {
		b.Release()
		return nil, fmt.Errorf("start board stream: %w", err)
	}
	s := &BoardSource{board: b, channels: DefaultChannels, live: true}
	if keepAlive > 0 {
		s.stopKeepalive = make(chan struct{})
		s.keepaliveDone = make(chan struct{})
		go s.keepalive(keepAlive)
	}
	return s, nil
}

// keepalive drains the device buffer at a fixed interval. It stops on the
// first poll error or when Close signals, closing keepaliveDone either way so
// Close can join it.
func (s *BoardSource) keepalive(interval time.Duration) {
	defer close(s.keepaliveDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopKeepalive:
			return
		case <-ticker.C:
			s.mu.Lock()
			_, err := s.board.Read()
			s.mu.Unlock()
			if err != nil {
				log.Warnf("Board keepalive error: %v", err)
				return
			}
		}
	}
}

func (s *BoardSource) PullChunk(timeout time.Duration) ([]Sample, error) {
	deadline := time.Now().Add(timeout)
	for {
		s.mu.Lock()
		chunk, err := s.board.Read()
		s.mu.Unlock()
		if err != nil {
			return nil, fmt.Errorf("read board data: %w", err)
		}
		if len(chunk) > 0 || !time.Now().Before(deadline) {
			return chunk, nil
		}
		time.Sleep(boardPollInterval)
	}
}

func (s *BoardSource) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

func (s *BoardSource) Channels() int { return s.channels }

// Close stops the keepalive loop, then stops and releases the board session.
func (s *BoardSource) Close() error {
	if s.stopKeepalive != nil {
		close(s.stopKeepalive)
		<-s.keepaliveDone
		s.stopKeepalive = nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		return nil
	}
	s.live = false
	if err := s.board.StopStream(); err != nil {
		s.board.Release()
		return fmt.Errorf("stop board stream: %w", err)
	}
	if err := s.board.Release(); err != nil {
		return fmt.Errorf("release board session: %w", err)
	}
	return nil
}
