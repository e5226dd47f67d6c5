package acquire

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBoard struct {
	mu       sync.Mutex
	prepared bool
	started  bool
	released bool
	reads    int
	queue    [][]Sample
	readErr  error
}

func (b *fakeBoard) Prepare() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prepared = true
	return nil
}

func (b *fakeBoard) StartStream() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.started = true
	return nil
}

func (b *fakeBoard) Read() ([]Sample, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reads++
	if b.readErr != nil {
		return nil, b.readErr
	}
	if len(b.queue) == 0 {
		return nil, nil
	}
	chunk := b.queue[0]
	b.queue = b.queue[1:]
	return chunk, nil
}

func (b *fakeBoard) StopStream() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.started = false
	return nil
}

func (b *fakeBoard) Release() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.released = true
	return nil
}

func (b *fakeBoard) readCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reads
}

func TestBoardSourceLifecycle(t *testing.T) {
	b := &fakeBoard{}
	src, err := NewBoardSource(b, 0)
	require.NoError(t, err)
	assert.True(t, b.prepared)
	assert.True(t, b.started)
	assert.True(t, src.Live())
	assert.Equal(t, DefaultChannels, src.Channels())

	require.NoError(t, src.Close())
	assert.False(t, src.Live())
	assert.False(t, b.started)
	assert.True(t, b.released)

	// Idempotent.
	require.NoError(t, src.Close())
}

func TestBoardSourcePullChunk(t *testing.T) {
	b := &fakeBoard{queue: [][]Sample{
		nil,
		{{Timestamp: 1, Values: []float64{9}}},
	}}
	src, err := NewBoardSource(b, 0)
	require.NoError(t, err)
	defer src.Close()

	chunk, err := src.PullChunk(100 * time.Millisecond)
	require.NoError(t, err)
	require.Len(t, chunk, 1)
	assert.Equal(t, 1.0, chunk[0].Timestamp)
}

func TestBoardSourcePullChunkTimeout(t *testing.T) {
	src, err := NewBoardSource(&fakeBoard{}, 0)
	require.NoError(t, err)
	defer src.Close()

	start := time.Now()
	chunk, err := src.PullChunk(30 * time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, chunk)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestBoardSourcePullChunkError(t *testing.T) {
	b := &fakeBoard{readErr: errors.New("ble dropped")}
	src, err := NewBoardSource(b, 0)
	require.NoError(t, err)
	defer src.Close()

	_, err = src.PullChunk(10 * time.Millisecond)
	assert.Error(t, err)
}

func TestBoardSourceKeepalivePolls(t *testing.T) {
	b := &fakeBoard{}
	src, err := NewBoardSource(b, time.Millisecond)
	require.NoError(t, err)

	time.Sleep(25 * time.Millisecond)
	assert.Greater(t, b.readCount(), 0)

	// Close joins the keepalive goroutine; no polls after it returns.
	require.NoError(t, src.Close())
	n := b.readCount()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, n, b.readCount())
}

func TestBoardSourceKeepaliveStopsOnError(t *testing.T) {
	b := &fakeBoard{readErr: errors.New("ble dropped")}
	src, err := NewBoardSource(b, time.Millisecond)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	// The loop stopped itself; Close must still join cleanly.
	require.NoError(t, src.Close())
}
