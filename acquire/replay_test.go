package acquire

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRecording(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recording.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOpenReplay(t *testing.T) {
	path := writeRecording(t, "1.5,10,20,30,333\n1.6,11,21,31,\n1.7,12,22,32,\n")

	src, err := OpenReplay(path, 1000)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 3, src.Channels())
	assert.True(t, src.Live())
}

func TestReplayPullChunkDeliversAndLoops(t *testing.T) {
	path := writeRecording(t, "1,10,\n2,20,\n")

	src, err := OpenReplay(path, 1000)
	require.NoError(t, err)
	defer src.Close()

	var got []Sample
	deadline := time.Now().Add(time.Second)
	for len(got) < 5 && time.Now().Before(deadline) {
		chunk, err := src.PullChunk(50 * time.Millisecond)
		require.NoError(t, err)
		got = append(got, chunk...)
	}
	require.GreaterOrEqual(t, len(got), 5)

	// Source rows repeat past end-of-file.
	assert.Equal(t, []float64{10}, got[0].Values)
	assert.Equal(t, []float64{20}, got[1].Values)
	assert.Equal(t, []float64{10}, got[2].Values)

	// Re-stamped timestamps are strictly increasing.
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i].Timestamp, got[i-1].Timestamp)
	}
}

func TestReplaySkipsHeaderAndMarkerColumns(t *testing.T) {
	path := writeRecording(t, "timestamp,ch0,marker\n3.5,42,\n")

	src, err := OpenReplay(path, 100)
	require.NoError(t, err)
	defer src.Close()
	assert.Equal(t, 1, src.Channels())
}

func TestOpenReplayEmptyFile(t *testing.T) {
	path := writeRecording(t, "timestamp,ch0\n")
	_, err := OpenReplay(path, 100)
	assert.Error(t, err)
}

func TestOpenReplayMissingFile(t *testing.T) {
	_, err := OpenReplay(filepath.Join(t.TempDir(), "nope.csv"), 100)
	assert.Error(t, err)
}

func TestReplayClose(t *testing.T) {
	path := writeRecording(t, "1,10,\n")
	src, err := OpenReplay(path, 100)
	require.NoError(t, err)
	require.NoError(t, src.Close())
	assert.False(t, src.Live())
}
