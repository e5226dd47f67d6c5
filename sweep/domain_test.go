package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/F2HEAL/Sweep/config"
)

func TestDomainIterationOrder(t *testing.T) {
	d := Domain{
		Channels:    []int{0, 1},
		Frequencies: []int{10, 20},
		Volumes:     []int{50, 60},
	}

	var got []Point
	for pt := range d.Points() {
		got = append(got, pt)
	}

	// Channel outermost, frequency middle, volume innermost, all ascending.
	want := []Point{
		{0, 10, 50}, {0, 10, 60},
		{0, 20, 50}, {0, 20, 60},
		{1, 10, 50}, {1, 10, 60},
		{1, 20, 50}, {1, 20, 60},
	}
	assert.Equal(t, want, got)
}

func TestDomainTotal(t *testing.T) {
	d := Domain{
		Channels:    []int{0, 1, 2},
		Frequencies: []int{10, 20},
		Volumes:     []int{50},
	}
	assert.Equal(t, 6, d.Total(1))
	assert.Equal(t, 24, d.Total(4))
}

func TestNewDomainFromConfig(t *testing.T) {
	m := &config.Measurement{
		Channel:   config.Range{Start: 0, End: 2, Steps: 1},
		Frequency: config.Range{Start: 10, End: 10, Steps: 1},
		Volume:    config.Range{Start: 50, End: 50, Steps: 1},
	}
	d := NewDomain(m)

	assert.Equal(t, []int{0, 1, 2}, d.Channels)
	assert.Equal(t, []int{10}, d.Frequencies)
	assert.Equal(t, []int{50}, d.Volumes)
	assert.Equal(t, 6, d.Total(2))

	count := 0
	for range d.Points() {
		count++
	}
	require.Equal(t, 3, count)
}

func TestDomainPointsEarlyBreak(t *testing.T) {
	d := Domain{Channels: []int{0, 1, 2}, Frequencies: []int{1}, Volumes: []int{1}}
	for pt := range d.Points() {
		if pt.Channel == 1 {
			break
		}
	}
	// Reaching here without panicking is the assertion: the iterator must
	// honor an early break.
}
