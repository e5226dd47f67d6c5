package sweep

import (
	"iter"

	"github.com/F2HEAL/Sweep/config"
)

// Point is one concrete (channel, frequency, volume) combination.
type Point struct {
	Channel   int
	Frequency int
	Volume    int
}

// Domain is the cartesian product of the three swept dimensions.
type Domain struct {
	Channels    []int
	Frequencies []int
	Volumes     []int
}

// NewDomain expands the configured ranges into the sweep domain.
func NewDomain(m *config.Measurement) Domain {
	return Domain{
		Channels:    m.Channel.Values(),
		Frequencies: m.Frequency.Values(),
		Volumes:     m.Volume.Values(),
	}
}

// Points yields every combination in measurement order: channel outermost,
// frequency middle, volume innermost, each ascending.
func (d Domain) Points() iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for _, ch := range d.Channels {
			for _, freq := range d.Frequencies {
				for _, vol := range d.Volumes {
					if !yield(Point{Channel: ch, Frequency: freq, Volume: vol}) {
						return
					}
				}
			}
		}
	}
}

// Total is the global step count: one step per stimulation cycle of every
// point.
func (d Domain) Total(cycles int) int {
	return len(d.Channels) * len(d.Frequencies) * len(d.Volumes) * cycles
}
