// Package vhp drives the VHP vibrotactile stimulator over its line-oriented
// serial protocol. Every parameter is a single-letter command followed by an
// integer argument; a bare "1" or "0" starts or stops stimulation.
package vhp

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const settleDelay = 50 * time.Millisecond

// Controller issues commands to one VHP device. It owns the transport and
// releases it exactly once, whichever path Close is reached on.
type Controller struct {
	t LineTransport

	settle    time.Duration
	closeOnce sync.Once
	closeErr  error
}

// Open dials the VHP on the given serial device and waits out the firmware
// boot banner before returning a ready controller.
func Open(device string) (*Controller, error) {
	t, err := openSerial(device)
	if err != nil {
		return nil, err
	}
	time.Sleep(warmupPeriod)
	return New(t), nil
}

// New wraps an already-open transport. Used directly by tests.
func New(t LineTransport) *Controller {
	return &Controller{t: t, settle: settleDelay}
}

// Close releases the underlying transport. Safe to call more than once.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.t.Close()
		log.Debug("VHP serial connection closed")
	})
	return c.closeErr
}

// send writes one command line, waits for the device to settle and drains
// whatever it answered. Responses are logged, never parsed. No retries: a
// transport failure propagates to the caller.
func (c *Controller) send(command string) error {
	if err := c.t.WriteLine(command); err != nil {
		return fmt.Errorf("VHP command %q: %w", command, err)
	}
	time.Sleep(c.settle)
	lines, err := c.t.ReadAvailable()
	if err != nil {
		return fmt.Errorf("VHP response to %q: %w", command, err)
	}
	for _, line := range lines {
		log.Debugf("Serial VHP received: %s", line)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

// SetChannel selects the active tactor channel, clamped to [0,8].
func (c *Controller) SetChannel(channel int) error {
	return c.send(fmt.Sprintf("C%d", clamp(channel, 0, 8)))
}

// SetVolume sets the stimulation amplitude, clamped to [0,100].
func (c *Controller) SetVolume(volume int) error {
	return c.send(fmt.Sprintf("V%d", clamp(volume, 0, 100)))
}

// SetFrequency sets the stimulation frequency in Hz. The valid range is
// device-defined, so no clamping happens here.
func (c *Controller) SetFrequency(frequency int) error {
	return c.send(fmt.Sprintf("F%d", frequency))
}

// SetTestMode toggles the firmware test mode used during sweeps.
func (c *Controller) SetTestMode(enabled bool) error {
	if enabled {
		return c.send("M1")
	}
	return c.send("M0")
}

// SetDuration sets the stimulus duration in ms, clamped to [1,65535].
func (c *Controller) SetDuration(ms int) error {
	return c.send(fmt.Sprintf("D%d", clamp(ms, 1, 65535)))
}

// SetCyclePeriod sets the firmware cycle period in ms, clamped to [1,65535].
func (c *Controller) SetCyclePeriod(ms int) error {
	return c.send(fmt.Sprintf("Y%d", clamp(ms, 1, 65535)))
}

// SetPauseCyclePeriod sets the pause cycle period, clamped to [0,100].
func (c *Controller) SetPauseCyclePeriod(period int) error {
	return c.send(fmt.Sprintf("P%d", clamp(period, 0, 100)))
}

// SetPausedCycles sets the number of paused cycles, clamped to [0,100].
func (c *Controller) SetPausedCycles(cycles int) error {
	return c.send(fmt.Sprintf("Q%d", clamp(cycles, 0, 100)))
}

// SetJitter sets the stimulus timing jitter in ms, clamped to [0,1000].
func (c *Controller) SetJitter(ms int) error {
	return c.send(fmt.Sprintf("J%d", clamp(ms, 0, 1000)))
}

// StartStream starts stimulation with the currently configured parameters.
func (c *Controller) StartStream() error {
	return c.send("1")
}

// StopStream stops stimulation.
func (c *Controller) StopStream() error {
	return c.send("0")
}
