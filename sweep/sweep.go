// Package sweep sequences a full measurement session: baseline recordings,
// operator gates and the channel x frequency x volume stimulation sweep,
// coordinating the VHP stimulator with the continuous sample stream.
package sweep

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/F2HEAL/Sweep/acquire"
	"github.com/F2HEAL/Sweep/config"
	"github.com/F2HEAL/Sweep/progress"
	"github.com/F2HEAL/Sweep/record"
	"github.com/F2HEAL/Sweep/vhp"
)

// Event markers written into the recorded rows. Offline analysis aligns
// stimulation events against the signal by these labels.
const (
	MarkerPoweredOff    = "3"   // baseline 1, stimulator still powered off
	MarkerBaselineStart = "33"  // formal baseline window start
	MarkerStimNoContact = "31"  // baseline 2, stimulation on, no contact
	MarkerContact       = "333" // baseline 3, sensor contact established
	MarkerPreStim       = "0"   // cycle window immediately before stimulation
	MarkerStimOn        = "1"   // stimulation started
	MarkerStimOff       = "11"  // stimulation stopped
)

const (
	defaultWaitWindow   = 10 * time.Second
	defaultPollInterval = 500 * time.Millisecond
)

// Stimulator is the slice of the VHP controller the orchestrator drives.
type Stimulator interface {
	SetChannel(channel int) error
	SetVolume(volume int) error
	SetFrequency(frequency int) error
	SetTestMode(enabled bool) error
	StartStream() error
	StopStream() error
	Close() error
}

// Orchestrator owns one measurement session from baseline 1 through the
// metadata summary. It is single-threaded: phases run strictly in sequence.
type Orchestrator struct {
	Measure *config.Measurement
	Device  *config.Device
	Session *config.Session
	Source  acquire.Source
	Gate    Gate

	// Probe and Dial default to the real serial transport; tests inject
	// fakes.
	Probe   func(port string) bool
	Dial    func(port string) (Stimulator, error)
	Console io.Writer

	waitWindow   time.Duration
	pollInterval time.Duration
	tracker      *progress.Tracker
}

// New assembles an orchestrator wired to the real VHP serial transport and
// the operator console.
func New(m *config.Measurement, d *config.Device, s *config.Session, src acquire.Source, gate Gate) *Orchestrator {
	return &Orchestrator{
		Measure: m,
		Device:  d,
		Session: s,
		Source:  src,
		Gate:    gate,
		Probe:   vhp.Probe,
		Dial: func(port string) (Stimulator, error) {
			return vhp.Open(port)
		},
		Console:      os.Stdout,
		waitWindow:   defaultWaitWindow,
		pollInterval: defaultPollInterval,
	}
}

// Run executes the session phases in order: device wait (when the VHP is not
// yet reachable), baseline 2 behind the first operator gate, the sweep behind
// the second, and finally the metadata summary.
func (o *Orchestrator) Run() error {
	if err := os.MkdirAll(o.Session.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	base1 := o.baseline1Path()
	base2 := o.baseline2Path()

	if err := o.deviceWait(base1); err != nil {
		return err
	}

	stim, err := o.Dial(o.Device.VHP.Serial)
	if err != nil {
		return fmt.Errorf("connect to VHP on %s: %w", o.Device.VHP.Serial, err)
	}
	defer stim.Close()

	if err := o.Gate.Wait("➡️  Place finger(s) 5 cm away from tactors (NO CONTACT)"); err != nil {
		return err
	}
	if err := o.baseline2(stim, base2); err != nil {
		return err
	}

	if err := o.Gate.Wait("➡️  Place finger(s) ON tactors (CONTACT) – Sweep starts..."); err != nil {
		return err
	}
	if err := o.runSweep(stim); err != nil {
		return err
	}

	log.Info("Sweep completed.")
	return o.writeMetadata(base1, base2)
}

// deviceWait records baseline 1 while polling for the VHP to become
// reachable. Skipped entirely when the device already answers.
func (o *Orchestrator) deviceWait(base1 string) error {
	port := o.Device.VHP.Serial
	if o.Probe(port) {
		return nil
	}

	log.Info("Recording Baseline 1 (waiting for VHP ON)...")
	if err := o.recordTo(base1, o.waitWindow, MarkerPoweredOff); err != nil {
		return err
	}

	for !o.Probe(port) {
		log.Info("Waiting for VHP to power ON...")
		time.Sleep(o.pollInterval)
	}

	log.Info("Baseline 1 started")
	if err := o.recordTo(base1, seconds(o.Measure.Baselines.Baseline1), MarkerBaselineStart); err != nil {
		return err
	}
	log.Info("Baseline 1 completed.")
	return nil
}

// recordTo appends one bounded recording window to a baseline file.
func (o *Orchestrator) recordTo(path string, d time.Duration, marker string) error {
	sink, err := record.OpenAppend(path)
	if err != nil {
		return err
	}
	defer sink.Close()
	if err := o.record(sink, d, marker); err != nil {
		return err
	}
	return sink.Close()
}

// baseline2 records the no-contact baseline: stimulation on at the sweep's
// starting parameters, then off again, both windows in one append-mode file.
func (o *Orchestrator) baseline2(stim Stimulator, base2 string) error {
	log.Info("Recording Baseline 2 (VHP ON, STIM ON, no contact)...")

	if err := stim.SetChannel(o.Measure.Channel.Start); err != nil {
		return err
	}
	if err := stim.SetVolume(o.Measure.Volume.Start); err != nil {
		return err
	}
	if err := stim.SetFrequency(o.Measure.Frequency.Start); err != nil {
		return err
	}
	if err := stim.StartStream(); err != nil {
		return err
	}

	sink, err := record.OpenAppend(base2)
	if err != nil {
		return err
	}
	defer sink.Close()

	d := seconds(o.Measure.Baselines.Baseline2)
	if err := o.record(sink, d, MarkerStimNoContact); err != nil {
		return err
	}
	if err := stim.StopStream(); err != nil {
		return err
	}
	if err := o.record(sink, d, MarkerBaselineStart); err != nil {
		return err
	}
	if err := sink.Close(); err != nil {
		return err
	}

	log.Info("Baseline 2 completed.")
	return nil
}

// runSweep iterates the full sweep domain, running the measurement
// sub-procedure for every point.
func (o *Orchestrator) runSweep(stim Stimulator) error {
	if err := stim.SetTestMode(true); err != nil {
		return err
	}

	dom := NewDomain(o.Measure)
	cycles := o.Measure.Measurements.Number
	o.tracker = progress.NewTracker(dom.Total(cycles))
	log.Infof("Total stim cycles in sweep: %d", o.tracker.Total)

	for pt := range dom.Points() {
		if err := o.measure(stim, pt); err != nil {
			return fmt.Errorf("measurement c%d f%d v%d: %w", pt.Channel, pt.Frequency, pt.Volume, err)
		}
	}
	return nil
}

// measure runs one sweep point: contact baseline, then the configured number
// of ON/OFF stimulation cycles, all into a freshly created point file.
func (o *Orchestrator) measure(stim Stimulator, pt Point) error {
	log.Infof("Measuring: CH=%d, FREQ=%d, VOL=%d", pt.Channel, pt.Frequency, pt.Volume)

	if err := stim.SetChannel(pt.Channel); err != nil {
		return err
	}
	if err := stim.SetVolume(pt.Volume); err != nil {
		return err
	}
	if err := stim.SetFrequency(pt.Frequency); err != nil {
		return err
	}

	sink, err := record.OpenNew(o.pointPath(pt))
	if err != nil {
		return err
	}
	defer sink.Close()

	fmt.Fprintln(o.Console, "\nBaseline 3 (contact) recording...")
	if err := o.record(sink, seconds(o.Measure.Baselines.Baseline3), MarkerContact); err != nil {
		return err
	}

	cycles := o.Measure.Measurements.Number
	onDur := o.Measure.DurationOn()
	offDur := o.Measure.DurationOff()
	fmt.Fprintf(o.Console, "\nStim cycles: %d cycles (ON=%gs, OFF=%gs)\n\n",
		cycles, o.Measure.Measurements.DurationOn, o.Measure.Measurements.DurationOff)

	for cycle := 1; cycle <= cycles; cycle++ {
		fmt.Fprintf(o.Console, "Cycle %d/%d — ON period\n", cycle, cycles)
		// Unstimulated window ahead of every ON window, kept for layout
		// compatibility with previously recorded datasets.
		if err := o.record(sink, onDur, MarkerPreStim); err != nil {
			return err
		}
		if err := stim.StartStream(); err != nil {
			return err
		}
		if err := o.record(sink, onDur, MarkerStimOn); err != nil {
			return err
		}
		if err := stim.StopStream(); err != nil {
			return err
		}

		fmt.Fprintf(o.Console, "Cycle %d/%d — OFF period\n", cycle, cycles)
		if err := o.record(sink, offDur, MarkerStimOff); err != nil {
			return err
		}

		o.tracker.Step()
		fmt.Fprintf(o.Console, "\r%s\n\n", o.tracker.Render("Global sweep"))
	}
	return sink.Close()
}

// record captures one bounded window. A marker can only be attached to a
// sample, so it is lost when nothing arrives within the window; that is
// logged, not failed.
func (o *Orchestrator) record(w record.RowWriter, d time.Duration, marker string) error {
	written, err := record.Record(o.Source, d, w, marker)
	if err != nil {
		return err
	}
	if !written {
		log.Warnf("Marker %s lost: no samples arrived within %s", marker, d)
	}
	return nil
}

func (o *Orchestrator) baseline1Path() string {
	return filepath.Join(o.Session.OutDir, fmt.Sprintf(
		"%s_%s_baseline_with_VHP_powered_OFF.csv",
		o.Session.Timestamp, o.Device.Board.Id))
}

func (o *Orchestrator) baseline2Path() string {
	return filepath.Join(o.Session.OutDir, fmt.Sprintf(
		"%s_%s_baseline_with_VHP_powered_ON_stim_ON_no_contact_c%d_f%d_v%d.csv",
		o.Session.Timestamp, o.Device.Board.Id,
		o.Measure.Channel.Start, o.Measure.Frequency.Start, o.Measure.Volume.Start))
}

func (o *Orchestrator) pointPath(pt Point) string {
	return filepath.Join(o.Session.OutDir, fmt.Sprintf(
		"%s_%s_c%d_f%d_v%d.csv",
		o.Session.Timestamp, o.Device.Board.Id, pt.Channel, pt.Frequency, pt.Volume))
}

func seconds(s int) time.Duration {
	return time.Duration(s) * time.Second
}
