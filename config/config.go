// Package config holds the validated view of the two YAML documents a sweep
// session is driven by: the measurement protocol and the device description.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const DefaultStreamName = "SynAmpsRT"

// Range describes one swept dimension as a Start/End/Steps triple.
type Range struct {
	Start int `koanf:"Start"`
	End   int `koanf:"End"`
	Steps int `koanf:"Steps"`
}

// Values expands the range into the concrete swept values: Start, Start+Steps,
// ... truncated at the last value <= End. End itself is only included when the
// step divides evenly into the span.
func (r Range) Values() []int {
	var vals []int
	for v := r.Start; v <= r.End; v += r.Steps {
		vals = append(vals, v)
	}
	return vals
}

// Count is the number of values the range expands to.
func (r Range) Count() int {
	return (r.End-r.Start)/r.Steps + 1
}

func (r Range) validate(name string) error {
	if r.Steps <= 0 {
		return fmt.Errorf("%s: Steps must be > 0, got %d", name, r.Steps)
	}
	if r.End < r.Start {
		return fmt.Errorf("%s: End (%d) must be >= Start (%d)", name, r.End, r.Start)
	}
	return nil
}

// Cycles describes the stimulation cycle protocol: how many ON/OFF repetitions
// per sweep point and how long each half lasts, in seconds.
type Cycles struct {
	Number      int     `koanf:"Number"`
	DurationOn  float64 `koanf:"Duration_on"`
	DurationOff float64 `koanf:"Duration_off"`
}

// Baselines holds the three baseline recording durations, in seconds.
type Baselines struct {
	Baseline1 int `koanf:"Baseline_1"`
	Baseline2 int `koanf:"Baseline_2"`
	Baseline3 int `koanf:"Baseline_3"`
}

// Measurement is the sweep protocol document.
type Measurement struct {
	Channel      Range     `koanf:"Channel"`
	Volume       Range     `koanf:"Volume"`
	Frequency    Range     `koanf:"Frequency"`
	Measurements Cycles    `koanf:"Measurements"`
	Baselines    Baselines `koanf:"Baselines"`
}

// DurationOn returns the ON half-cycle length as a time.Duration.
func (m *Measurement) DurationOn() time.Duration {
	return secondsF(m.Measurements.DurationOn)
}

// DurationOff returns the OFF half-cycle length as a time.Duration.
func (m *Measurement) DurationOff() time.Duration {
	return secondsF(m.Measurements.DurationOff)
}

func secondsF(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Board identifies the biosignal acquisition device. Master/File select
// playback mode; Mac/Serial select a live hardware connection; StreamName
// selects a named sample stream.
type Board struct {
	Id           string `koanf:"Id"`
	Master       string `koanf:"Master"`
	Mac          string `koanf:"Mac"`
	File         string `koanf:"File"`
	Serial       string `koanf:"Serial"`
	StreamName   string `koanf:"StreamName"`
	KeepBleAlive bool   `koanf:"Keep_ble_alive"`
}

// VHP identifies the vibrotactile stimulator.
type VHP struct {
	Serial string `koanf:"Serial"`
}

// Device is the hardware document.
type Device struct {
	Board Board `koanf:"Board"`
	VHP   VHP   `koanf:"VHP"`
}

// Session carries the per-run state derived at startup.
type Session struct {
	Timestamp   string
	Verbose     int
	MeasureConf string
	DeviceConf  string
	OutDir      string
}

// NewSession stamps a session with the current wall clock. The timestamp
// prefixes every output file of the run.
func NewSession(measureConf, deviceConf string, verbose int) *Session {
	return &Session{
		Timestamp:   time.Now().Format("060102-1504"),
		Verbose:     verbose,
		MeasureConf: measureConf,
		DeviceConf:  deviceConf,
		OutDir:      "Recordings",
	}
}

// load reads a YAML document into a koanf tree, falling back to environment
// variables with the given prefix when the file cannot be read.
func load(path, envPrefix string) (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		ferr := err
		if err := k.Load(env.Provider("", env.Opt{
			Prefix: envPrefix,
			TransformFunc: func(key, value string) (string, any) {
				key = strings.TrimPrefix(key, envPrefix)
				// Only the first underscore separates section from key;
				// later ones belong to key names like Duration_on.
				return strings.Replace(key, "_", ".", 1), value
			},
		}), nil); err != nil || len(k.Keys()) == 0 {
			return nil, fmt.Errorf("read config %s: %w", path, ferr)
		}
	}
	return k, nil
}

func requireKeys(k *koanf.Koanf, path string, keys []string) error {
	for _, key := range keys {
		if !k.Exists(key) {
			return fmt.Errorf("config %s: required key %q missing", path, key)
		}
	}
	return nil
}

// LoadMeasurement parses and validates the measurement protocol document.
func LoadMeasurement(path string) (*Measurement, error) {
	k, err := load(path, "SWEEP_MEASURE_")
	if err != nil {
		return nil, err
	}
	required := []string{
		"Channel.Start", "Channel.End", "Channel.Steps",
		"Volume.Start", "Volume.End", "Volume.Steps",
		"Frequency.Start", "Frequency.End", "Frequency.Steps",
		"Measurements.Number", "Measurements.Duration_on", "Measurements.Duration_off",
		"Baselines.Baseline_1", "Baselines.Baseline_2", "Baselines.Baseline_3",
	}
	if err := requireKeys(k, path, required); err != nil {
		return nil, err
	}

	var m Measurement
	if err := k.Unmarshal("", &m); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &m, nil
}

// Validate checks the protocol invariants: every swept dimension must be a
// well-formed ascending range and the cycle count must be positive.
func (m *Measurement) Validate() error {
	if err := m.Channel.validate("Channel"); err != nil {
		return err
	}
	if err := m.Volume.validate("Volume"); err != nil {
		return err
	}
	if err := m.Frequency.validate("Frequency"); err != nil {
		return err
	}
	if m.Measurements.Number <= 0 {
		return fmt.Errorf("Measurements.Number must be > 0, got %d", m.Measurements.Number)
	}
	return nil
}

// LoadDevice parses the device document. StreamName defaults to the SynAmpsRT
// amplifier stream when absent.
func LoadDevice(path string) (*Device, error) {
	k, err := load(path, "SWEEP_DEVICE_")
	if err != nil {
		return nil, err
	}
	if err := requireKeys(k, path, []string{"Board.Id", "VHP.Serial"}); err != nil {
		return nil, err
	}

	var d Device
	if err := k.Unmarshal("", &d); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if d.Board.StreamName == "" {
		d.Board.StreamName = DefaultStreamName
	}
	return &d, nil
}
