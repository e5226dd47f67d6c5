package main

import (
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/F2HEAL/Sweep/acquire"
	"github.com/F2HEAL/Sweep/config"
	"github.com/F2HEAL/Sweep/sweep"
	"github.com/F2HEAL/Sweep/vhp"
)

var cli struct {
	Measureconf string `short:"m" required:"" help:"Path to YAML measurement configuration file"`
	Deviceconf  string `short:"d" required:"" help:"Path to YAML device configuration file"`
	Verbose     int    `short:"v" type:"counter" help:"Verbose level up to 5"`
	Run         struct {
	} `cmd:"" default:"1" help:"Run the sweep measurement session"`
	Probe struct {
	} `cmd:"" help:"Report stimulator and acquisition source reachability"`
}

const keepAliveInterval = time.Second

func main() {
	flags := kong.Parse(&cli,
		kong.Name("sweep"),
		kong.Description("EEG/VHP sweep measurement (stimulation sync over serial)"))
	if cli.Verbose > 0 {
		log.SetLevel(log.DebugLevel)
	}

	measure, err := config.LoadMeasurement(cli.Measureconf)
	if err != nil {
		log.Fatalf("Could not load measurement config: %v", err)
	}
	device, err := config.LoadDevice(cli.Deviceconf)
	if err != nil {
		log.Fatalf("Could not load device config: %v", err)
	}
	session := config.NewSession(cli.Measureconf, cli.Deviceconf, cli.Verbose)

	switch flags.Command() {
	case "probe":
		probe(device)

	case "run":
		source, err := openSource(device)
		if err != nil {
			log.Fatalf("Could not open acquisition source: %v", err)
		}
		defer source.Close()

		orch := sweep.New(measure, device, session, source,
			sweep.NewConsoleGate(os.Stdin, os.Stdout))

		// A mid-sweep failure is logged and swallowed: the process ends
		// normally with whatever recordings were already flushed.
		if err := orch.Run(); err != nil {
			log.Errorf("Sweep aborted: %v", err)
			return
		}
		log.Infof("Recordings written to %s", session.OutDir)
	}
}

// openSource picks the acquisition backend the device config asks for:
// playback of a recorded file, the raw board API, or a named realtime stream.
func openSource(device *config.Device) (acquire.Source, error) {
	board := device.Board
	switch {
	case board.Master != "" && board.File != "":
		log.Debugf("Using playback source: %s", board.File)
		return acquire.OpenReplay(board.File, acquire.DefaultReplayRate)

	case board.Serial != "" || board.Mac != "":
		log.Debugf("Using board source: %s", board.Id)
		b, err := acquire.OpenBoard(board.Id, board.Serial, board.Mac)
		if err != nil {
			return nil, err
		}
		keepAlive := time.Duration(0)
		if board.KeepBleAlive {
			keepAlive = keepAliveInterval
		}
		return acquire.NewBoardSource(b, keepAlive)

	default:
		log.Debugf("Using stream source: %s", board.StreamName)
		return acquire.OpenStream(acquire.ResolveStream, board.StreamName)
	}
}

// probe reports whether the configured stimulator and acquisition source are
// reachable right now, without starting a session.
func probe(device *config.Device) {
	if vhp.Probe(device.VHP.Serial) {
		log.Infof("VHP reachable on %s", device.VHP.Serial)
	} else {
		log.Warnf("VHP not reachable on %s", device.VHP.Serial)
	}

	source, err := openSource(device)
	if err != nil {
		log.Warnf("Acquisition source unavailable: %v", err)
		return
	}
	defer source.Close()
	log.Infof("Acquisition source live: %v (%d channels)", source.Live(), source.Channels())
}
