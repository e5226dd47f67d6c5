package vhp

import (
	"fmt"
	"strings"
	"time"

	"go.bug.st/serial"
)

const (
	// Baudrate is the fixed line rate of the VHP firmware.
	Baudrate = 115200

	readTimeout  = 100 * time.Millisecond
	probeSettle  = time.Second
	warmupPeriod = 2 * time.Second
)

// LineTransport is the minimal line-oriented connection the controller needs.
// The production implementation sits on a serial port; tests substitute an
// in-memory fake.
type LineTransport interface {
	// WriteLine sends one command line, terminated with a newline.
	WriteLine(line string) error
	// ReadAvailable drains whatever response lines the device has buffered.
	// It returns immediately once the line goes quiet.
	ReadAvailable() ([]string, error)
	Close() error
}

type serialTransport struct {
	port serial.Port
}

// openSerial opens the VHP serial port at the fixed baud rate with a short
// read timeout so ReadAvailable never blocks for long.
func openSerial(device string) (LineTransport, error) {
	port, err := serial.Open(device, &serial.Mode{BaudRate: Baudrate})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", device, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", device, err)
	}
	return &serialTransport{port: port}, nil
}

func (t *serialTransport) WriteLine(line string) error {
	if _, err := t.port.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("serial write: %w", err)
	}
	return nil
}

func (t *serialTransport) ReadAvailable() ([]string, error) {
	var buf strings.Builder
	chunk := make([]byte, 256)
	for {
		n, err := t.port.Read(chunk)
		if err != nil {
			return nil, fmt.Errorf("serial read: %w", err)
		}
		if n == 0 {
			// Read timeout elapsed with nothing buffered.
			break
		}
		buf.Write(chunk[:n])
	}
	if buf.Len() == 0 {
		return nil, nil
	}
	var lines []string
	for _, l := range strings.Split(buf.String(), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines, nil
}

func (t *serialTransport) Close() error {
	return t.port.Close()
}

// Probe reports whether the VHP answers on the given serial port. It opens
// the port, lets the connection settle and closes it again.
func Probe(device string) bool {
	port, err := serial.Open(device, &serial.Mode{BaudRate: Baudrate})
	if err != nil {
		return false
	}
	time.Sleep(probeSettle)
	port.Close()
	return true
}
