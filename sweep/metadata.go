package sweep

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// writeMetadata summarizes the run: the verbatim contents of both
// configuration documents and the paths of the two baseline recordings.
func (o *Orchestrator) writeMetadata(base1, base2 string) error {
	measureText, err := os.ReadFile(o.Session.MeasureConf)
	if err != nil {
		return fmt.Errorf("read measurement config for metadata: %w", err)
	}
	deviceText, err := os.ReadFile(o.Session.DeviceConf)
	if err != nil {
		return fmt.Errorf("read device config for metadata: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recording on: %s\n\n", time.Now().Format("02/01/2006 15:04:05"))
	b.WriteString("*** Measure Configuration ***\n")
	b.Write(measureText)
	b.WriteString("\n*** Device Configuration ***\n")
	b.Write(deviceText)
	fmt.Fprintf(&b, "\nBaseline 1 (VHP OFF>ON): %s\n", base1)
	fmt.Fprintf(&b, "Baseline 2 (VHP ON, STIM ON, no contact): %s\n", base2)

	path := filepath.Join(o.Session.OutDir, o.Session.Timestamp+"_metadata.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}
