// Package progress renders the global sweep progress bar with an ETA.
package progress

import (
	"fmt"
	"strings"
	"time"
)

// BarLength is the character width of the filled/unfilled bar.
const BarLength = 30

// Tracker is the global sweep progress state: one writer (the orchestrator),
// rendered after each completed stimulation cycle.
type Tracker struct {
	Current int
	Total   int
	Start   time.Time
}

// NewTracker starts tracking a sweep of total steps from now.
func NewTracker(total int) *Tracker {
	return &Tracker{Total: total, Start: time.Now()}
}

// Step records one completed stimulation cycle.
func (t *Tracker) Step() {
	t.Current++
}

// Render formats the tracker as a one-line bar.
func (t *Tracker) Render(prefix string) string {
	return Render(prefix, t.Current, t.Total, t.Start, BarLength)
}

// Render formats a progress bar with percentage, ETA and elapsed time. The
// ETA extrapolates the observed per-step rate; it is zero until the first
// step completes.
func Render(prefix string, current, total int, start time.Time, length int) string {
	percent := float64(current) / float64(total)
	filled := int(percent * float64(length))
	bar := strings.Repeat("█", filled) + strings.Repeat("-", length-filled)

	elapsed := time.Since(start).Seconds()
	eta := 0.0
	if current > 0 {
		eta = elapsed / float64(current) * float64(total-current)
	}

	return fmt.Sprintf("%s |%s| %6.2f%%  ETA: %s  Elapsed: %s",
		prefix, bar, percent*100, FormatDuration(eta), FormatDuration(elapsed))
}

// FormatDuration renders seconds as "45s", "2m05s" or "1h02m".
func FormatDuration(seconds float64) string {
	total := int(seconds)
	switch {
	case total < 60:
		return fmt.Sprintf("%ds", total)
	case total < 3600:
		return fmt.Sprintf("%dm%02ds", total/60, total%60)
	default:
		return fmt.Sprintf("%dh%02dm", total/3600, (total%3600)/60)
	}
}
