package progress

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0s"},
		{45, "45s"},
		{59, "59s"},
		{60, "1m00s"},
		{125, "2m05s"},
		{3599, "59m59s"},
		{3600, "1h00m"},
		{3725, "1h02m"},
		{7380, "2h03m"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.seconds))
		})
	}
}

func TestRenderZeroProgress(t *testing.T) {
	out := Render("Global sweep", 0, 10, time.Now(), BarLength)
	assert.Contains(t, out, "ETA: 0s")
	assert.Contains(t, out, "0.00%")
	assert.Contains(t, out, strings.Repeat("-", BarLength))
	assert.NotContains(t, out, "█")
}

func TestRenderComplete(t *testing.T) {
	out := Render("Global sweep", 10, 10, time.Now().Add(-time.Second), BarLength)
	assert.Contains(t, out, "100.00%")
	assert.Contains(t, out, strings.Repeat("█", BarLength))
	assert.NotContains(t, out, "-")
}

func TestRenderPercentMonotonic(t *testing.T) {
	start := time.Now().Add(-time.Minute)
	total := 7
	prev := -1.0
	for current := 0; current <= total; current++ {
		out := Render("sweep", current, total, start, 10)
		parts := strings.Split(out, "|")
		require.Len(t, parts, 3)
		var pct float64
		_, err := fmt.Sscanf(parts[2], "%f%%", &pct)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, pct, prev)
		prev = pct
	}
}

func TestRenderBarWidth(t *testing.T) {
	out := Render("p", 1, 3, time.Now(), 30)
	inner := strings.Split(out, "|")[1]
	assert.Equal(t, 30, len([]rune(inner)))
}

func TestTracker(t *testing.T) {
	tr := NewTracker(6)
	assert.Equal(t, 6, tr.Total)
	assert.Equal(t, 0, tr.Current)

	tr.Step()
	tr.Step()
	assert.Equal(t, 2, tr.Current)

	out := tr.Render("Global sweep")
	assert.True(t, strings.HasPrefix(out, "Global sweep |"))
	assert.Contains(t, out, "33.33%")
}
