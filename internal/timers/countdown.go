package timers

import (
	"fmt"
	"time"
)

// FormatCountdown renders d as "3h 27m 9s". Negative durations render as
// "0h 0m 0s" so a status edit racing an event boundary never shows a
// negative countdown.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// FormatClock renders d as zero-padded "MM:SS". Whole hours are folded away,
// so only the remainder within the current hour shows; the Drogon line reads
// "30:00" at 00:30 even though the skipped 01:00 spawn puts the next one 90
// minutes out. Negative durations clamp to "00:00".
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", (total%3600)/60, total%60)
}
