package timers

import (
	"testing"
	"time"
)

func TestFormatCountdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d    time.Duration
		want string
	}{
		{3*time.Hour + 27*time.Minute + 9*time.Second, "3h 27m 9s"},
		{0, "0h 0m 0s"},
		{-5 * time.Second, "0h 0m 0s"},
		{26 * time.Hour, "26h 0m 0s"},
		{59 * time.Second, "0h 0m 59s"},
	}
	for _, tc := range tests {
		if got := FormatCountdown(tc.d); got != tc.want {
			t.Errorf("FormatCountdown(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d    time.Duration
		want string
	}{
		{7*time.Minute + 5*time.Second, "07:05"},
		{0, "00:00"},
		{-time.Minute, "00:00"},
		// Whole hours fold away: 00:30 with the 01:00 spawn skipped is 90
		// minutes out but reads as the remainder within the hour.
		{90 * time.Minute, "30:00"},
		{2 * time.Hour, "00:00"},
		{time.Hour + 59*time.Minute + 59*time.Second, "59:59"},
		{59*time.Minute + 59*time.Second, "59:59"},
	}
	for _, tc := range tests {
		if got := FormatClock(tc.d); got != tc.want {
			t.Errorf("FormatClock(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
