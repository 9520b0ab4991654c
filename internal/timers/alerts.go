package timers

import (
	"sync"
	"time"
)

// AlertTracker debounces channel mention alerts so each event occurrence
// produces at most one alert, no matter how often the status loop ticks
// inside the alert window.
//
// Identity of an occurrence:
//
//   - drogon: the current UTC hour (the alert for the H+1 spawn fires during
//     hour H). Hour 1 never alerts; the 01:00 spawn does not exist.
//   - daily/weekly: the occurrence's calendar date.
//
// The tracker is safe for concurrent use and holds no persistent state; a
// restart inside the window may re-alert once, which is acceptable.
type AlertTracker struct {
	mu         sync.Mutex
	drogonHour int
	dailyDate  string
	weeklyDate string
}

func NewAlertTracker() *AlertTracker {
	return &AlertTracker{drogonHour: -1}
}

// ShouldFire reports whether an alert for e should fire now, given its next
// occurrence and the configured alert window. A true result records the
// occurrence, so subsequent calls for the same occurrence return false.
func (t *AlertTracker) ShouldFire(e Event, now, next time.Time, window time.Duration) bool {
	if window <= 0 {
		return false
	}
	diff := next.Sub(now)
	if diff <= 0 || diff > window {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch e {
	case EventDrogon:
		hour := now.UTC().Hour()
		if hour == drogonSkippedHr {
			return false
		}
		if t.drogonHour == hour {
			return false
		}
		t.drogonHour = hour
		return true
	case EventDaily:
		date := next.UTC().Format("2006-01-02")
		if t.dailyDate == date {
			return false
		}
		t.dailyDate = date
		return true
	case EventWeekly:
		date := next.UTC().Format("2006-01-02")
		if t.weeklyDate == date {
			return false
		}
		t.weeklyDate = date
		return true
	}
	return false
}

// LeadFits reports whether a personal reminder with the given lead time still
// precedes the next occurrence of e. A lead that equals or exceeds the time
// remaining would deliver immediately, which is never what the user meant.
func LeadFits(e Event, now time.Time, lead time.Duration) bool {
	if lead <= 0 {
		return false
	}
	return lead < NextOccurrence(e, now).Sub(now)
}
