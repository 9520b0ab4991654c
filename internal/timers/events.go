// Package timers computes the recurring Kingsroad event schedule and the
// countdown/alert bookkeeping built on top of it.
//
// All schedule math is done in UTC:
//
//   - daily reset: every day at 07:00
//   - weekly reset: Thursday at 05:00
//   - Drogon spawn: every whole hour, except 01:00 (the spawn moves to 02:00)
package timers

import (
	"fmt"
	"strings"
	"time"
)

type Event string

const (
	EventDaily  Event = "daily"
	EventDrogon Event = "drogon"
	EventWeekly Event = "weekly"
)

const (
	dailyResetHour  = 7
	weeklyResetHour = 5
	weeklyResetDay  = time.Thursday
	drogonSkippedHr = 1
	daysPerWeek     = 7
)

// Events lists all known events in display order.
func Events() []Event {
	return []Event{EventDaily, EventDrogon, EventWeekly}
}

// ParseEvent resolves user input ("daily", "Drogon", ...) to an Event.
func ParseEvent(s string) (Event, error) {
	switch Event(strings.ToLower(strings.TrimSpace(s))) {
	case EventDaily:
		return EventDaily, nil
	case EventDrogon:
		return EventDrogon, nil
	case EventWeekly:
		return EventWeekly, nil
	}
	return "", fmt.Errorf("unknown event %q (expected daily, drogon or weekly)", s)
}

// Label returns the human-facing name used in messages.
func (e Event) Label() string {
	switch e {
	case EventDaily:
		return "Daily Reset"
	case EventDrogon:
		return "Drogon"
	case EventWeekly:
		return "Weekly Reset"
	}
	return string(e)
}

// NextOccurrence returns the first occurrence of e strictly after now.
// The result is always in UTC.
func NextOccurrence(e Event, now time.Time) time.Time {
	now = now.UTC()
	switch e {
	case EventDaily:
		return nextDaily(now)
	case EventWeekly:
		return nextWeekly(now)
	case EventDrogon:
		return nextDrogon(now)
	}
	return time.Time{}
}

func nextDaily(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), dailyResetHour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

func nextWeekly(now time.Time) time.Time {
	wd := int(now.Weekday())
	target := int(weeklyResetDay)

	// This week's reset counts as passed from the reset hour onward,
	// minute precision within that hour doesn't matter for day selection.
	passed := wd > target || (wd == target && now.Hour() >= weeklyResetHour)

	var addDays int
	if passed {
		addDays = daysPerWeek - wd + target
	} else {
		addDays = target - wd
	}

	day := now.AddDate(0, 0, addDays)
	return time.Date(day.Year(), day.Month(), day.Day(), weeklyResetHour, 0, 0, 0, time.UTC)
}

func nextDrogon(now time.Time) time.Time {
	next := now.Truncate(time.Hour).Add(time.Hour)
	// No spawn at 01:00; it shifts to 02:00.
	if next.Hour() == drogonSkippedHr {
		next = next.Add(time.Hour)
	}
	return next
}
