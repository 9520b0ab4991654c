package timers

import (
	"testing"
	"time"
)

const window = 5 * time.Minute

func TestAlertTrackerDailyOncePerOccurrence(t *testing.T) {
	t.Parallel()

	tr := NewAlertTracker()
	next := utc(2024, 1, 10, 7, 0, 0)

	now := utc(2024, 1, 10, 6, 56, 0)
	if !tr.ShouldFire(EventDaily, now, next, window) {
		t.Fatal("first tick inside window should fire")
	}
	for _, tick := range []time.Time{
		utc(2024, 1, 10, 6, 57, 0),
		utc(2024, 1, 10, 6, 58, 30),
		utc(2024, 1, 10, 6, 59, 59),
	} {
		if tr.ShouldFire(EventDaily, tick, next, window) {
			t.Errorf("tick %v re-fired for same occurrence", tick)
		}
	}

	// Next day's occurrence fires again.
	nextDay := utc(2024, 1, 11, 7, 0, 0)
	if !tr.ShouldFire(EventDaily, utc(2024, 1, 11, 6, 57, 0), nextDay, window) {
		t.Error("new occurrence should fire")
	}
}

func TestAlertTrackerOutsideWindow(t *testing.T) {
	t.Parallel()

	tr := NewAlertTracker()
	next := utc(2024, 1, 10, 7, 0, 0)

	if tr.ShouldFire(EventDaily, utc(2024, 1, 10, 6, 54, 59), next, window) {
		t.Error("fired before window opened")
	}
	if tr.ShouldFire(EventDaily, utc(2024, 1, 10, 7, 0, 0), next, window) {
		t.Error("fired at zero remaining")
	}
	if tr.ShouldFire(EventDaily, utc(2024, 1, 10, 7, 0, 5), utc(2024, 1, 10, 7, 0, 0), window) {
		t.Error("fired after occurrence passed")
	}
}

func TestAlertTrackerDrogon(t *testing.T) {
	t.Parallel()

	tr := NewAlertTracker()

	now := utc(2024, 1, 10, 14, 56, 0)
	next := utc(2024, 1, 10, 15, 0, 0)
	if !tr.ShouldFire(EventDrogon, now, next, window) {
		t.Fatal("drogon alert should fire at 14:56")
	}
	if tr.ShouldFire(EventDrogon, utc(2024, 1, 10, 14, 58, 0), next, window) {
		t.Error("same hour re-fired")
	}

	// Next hour's spawn fires.
	if !tr.ShouldFire(EventDrogon, utc(2024, 1, 10, 15, 56, 0), utc(2024, 1, 10, 16, 0, 0), window) {
		t.Error("next hour should fire")
	}

	// Hour 1 never alerts.
	if tr.ShouldFire(EventDrogon, utc(2024, 1, 10, 1, 56, 0), utc(2024, 1, 10, 2, 0, 0), window) {
		t.Error("hour 1 should be suppressed")
	}
}

func TestAlertTrackerWeeklyThursdayScenario(t *testing.T) {
	t.Parallel()

	// 2024-01-04 is a Thursday. At 04:58 the reset is two minutes away.
	tr := NewAlertTracker()
	now := utc(2024, 1, 4, 4, 58, 0)
	next := NextOccurrence(EventWeekly, now)
	if want := utc(2024, 1, 4, 5, 0, 0); !next.Equal(want) {
		t.Fatalf("next weekly = %v, want %v", next, want)
	}
	if !tr.ShouldFire(EventWeekly, now, next, window) {
		t.Error("weekly alert should fire two minutes before reset")
	}
	if tr.ShouldFire(EventWeekly, utc(2024, 1, 4, 4, 59, 0), next, window) {
		t.Error("weekly alert re-fired for same occurrence")
	}
}

func TestLeadFits(t *testing.T) {
	t.Parallel()

	// 10:30, next drogon at 11:00.
	now := utc(2024, 1, 10, 10, 30, 0)

	if !LeadFits(EventDrogon, now, 10*time.Minute) {
		t.Error("10m lead before a 30m-away event should fit")
	}
	if LeadFits(EventDrogon, now, 30*time.Minute) {
		t.Error("lead equal to remaining time should not fit")
	}
	if LeadFits(EventDrogon, now, 45*time.Minute) {
		t.Error("lead beyond next occurrence should not fit")
	}
	if LeadFits(EventDaily, now, 0) {
		t.Error("zero lead should not fit")
	}
}
