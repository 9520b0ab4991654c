package status

import (
	"fmt"
	"time"

	"github.com/GilloDaby/got-kingsroad-bot/internal/timers"
)

// Render builds the status message body for the given instant. HTML parse
// mode; the Drogon line uses the compact clock format since it never exceeds
// two hours.
func Render(now time.Time) string {
	daily := timers.NextOccurrence(timers.EventDaily, now).Sub(now)
	drogon := timers.NextOccurrence(timers.EventDrogon, now).Sub(now)
	weekly := timers.NextOccurrence(timers.EventWeekly, now).Sub(now)

	return fmt.Sprintf(
		"⏰ <b>Daily Reset</b> in: %s\n🔥 <b>Drogon Timer</b>: %s\n📅 <b>Weekly Reset</b>: %s",
		timers.FormatCountdown(daily),
		timers.FormatClock(drogon),
		timers.FormatCountdown(weekly),
	)
}

// alertText builds the channel mention alert for an event occurrence.
// An empty mention yields a plain announcement.
func alertText(e timers.Event, next time.Time, mention string) string {
	var body string
	switch e {
	case timers.EventDrogon:
		body = fmt.Sprintf("🔥 Drogon spawns at %02d:00 UTC!", next.UTC().Hour())
	case timers.EventDaily:
		body = "⏰ Daily Reset incoming (07:00 UTC)"
	case timers.EventWeekly:
		body = "📅 Weekly Reset incoming (Thursday 05:00 UTC)"
	default:
		return ""
	}
	if mention == "" {
		return body
	}
	return mention + " " + body
}

// mentionFor picks the configured mention string for an event.
func mentionFor(e timers.Event, daily, drogon, weekly string) string {
	switch e {
	case timers.EventDaily:
		return daily
	case timers.EventDrogon:
		return drogon
	case timers.EventWeekly:
		return weekly
	}
	return ""
}
