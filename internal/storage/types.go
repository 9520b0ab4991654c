package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "file": dependency-free file backend (snapshot + jsonl journal)
//   - "sqlite": SQLite database file (optional build tag)
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Reminder is a personal one-shot reminder. ID is a surrogate key assigned by
// the store, so identical (user, event, lead) triples stay independently
// deletable.
type Reminder struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Event       string    `json:"event"`
	LeadMinutes int       `json:"lead_minutes"`
	CreatedAt   time.Time `json:"created_at"`
}

// Settings holds operator-set state that must survive restarts: where the
// live status message lives and which mention strings the channel alerts use.
type Settings struct {
	ChannelID       int64  `json:"channel_id"`
	StatusMessageID int    `json:"status_message_id"`
	DailyMention    string `json:"daily_mention,omitempty"`
	DrogonMention   string `json:"drogon_mention,omitempty"`
	WeeklyMention   string `json:"weekly_mention,omitempty"`
}
