package storage

import (
	"context"
	"errors"
	"strings"

	logx "github.com/GilloDaby/got-kingsroad-bot/pkg/logx"
)

// Store is the persistence API used by the reminder dispatcher and the
// command layer.
type Store interface {
	// AddReminder assigns an ID and persists r. The stored reminder is
	// returned with its ID set.
	AddReminder(ctx context.Context, r Reminder) (Reminder, error)
	// ListReminders returns every pending reminder.
	ListReminders(ctx context.Context) ([]Reminder, error)
	// ListUserReminders returns a user's pending reminders.
	ListUserReminders(ctx context.Context, userID int64) ([]Reminder, error)
	// DeleteReminder removes a reminder by ID. It reports whether a
	// reminder was actually removed.
	DeleteReminder(ctx context.Context, id int64) (bool, error)
	// ClearUserReminders removes all of a user's reminders and returns the
	// number removed.
	ClearUserReminders(ctx context.Context, userID int64) (int, error)

	Settings(ctx context.Context) (Settings, error)
	PutSettings(ctx context.Context, s Settings) error

	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
