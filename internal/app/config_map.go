package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/GilloDaby/got-kingsroad-bot/internal/notifier"
	"github.com/GilloDaby/got-kingsroad-bot/internal/storage"
)

const defaultStoragePath = "./kingsroad"

// mapStorageConfig resolves the storage section. Reminders and the countdown
// message ref must survive restarts, so an omitted section falls back to the
// file driver instead of disabling persistence.
func mapStorageConfig(cfg *Config) (storage.Config, error) {
	driver := "file"
	path := defaultStoragePath
	var busyRaw string

	if cfg != nil && cfg.Storage != nil {
		if d := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)); d != "" {
			driver = d
		}
		if p := strings.TrimSpace(cfg.Storage.Path); p != "" {
			path = p
		}
		busyRaw = cfg.Storage.BusyTimeout
	}

	switch driver {
	case "file":
		return storage.Config{Driver: "file", Path: path}, nil
	case "sqlite", "sqlite3":
		busy, err := parseDurationOrDefault("storage.busy_timeout", busyRaw, time.Second)
		if err != nil {
			return storage.Config{}, err
		}
		return storage.Config{Driver: driver, Path: path, BusyTimeout: busy}, nil
	default:
		return storage.Config{}, fmt.Errorf("unknown storage.driver: %s", driver)
	}
}

func mapNotifierConfig(cfg *Config) (notifier.Config, error) {
	if cfg == nil || cfg.Notifier == nil {
		return notifier.Config{Enabled: true, RetryMax: 3}, nil
	}
	n := cfg.Notifier

	retryBase, err := parseDurationField("notifier.retry_base", n.RetryBase)
	if err != nil {
		return notifier.Config{}, err
	}
	retryMaxDelay, err := parseDurationField("notifier.retry_max_delay", n.RetryMaxDelay)
	if err != nil {
		return notifier.Config{}, err
	}
	dedupWindow, err := parseDurationField("notifier.dedup_window", n.DedupWindow)
	if err != nil {
		return notifier.Config{}, err
	}

	retryMax := n.RetryMax
	if retryMax == 0 {
		retryMax = 3
	} else if retryMax < 0 {
		retryMax = 0
	}

	return notifier.Config{
		Enabled:         n.Enabled,
		Workers:         n.Workers,
		QueueSize:       n.QueueSize,
		RatePerSec:      n.RatePerSec,
		RetryMax:        retryMax,
		RetryBase:       retryBase,
		RetryMaxDelay:   retryMaxDelay,
		DedupWindow:     dedupWindow,
		DedupMaxEntries: n.DedupMaxEntries,
	}, nil
}

// sweepTimings carries the parsed timers section with defaults applied.
type sweepTimings struct {
	StatusSweep   time.Duration
	DispatchSweep time.Duration
	AlertWindow   time.Duration
}

func mapTimersConfig(cfg *Config) (sweepTimings, error) {
	t := sweepTimings{}
	var err error
	if t.StatusSweep, err = parseDurationOrDefault("timers.status_sweep", cfg.Timers.StatusSweep, time.Second); err != nil {
		return t, err
	}
	if t.DispatchSweep, err = parseDurationOrDefault("timers.dispatch_sweep", cfg.Timers.DispatchSweep, 30*time.Second); err != nil {
		return t, err
	}
	if t.AlertWindow, err = parseDurationOrDefault("timers.alert_window", cfg.Timers.AlertWindow, 5*time.Minute); err != nil {
		return t, err
	}
	return t, nil
}
