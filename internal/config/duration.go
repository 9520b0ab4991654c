package config

import (
	"fmt"
	"strings"
	"time"
)

// Duration fields in the config (sweep cadences, alert window, poll timeout)
// are Go duration strings so "1s" and "5m" read naturally in JSON and YAML.
// An empty field means "unset" and parses to zero; the caller decides the
// default. path names the field in error messages ("timers.alert_window").
func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

// ParseDurationOrDefault substitutes def for unset (or zero) fields. A
// malformed value is still an error rather than silently becoming the
// default.
func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}
