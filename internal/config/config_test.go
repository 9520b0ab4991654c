package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return p
}

func TestParseJSON(t *testing.T) {
	t.Parallel()

	p := writeTemp(t, "config.json", `{
		"telegram": {"token": "123:abc", "owner_user_ids": [42], "poll_timeout": "10s"},
		"logging": {"level": "info", "console": true},
		"timers": {"status_sweep": "1s", "alert_window": "5m"},
		"storage": {"driver": "file", "path": "./store"}
	}`)

	cfg, err := NewManager(p).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("token = %q", cfg.Telegram.Token)
	}
	if len(cfg.Telegram.OwnerUserIDs) != 1 || cfg.Telegram.OwnerUserIDs[0] != 42 {
		t.Errorf("owner ids = %v", cfg.Telegram.OwnerUserIDs)
	}
	if cfg.Timers.AlertWindow != "5m" {
		t.Errorf("alert_window = %q", cfg.Timers.AlertWindow)
	}
	if cfg.Storage == nil || cfg.Storage.Driver != "file" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
}

func TestParseYAML(t *testing.T) {
	t.Parallel()

	p := writeTemp(t, "config.yaml", `
telegram:
  token: "123:abc"
  owner_user_ids: [7, 8]
  poll_timeout: 10s
logging:
  level: debug
  console: true
timers:
  dispatch_sweep: 30s
`)

	cfg, err := NewManager(p).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
	if cfg.Timers.DispatchSweep != "30s" {
		t.Errorf("dispatch_sweep = %q", cfg.Timers.DispatchSweep)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	p := writeTemp(t, "config.json", `{"telegram": {"token": "t"}, "no_such_section": {}}`)
	if _, err := NewManager(p).Parse(); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	t.Parallel()

	p := writeTemp(t, "config.json", `{"telegram": {"token": "t"}}{"again": true}`)
	if _, err := NewManager(p).Parse(); err == nil {
		t.Fatal("expected error for trailing data")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		return &Config{
			Telegram: TelegramConfig{Token: "123:abc"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "ok minimal", mutate: func(*Config) {}},
		{name: "missing token", mutate: func(c *Config) { c.Telegram.Token = "" }, wantErr: true},
		{name: "bad poll timeout", mutate: func(c *Config) { c.Telegram.PollTimeout = "soon" }, wantErr: true},
		{name: "negative sweep", mutate: func(c *Config) { c.Timers.StatusSweep = "-1s" }, wantErr: true},
		{name: "unknown storage driver", mutate: func(c *Config) {
			c.Storage = &StorageConfig{Driver: "redis", Path: "x"}
		}, wantErr: true},
		{name: "sqlite driver ok", mutate: func(c *Config) {
			c.Storage = &StorageConfig{Driver: "sqlite", Path: "x.db", BusyTimeout: "5s"}
		}},
		{name: "bad notifier dedup window", mutate: func(c *Config) {
			c.Notifier = &NotifierConfig{Enabled: true, DedupWindow: "nope"}
		}, wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() err = %v, wantErr = %v", err, tc.wantErr)
			}
		})
	}
}

func TestParseDurationOrDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		def     time.Duration
		want    time.Duration
		wantErr bool
	}{
		{name: "empty uses default", raw: "", def: 30 * time.Second, want: 30 * time.Second},
		{name: "explicit wins", raw: "1m", def: 30 * time.Second, want: time.Minute},
		{name: "garbage errors", raw: "five", def: time.Second, wantErr: true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseDurationOrDefault("test.field", tc.raw, tc.def)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tc.wantErr)
			}
			if err == nil && got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}
