// Package status keeps the pinned countdown message current and fires the
// channel mention alerts that precede each event.
package status

import (
	"context"
	"sync"
	"time"

	"github.com/GilloDaby/got-kingsroad-bot/internal/eventbus"
	"github.com/GilloDaby/got-kingsroad-bot/internal/storage"
	"github.com/GilloDaby/got-kingsroad-bot/internal/timers"
	kit "github.com/GilloDaby/got-kingsroad-bot/internal/transport"
	logx "github.com/GilloDaby/got-kingsroad-bot/pkg/logx"
)

// SettingsSource yields the operator settings (channel, status message ref,
// mention strings). storage.Store satisfies it.
type SettingsSource interface {
	Settings(ctx context.Context) (storage.Settings, error)
}

// Notifier enqueues outgoing notifications. notifier.Service satisfies it.
type Notifier interface {
	Notify(ctx context.Context, n kit.Notification) error
}

// Service runs one status sweep at a time: re-render the countdown message,
// then check each event against the alert window. The AlertTracker is
// injected so occurrence debouncing survives across sweeps and is visible to
// tests.
type Service struct {
	log      logx.Logger
	settings SettingsSource
	adapter  kit.Adapter
	notify   Notifier
	tracker  *timers.AlertTracker
	bus      eventbus.Bus

	mu     sync.Mutex
	window time.Duration

	// now is swappable for tests.
	now func() time.Time

	// editFailures throttles warn logging for a broken status message ref.
	editFailures int
}

func New(log logx.Logger, settings SettingsSource, adapter kit.Adapter, notify Notifier, tracker *timers.AlertTracker, bus eventbus.Bus, window time.Duration) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	if tracker == nil {
		tracker = timers.NewAlertTracker()
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &Service{
		log:      log,
		settings: settings,
		adapter:  adapter,
		notify:   notify,
		tracker:  tracker,
		bus:      bus,
		window:   window,
		now:      time.Now,
	}
}

// SetWindow updates the alert window (config hot reload).
func (s *Service) SetWindow(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.window = d
	s.mu.Unlock()
}

// Sweep runs one tick. Errors are logged, never returned: the next tick gets
// a fresh chance and a transient storage or network hiccup must not stop the
// loop.
func (s *Service) Sweep(ctx context.Context) {
	set, err := s.settings.Settings(ctx)
	if err != nil {
		s.log.Warn("status sweep: settings unavailable", logx.Any("err", err))
		return
	}

	now := s.now().UTC()
	s.editStatus(ctx, set, now)
	s.fireAlerts(ctx, set, now)
}

func (s *Service) editStatus(ctx context.Context, set storage.Settings, now time.Time) {
	if set.ChannelID == 0 || set.StatusMessageID == 0 {
		return
	}
	ref := kit.MessageRef{ChatID: set.ChannelID, MessageID: set.StatusMessageID}
	err := s.adapter.EditText(ctx, ref, Render(now), &kit.SendOptions{ParseMode: "HTML", DisablePreview: true})
	if err != nil {
		s.editFailures++
		// The first few failures get a warn; after that the broken ref is
		// known and debug level avoids log spam.
		if s.editFailures <= 3 {
			s.log.Warn("status edit failed", logx.Any("err", err), logx.Int64("chat", set.ChannelID), logx.Int("message", set.StatusMessageID))
		} else {
			s.log.Debug("status edit failed", logx.Any("err", err))
		}
		if s.bus != nil {
			s.bus.Publish(eventbus.Event{Type: eventbus.TypeStatusEditFailed, Data: err.Error()})
		}
		return
	}
	s.editFailures = 0
}

func (s *Service) fireAlerts(ctx context.Context, set storage.Settings, now time.Time) {
	if set.ChannelID == 0 {
		return
	}
	s.mu.Lock()
	window := s.window
	s.mu.Unlock()

	for _, e := range timers.Events() {
		next := timers.NextOccurrence(e, now)
		if !s.tracker.ShouldFire(e, now, next, window) {
			continue
		}
		mention := mentionFor(e, set.DailyMention, set.DrogonMention, set.WeeklyMention)
		text := alertText(e, next, mention)
		if text == "" {
			continue
		}
		err := s.notify.Notify(ctx, kit.Notification{
			Kind:   kit.KindAlert,
			Target: kit.ChatTarget{ChatID: set.ChannelID},
			Text:   text,
		})
		if err != nil {
			s.log.Warn("alert enqueue failed", logx.String("event", string(e)), logx.Any("err", err))
		}
	}
}
