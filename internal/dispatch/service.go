// Package dispatch sweeps pending personal reminders and delivers the ones
// whose lead time has been reached as direct messages.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/GilloDaby/got-kingsroad-bot/internal/storage"
	"github.com/GilloDaby/got-kingsroad-bot/internal/timers"
	kit "github.com/GilloDaby/got-kingsroad-bot/internal/transport"
	logx "github.com/GilloDaby/got-kingsroad-bot/pkg/logx"
)

// Store is the slice of the storage API the dispatcher needs.
// storage.Store satisfies it.
type Store interface {
	ListReminders(ctx context.Context) ([]storage.Reminder, error)
	DeleteReminder(ctx context.Context, id int64) (bool, error)
}

// Notifier enqueues outgoing notifications. notifier.Service satisfies it.
type Notifier interface {
	Notify(ctx context.Context, n kit.Notification) error
}

// Service delivers due reminders at most once: a reminder is consumed
// (deleted) whether or not its DM could be enqueued or sent. The sweep is
// driven externally so delivery cadence lives in one place.
type Service struct {
	log    logx.Logger
	store  Store
	notify Notifier

	// now is swappable for tests.
	now func() time.Time
}

func New(log logx.Logger, store Store, notify Notifier) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{log: log, store: store, notify: notify, now: time.Now}
}

// Sweep runs one dispatch tick. A storage read error skips the whole tick;
// per-reminder failures are isolated so one bad entry can't block the rest.
func (s *Service) Sweep(ctx context.Context) {
	rs, err := s.store.ListReminders(ctx)
	if err != nil {
		s.log.Warn("reminder sweep: list failed", logx.Any("err", err))
		return
	}

	now := s.now().UTC()
	for _, r := range rs {
		s.dispatchOne(ctx, r, now)
	}
}

func (s *Service) dispatchOne(ctx context.Context, r storage.Reminder, now time.Time) {
	ev, err := timers.ParseEvent(r.Event)
	if err != nil {
		// Unknown event names can only come from old or hand-edited state.
		s.log.Warn("dropping reminder with unknown event", logx.Int64("id", r.ID), logx.String("event", r.Event))
		_, _ = s.store.DeleteReminder(ctx, r.ID)
		return
	}

	next := timers.NextOccurrence(ev, now)
	lead := time.Duration(r.LeadMinutes) * time.Minute
	if next.Sub(now) > lead {
		return
	}

	// Consume first in intent: the DM is enqueued, then the reminder is
	// deleted regardless of the enqueue outcome. A failed send means a
	// missed reminder, never a duplicate.
	err = s.notify.Notify(ctx, kit.Notification{
		Kind:   kit.KindReminder,
		Target: kit.ChatTarget{ChatID: r.UserID},
		Text:   reminderText(ev, r.LeadMinutes),
	})
	if err != nil {
		s.log.Warn("reminder enqueue failed", logx.Int64("id", r.ID), logx.Int64("user", r.UserID), logx.Any("err", err))
	}

	if _, err := s.store.DeleteReminder(ctx, r.ID); err != nil {
		s.log.Error("reminder delete failed; may redeliver next tick", logx.Int64("id", r.ID), logx.Any("err", err))
		return
	}
	s.log.Info("reminder delivered",
		logx.Int64("id", r.ID),
		logx.Int64("user", r.UserID),
		logx.String("event", string(ev)),
		logx.Int("lead_minutes", r.LeadMinutes),
	)
}

func reminderText(e timers.Event, leadMinutes int) string {
	return fmt.Sprintf("🔔 Reminder: %s starts in %d minute(s)!", e.Label(), leadMinutes)
}
