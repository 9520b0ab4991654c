package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/GilloDaby/got-kingsroad-bot/internal/storage"
	kit "github.com/GilloDaby/got-kingsroad-bot/internal/transport"
	logx "github.com/GilloDaby/got-kingsroad-bot/pkg/logx"
)

type memStore struct {
	mu      sync.Mutex
	nextID  int64
	items   map[int64]storage.Reminder
	listErr error
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, items: map[int64]storage.Reminder{}}
}

func (m *memStore) add(r storage.Reminder) storage.Reminder {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.nextID
	m.nextID++
	m.items[r.ID] = r
	return r
}

func (m *memStore) ListReminders(ctx context.Context) ([]storage.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]storage.Reminder, 0, len(m.items))
	for _, r := range m.items {
		out = append(out, r)
	}
	return out, nil
}

func (m *memStore) DeleteReminder(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

type memNotifier struct {
	mu    sync.Mutex
	sent  []kit.Notification
	fails int
}

func (n *memNotifier) Notify(ctx context.Context, notif kit.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fails > 0 {
		n.fails--
		return errors.New("queue full")
	}
	n.sent = append(n.sent, notif)
	return nil
}

func at(s *Service, t time.Time) { s.now = func() time.Time { return t } }

func TestSweepDeliversDueReminderOnce(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	nt := &memNotifier{}
	s := New(logx.Nop(), st, nt)

	// Next drogon spawn from 14:56 is 15:00; a 5 minute lead is due.
	st.add(storage.Reminder{UserID: 42, Event: "drogon", LeadMinutes: 5})
	at(s, time.Date(2024, 1, 10, 14, 56, 0, 0, time.UTC))

	s.Sweep(context.Background())
	if len(nt.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(nt.sent))
	}
	if nt.sent[0].Target.ChatID != 42 || nt.sent[0].Kind != kit.KindReminder {
		t.Errorf("notification = %+v", nt.sent[0])
	}
	if !strings.Contains(nt.sent[0].Text, "Drogon starts in 5 minute(s)") {
		t.Errorf("text = %q", nt.sent[0].Text)
	}
	if st.count() != 0 {
		t.Errorf("reminder not consumed")
	}

	// Idempotence: immediate re-sweep delivers nothing.
	s.Sweep(context.Background())
	if len(nt.sent) != 1 {
		t.Errorf("re-sweep delivered again: sent = %d", len(nt.sent))
	}
}

func TestSweepLeavesNotDueReminders(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	nt := &memNotifier{}
	s := New(logx.Nop(), st, nt)

	st.add(storage.Reminder{UserID: 1, Event: "drogon", LeadMinutes: 5})
	at(s, time.Date(2024, 1, 10, 14, 30, 0, 0, time.UTC)) // 30m out

	s.Sweep(context.Background())
	if len(nt.sent) != 0 {
		t.Errorf("sent = %d, want 0", len(nt.sent))
	}
	if st.count() != 1 {
		t.Errorf("reminder consumed early")
	}
}

func TestSweepConsumesEvenWhenEnqueueFails(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	nt := &memNotifier{fails: 1}
	s := New(logx.Nop(), st, nt)

	st.add(storage.Reminder{UserID: 1, Event: "daily", LeadMinutes: 10})
	at(s, time.Date(2024, 1, 10, 6, 55, 0, 0, time.UTC)) // 5m out, due

	s.Sweep(context.Background())
	if st.count() != 0 {
		t.Fatal("reminder must be consumed even when the DM could not be enqueued")
	}
	// Next sweep must not redeliver.
	s.Sweep(context.Background())
	if len(nt.sent) != 0 {
		t.Errorf("redelivered after failed enqueue: %v", nt.sent)
	}
}

func TestSweepSkipsTickOnListError(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	st.add(storage.Reminder{UserID: 1, Event: "daily", LeadMinutes: 10})
	st.listErr = errors.New("disk gone")
	nt := &memNotifier{}
	s := New(logx.Nop(), st, nt)
	at(s, time.Date(2024, 1, 10, 6, 55, 0, 0, time.UTC))

	s.Sweep(context.Background())
	if len(nt.sent) != 0 || st.count() != 1 {
		t.Errorf("tick not skipped cleanly: sent=%d left=%d", len(nt.sent), st.count())
	}

	// Recovery: once the store works again, the reminder goes out.
	st.listErr = nil
	s.Sweep(context.Background())
	if len(nt.sent) != 1 || st.count() != 0 {
		t.Errorf("recovery failed: sent=%d left=%d", len(nt.sent), st.count())
	}
}

func TestSweepDropsUnknownEvent(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	st.add(storage.Reminder{UserID: 1, Event: "monthly", LeadMinutes: 10})
	nt := &memNotifier{}
	s := New(logx.Nop(), st, nt)
	at(s, time.Date(2024, 1, 10, 6, 55, 0, 0, time.UTC))

	s.Sweep(context.Background())
	if len(nt.sent) != 0 {
		t.Errorf("unknown event delivered: %v", nt.sent)
	}
	if st.count() != 0 {
		t.Errorf("unknown-event reminder not dropped")
	}
}

func TestSweepPerItemIsolation(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	nt := &memNotifier{fails: 1}
	s := New(logx.Nop(), st, nt)

	// Two due reminders; the first enqueue fails, the second still goes out.
	st.add(storage.Reminder{UserID: 1, Event: "drogon", LeadMinutes: 5})
	st.add(storage.Reminder{UserID: 2, Event: "drogon", LeadMinutes: 5})
	at(s, time.Date(2024, 1, 10, 14, 56, 0, 0, time.UTC))

	s.Sweep(context.Background())
	if len(nt.sent) != 1 {
		t.Errorf("sent = %d, want 1 (one enqueue failed)", len(nt.sent))
	}
	if st.count() != 0 {
		t.Errorf("both reminders should be consumed, %d left", st.count())
	}
}
