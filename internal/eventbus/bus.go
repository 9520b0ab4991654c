// Package eventbus provides a small in-memory fanout used to decouple
// components (notifier outcomes, config reloads, transport health) from the
// code that reacts to them.
package eventbus

import (
	"sync"
	"sync/atomic"
	"time"
)

// Well-known event types published by the bot.
const (
	TypeConfigReloaded    = "config.reloaded"
	TypeAlertSent         = "alert.sent"
	TypeReminderDelivered = "reminder.delivered"
	TypeNotifyFailed      = "notify.failed"
	TypeStatusEditFailed  = "status.edit_failed"
)

// Event is a lightweight signal. Publish never blocks and slow subscribers
// may miss events, so Data must be informational only, never load-bearing.
type Event struct {
	Type string
	Time time.Time
	Data any
}

type Bus interface {
	Publish(e Event)
	Subscribe(buffer int) (ch <-chan Event, unsubscribe func())
}

// New returns an in-memory fanout bus with no background goroutines.
func New() Bus {
	return &fanout{subs: map[uint64]chan Event{}}
}

type fanout struct {
	mu   sync.RWMutex
	subs map[uint64]chan Event
	seq  atomic.Uint64
}

func (b *fanout) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	b.mu.RLock()
	targets := make([]chan Event, 0, len(b.subs))
	for _, ch := range b.subs {
		targets = append(targets, ch)
	}
	b.mu.RUnlock()

	for _, ch := range targets {
		// Best-effort, non-blocking. A concurrent unsubscribe may close the
		// channel under us; the recover absorbs that race.
		func() {
			defer func() { _ = recover() }()
			select {
			case ch <- e:
			default:
			}
		}()
	}
}

func (b *fanout) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan Event, buffer)
	id := b.seq.Add(1)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}
