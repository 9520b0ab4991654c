package status

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/GilloDaby/got-kingsroad-bot/internal/storage"
	"github.com/GilloDaby/got-kingsroad-bot/internal/timers"
	kit "github.com/GilloDaby/got-kingsroad-bot/internal/transport"
	logx "github.com/GilloDaby/got-kingsroad-bot/pkg/logx"
)

type fixedSettings struct {
	set storage.Settings
	err error
}

func (f fixedSettings) Settings(ctx context.Context) (storage.Settings, error) {
	return f.set, f.err
}

type recordAdapter struct {
	mu      sync.Mutex
	edits   []string
	editErr error
}

func (r *recordAdapter) Start(ctx context.Context, out chan<- kit.Update) error { return nil }
func (r *recordAdapter) Stop(ctx context.Context) error                         { return nil }
func (r *recordAdapter) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	return kit.MessageRef{}, nil
}
func (r *recordAdapter) DeleteMessage(ctx context.Context, ref kit.MessageRef) error { return nil }
func (r *recordAdapter) EditText(ctx context.Context, ref kit.MessageRef, text string, opt *kit.SendOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.editErr != nil {
		return r.editErr
	}
	r.edits = append(r.edits, text)
	return nil
}

type recordNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (r *recordNotifier) Notify(ctx context.Context, n kit.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, n.Text)
	return nil
}

func newTestService(set storage.Settings, ad *recordAdapter, nt *recordNotifier, at time.Time) *Service {
	s := New(logx.Nop(), fixedSettings{set: set}, ad, nt, timers.NewAlertTracker(), nil, 5*time.Minute)
	s.now = func() time.Time { return at }
	return s
}

func TestRender(t *testing.T) {
	t.Parallel()

	// 2024-01-10 is a Wednesday; next weekly is 2024-01-11 05:00.
	now := time.Date(2024, 1, 10, 6, 30, 0, 0, time.UTC)
	got := Render(now)

	for _, want := range []string{
		"<b>Daily Reset</b> in: 0h 30m 0s",
		"<b>Drogon Timer</b>: 30:00",
		"<b>Weekly Reset</b>: 22h 30m 0s",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render missing %q in:\n%s", want, got)
		}
	}

	// At 00:30 the skipped 01:00 spawn pushes the next drogon to 02:00, but
	// the clock shows only the remainder within the current hour.
	got = Render(time.Date(2024, 1, 10, 0, 30, 0, 0, time.UTC))
	if !strings.Contains(got, "<b>Drogon Timer</b>: 30:00") {
		t.Errorf("Render at 00:30 missing folded drogon clock in:\n%s", got)
	}
}

func TestSweepEditsStatusMessage(t *testing.T) {
	t.Parallel()

	ad := &recordAdapter{}
	nt := &recordNotifier{}
	set := storage.Settings{ChannelID: -100, StatusMessageID: 7}
	s := newTestService(set, ad, nt, time.Date(2024, 1, 10, 12, 30, 0, 0, time.UTC))

	s.Sweep(context.Background())
	if len(ad.edits) != 1 {
		t.Fatalf("edits = %d, want 1", len(ad.edits))
	}
	if !strings.Contains(ad.edits[0], "Drogon Timer") {
		t.Errorf("edit text = %q", ad.edits[0])
	}
}

func TestSweepSkipsWithoutStatusRef(t *testing.T) {
	t.Parallel()

	ad := &recordAdapter{}
	nt := &recordNotifier{}
	s := newTestService(storage.Settings{}, ad, nt, time.Date(2024, 1, 10, 12, 30, 0, 0, time.UTC))

	s.Sweep(context.Background())
	if len(ad.edits) != 0 || len(nt.texts) != 0 {
		t.Errorf("expected no activity without configured channel, got edits=%d alerts=%d", len(ad.edits), len(nt.texts))
	}
}

func TestSweepFiresAlertOnce(t *testing.T) {
	t.Parallel()

	ad := &recordAdapter{}
	nt := &recordNotifier{}
	set := storage.Settings{ChannelID: -100, StatusMessageID: 7, DrogonMention: "@raiders"}
	s := newTestService(set, ad, nt, time.Time{})

	// Inside the window before the 15:00 drogon spawn.
	base := time.Date(2024, 1, 10, 14, 56, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		at := base.Add(time.Duration(i) * 30 * time.Second)
		s.now = func() time.Time { return at }
		s.Sweep(context.Background())
	}

	var drogonAlerts int
	for _, txt := range nt.texts {
		if strings.Contains(txt, "Drogon spawns at 15:00 UTC") {
			drogonAlerts++
			if !strings.HasPrefix(txt, "@raiders ") {
				t.Errorf("alert missing mention prefix: %q", txt)
			}
		}
	}
	if drogonAlerts != 1 {
		t.Errorf("drogon alerts = %d, want 1", drogonAlerts)
	}
}

func TestSweepToleratesEditFailure(t *testing.T) {
	t.Parallel()

	ad := &recordAdapter{editErr: errors.New("message to edit not found")}
	nt := &recordNotifier{}
	set := storage.Settings{ChannelID: -100, StatusMessageID: 7, DailyMention: "@everyone"}
	s := newTestService(set, ad, nt, time.Date(2024, 1, 10, 6, 56, 0, 0, time.UTC))

	// Edit fails but alert evaluation still runs. At 06:56 both the daily
	// reset and the 07:00 drogon spawn are inside the window.
	s.Sweep(context.Background())
	if len(nt.texts) != 2 {
		t.Fatalf("alerts = %d, want 2 despite edit failure: %v", len(nt.texts), nt.texts)
	}
	var daily bool
	for _, txt := range nt.texts {
		if strings.Contains(txt, "Daily Reset incoming") {
			daily = true
			if !strings.HasPrefix(txt, "@everyone ") {
				t.Errorf("daily alert missing mention: %q", txt)
			}
		}
	}
	if !daily {
		t.Errorf("no daily alert in %v", nt.texts)
	}
}
