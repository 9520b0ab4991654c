package storage

import (
	"context"
	"path/filepath"
	"testing"

	logx "github.com/GilloDaby/got-kingsroad-bot/pkg/logx"
)

func openTestStore(t *testing.T, dir string) Store {
	t.Helper()
	st, err := Open(Config{Driver: "file", Path: filepath.Join(dir, "store")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return st
}

func TestFileStoreReminderLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	st := openTestStore(t, dir)
	defer st.Close()

	a, err := st.AddReminder(ctx, Reminder{UserID: 1, Event: "daily", LeadMinutes: 30})
	if err != nil {
		t.Fatalf("AddReminder: %v", err)
	}
	b, err := st.AddReminder(ctx, Reminder{UserID: 1, Event: "drogon", LeadMinutes: 5})
	if err != nil {
		t.Fatalf("AddReminder: %v", err)
	}
	if a.ID == 0 || b.ID == 0 || a.ID == b.ID {
		t.Fatalf("ids not assigned uniquely: %d, %d", a.ID, b.ID)
	}

	all, err := st.ListReminders(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListReminders = %v, %v", all, err)
	}

	ok, err := st.DeleteReminder(ctx, a.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteReminder(%d) = %v, %v", a.ID, ok, err)
	}
	ok, err = st.DeleteReminder(ctx, a.ID)
	if err != nil || ok {
		t.Fatalf("second DeleteReminder(%d) = %v, %v, want miss", a.ID, ok, err)
	}
}

func TestFileStoreDuplicateTriplesDeleteIndependently(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := openTestStore(t, t.TempDir())
	defer st.Close()

	// Two identical (user, event, lead) triples.
	r1, _ := st.AddReminder(ctx, Reminder{UserID: 9, Event: "weekly", LeadMinutes: 10})
	r2, _ := st.AddReminder(ctx, Reminder{UserID: 9, Event: "weekly", LeadMinutes: 10})

	ok, err := st.DeleteReminder(ctx, r1.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteReminder: %v, %v", ok, err)
	}
	left, err := st.ListUserReminders(ctx, 9)
	if err != nil {
		t.Fatalf("ListUserReminders: %v", err)
	}
	if len(left) != 1 || left[0].ID != r2.ID {
		t.Fatalf("remaining = %v, want only id %d", left, r2.ID)
	}
}

func TestFileStoreClearUserReminders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := openTestStore(t, t.TempDir())
	defer st.Close()

	st.AddReminder(ctx, Reminder{UserID: 1, Event: "daily", LeadMinutes: 5})
	st.AddReminder(ctx, Reminder{UserID: 1, Event: "weekly", LeadMinutes: 15})
	st.AddReminder(ctx, Reminder{UserID: 2, Event: "daily", LeadMinutes: 5})

	n, err := st.ClearUserReminders(ctx, 1)
	if err != nil || n != 2 {
		t.Fatalf("ClearUserReminders = %d, %v, want 2", n, err)
	}
	other, _ := st.ListUserReminders(ctx, 2)
	if len(other) != 1 {
		t.Fatalf("user 2 reminders = %v", other)
	}
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	st := openTestStore(t, dir)
	r, err := st.AddReminder(ctx, Reminder{UserID: 3, Event: "drogon", LeadMinutes: 7})
	if err != nil {
		t.Fatalf("AddReminder: %v", err)
	}
	want := Settings{ChannelID: -100123, StatusMessageID: 55, DrogonMention: "@raiders"}
	if err := st.PutSettings(ctx, want); err != nil {
		t.Fatalf("PutSettings: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st2 := openTestStore(t, dir)
	defer st2.Close()

	got, err := st2.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if got != want {
		t.Errorf("settings after reopen = %+v, want %+v", got, want)
	}
	rs, _ := st2.ListReminders(ctx)
	if len(rs) != 1 || rs[0].ID != r.ID || rs[0].Event != "drogon" {
		t.Errorf("reminders after reopen = %v", rs)
	}

	// IDs keep advancing after reopen.
	r2, err := st2.AddReminder(ctx, Reminder{UserID: 3, Event: "daily", LeadMinutes: 1})
	if err != nil {
		t.Fatalf("AddReminder after reopen: %v", err)
	}
	if r2.ID <= r.ID {
		t.Errorf("id after reopen = %d, want > %d", r2.ID, r.ID)
	}
}

func TestOpenDisabledAndUnknown(t *testing.T) {
	t.Parallel()

	st, err := Open(Config{Driver: ""}, logx.Nop())
	if st != nil || err != nil {
		t.Errorf("empty driver: got %v, %v", st, err)
	}
	st, err = Open(Config{Driver: "none"}, logx.Nop())
	if st != nil || err != nil {
		t.Errorf("none driver: got %v, %v", st, err)
	}
	if _, err := Open(Config{Driver: "postgres", Path: "x"}, logx.Nop()); err == nil {
		t.Error("unknown driver: expected error")
	}
}
