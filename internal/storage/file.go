package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	logx "github.com/GilloDaby/got-kingsroad-bot/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// Files:
//   - <prefix>.state.json    (periodic snapshot: reminders + settings + next id)
//   - <prefix>.journal.jsonl (append-only op journal)
//
// The journal is replayed over the snapshot at open and compacted back into
// it every compactEvery writes.
type fileStore struct {
	log logx.Logger

	mu sync.Mutex

	snapshotPath string
	journalFile  *os.File

	nextID    int64
	reminders map[int64]Reminder
	settings  Settings

	writes int
}

const compactEvery = 256

type fileState struct {
	NextID    int64      `json:"next_id"`
	Reminders []Reminder `json:"reminders"`
	Settings  Settings   `json:"settings"`
}

// journalOp values.
const (
	opAdd      = "add"
	opDelete   = "del"
	opClear    = "clear"
	opSettings = "settings"
)

type journalRecord struct {
	Op       string    `json:"op"`
	Reminder *Reminder `json:"reminder,omitempty"`
	ID       int64     `json:"id,omitempty"`
	UserID   int64     `json:"user_id,omitempty"`
	Settings *Settings `json:"settings,omitempty"`
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	prefix := filepath.Join(dir, base)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	snapPath := prefix + ".state.json"
	journalPath := prefix + ".journal.jsonl"

	st := &fileStore{
		log:          log,
		snapshotPath: snapPath,
		nextID:       1,
		reminders:    map[int64]Reminder{},
	}
	_ = st.loadSnapshot(snapPath)
	_ = st.replayJournal(journalPath)

	jf, err := os.OpenFile(journalPath, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o600)
	if err != nil {
		return nil, err
	}
	st.journalFile = jf
	return st, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journalFile == nil {
		return nil
	}
	// Fold the journal into the snapshot so the next open starts clean.
	if err := s.compactLocked(); err != nil {
		s.log.Debug("compact on close failed", logx.Any("err", err))
	}
	err := s.journalFile.Close()
	s.journalFile = nil
	return err
}

func (s *fileStore) AddReminder(ctx context.Context, r Reminder) (Reminder, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journalFile == nil {
		return Reminder{}, errors.New("store closed")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.ID = s.nextID
	s.nextID++
	s.reminders[r.ID] = r
	if err := s.appendLocked(journalRecord{Op: opAdd, Reminder: &r}); err != nil {
		delete(s.reminders, r.ID)
		return Reminder{}, err
	}
	return r, nil
}

func (s *fileStore) ListReminders(ctx context.Context) ([]Reminder, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		out = append(out, r)
	}
	sortReminders(out)
	return out, nil
}

func (s *fileStore) ListUserReminders(ctx context.Context, userID int64) ([]Reminder, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Reminder
	for _, r := range s.reminders {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sortReminders(out)
	return out, nil
}

func (s *fileStore) DeleteReminder(ctx context.Context, id int64) (bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journalFile == nil {
		return false, errors.New("store closed")
	}
	if _, ok := s.reminders[id]; !ok {
		return false, nil
	}
	delete(s.reminders, id)
	if err := s.appendLocked(journalRecord{Op: opDelete, ID: id}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *fileStore) ClearUserReminders(ctx context.Context, userID int64) (int, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journalFile == nil {
		return 0, errors.New("store closed")
	}
	n := 0
	for id, r := range s.reminders {
		if r.UserID == userID {
			delete(s.reminders, id)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	if err := s.appendLocked(journalRecord{Op: opClear, UserID: userID}); err != nil {
		return n, err
	}
	return n, nil
}

func (s *fileStore) Settings(ctx context.Context) (Settings, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, nil
}

func (s *fileStore) PutSettings(ctx context.Context, set Settings) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journalFile == nil {
		return errors.New("store closed")
	}
	s.settings = set
	return s.appendLocked(journalRecord{Op: opSettings, Settings: &set})
}

func (s *fileStore) appendLocked(rec journalRecord) error {
	if err := json.NewEncoder(s.journalFile).Encode(rec); err != nil {
		return err
	}
	s.writes++
	if s.writes%compactEvery == 0 {
		if err := s.compactLocked(); err != nil {
			s.log.Debug("journal compact failed", logx.Any("err", err))
		}
	}
	return nil
}

func (s *fileStore) compactLocked() error {
	state := fileState{
		NextID:    s.nextID,
		Reminders: make([]Reminder, 0, len(s.reminders)),
		Settings:  s.settings,
	}
	for _, r := range s.reminders {
		state.Reminders = append(state.Reminders, r)
	}
	sortReminders(state.Reminders)

	tmp := s.snapshotPath + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(state); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.snapshotPath); err != nil {
		return err
	}
	if err := s.journalFile.Truncate(0); err != nil {
		return err
	}
	_, err = s.journalFile.Seek(0, 2)
	return err
}

func (s *fileStore) loadSnapshot(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	var state fileState
	if err := json.NewDecoder(f).Decode(&state); err != nil {
		return err
	}
	if state.NextID > 0 {
		s.nextID = state.NextID
	}
	for _, r := range state.Reminders {
		s.reminders[r.ID] = r
		if r.ID >= s.nextID {
			s.nextID = r.ID + 1
		}
	}
	s.settings = state.Settings
	return nil
}

func (s *fileStore) replayJournal(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec journalRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			continue
		}
		switch rec.Op {
		case opAdd:
			if rec.Reminder == nil {
				continue
			}
			r := *rec.Reminder
			s.reminders[r.ID] = r
			if r.ID >= s.nextID {
				s.nextID = r.ID + 1
			}
		case opDelete:
			delete(s.reminders, rec.ID)
		case opClear:
			for id, r := range s.reminders {
				if r.UserID == rec.UserID {
					delete(s.reminders, id)
				}
			}
		case opSettings:
			if rec.Settings != nil {
				s.settings = *rec.Settings
			}
		}
	}
	return sc.Err()
}

func sortReminders(rs []Reminder) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].ID < rs[j].ID })
}
