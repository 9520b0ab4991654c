//go:build sqlite
// +build sqlite

package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	logx "github.com/GilloDaby/got-kingsroad-bot/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}

	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) AddReminder(ctx context.Context, r Reminder) (Reminder, error) {
	if s == nil || s.db == nil {
		return Reminder{}, ErrDisabled
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders(user_id, event, lead_minutes, created_at) VALUES(?,?,?,?)`,
		r.UserID, r.Event, r.LeadMinutes, r.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Reminder{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Reminder{}, err
	}
	r.ID = id
	return r, nil
}

func (s *sqliteStore) ListReminders(ctx context.Context) ([]Reminder, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	return s.queryReminders(ctx,
		`SELECT id, user_id, event, lead_minutes, created_at FROM reminders ORDER BY id`)
}

func (s *sqliteStore) ListUserReminders(ctx context.Context, userID int64) ([]Reminder, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	return s.queryReminders(ctx,
		`SELECT id, user_id, event, lead_minutes, created_at FROM reminders WHERE user_id = ? ORDER BY id`,
		userID)
}

func (s *sqliteStore) queryReminders(ctx context.Context, q string, args ...any) ([]Reminder, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reminder
	for rows.Next() {
		var r Reminder
		var created string
		if err := rows.Scan(&r.ID, &r.UserID, &r.Event, &r.LeadMinutes, &created); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			r.CreatedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqliteStore) DeleteReminder(ctx context.Context, id int64) (bool, error) {
	if s == nil || s.db == nil {
		return false, ErrDisabled
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *sqliteStore) ClearUserReminders(ctx context.Context, userID int64) (int, error) {
	if s == nil || s.db == nil {
		return 0, ErrDisabled
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *sqliteStore) Settings(ctx context.Context) (Settings, error) {
	if s == nil || s.db == nil {
		return Settings{}, ErrDisabled
	}
	var set Settings
	err := s.db.QueryRowContext(ctx,
		`SELECT channel_id, status_message_id, daily_mention, drogon_mention, weekly_mention
		 FROM settings WHERE id = 1`).
		Scan(&set.ChannelID, &set.StatusMessageID, &set.DailyMention, &set.DrogonMention, &set.WeeklyMention)
	if errors.Is(err, sql.ErrNoRows) {
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, err
	}
	return set, nil
}

func (s *sqliteStore) PutSettings(ctx context.Context, set Settings) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings(id, channel_id, status_message_id, daily_mention, drogon_mention, weekly_mention)
		 VALUES(1,?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET
		   channel_id=excluded.channel_id,
		   status_message_id=excluded.status_message_id,
		   daily_mention=excluded.daily_mention,
		   drogon_mention=excluded.drogon_mention,
		   weekly_mention=excluded.weekly_mention`,
		set.ChannelID, set.StatusMessageID, set.DailyMention, set.DrogonMention, set.WeeklyMention,
	)
	return err
}
