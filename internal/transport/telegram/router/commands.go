package router

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/GilloDaby/got-kingsroad-bot/internal/status"
	"github.com/GilloDaby/got-kingsroad-bot/internal/storage"
	"github.com/GilloDaby/got-kingsroad-bot/internal/timers"
	kit "github.com/GilloDaby/got-kingsroad-bot/internal/transport"
)

// Deps carries what the command handlers need.
type Deps struct {
	Store storage.Store
}

const (
	confirmTTL = 8 * time.Second
	listTTL    = 20 * time.Second

	maxLeadMinutes = 1440
)

// now is swappable for tests.
var now = time.Now

// Commands builds the bot's command set.
func Commands(deps Deps) []Command {
	cmds := []Command{
		{
			Name:        "setchannel",
			Description: "use this chat for the countdown and alerts",
			Usage:       "/setchannel",
			Access:      AccessOwnerOnly,
			Handle:      cmdSetChannel(deps),
		},
		{
			Name:        "message",
			Description: "post the live countdown message",
			Usage:       "/message",
			Access:      AccessOwnerOnly,
			Handle:      cmdMessage(deps),
		},
		{
			Name:        "reset",
			Description: "remove the countdown message",
			Usage:       "/reset",
			Access:      AccessOwnerOnly,
			Handle:      cmdReset(deps),
		},
		{
			Name:        "remind",
			Description: "personal DM reminders",
			Usage:       "/remind add <daily|drogon|weekly> <minutes> | list | del <id> | clear",
			Access:      AccessEveryone,
			Handle:      cmdRemind(deps),
		},
		{
			Name:        "ping",
			Description: "check the bot is alive",
			Usage:       "/ping",
			Access:      AccessEveryone,
			Handle: func(ctx context.Context, req *Request) error {
				replyEphemeral(ctx, req.Adapter, req.Chat, "🏓 pong", confirmTTL)
				return nil
			},
		},
	}

	mentions := []struct {
		name  string
		event timers.Event
		set   func(*storage.Settings, string)
	}{
		{"rankdaily", timers.EventDaily, func(s *storage.Settings, v string) { s.DailyMention = v }},
		{"rankdrogon", timers.EventDrogon, func(s *storage.Settings, v string) { s.DrogonMention = v }},
		{"rankweekly", timers.EventWeekly, func(s *storage.Settings, v string) { s.WeeklyMention = v }},
	}
	for _, m := range mentions {
		m := m
		cmds = append(cmds, Command{
			Name:        m.name,
			Description: fmt.Sprintf("set the mention for %s alerts", m.event.Label()),
			Usage:       "/" + m.name + " [@mention]",
			Access:      AccessOwnerOnly,
			Handle: func(ctx context.Context, req *Request) error {
				set, err := deps.Store.Settings(ctx)
				if err != nil {
					return err
				}
				mention := strings.TrimSpace(strings.Join(req.Args, " "))
				m.set(&set, mention)
				if err := deps.Store.PutSettings(ctx, set); err != nil {
					return err
				}
				if mention == "" {
					replyEphemeral(ctx, req.Adapter, req.Chat, fmt.Sprintf("✅ %s mention cleared", m.event.Label()), confirmTTL)
				} else {
					replyEphemeral(ctx, req.Adapter, req.Chat, fmt.Sprintf("✅ %s alerts will mention %s", m.event.Label(), mention), confirmTTL)
				}
				return nil
			},
		})
	}

	return cmds
}

func cmdSetChannel(deps Deps) HandlerFunc {
	return func(ctx context.Context, req *Request) error {
		set, err := deps.Store.Settings(ctx)
		if err != nil {
			return err
		}
		set.ChannelID = req.Chat.ChatID
		// The old countdown message belongs to the previous channel.
		set.StatusMessageID = 0
		if err := deps.Store.PutSettings(ctx, set); err != nil {
			return err
		}
		replyEphemeral(ctx, req.Adapter, req.Chat, "✅ Channel configured. Use /message to post the countdown.", confirmTTL)
		return nil
	}
}

func cmdMessage(deps Deps) HandlerFunc {
	return func(ctx context.Context, req *Request) error {
		set, err := deps.Store.Settings(ctx)
		if err != nil {
			return err
		}
		if set.ChannelID == 0 {
			replyEphemeral(ctx, req.Adapter, req.Chat, "Set a channel first with /setchannel", confirmTTL)
			return nil
		}
		if set.StatusMessageID != 0 {
			_ = req.Adapter.DeleteMessage(ctx, kit.MessageRef{ChatID: set.ChannelID, MessageID: set.StatusMessageID})
		}
		ref, err := req.Adapter.SendText(ctx,
			kit.ChatTarget{ChatID: set.ChannelID},
			status.Render(now().UTC()),
			&kit.SendOptions{ParseMode: "HTML", DisablePreview: true},
		)
		if err != nil {
			return err
		}
		set.StatusMessageID = ref.MessageID
		if err := deps.Store.PutSettings(ctx, set); err != nil {
			return err
		}
		replyEphemeral(ctx, req.Adapter, req.Chat, "✅ Countdown message posted.", confirmTTL)
		return nil
	}
}

func cmdReset(deps Deps) HandlerFunc {
	return func(ctx context.Context, req *Request) error {
		set, err := deps.Store.Settings(ctx)
		if err != nil {
			return err
		}
		if set.StatusMessageID == 0 {
			replyEphemeral(ctx, req.Adapter, req.Chat, "No countdown message to remove.", confirmTTL)
			return nil
		}
		_ = req.Adapter.DeleteMessage(ctx, kit.MessageRef{ChatID: set.ChannelID, MessageID: set.StatusMessageID})
		set.StatusMessageID = 0
		if err := deps.Store.PutSettings(ctx, set); err != nil {
			return err
		}
		replyEphemeral(ctx, req.Adapter, req.Chat, "✅ Countdown message removed.", confirmTTL)
		return nil
	}
}

func cmdRemind(deps Deps) HandlerFunc {
	usage := "Usage: /remind add <daily|drogon|weekly> <minutes> | list | del <id> | clear"
	return func(ctx context.Context, req *Request) error {
		sub := ""
		if len(req.Args) > 0 {
			sub = strings.ToLower(req.Args[0])
		}
		switch sub {
		case "add":
			return remindAdd(ctx, deps, req)
		case "list":
			return remindList(ctx, deps, req)
		case "del":
			return remindDel(ctx, deps, req)
		case "clear":
			n, err := deps.Store.ClearUserReminders(ctx, req.FromID)
			if err != nil {
				return err
			}
			replyEphemeral(ctx, req.Adapter, req.Chat, fmt.Sprintf("🗑 Removed %d reminder(s).", n), confirmTTL)
			return nil
		default:
			replyEphemeral(ctx, req.Adapter, req.Chat, usage, listTTL)
			return nil
		}
	}
}

func remindAdd(ctx context.Context, deps Deps, req *Request) error {
	if len(req.Args) < 3 {
		replyEphemeral(ctx, req.Adapter, req.Chat, "Usage: /remind add <daily|drogon|weekly> <minutes>", listTTL)
		return nil
	}
	ev, err := timers.ParseEvent(req.Args[1])
	if err != nil {
		replyEphemeral(ctx, req.Adapter, req.Chat, "Unknown event. Use daily, drogon or weekly.", confirmTTL)
		return nil
	}
	minutes, err := strconv.Atoi(req.Args[2])
	if err != nil || minutes < 1 || minutes > maxLeadMinutes {
		replyEphemeral(ctx, req.Adapter, req.Chat, fmt.Sprintf("Minutes must be a number between 1 and %d.", maxLeadMinutes), confirmTTL)
		return nil
	}

	at := now().UTC()
	if !timers.LeadFits(ev, at, time.Duration(minutes)*time.Minute) {
		remaining := timers.NextOccurrence(ev, at).Sub(at)
		replyEphemeral(ctx, req.Adapter, req.Chat,
			fmt.Sprintf("⏳ Too late: %s starts in %s.", ev.Label(), timers.FormatCountdown(remaining)), confirmTTL)
		return nil
	}

	r, err := deps.Store.AddReminder(ctx, storage.Reminder{
		UserID:      req.FromID,
		Event:       string(ev),
		LeadMinutes: minutes,
	})
	if err != nil {
		return err
	}
	replyEphemeral(ctx, req.Adapter, req.Chat,
		fmt.Sprintf("✅ Reminder #%d: DM %d minute(s) before %s.", r.ID, minutes, ev.Label()), confirmTTL)
	return nil
}

func remindList(ctx context.Context, deps Deps, req *Request) error {
	rs, err := deps.Store.ListUserReminders(ctx, req.FromID)
	if err != nil {
		return err
	}
	if len(rs) == 0 {
		replyEphemeral(ctx, req.Adapter, req.Chat, "No reminders set. Try /remind add drogon 10", listTTL)
		return nil
	}
	var b strings.Builder
	b.WriteString("Your reminders:\n")
	for _, r := range rs {
		ev, err := timers.ParseEvent(r.Event)
		label := r.Event
		if err == nil {
			label = ev.Label()
		}
		fmt.Fprintf(&b, "#%d %s — %d min before\n", r.ID, label, r.LeadMinutes)
	}
	replyEphemeral(ctx, req.Adapter, req.Chat, strings.TrimRight(b.String(), "\n"), listTTL)
	return nil
}

func remindDel(ctx context.Context, deps Deps, req *Request) error {
	if len(req.Args) < 2 {
		replyEphemeral(ctx, req.Adapter, req.Chat, "Usage: /remind del <id>", confirmTTL)
		return nil
	}
	id, err := strconv.ParseInt(req.Args[1], 10, 64)
	if err != nil || id <= 0 {
		replyEphemeral(ctx, req.Adapter, req.Chat, "Reminder id must be a positive number.", confirmTTL)
		return nil
	}

	// Users may only delete their own reminders.
	rs, err := deps.Store.ListUserReminders(ctx, req.FromID)
	if err != nil {
		return err
	}
	owned := false
	for _, r := range rs {
		if r.ID == id {
			owned = true
			break
		}
	}
	if !owned {
		replyEphemeral(ctx, req.Adapter, req.Chat, fmt.Sprintf("Reminder #%d not found.", id), confirmTTL)
		return nil
	}
	if _, err := deps.Store.DeleteReminder(ctx, id); err != nil {
		return err
	}
	replyEphemeral(ctx, req.Adapter, req.Chat, fmt.Sprintf("🗑 Reminder #%d removed.", id), confirmTTL)
	return nil
}
