// Package router receives chat updates, matches slash commands, and runs the
// handlers on a bounded worker pool.
package router

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	rtsup "github.com/GilloDaby/got-kingsroad-bot/internal/runtime/supervisor"
	kit "github.com/GilloDaby/got-kingsroad-bot/internal/transport"
	logx "github.com/GilloDaby/got-kingsroad-bot/pkg/logx"
)

type Access int

const (
	AccessEveryone Access = iota
	AccessOwnerOnly
)

type Command struct {
	Name        string
	Description string
	Usage       string
	Access      Access
	Timeout     time.Duration // optional per-command override
	Handle      HandlerFunc
}

type Request struct {
	Update  kit.Update
	Chat    kit.ChatTarget
	FromID  int64
	Command string
	Args    []string
	ReqID   string

	Adapter kit.Adapter
	Logger  logx.Logger
}

type Router struct {
	mu    sync.RWMutex
	cmds  map[string]Command
	order []string // registration order, used for /help and the menu

	ownMu  sync.Mutex
	owners []int64

	log     logx.Logger
	adapter kit.Adapter

	jobs chan func()
}

func New(log logx.Logger, adapter kit.Adapter, owners []int64) *Router {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Router{
		cmds:    map[string]Command{},
		log:     log,
		adapter: adapter,
		owners:  append([]int64(nil), owners...),
		jobs:    make(chan func(), 128),
	}
}

// SetOwners updates the owner list used for AccessOwnerOnly checks.
// Safe to call during hot-reload.
func (r *Router) SetOwners(owners []int64) {
	cp := append([]int64(nil), owners...)
	r.ownMu.Lock()
	r.owners = cp
	r.ownMu.Unlock()
}

func (r *Router) ownersSnapshot() []int64 {
	r.ownMu.Lock()
	cp := append([]int64(nil), r.owners...)
	r.ownMu.Unlock()
	return cp
}

// Register installs the command set. A /help command is always injected.
// The Telegram /menu autocomplete list is updated best-effort.
func (r *Router) Register(ctx context.Context, cmds []Command) {
	all := append([]Command(nil), cmds...)
	all = append(all, Command{
		Name:        "help",
		Description: "show available commands",
		Usage:       "/help",
		Access:      AccessEveryone,
		Handle: func(ctx context.Context, req *Request) error {
			_, err := req.Adapter.SendText(ctx, req.Chat, r.helpText(req.FromID), &kit.SendOptions{ParseMode: "HTML", DisablePreview: true})
			return err
		},
	})

	m := make(map[string]Command, len(all))
	order := make([]string, 0, len(all))
	for _, c := range all {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name == "" || c.Handle == nil {
			continue
		}
		if _, dup := m[name]; dup {
			continue
		}
		m[name] = c
		order = append(order, name)
	}

	r.mu.Lock()
	r.cmds = m
	r.order = order
	r.mu.Unlock()

	if up, ok := r.adapter.(kit.CommandMenuUpdater); ok {
		menu := make([]kit.BotCommand, 0, len(order))
		for _, name := range order {
			menu = append(menu, kit.BotCommand{Command: name, Description: m[name].Description})
		}
		go func() {
			mctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := up.UpdateMenuCommands(mctx, menu); err != nil {
				r.log.Debug("menu update failed", logx.Any("err", err))
			}
		}()
	}
}

func (r *Router) helpText(fromID int64) string {
	owners := r.ownersSnapshot()
	owner := isOwner(fromID, owners)

	r.mu.RLock()
	defer r.mu.RUnlock()

	names := append([]string(nil), r.order...)
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("<b>Kingsroad timers</b>\n")
	for _, name := range names {
		c := r.cmds[name]
		if c.Access == AccessOwnerOnly && !owner {
			continue
		}
		usage := c.Usage
		if usage == "" {
			usage = "/" + name
		}
		fmt.Fprintf(&b, "%s — %s\n", usage, c.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// DispatchLoop consumes updates until ctx is canceled or the channel closes.
func (r *Router) DispatchLoop(ctx context.Context, updates <-chan kit.Update) error {
	workers := runtime.NumCPU()
	if workers < 2 {
		workers = 2
	}

	sup := rtsup.New(ctx,
		rtsup.WithLogger(r.log.With(logx.String("comp", "telegram.router"))),
		rtsup.WithCancelOnError(false),
	)
	r.log.Info("command dispatcher started", logx.Int("workers", workers))

	var closeOnce sync.Once
	closeJobs := func() {
		closeOnce.Do(func() {
			close(r.jobs)
		})
	}

	for i := 0; i < workers; i++ {
		name := "command.worker." + strconv.Itoa(i)
		sup.GoRestart(name, func(c context.Context) error {
			for {
				select {
				case <-c.Done():
					return nil
				case job, ok := <-r.jobs:
					if !ok {
						return nil
					}
					if job == nil {
						continue
					}
					// Middleware already recovers handler panics; this keeps
					// the worker alive if the job wrapper itself misbehaves.
					func() {
						defer func() {
							if p := recover(); p != nil {
								r.log.Error("panic in command job", logx.Any("panic", p), logx.String("stack", string(debug.Stack())))
							}
						}()
						job()
					}()
				}
			}
		},
			rtsup.WithRestartBackoff(200*time.Millisecond, 5*time.Second),
			rtsup.WithPublishFirstError(true),
		)
	}

	defer func() {
		closeJobs()
		wctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		_ = sup.Wait(wctx)
		cancel()
		r.log.Info("command dispatcher stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			r.routeUpdate(ctx, up)
		}
	}
}

// tryEnqueue is a panic-safe enqueue helper (handles the jobs channel being closed).
func (r *Router) tryEnqueue(fn func()) (ok bool) {
	if fn == nil {
		return false
	}
	defer func() {
		if p := recover(); p != nil {
			ok = false
		}
	}()
	select {
	case r.jobs <- fn:
		return true
	default:
		return false
	}
}

func (r *Router) routeUpdate(root context.Context, up kit.Update) {
	if up.Kind != kit.UpdateMessage || up.Message == nil {
		return
	}
	msg := up.Message
	name, args, ok := parseCommandLine(msg.Text)
	if !ok {
		return
	}

	r.mu.RLock()
	cmd, found := r.cmds[name]
	r.mu.RUnlock()
	if !found {
		replyEphemeral(root, r.adapter, kit.ChatTarget{ChatID: msg.ChatID, ThreadID: msg.ThreadID}, "Unknown command. Try /help", 5*time.Second)
		return
	}

	owners := r.ownersSnapshot()
	if cmd.Access == AccessOwnerOnly && !isOwner(msg.FromID, owners) {
		replyEphemeral(root, r.adapter, kit.ChatTarget{ChatID: msg.ChatID, ThreadID: msg.ThreadID}, "⛔ Owner only", 5*time.Second)
		return
	}

	rid := newReqID()
	req := &Request{
		Update:  up,
		Chat:    kit.ChatTarget{ChatID: msg.ChatID, ThreadID: msg.ThreadID},
		FromID:  msg.FromID,
		Command: name,
		Args:    args,
		ReqID:   rid,
		Adapter: r.adapter,
		Logger: r.log.With(
			logx.String("rid", rid),
			logx.Int64("chat_id", msg.ChatID),
			logx.Int64("from_id", msg.FromID),
			logx.String("cmd", name),
		),
	}

	final := Chain(
		cmd.Handle,
		MWPanicRecover(r.log),
		MWRequestLog(r.log),
		MWTimeout(cmd.Timeout),
	)

	if !r.tryEnqueue(func() { _ = final(root, req) }) {
		replyEphemeral(root, r.adapter, req.Chat, "Busy, try again", 5*time.Second)
	}
}

// parseCommandLine extracts the command name and arguments from a message.
// "/remind@MyBot add daily 30" yields ("remind", ["add","daily","30"], true).
func parseCommandLine(text string) (name string, args []string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", nil, false
	}
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", nil, false
	}
	name = strings.TrimPrefix(parts[0], "/")
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	name = strings.ToLower(name)
	if name == "" {
		return "", nil, false
	}
	return name, parts[1:], true
}

// replyEphemeral sends a reply and deletes it shortly after, keeping game
// channels free of command noise.
func replyEphemeral(ctx context.Context, ad kit.Adapter, to kit.ChatTarget, text string, ttl time.Duration) {
	ref, err := ad.SendText(ctx, to, text, nil)
	if err != nil || ref.MessageID == 0 {
		return
	}
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	time.AfterFunc(ttl, func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = ad.DeleteMessage(dctx, ref)
	})
}

func isOwner(id int64, owners []int64) bool {
	for _, o := range owners {
		if o == id {
			return true
		}
	}
	return false
}

var ridSeq uint64

func newReqID() string {
	n := atomic.AddUint64(&ridSeq, 1)
	return strconv.FormatInt(time.Now().UnixNano()%1e9, 36) + "-" + strconv.FormatUint(n, 36)
}
