// Package sweep hosts the bot's periodic loops (status re-render, reminder
// dispatch) on a shared cron runner.
package sweep

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	logx "github.com/GilloDaby/got-kingsroad-bot/pkg/logx"
)

// Func is one sweep body. It must honor ctx and return promptly on cancel.
type Func func(ctx context.Context)

// Runner schedules named sweep functions. Overlapping runs of the same sweep
// are skipped, not queued: a slow tick must never pile up behind itself.
type Runner struct {
	log    logx.Logger
	parser cron.Parser

	mu      sync.Mutex
	c       *cron.Cron
	ctx     context.Context
	started bool
}

func NewRunner(log logx.Logger) *Runner {
	if log.IsZero() {
		log = logx.Nop()
	}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Runner{
		log:    log,
		parser: parser,
		c:      cron.New(cron.WithParser(parser), cron.WithLocation(time.UTC)),
	}
}

// Add registers fn under the given spec. Spec is either a plain Go duration
// ("1s", "30s"), an "@every ..." descriptor, or a cron expression. Add works
// before or after Start.
func (r *Runner) Add(name, spec string, fn Func) error {
	if fn == nil {
		return errors.New("sweep: nil func")
	}
	sched, err := r.parseSpec(spec)
	if err != nil {
		return err
	}

	var running atomic.Bool
	job := cron.FuncJob(func() {
		r.mu.Lock()
		ctx := r.ctx
		r.mu.Unlock()
		if ctx == nil || ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			r.log.Debug("sweep still running; tick skipped", logx.String("sweep", name))
			return
		}
		defer running.Store(false)
		fn(ctx)
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	r.c.Schedule(sched, job)
	return nil
}

func (r *Runner) parseSpec(spec string) (cron.Schedule, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, errors.New("sweep: empty spec")
	}
	if d, err := time.ParseDuration(spec); err == nil {
		if d <= 0 {
			return nil, errors.New("sweep: interval must be > 0")
		}
		return cron.Every(d), nil
	}
	return r.parser.Parse(spec)
}

func (r *Runner) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.ctx = ctx
	r.started = true
	r.c.Start()
}

// Stop halts scheduling and waits for in-flight sweeps until ctx expires.
func (r *Runner) Stop(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return nil
	}
	r.started = false
	c := r.c
	r.mu.Unlock()

	done := c.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
