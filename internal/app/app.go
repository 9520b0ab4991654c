package app

import (
	"context"
	"fmt"
	"time"

	"github.com/GilloDaby/got-kingsroad-bot/internal/dispatch"
	"github.com/GilloDaby/got-kingsroad-bot/internal/eventbus"
	"github.com/GilloDaby/got-kingsroad-bot/internal/notifier"
	"github.com/GilloDaby/got-kingsroad-bot/internal/status"
	"github.com/GilloDaby/got-kingsroad-bot/internal/storage"
	"github.com/GilloDaby/got-kingsroad-bot/internal/sweep"
	"github.com/GilloDaby/got-kingsroad-bot/internal/timers"
	kit "github.com/GilloDaby/got-kingsroad-bot/internal/transport"
	telegram "github.com/GilloDaby/got-kingsroad-bot/internal/transport/telegram/adapter"
	"github.com/GilloDaby/got-kingsroad-bot/internal/transport/telegram/router"
	logx "github.com/GilloDaby/got-kingsroad-bot/pkg/logx"
)

type App struct {
	cfgPath string

	cfgm *ConfigManager
	sup  *Supervisor

	log   logx.Logger
	logs  *logx.Service
	bus   eventbus.Bus
	store storage.Store

	adapter kit.Adapter

	// storageCfg is the config the store was opened with; reloads compare
	// against it to warn when a restart is needed.
	storageCfg storage.Config

	notif   *notifier.Service
	stat    *status.Service
	disp    *dispatch.Service
	sweeps  *sweep.Runner
	timings sweepTimings

	rt *router.Router

	updates chan kit.Update
}

func NewApp(cfgPath string) (*App, error) {
	cfgm := NewConfigManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	bootLog := logx.NewConsole("INFO").With(logx.String("comp", "telegram"))

	pollTimeout, err := parseDurationOrDefault("telegram.poll_timeout", cfg.Telegram.PollTimeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	ad, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: pollTimeout,
	}, bootLog)
	if err != nil {
		return nil, err
	}

	// Logging service mapping. logx.New() applies the config immediately, so
	// bootstrap with the Telegram sink disabled, point it at its chat, then
	// apply the real config.
	baseLogCfg := logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Telegram: logx.TelegramConfig{
			Enabled:    false,
			MinLevel:   cfg.Logging.Telegram.MinLevel,
			RatePerSec: cfg.Logging.Telegram.RatePerSec,
		},
	}
	logSvc, log := logx.New(baseLogCfg, ad)
	log = log.With(logx.String("comp", "app"))

	logSvc.SetTelegramTarget(cfg.Logging.Telegram.ChatID)
	finalLogCfg := baseLogCfg
	finalLogCfg.Telegram.Enabled = cfg.Logging.Telegram.Enabled
	logSvc.Apply(finalLogCfg)

	bus := eventbus.New()

	sc, err := mapStorageConfig(cfg)
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(sc, log.With(logx.String("comp", "storage")))
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("storage.driver %q disables persistence; reminders and the countdown message ref need a store", sc.Driver)
	}
	log.Info("storage ready", logx.String("driver", sc.Driver), logx.String("path", sc.Path))

	ncfg, err := mapNotifierConfig(cfg)
	if err != nil {
		return nil, err
	}
	notifSvc := notifier.New(ncfg, ad, log.With(logx.String("comp", "notifier")), bus)

	timings, err := mapTimersConfig(cfg)
	if err != nil {
		return nil, err
	}

	statSvc := status.New(
		log.With(logx.String("comp", "status")),
		store, ad, notifSvc,
		timers.NewAlertTracker(),
		bus,
		timings.AlertWindow,
	)
	dispSvc := dispatch.New(log.With(logx.String("comp", "dispatch")), store, notifSvc)

	rt := router.New(log.With(logx.String("comp", "router")), ad, cfg.Telegram.OwnerUserIDs)

	return &App{
		cfgPath:    cfgPath,
		cfgm:       cfgm,
		log:        log,
		logs:       logSvc,
		bus:        bus,
		store:      store,
		adapter:    ad,
		storageCfg: sc,
		notif:      notifSvc,
		stat:       statSvc,
		disp:       dispSvc,
		sweeps:     sweep.NewRunner(log.With(logx.String("comp", "sweep"))),
		timings:    timings,
		rt:         rt,
		updates:    make(chan kit.Update, 256),
	}, nil
}

// Done is closed when the app supervisor context is canceled (fatal error or Stop()).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = NewSupervisor(ctx, WithLogger(a.log), WithCancelOnError(true))

	// Transactional config reload: validate before commit/publish.
	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	a.cfgm.SetValidator(func(c context.Context, cfg *Config) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		if _, err := mapNotifierConfig(cfg); err != nil {
			return err
		}
		if _, err := mapStorageConfig(cfg); err != nil {
			return err
		}
		_, err := mapTimersConfig(cfg)
		return err
	})

	if err := a.adapter.Start(a.sup.Context(), a.updates); err != nil {
		return err
	}

	if a.notif.Enabled() {
		a.notif.Start(a.sup.Context())
	}

	a.rt.Register(a.sup.Context(), router.Commands(router.Deps{Store: a.store}))
	a.sup.Go("router.dispatch", func(c context.Context) error {
		return a.rt.DispatchLoop(c, a.updates)
	})

	if err := a.sweeps.Add("status", a.timings.StatusSweep.String(), a.stat.Sweep); err != nil {
		return err
	}
	if err := a.sweeps.Add("dispatch", a.timings.DispatchSweep.String(), a.disp.Sweep); err != nil {
		return err
	}
	a.sweeps.Start(a.sup.Context())

	// Event log for observability. Keep it debug-level; the status sweep
	// publishes every edit failure.
	events, unsub := a.bus.Subscribe(128)
	a.sup.Go0("eventbus.log", func(c context.Context) {
		defer unsub()
		for {
			select {
			case <-c.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				a.log.Debug("event", logx.String("type", e.Type), logx.Time("time", e.Time))
			}
		}
	})

	// Hot reload fan-out.
	sub := a.cfgm.Subscribe(8)
	a.sup.Go0("config.reload", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		for {
			select {
			case <-c.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				// Coalesce bursts: keep only the latest config.
				for {
					select {
					case newer := <-sub:
						if newer != nil {
							newCfg = newer
						}
					default:
						goto APPLY
					}
				}
			APPLY:
				a.applyConfig(c, newCfg)
			}
		}
	})

	a.sup.Go("config.watch", func(c context.Context) error {
		return a.cfgm.Watch(c)
	})

	a.log.Info("app started")
	return nil
}

// applyConfig applies a validated reload to the running services. Storage and
// sweep cadences are wired at startup and need a restart; everything else is
// hot.
func (a *App) applyConfig(ctx context.Context, cfg *Config) {
	a.logs.SetTelegramTarget(cfg.Logging.Telegram.ChatID)
	a.logs.Apply(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Telegram: logx.TelegramConfig{
			Enabled:    cfg.Logging.Telegram.Enabled,
			MinLevel:   cfg.Logging.Telegram.MinLevel,
			RatePerSec: cfg.Logging.Telegram.RatePerSec,
		},
	})

	a.rt.SetOwners(cfg.Telegram.OwnerUserIDs)

	// Validator already accepted these, so errors here are unreachable in
	// practice; keep the previous settings if one slips through anyway.
	if ncfg, err := mapNotifierConfig(cfg); err != nil {
		a.log.Warn("invalid notifier config; keeping previous", logx.Any("err", err))
	} else {
		prevEnabled := a.notif.Enabled()
		a.notif.Apply(ncfg)
		if prevEnabled && !ncfg.Enabled {
			a.log.Info("notifier disabled via config")
			stopCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			a.notif.Stop(stopCtx)
			cancel()
		} else if !prevEnabled && ncfg.Enabled {
			a.log.Info("notifier enabled via config")
			a.notif.Start(ctx)
		}
	}

	if t, err := mapTimersConfig(cfg); err != nil {
		a.log.Warn("invalid timers config; keeping previous", logx.Any("err", err))
	} else {
		a.stat.SetWindow(t.AlertWindow)
		if t.StatusSweep != a.timings.StatusSweep || t.DispatchSweep != a.timings.DispatchSweep {
			a.log.Warn("sweep cadence changed; restart required for changes to take effect")
		}
		a.timings.AlertWindow = t.AlertWindow
	}

	if sc, err := mapStorageConfig(cfg); err == nil && sc != a.storageCfg {
		a.log.Warn("storage config changed; restart required for changes to take effect")
	}

	a.log.Info("config reloaded")
}

func (a *App) Stop(ctx context.Context, reason StopReason) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping", logx.String("reason", string(reason)))

	// Cancel the run context first so background loops start unwinding.
	a.sup.Cancel()

	// Run each shutdown step with an upper bound so one component can't stall
	// the whole stop.
	step := func(name string, max time.Duration, fn func(context.Context) error) {
		start := time.Now()

		stepCtx := ctx
		var cancel context.CancelFunc
		if max > 0 {
			if dl, ok := ctx.Deadline(); ok {
				rem := time.Until(dl)
				if rem <= 0 {
					max = 0
				} else if rem < max {
					max = rem
				}
			}
			if max > 0 {
				stepCtx, cancel = context.WithTimeout(ctx, max)
				defer cancel()
			}
		}

		done := make(chan error, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- fmt.Errorf("panic in stop step %s: %v", name, r)
				}
			}()
			done <- fn(stepCtx)
		}()

		select {
		case err := <-done:
			if err != nil {
				a.log.Warn("stop step error", logx.String("name", name), logx.String("err", err.Error()))
			}
			a.log.Debug("stop step end", logx.String("name", name), logx.Duration("took", time.Since(start)))
		case <-stepCtx.Done():
			a.log.Warn("stop step deadline reached (continuing)",
				logx.String("name", name),
				logx.Duration("elapsed", time.Since(start)))
		}
	}

	step("sweeps", 2*time.Second, func(c context.Context) error { return a.sweeps.Stop(c) })
	step("notifier", 2*time.Second, func(c context.Context) error { a.notif.Stop(c); return nil })
	step("adapter", 2*time.Second, func(c context.Context) error { return a.adapter.Stop(c) })
	step("storage", 1*time.Second, func(c context.Context) error { return a.store.Close() })

	// Finally, wait for supervised goroutines (config watch/reload, router).
	step("supervisor", 2*time.Second, func(c context.Context) error { return a.sup.Wait(c) })

	a.log.Info("stopped")
	if a.logs != nil {
		a.logs.Close()
	}
	return nil
}
