package scheduler

import (
	"context"
	"duewatch/internal/domain"
	"duewatch/internal/ports"
	"duewatch/internal/usecase"
	"duewatch/pkg/clockalign"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type Notifier interface {
	Notify(ctx context.Context, t domain.Task) error
}

type Config struct {
	// Location is the user's timezone; nil means the host's.
	Location *time.Location
	// Granularity is the tick period, one minute unless set.
	Granularity time.Duration
	Now         func() time.Time
	// Delay returns how long to wait before the next check. It defaults to
	// the time until the next Granularity boundary in Location.
	Delay func(now time.Time) time.Duration
}

type Loop struct {
	tasks    ports.TaskStore
	settings ports.SettingsStore
	notifier Notifier

	loc   *time.Location
	now   func() time.Time
	delay func(time.Time) time.Duration

	lifecycle sync.Mutex // serialises Start and Stop
	tickMu    sync.Mutex // one check at a time, including CheckNow

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
	last   Report
}

func New(tasks ports.TaskStore, settings ports.SettingsStore, notifier Notifier, cfg Config) *Loop {
	l := &Loop{
		tasks:    tasks,
		settings: settings,
		notifier: notifier,
		loc:      cfg.Location,
		now:      cfg.Now,
		delay:    cfg.Delay,
	}
	if l.loc == nil {
		l.loc = time.Local
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.delay == nil {
		granularity := cfg.Granularity
		loc := l.loc
		l.delay = func(now time.Time) time.Duration {
			return clockalign.DelayToNextBoundary(now.In(loc), granularity)
		}
	}
	return l
}

func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// LastReport returns the report of the most recent check.
func (l *Loop) LastReport() Report {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

// Start checks for due tasks right away and then keeps checking on every
// boundary until Stop or until ctx ends. Starting a started loop does nothing.
func (l *Loop) Start(ctx context.Context) {
	l.lifecycle.Lock()
	defer l.lifecycle.Unlock()

	l.mu.Lock()
	if l.state != Stopped {
		l.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.cancel, l.done, l.state = cancel, done, Running
	l.mu.Unlock()

	log.Ctx(ctx).Info().Str("tz", l.loc.String()).Msg("scheduler started")
	l.tick(runCtx)
	go l.run(runCtx, done)
}

// Stop cancels the pending timer and waits for a check in progress to
// finish. It is safe to call on a stopped loop.
func (l *Loop) Stop() {
	l.lifecycle.Lock()
	defer l.lifecycle.Unlock()

	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Info().Msg("scheduler stopped")
}

// CheckNow runs one check immediately, whether or not the loop is started.
func (l *Loop) CheckNow(ctx context.Context) Report {
	return l.tick(ctx)
}

// Preview returns the tasks a check at the given instant would notify,
// without notifying them. A zero at means now.
func (l *Loop) Preview(ctx context.Context, at time.Time) ([]domain.Task, error) {
	if at.IsZero() {
		at = l.now()
	}
	tasks, err := l.tasks.GetTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	settings, err := l.settings.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return usecase.SelectDueTasks(tasks, settings, at, l.loc), nil
}

func (l *Loop) run(ctx context.Context, done chan struct{}) {
	defer func() {
		l.setState(Stopped)
		close(done)
	}()
	for l.armNext(ctx) {
		l.tick(ctx)
	}
}

// armNext waits for the next boundary. It reports false once the loop is
// cancelled.
func (l *Loop) armNext(ctx context.Context) bool {
	d := l.delay(l.now())
	if d <= 0 {
		d = time.Millisecond
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	l.setState(Armed)
	log.Ctx(ctx).Debug().Dur("in", d).Msg("scheduler armed")

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}
	l.setState(Running)
	return true
}

func (l *Loop) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// tick runs one check. Its work is detached from ctx's cancellation so that
// Stop lets in-flight writes complete.
func (l *Loop) tick(ctx context.Context) (rep Report) {
	l.tickMu.Lock()
	defer l.tickMu.Unlock()

	ctx = context.WithoutCancel(ctx)
	logger := log.Ctx(ctx)
	now := l.now()
	rep.At = now

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("due check panicked")
		}
		l.mu.Lock()
		l.last = rep
		l.mu.Unlock()
	}()

	tasks, err := l.tasks.GetTasks(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("read tasks")
		return rep
	}
	settings, err := l.settings.GetSettings(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("read settings")
		return rep
	}
	rep.Scanned = len(tasks)

	due := usecase.SelectDueTasks(tasks, settings, now, l.loc)
	rep.Selected = len(due)
	for _, t := range due {
		if err := l.dispatch(ctx, t); err != nil {
			rep.Failed++
			ev := logger.Error()
			if errors.Is(err, usecase.ErrPresent) {
				ev = logger.Warn()
			}
			ev.Err(err).Str("task", t.ID).Msg("notification missed")
			continue
		}
		rep.Notified++
	}

	logger.Debug().
		Int("scanned", rep.Scanned).
		Int("selected", rep.Selected).
		Int("notified", rep.Notified).
		Int("failed", rep.Failed).
		Msg("due check done")
	return rep
}

func (l *Loop) dispatch(ctx context.Context, t domain.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notify %s panicked: %v", t.ID, r)
		}
	}()
	return l.notifier.Notify(ctx, t)
}
