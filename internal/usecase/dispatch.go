package usecase

import (
	"context"
	"duewatch/internal/domain"
	"duewatch/internal/ports"
	"duewatch/pkg/backoff"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const DueNowBody = "Task is due now"

var (
	ErrPresent      = errors.New("present notification")
	ErrMarkNotified = errors.New("mark task notified")
)

// Dispatcher shows the notification for one due task and records that it
// was shown.
type Dispatcher struct {
	Store     ports.TaskStore
	Presenter ports.Presenter
	Window    ports.Window

	MarkAttempts int
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
}

// Notify presents t and then sets notified on the stored copy of t. If
// presenting fails the task is left untouched.
func (d Dispatcher) Notify(ctx context.Context, t domain.Task) error {
	n := ports.Notification{TaskID: t.ID, Title: t.Title, Body: DueNowBody}
	handle, err := d.Presenter.Present(ctx, n, d.onClick(t.ID))
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrPresent, t.ID, err)
	}
	log.Ctx(ctx).Info().Str("task", t.ID).Str("handle", handle).Msg("notification shown")

	attempts, base, max := d.MarkAttempts, d.BaseBackoff, d.MaxBackoff
	if attempts == 0 {
		attempts = 3
	}
	if base == 0 {
		base = 100 * time.Millisecond
	}
	if max == 0 {
		max = 2 * time.Second
	}
	err = backoff.Retry(ctx, attempts, base, max, func() error {
		return d.markNotified(ctx, t)
	})
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrMarkNotified, t.ID, err)
	}
	return nil
}

// markNotified re-reads the snapshot so edits made since selection survive,
// and only touches the task if it still has the due date that was notified.
func (d Dispatcher) markNotified(ctx context.Context, t domain.Task) error {
	tasks, err := d.Store.GetTasks(ctx)
	if err != nil {
		return err
	}
	for i := range tasks {
		if tasks[i].ID != t.ID {
			continue
		}
		if !tasks[i].DueDate.Equal(t.DueDate) {
			log.Ctx(ctx).Debug().Str("task", t.ID).Msg("due date changed since selection, not marking")
			return nil
		}
		if tasks[i].Notified {
			return nil
		}
		tasks[i].Notified = true
		return d.Store.SetTasks(ctx, tasks)
	}
	log.Ctx(ctx).Debug().Str("task", t.ID).Msg("task removed since selection")
	return nil
}

func (d Dispatcher) onClick(taskID string) func() {
	if d.Window == nil {
		return nil
	}
	return func() {
		if err := d.Window.BringToForegroundAndShow(context.Background(), taskID); err != nil {
			log.Warn().Err(err).Str("task", taskID).Msg("bring window to foreground")
		}
	}
}
