package app

import (
	"context"
	"duewatch/internal/domain"
	"duewatch/internal/infra/memory"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrDemoStore = errors.New("demo tasks need the memory store")

// SeedDemo fills the memory store with tasks due over the next few minutes
// so a demo run has something to notify.
func (a *App) SeedDemo(ctx context.Context, now time.Time) error {
	store, ok := a.Store.(*memory.Store)
	if !ok {
		return ErrDemoStore
	}
	loc, err := a.Config.Scheduler.Location()
	if err != nil {
		return err
	}
	tasks := DemoTasks(now, loc)
	if err := store.SetTasks(ctx, tasks); err != nil {
		return err
	}
	for _, t := range tasks {
		at, _ := t.DueDate.Time()
		log.Ctx(ctx).Info().Str("task", t.ID).Time("due", at.In(loc)).Bool("completed", t.Completed).Msg("demo task")
	}
	return nil
}

// DemoTasks returns tasks due on the next three minute boundaries in loc,
// plus a completed one that must stay silent.
func DemoTasks(now time.Time, loc *time.Location) []domain.Task {
	l := now.In(loc)
	minute := time.Date(l.Year(), l.Month(), l.Day(), l.Hour(), l.Minute(), 0, 0, loc)

	tasks := make([]domain.Task, 0, 4)
	for i, p := range []domain.Priority{domain.PriorityHigh, domain.PriorityLow, domain.PriorityMedium} {
		tasks = append(tasks, domain.Task{
			ID:       fmt.Sprintf("demo-%d", i+1),
			Title:    fmt.Sprintf("Demo task %d", i+1),
			DueDate:  domain.NewDueDate(minute.Add(time.Duration(i+1) * time.Minute)),
			Priority: p,
		})
	}
	return append(tasks, domain.Task{
		ID:        "demo-done",
		Title:     "Finished demo task",
		DueDate:   domain.NewDueDate(minute.Add(time.Minute)),
		Completed: true,
	})
}
