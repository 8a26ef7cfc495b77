package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"duewatch/internal/domain"
	"duewatch/internal/infra/memory"
	"duewatch/internal/ports"
)

type fakePresenter struct {
	mu     sync.Mutex
	shown  []ports.Notification
	clicks []func()
	err    error
}

func (p *fakePresenter) Present(_ context.Context, n ports.Notification, onClick func()) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.shown = append(p.shown, n)
	p.clicks = append(p.clicks, onClick)
	return fmt.Sprintf("h%d", len(p.shown)), nil
}

type fakeWindow struct {
	mu    sync.Mutex
	shown []string
}

func (w *fakeWindow) BringToForegroundAndShow(_ context.Context, taskID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.shown = append(w.shown, taskID)
	return nil
}

// flakyStore fails the first failSets writes and can run a hook before each
// read to simulate edits made by the rest of the application.
type flakyStore struct {
	*memory.Store
	failSets  int
	sets      int
	beforeGet func(s *memory.Store)
}

func (f *flakyStore) GetTasks(ctx context.Context) ([]domain.Task, error) {
	if f.beforeGet != nil {
		hook := f.beforeGet
		f.beforeGet = nil
		hook(f.Store)
	}
	return f.Store.GetTasks(ctx)
}

func (f *flakyStore) SetTasks(ctx context.Context, tasks []domain.Task) error {
	f.sets++
	if f.sets <= f.failSets {
		return errors.New("disk full")
	}
	return f.Store.SetTasks(ctx, tasks)
}
