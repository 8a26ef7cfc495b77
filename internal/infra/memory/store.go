package memory

import (
	"context"
	"duewatch/internal/domain"
	"duewatch/internal/ports"
	"sync"
)

var _ ports.Store = (*Store)(nil)

type Store struct {
	mu       sync.Mutex
	tasks    []domain.Task
	settings domain.Settings
}

func New(tasks ...domain.Task) *Store {
	return &Store{
		tasks:    domain.CloneTasks(tasks),
		settings: domain.DefaultSettings(),
	}
}

func (s *Store) GetTasks(_ context.Context) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneTasks(s.tasks), nil
}

func (s *Store) SetTasks(_ context.Context, tasks []domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = domain.CloneTasks(tasks)
	return nil
}

func (s *Store) GetSettings(_ context.Context) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, nil
}

func (s *Store) SetSettings(settings domain.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

func (s *Store) Close() error { return nil }
