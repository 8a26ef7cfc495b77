package ports

import (
	"context"
	"duewatch/internal/domain"
)

// TaskStore is the persisted task collection. Writes replace the whole
// snapshot; the last write wins.
type TaskStore interface {
	GetTasks(ctx context.Context) ([]domain.Task, error)
	SetTasks(ctx context.Context, tasks []domain.Task) error
}

type SettingsStore interface {
	GetSettings(ctx context.Context) (domain.Settings, error)
}

// Store is what every storage backend provides.
type Store interface {
	TaskStore
	SettingsStore
	Close() error
}
