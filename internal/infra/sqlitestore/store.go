package sqlitestore

import (
	"context"
	"database/sql"
	"duewatch/internal/domain"
	"duewatch/internal/ports"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

var _ ports.Store = (*Store)(nil)

const (
	tasksKey    = "tasks"
	settingsKey = "settings"
)

// Store keeps the task and settings documents in a key/value table.
type Store struct {
	db *sql.DB
}

func Open(ctx context.Context, path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) GetTasks(ctx context.Context) ([]domain.Task, error) {
	b, err := s.get(ctx, tasksKey)
	if err != nil {
		return nil, err
	}
	return domain.DecodeTasks(b)
}

func (s *Store) SetTasks(ctx context.Context, tasks []domain.Task) error {
	b, err := domain.EncodeTasks(tasks)
	if err != nil {
		return err
	}
	return s.Put(ctx, tasksKey, b)
}

func (s *Store) GetSettings(ctx context.Context) (domain.Settings, error) {
	b, err := s.get(ctx, settingsKey)
	if err != nil {
		return domain.Settings{}, err
	}
	return domain.DecodeSettings(b)
}

// Put stores a raw document; the desktop application uses it for settings.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(value))
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(v), nil
}
