package redisstore

import (
	"context"
	"duewatch/internal/domain"
	"duewatch/internal/ports"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var _ ports.Store = (*Client)(nil)

// GetTasks reads the task snapshot stored as one JSON document.
func (c *Client) GetTasks(ctx context.Context) ([]domain.Task, error) {
	b, err := c.Rdb.Get(ctx, c.Cfg.TasksKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", c.Cfg.TasksKey, err)
	}
	return domain.DecodeTasks(b)
}

func (c *Client) SetTasks(ctx context.Context, tasks []domain.Task) error {
	b, err := domain.EncodeTasks(tasks)
	if err != nil {
		return err
	}
	if err := c.Rdb.Set(ctx, c.Cfg.TasksKey, b, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", c.Cfg.TasksKey, err)
	}
	return nil
}

func (c *Client) GetSettings(ctx context.Context) (domain.Settings, error) {
	b, err := c.Rdb.Get(ctx, c.Cfg.SettingsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.DefaultSettings(), nil
		}
		return domain.Settings{}, fmt.Errorf("get %s: %w", c.Cfg.SettingsKey, err)
	}
	return domain.DecodeSettings(b)
}
