package notify

import (
	"context"
	"duewatch/internal/infra/redisstore"
	"duewatch/pkg/backoff"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ClickListener consumes clicks reported by the desktop shell and runs the
// matching notification callbacks.
type ClickListener struct {
	C            *redisstore.Client
	Presenter    *StreamPresenter
	ConsumerName string
	Block        time.Duration
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
}

func (l ClickListener) Run(ctx context.Context) error {
	block := l.Block
	if block == 0 {
		block = 5 * time.Second
	}
	base, max := l.BaseBackoff, l.MaxBackoff
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	if max < base {
		max = 30 * time.Second
	}
	failures := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		res, err := l.C.Rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    l.C.Cfg.ClickGroup,
			Consumer: l.ConsumerName,
			Streams:  []string{l.C.Cfg.ClickStream, ">"},
			Count:    16,
			Block:    block,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				failures = 0
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failures++
			wait := backoff.ExponentialJitter(base, max, failures)
			log.Ctx(ctx).Warn().Err(err).Dur("retry_in", wait).Msg("read clicks")
			if !sleep(ctx, wait) {
				return ctx.Err()
			}
			continue
		}
		failures = 0

		for _, stream := range res {
			for _, msg := range stream.Messages {
				l.handle(ctx, msg)
			}
		}
	}
}

func (l ClickListener) handle(ctx context.Context, msg redis.XMessage) {
	handle, _ := msg.Values["handle"].(string)
	if handle == "" || !l.Presenter.Click(handle) {
		log.Ctx(ctx).Debug().Str("id", msg.ID).Str("handle", handle).Msg("click for unknown notification")
	}
	if err := l.C.Rdb.XAck(ctx, l.C.Cfg.ClickStream, l.C.Cfg.ClickGroup, msg.ID).Err(); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("id", msg.ID).Msg("ack click")
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
