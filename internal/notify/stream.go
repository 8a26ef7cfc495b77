package notify

import (
	"context"
	"duewatch/internal/infra/redisstore"
	"duewatch/internal/ports"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var (
	_ ports.Presenter = (*StreamPresenter)(nil)
	_ ports.Window    = PubSubWindow{}
)

const maxPendingClicks = 256

type Message struct {
	Handle string    `json:"handle"`
	TaskID string    `json:"task_id"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	At     time.Time `json:"at"`
}

// StreamPresenter hands notifications to the desktop shell through a Redis
// stream. The shell reports clicks back on the click stream, see
// ClickListener.
type StreamPresenter struct {
	C *redisstore.Client

	mu      sync.Mutex
	pending map[string]func()
	order   []string
}

func NewStreamPresenter(c *redisstore.Client) *StreamPresenter {
	return &StreamPresenter{C: c, pending: make(map[string]func())}
}

func (p *StreamPresenter) Present(ctx context.Context, n ports.Notification, onClick func()) (string, error) {
	m := Message{
		Handle: uuid.NewString(),
		TaskID: n.TaskID,
		Title:  n.Title,
		Body:   n.Body,
		At:     time.Now().UTC(),
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	if err := p.C.Rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.C.Cfg.NotifyStream,
		Values: map[string]interface{}{"notification": b},
	}).Err(); err != nil {
		return "", fmt.Errorf("xadd %s: %w", p.C.Cfg.NotifyStream, err)
	}
	if onClick != nil {
		p.remember(m.Handle, onClick)
	}
	return m.Handle, nil
}

func (p *StreamPresenter) remember(handle string, onClick func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending[handle] = onClick
	p.order = append(p.order, handle)
	// Old notifications nobody clicked are dropped.
	for len(p.order) > maxPendingClicks {
		delete(p.pending, p.order[0])
		p.order = p.order[1:]
	}
}

// Click runs the callback registered for handle, at most once. It reports
// whether one was found.
func (p *StreamPresenter) Click(handle string) bool {
	p.mu.Lock()
	fn, ok := p.pending[handle]
	if ok {
		delete(p.pending, handle)
		if i := slices.Index(p.order, handle); i >= 0 {
			p.order = slices.Delete(p.order, i, i+1)
		}
	}
	p.mu.Unlock()
	if !ok {
		return false
	}
	fn()
	return true
}

// PubSubWindow asks the desktop shell to show a task by publishing its id.
type PubSubWindow struct {
	C *redisstore.Client
}

func (w PubSubWindow) BringToForegroundAndShow(ctx context.Context, taskID string) error {
	if err := w.C.Rdb.Publish(ctx, w.C.Cfg.ForegroundChan, taskID).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", w.C.Cfg.ForegroundChan, err)
	}
	log.Ctx(ctx).Debug().Str("task", taskID).Msg("foreground requested")
	return nil
}
