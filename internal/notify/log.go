package notify

import (
	"context"
	"duewatch/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	_ ports.Presenter = LogPresenter{}
	_ ports.Window    = LogWindow{}
)

// LogPresenter writes notifications to the log. Used headless, where nobody
// can click them.
type LogPresenter struct{}

func (LogPresenter) Present(ctx context.Context, n ports.Notification, _ func()) (string, error) {
	handle := uuid.NewString()
	log.Ctx(ctx).Info().
		Str("handle", handle).
		Str("task", n.TaskID).
		Str("title", n.Title).
		Msg(n.Body)
	return handle, nil
}

type LogWindow struct{}

func (LogWindow) BringToForegroundAndShow(ctx context.Context, taskID string) error {
	log.Ctx(ctx).Info().Str("task", taskID).Msg("show task")
	return nil
}
