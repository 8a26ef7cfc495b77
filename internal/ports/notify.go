package ports

import "context"

type Notification struct {
	TaskID string
	Title  string
	Body   string
}

// Presenter shows a user-visible notification. onClick, when not nil, runs
// if the user activates it.
type Presenter interface {
	Present(ctx context.Context, n Notification, onClick func()) (handle string, err error)
}

// Window is the presentation layer of the desktop application.
type Window interface {
	BringToForegroundAndShow(ctx context.Context, taskID string) error
}
