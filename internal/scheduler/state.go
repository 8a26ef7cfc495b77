package scheduler

import "time"

type State int32

const (
	Stopped State = iota
	Armed
	Running
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Armed:
		return "armed"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Report summarises one check.
type Report struct {
	At       time.Time `json:"at"`
	Scanned  int       `json:"scanned"`
	Selected int       `json:"selected"`
	Notified int       `json:"notified"`
	Failed   int       `json:"failed"`
}
