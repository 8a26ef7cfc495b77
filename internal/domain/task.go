package domain

import (
	"bytes"
	"encoding/json"
	"maps"
	"strings"
	"time"
)

type Priority string

const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority accepts the two stored shapes of a priority: a plain string
// ("High") or an object with a level field ({"level": "high"}).
func ParsePriority(raw json.RawMessage) Priority {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return PriorityNone
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return normalizePriority(s)
	}
	var obj struct {
		Level string `json:"level"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return normalizePriority(obj.Level)
	}
	return PriorityNone
}

func normalizePriority(s string) Priority {
	return Priority(strings.ToLower(strings.TrimSpace(s)))
}

// DueDate is an optional due instant. A stored value that does not parse is
// kept verbatim so rewriting the task does not lose it.
type DueDate struct {
	at  time.Time
	raw json.RawMessage
}

func NewDueDate(t time.Time) DueDate { return DueDate{at: t.UTC()} }

func (d DueDate) IsZero() bool { return d.at.IsZero() && len(d.raw) == 0 }

// Time returns the due instant and whether one is set and valid.
func (d DueDate) Time() (time.Time, bool) {
	return d.at, !d.at.IsZero()
}

func (d DueDate) Equal(o DueDate) bool {
	if d.at.IsZero() && o.at.IsZero() {
		return bytes.Equal(d.raw, o.raw)
	}
	return d.at.Equal(o.at)
}

func (d DueDate) MarshalJSON() ([]byte, error) {
	if d.at.IsZero() {
		if len(d.raw) == 0 {
			return []byte("null"), nil
		}
		return d.raw, nil
	}
	return json.Marshal(d.at.UTC().Format(time.RFC3339Nano))
}

func (d *DueDate) UnmarshalJSON(b []byte) error {
	*d = parseDueDate(b)
	return nil
}

func parseDueDate(b []byte) DueDate {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return DueDate{}
	}
	raw := json.RawMessage(bytes.Clone(b))
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
			if t, err := time.Parse(layout, s); err == nil && !t.IsZero() {
				return DueDate{at: t.UTC()}
			}
		}
		return DueDate{raw: raw}
	}
	var ms int64
	if err := json.Unmarshal(b, &ms); err == nil {
		return DueDate{at: time.UnixMilli(ms).UTC()}
	}
	return DueDate{raw: raw}
}

type Task struct {
	ID        string
	Title     string
	DueDate   DueDate
	Completed bool
	Notified  bool
	Priority  Priority

	// idRaw is a non-string stored id. ID holds its JSON text.
	idRaw json.RawMessage
	// priorityRaw is the stored priority as decoded, written back unchanged
	// while Priority still matches it.
	priorityRaw json.RawMessage
	// extra holds fields owned by other parts of the application.
	extra map[string]json.RawMessage
}

// SetDueDate changes the due date. A different due date re-arms the task for
// a fresh notification.
func (t *Task) SetDueDate(d DueDate) {
	if !t.DueDate.Equal(d) {
		t.Notified = false
	}
	t.DueDate = d
}

var knownTaskFields = []string{"id", "title", "dueDate", "completed", "notified", "priority"}

func (t *Task) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	var out Task
	if raw, ok := fields["id"]; ok {
		out.ID, out.idRaw = decodeID(raw)
		delete(fields, "id")
	}
	// Malformed scalars stay in extra and are written back as found.
	decodeScalar(fields, "title", &out.Title)
	decodeScalar(fields, "completed", &out.Completed)
	decodeScalar(fields, "notified", &out.Notified)
	if raw, ok := fields["dueDate"]; ok {
		out.DueDate = parseDueDate(raw)
		delete(fields, "dueDate")
	}
	if raw, ok := fields["priority"]; ok {
		out.Priority = ParsePriority(raw)
		out.priorityRaw = bytes.Clone(raw)
		delete(fields, "priority")
	}
	if len(fields) > 0 {
		out.extra = fields
	}
	*t = out
	return nil
}

// decodeID reads an id of any JSON type. Anything but a string is kept raw
// and identified by its compact JSON text, so numeric ids stay distinct.
func decodeID(raw json.RawMessage) (string, json.RawMessage) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(bytes.TrimSpace(raw)), bytes.Clone(raw)
	}
	return buf.String(), bytes.Clone(raw)
}

func decodeScalar[T any](fields map[string]json.RawMessage, key string, dst *T) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	if err := json.Unmarshal(raw, dst); err == nil {
		delete(fields, key)
	}
}

func (t Task) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(t.extra)+len(knownTaskFields))
	for k, v := range t.extra {
		out[k] = v
	}
	if t.idRaw != nil && t.ID == mustID(t.idRaw) {
		out["id"] = t.idRaw
	} else {
		out["id"] = t.ID
	}
	putScalar(out, t.extra, "title", t.Title)
	putScalar(out, t.extra, "completed", t.Completed)
	putScalar(out, t.extra, "notified", t.Notified)
	if !t.DueDate.IsZero() {
		out["dueDate"] = t.DueDate
	}
	switch {
	case t.priorityRaw != nil && ParsePriority(t.priorityRaw) == t.Priority:
		out["priority"] = t.priorityRaw
	case t.Priority != PriorityNone:
		out["priority"] = string(t.Priority)
	}
	return json.Marshal(out)
}

func mustID(raw json.RawMessage) string {
	id, _ := decodeID(raw)
	return id
}

// putScalar writes v unless a malformed stored value is kept for key and v
// is still the zero value it decoded to.
func putScalar[T comparable](out map[string]any, extra map[string]json.RawMessage, key string, v T) {
	var zero T
	if _, kept := extra[key]; kept && v == zero {
		return
	}
	out[key] = v
}

// Clone returns a copy that shares no mutable state with t.
func (t Task) Clone() Task {
	c := t
	c.idRaw = bytes.Clone(t.idRaw)
	c.priorityRaw = bytes.Clone(t.priorityRaw)
	if t.extra != nil {
		c.extra = maps.Clone(t.extra)
	}
	return c
}

// Extra returns a stored field this package does not model.
func (t Task) Extra(key string) (json.RawMessage, bool) {
	v, ok := t.extra[key]
	return v, ok
}
