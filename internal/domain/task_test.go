package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParsePriority_BothShapes(t *testing.T) {
	cases := map[string]Priority{
		`"high"`:             PriorityHigh,
		`"HIGH"`:             PriorityHigh,
		`" Medium "`:         PriorityMedium,
		`{"level":"High"}`:   PriorityHigh,
		`{"level":"low"}`:    PriorityLow,
		`null`:               PriorityNone,
		`42`:                 PriorityNone,
		`{"label":"urgent"}`: PriorityNone,
	}
	for in, want := range cases {
		if got := ParsePriority(json.RawMessage(in)); got != want {
			t.Fatalf("%s: expected %q, got %q", in, want, got)
		}
	}
}

func TestDecodeTasks_TolerantDueDate(t *testing.T) {
	doc := `[
		{"id":"a","title":"A","dueDate":"2024-01-01T12:00:00Z"},
		{"id":"b","title":"B","dueDate":"not-a-date"},
		{"id":"c","title":"C","dueDate":1704110400000},
		{"id":"d","title":"D"},
		{"id":"e","title":"E","dueDate":"2024-01-01T13:00:00.123+01:00"}
	]`
	tasks, err := DecodeTasks([]byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if at, ok := tasks[0].DueDate.Time(); !ok || !at.Equal(want) {
		t.Fatalf("a: expected %v, got %v %v", want, at, ok)
	}
	if _, ok := tasks[1].DueDate.Time(); ok {
		t.Fatalf("b: expected invalid due date")
	}
	if tasks[1].DueDate.IsZero() {
		t.Fatalf("b: invalid due date must be kept")
	}
	if at, ok := tasks[2].DueDate.Time(); !ok || !at.Equal(want) {
		t.Fatalf("c: expected %v, got %v %v", want, at, ok)
	}
	if !tasks[3].DueDate.IsZero() {
		t.Fatalf("d: expected no due date")
	}
	if at, _ := tasks[4].DueDate.Time(); at.Location() != time.UTC || at.Hour() != 12 {
		t.Fatalf("e: expected UTC 12h, got %v", at)
	}
}

func TestTaskRoundTrip_PreservesForeignFields(t *testing.T) {
	doc := `[{"id":"a","title":"A","dueDate":"garbage","priority":{"level":"High"},"tags":["x"],"description":"keep me"}]`
	tasks, err := DecodeTasks([]byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	tasks[0].Notified = true

	out, err := EncodeTasks(tasks)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var got []map[string]json.RawMessage
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("reparse: %v", err)
	}
	for key, want := range map[string]string{
		"dueDate":     `"garbage"`,
		"priority":    `{"level":"High"}`,
		"tags":        `["x"]`,
		"description": `"keep me"`,
		"notified":    `true`,
	} {
		if string(got[0][key]) != want {
			t.Fatalf("%s: expected %s, got %s", key, want, got[0][key])
		}
	}
}

func TestTaskMarshal_ChangedPriorityUsesString(t *testing.T) {
	tasks, err := DecodeTasks([]byte(`[{"id":"a","priority":{"level":"low"}}]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	tasks[0].Priority = PriorityHigh
	out, _ := EncodeTasks(tasks)
	if !strings.Contains(string(out), `"priority":"high"`) {
		t.Fatalf("expected plain string priority, got %s", out)
	}
}

func TestSetDueDate_ResetsNotified(t *testing.T) {
	first := NewDueDate(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	task := Task{ID: "a", DueDate: first, Notified: true}

	task.SetDueDate(first)
	if !task.Notified {
		t.Fatalf("same due date must keep notified")
	}

	task.SetDueDate(NewDueDate(time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)))
	if task.Notified {
		t.Fatalf("new due date must reset notified")
	}

	task.Notified = true
	task.SetDueDate(DueDate{})
	if task.Notified {
		t.Fatalf("clearing the due date must reset notified")
	}
}

func TestDecodeSettings(t *testing.T) {
	cases := []struct {
		doc     string
		want    Policy
		wantErr bool
	}{
		{``, PolicyAll, false},
		{`{}`, PolicyAll, false},
		{`{"notifications":"Important","theme":"dark"}`, PolicyImportant, false},
		{`{"notifications":"none"}`, PolicyNone, false},
		{`{"notifications":null}`, PolicyAll, false},
		{`{"notifications":"sometimes"}`, "", true},
	}
	for _, tc := range cases {
		s, err := DecodeSettings([]byte(tc.doc))
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", tc.doc)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: %v", tc.doc, err)
		}
		if s.Notifications != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.doc, tc.want, s.Notifications)
		}
	}
}

func TestTaskRoundTrip_NumericIDs(t *testing.T) {
	doc := `[{"id":1704110400000,"title":"A"},{"id":1704110400001,"title":"B"},{"id":"c","title":"C"}]`
	tasks, err := DecodeTasks([]byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tasks[0].ID != "1704110400000" || tasks[1].ID != "1704110400001" || tasks[2].ID != "c" {
		t.Fatalf("unexpected ids %q %q %q", tasks[0].ID, tasks[1].ID, tasks[2].ID)
	}

	out, err := EncodeTasks(tasks)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var got []map[string]json.RawMessage
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("reparse: %v", err)
	}
	for i, want := range []string{`1704110400000`, `1704110400001`, `"c"`} {
		if string(got[i]["id"]) != want {
			t.Fatalf("task %d: expected id %s, got %s", i, want, got[i]["id"])
		}
	}
}

func TestTaskRoundTrip_MalformedScalarsKept(t *testing.T) {
	tasks, err := DecodeTasks([]byte(`[{"id":"a","title":7,"completed":"no","notified":"yes"}]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tasks[0].Title != "" || tasks[0].Completed || tasks[0].Notified {
		t.Fatalf("malformed scalars must decode to zero values, got %+v", tasks[0])
	}

	out, _ := EncodeTasks(tasks)
	var got []map[string]json.RawMessage
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("reparse: %v", err)
	}
	for key, want := range map[string]string{"title": `7`, "completed": `"no"`, "notified": `"yes"`} {
		if string(got[0][key]) != want {
			t.Fatalf("%s: expected %s, got %s", key, want, got[0][key])
		}
	}

	tasks[0].Notified = true
	out, _ = EncodeTasks(tasks)
	if !strings.Contains(string(out), `"notified":true`) {
		t.Fatalf("a set flag must replace the malformed value, got %s", out)
	}
}

func TestTaskRoundTrip_EmptyAndZeroDueDatesKept(t *testing.T) {
	doc := `[{"id":"a","dueDate":""},{"id":"b","dueDate":"0001-01-01T00:00:00Z"}]`
	tasks, err := DecodeTasks([]byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, task := range tasks {
		if _, ok := task.DueDate.Time(); ok {
			t.Fatalf("%s: expected no valid due date", task.ID)
		}
	}

	out, _ := EncodeTasks(tasks)
	var got []map[string]json.RawMessage
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if string(got[0]["dueDate"]) != `""` || string(got[1]["dueDate"]) != `"0001-01-01T00:00:00Z"` {
		t.Fatalf("due dates not kept: %s", out)
	}
}
