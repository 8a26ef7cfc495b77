package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"duewatch/internal/domain"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "duewatch.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Empty(t *testing.T) {
	s := openTemp(t)
	tasks, err := s.GetTasks(context.Background())
	if err != nil || len(tasks) != 0 {
		t.Fatalf("expected empty, got %v %v", tasks, err)
	}
	settings, err := s.GetSettings(context.Background())
	if err != nil || settings.Notifications != domain.PolicyAll {
		t.Fatalf("expected defaults, got %+v %v", settings, err)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	due := domain.NewDueDate(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	if err := s.SetTasks(ctx, []domain.Task{{ID: "a", Title: "A", DueDate: due}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetTasks(ctx, []domain.Task{{ID: "a", Title: "A", DueDate: due, Notified: true}}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := s.Put(ctx, settingsKey, []byte(`{"notifications":"important"}`)); err != nil {
		t.Fatalf("put settings: %v", err)
	}

	tasks, err := s.GetTasks(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(tasks) != 1 || !tasks[0].Notified || !tasks[0].DueDate.Equal(due) {
		t.Fatalf("unexpected tasks %+v", tasks)
	}
	settings, err := s.GetSettings(ctx)
	if err != nil || settings.Notifications != domain.PolicyImportant {
		t.Fatalf("expected important, got %+v %v", settings, err)
	}
}
