package memory

import (
	"context"
	"testing"

	"duewatch/internal/domain"
)

func TestStore_SnapshotsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New(domain.Task{ID: "a", Title: "A"})

	got, err := s.GetTasks(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got[0].Notified = true

	again, _ := s.GetTasks(ctx)
	if again[0].Notified {
		t.Fatalf("mutating a snapshot must not change the store")
	}

	if err := s.SetTasks(ctx, got); err != nil {
		t.Fatalf("set: %v", err)
	}
	again, _ = s.GetTasks(ctx)
	if !again[0].Notified {
		t.Fatalf("expected written snapshot")
	}
}

func TestStore_Settings(t *testing.T) {
	s := New()
	got, _ := s.GetSettings(context.Background())
	if got.Notifications != domain.PolicyAll {
		t.Fatalf("expected default policy all, got %q", got.Notifications)
	}
	s.SetSettings(domain.Settings{Notifications: domain.PolicyNone})
	got, _ = s.GetSettings(context.Background())
	if got.Notifications != domain.PolicyNone {
		t.Fatalf("expected none, got %q", got.Notifications)
	}
}
