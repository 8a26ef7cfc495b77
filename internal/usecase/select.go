package usecase

import (
	"duewatch/internal/domain"
	"time"
)

// SelectDueTasks returns the tasks that should be notified in the minute
// containing now, comparing wall-clock minutes in loc. A task whose due
// minute already passed is not returned.
func SelectDueTasks(tasks []domain.Task, settings domain.Settings, now time.Time, loc *time.Location) []domain.Task {
	if settings.Notifications == domain.PolicyNone {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}
	current := truncateMinute(now, loc)

	var due []domain.Task
	for _, t := range tasks {
		if t.Completed || t.Notified {
			continue
		}
		at, ok := t.DueDate.Time()
		if !ok {
			continue
		}
		if !truncateMinute(at, loc).Equal(current) {
			continue
		}
		if settings.Notifications == domain.PolicyImportant && t.Priority != domain.PriorityHigh {
			continue
		}
		due = append(due, t)
	}
	return due
}

// truncateMinute zeroes seconds in loc's wall clock. time.Truncate works on
// absolute time and would be off for zones with sub-minute offsets.
func truncateMinute(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc)
}
