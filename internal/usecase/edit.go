package usecase

import (
	"context"
	"duewatch/internal/domain"
	"duewatch/internal/ports"
	"errors"
	"fmt"
)

var ErrTaskNotFound = errors.New("task not found")

type Editor struct {
	Store ports.TaskStore
}

// SetDueDate changes a task's due date in the store. A changed due date
// clears notified so the task can fire again.
func (e Editor) SetDueDate(ctx context.Context, id string, due domain.DueDate) (domain.Task, error) {
	tasks, err := e.Store.GetTasks(ctx)
	if err != nil {
		return domain.Task{}, err
	}
	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}
		tasks[i].SetDueDate(due)
		if err := e.Store.SetTasks(ctx, tasks); err != nil {
			return domain.Task{}, err
		}
		return tasks[i], nil
	}
	return domain.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
}
