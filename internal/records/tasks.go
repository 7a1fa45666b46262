package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/l0p7/innkeeper/internal/store"
)

// TaskStats counts tasks by status.
type TaskStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

// Tasks lists every task, or only those in category when it is set.
func (s *Service) Tasks(ctx context.Context, category store.TaskCategory) ([]store.Task, error) {
	if category == "" {
		return read(ctx, s, key("tasks", "all"), s.store.ListTasks)
	}
	return read(ctx, s, key("tasks", "category", string(category)), func(ctx context.Context) ([]store.Task, error) {
		return s.store.ListTasksByCategory(ctx, category)
	})
}

// SearchTasks matches query against task titles and descriptions, ignoring case.
func (s *Service) SearchTasks(ctx context.Context, query string) ([]store.Task, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", store.ErrInvalid)
	}
	return read(ctx, s, key("tasks", "search", strings.ToLower(query)), func(ctx context.Context) ([]store.Task, error) {
		return s.store.SearchTasks(ctx, query)
	})
}

func (s *Service) Task(ctx context.Context, id string) (store.Task, error) {
	return read(ctx, s, key("tasks", id), func(ctx context.Context) (store.Task, error) {
		return s.store.GetTask(ctx, id)
	})
}

// TaskStats counts tasks per status.
func (s *Service) TaskStats(ctx context.Context) (TaskStats, error) {
	return read(ctx, s, key("tasks", "stats"), func(ctx context.Context) (TaskStats, error) {
		tasks, err := s.store.ListTasks(ctx)
		if err != nil {
			return TaskStats{}, err
		}
		stats := TaskStats{Total: len(tasks)}
		for _, task := range tasks {
			switch task.Status {
			case store.WorkPending:
				stats.Pending++
			case store.WorkInProgress:
				stats.InProgress++
			case store.WorkCompleted:
				stats.Completed++
			}
		}
		return stats, nil
	})
}

// CreateTask stores a task. Unset priority, status and category default to
// medium, pending and general.
func (s *Service) CreateTask(ctx context.Context, task store.Task) (store.Task, error) {
	if task.Priority == "" {
		task.Priority = store.PriorityMedium
	}
	if task.Status == "" {
		task.Status = store.WorkPending
	}
	if task.Category == "" {
		task.Category = store.CategoryGeneral
	}
	if err := task.Validate(); err != nil {
		return store.Task{}, err
	}
	return write(ctx, s, "create task", func(ctx context.Context) (store.Task, error) {
		return s.store.CreateTask(ctx, task)
	})
}

func (s *Service) UpdateTask(ctx context.Context, task store.Task) (store.Task, error) {
	return write(ctx, s, "update task", func(ctx context.Context) (store.Task, error) {
		return s.store.UpdateTask(ctx, task)
	})
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	_, err := write(ctx, s, "delete task", deleted(func(ctx context.Context) error {
		return s.store.DeleteTask(ctx, id)
	}))
	return err
}
