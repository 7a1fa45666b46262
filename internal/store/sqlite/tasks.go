package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/l0p7/innkeeper/internal/store"
)

const taskColumns = `id, title, description, priority, status, due_date, assigned_to,
       category, created_at, updated_at`

func scanTask(row rowScanner) (store.Task, error) {
	var (
		task      store.Task
		dueDate   sql.NullInt64
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Priority,
		&task.Status,
		&dueDate,
		&task.AssignedTo,
		&task.Category,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return store.Task{}, err
	}
	if dueDate.Valid {
		task.DueDate = fromMillis(dueDate.Int64)
	}
	task.CreatedAt = fromMillis(createdAt)
	task.UpdatedAt = fromMillis(updatedAt)
	return task, nil
}

func nullableMillis(value time.Time) sql.NullInt64 {
	if value.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(value), Valid: true}
}

// ListTasks returns every task, newest first.
func (s *Store) ListTasks(ctx context.Context) ([]store.Task, error) {
	return queryAll(ctx, s, "list tasks", scanTask,
		`SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC, id`)
}

// ListTasksByCategory returns the tasks in one category, newest first.
func (s *Store) ListTasksByCategory(ctx context.Context, category store.TaskCategory) ([]store.Task, error) {
	if err := category.Validate(); err != nil {
		return nil, err
	}
	return queryAll(ctx, s, "list tasks by category", scanTask,
		`SELECT `+taskColumns+` FROM tasks WHERE category = ? ORDER BY created_at DESC, id`,
		string(category))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchTasks matches query as a literal substring of title or description.
// SQLite's LIKE ignores ASCII case.
func (s *Store) SearchTasks(ctx context.Context, query string) ([]store.Task, error) {
	pattern := "%" + likeEscaper.Replace(strings.TrimSpace(query)) + "%"
	return queryAll(ctx, s, "search tasks", scanTask,
		`SELECT `+taskColumns+`
		   FROM tasks
		  WHERE title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'
		  ORDER BY created_at DESC, id`,
		pattern, pattern)
}

// GetTask returns one task by id.
func (s *Store) GetTask(ctx context.Context, id string) (store.Task, error) {
	if err := ctx.Err(); err != nil {
		return store.Task{}, err
	}
	if err := requireID(id); err != nil {
		return store.Task{}, err
	}
	task, err := scanTask(s.sqlDB.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err != nil {
		return store.Task{}, translate("get task", err)
	}
	return task, nil
}

// CreateTask inserts task with a fresh id.
func (s *Store) CreateTask(ctx context.Context, task store.Task) (store.Task, error) {
	if err := ctx.Err(); err != nil {
		return store.Task{}, err
	}
	if err := task.Validate(); err != nil {
		return store.Task{}, err
	}
	task.ID = s.newID()
	task.CreatedAt = s.now()
	task.UpdatedAt = task.CreatedAt

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.Title,
		task.Description,
		string(task.Priority),
		string(task.Status),
		nullableMillis(task.DueDate),
		task.AssignedTo,
		string(task.Category),
		toMillis(task.CreatedAt),
		toMillis(task.UpdatedAt),
	)
	if err != nil {
		return store.Task{}, translate("create task", err)
	}
	return s.GetTask(ctx, task.ID)
}

// UpdateTask replaces every mutable field of the task with task.ID.
func (s *Store) UpdateTask(ctx context.Context, task store.Task) (store.Task, error) {
	if err := ctx.Err(); err != nil {
		return store.Task{}, err
	}
	if err := requireID(task.ID); err != nil {
		return store.Task{}, err
	}
	if err := task.Validate(); err != nil {
		return store.Task{}, err
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE tasks
		    SET title = ?, description = ?, priority = ?, status = ?, due_date = ?,
		        assigned_to = ?, category = ?, updated_at = ?
		  WHERE id = ?`,
		task.Title,
		task.Description,
		string(task.Priority),
		string(task.Status),
		nullableMillis(task.DueDate),
		task.AssignedTo,
		string(task.Category),
		toMillis(s.now()),
		task.ID,
	)
	if err != nil {
		return store.Task{}, translate("update task", err)
	}
	if err := expectOne("update task", res); err != nil {
		return store.Task{}, err
	}
	return s.GetTask(ctx, task.ID)
}

// DeleteTask removes the task.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := requireID(id); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return translate("delete task", err)
	}
	return expectOne("delete task", res)
}
