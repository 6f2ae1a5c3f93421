package store

import (
	"context"
	"fmt"
	"time"

	"github.com/veeraj-singh/devmatch/internal/domain"
)

// ListTasks returns a workspace's tasks, optionally filtered by status,
// newest first.
func (s *SQLiteStore) ListTasks(ctx context.Context, workspaceID int64, status string) ([]*domain.Task, error) {
	query := `SELECT id, title, workspace_id, status, created_at FROM tasks WHERE workspace_id = ?`
	args := []any{workspaceID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		var task domain.Task
		var createdAt int64
		if err := rows.Scan(&task.ID, &task.Title, &task.WorkspaceID, &task.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}
		task.CreatedAt = time.Unix(createdAt, 0)
		tasks = append(tasks, &task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// CreateTask adds a todo task to a workspace board.
func (s *SQLiteStore) CreateTask(ctx context.Context, title string, workspaceID int64) (*domain.Task, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (title, workspace_id, status, created_at)
		VALUES (?, ?, ?, ?)`,
		title, workspaceID, domain.TaskTodo, now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("task insert id: %w", err)
	}
	return &domain.Task{
		ID:          id,
		Title:       title,
		WorkspaceID: workspaceID,
		Status:      domain.TaskTodo,
		CreatedAt:   now,
	}, nil
}

// UpdateTaskStatus moves a task between board columns.
func (s *SQLiteStore) UpdateTaskStatus(ctx context.Context, taskID int64, status string) (*domain.Task, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET status = ? WHERE id = ?`, status, taskID)
	if err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	var task domain.Task
	var createdAt int64
	err = s.db.QueryRowContext(ctx, `
		SELECT id, title, workspace_id, status, created_at FROM tasks WHERE id = ?`, taskID,
	).Scan(&task.ID, &task.Title, &task.WorkspaceID, &task.Status, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("scan task row: %w", err)
	}
	task.CreatedAt = time.Unix(createdAt, 0)
	return &task, nil
}
