package domain

import "time"

// Task statuses.
const (
	TaskTodo      = "todo"
	TaskCompleted = "completed"
)

// Task is one card on a workspace task board.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	WorkspaceID int64     `json:"workspaceId"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}
