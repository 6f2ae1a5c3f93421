package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/veeraj-singh/devmatch/internal/domain"
	"github.com/veeraj-singh/devmatch/internal/store"
)

// TaskHandler handles workspace task board endpoints.
type TaskHandler struct {
	*Handler
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(base *Handler) *TaskHandler {
	return &TaskHandler{Handler: base}
}

// RegisterRoutes registers task routes.
func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/task", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Put("/{id}", h.UpdateStatus)
	})
}

// List returns a workspace's tasks, optionally filtered by ?status=.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := strconv.ParseInt(r.URL.Query().Get("workspaceId"), 10, 64)
	if err != nil {
		Error(w, http.StatusBadRequest, "workspaceId is required")
		return
	}
	status := r.URL.Query().Get("status")
	if status != "" && status != domain.TaskTodo && status != domain.TaskCompleted {
		Error(w, http.StatusBadRequest, "status must be todo or completed")
		return
	}

	tasks, err := h.repo.ListTasks(r.Context(), workspaceID, status)
	if err != nil {
		StoreError(w, err, "failed to list tasks")
		return
	}
	JSON(w, http.StatusOK, tasks)
}

type taskRequest struct {
	Title       string `json:"title"`
	WorkspaceID int64  `json:"workspaceId"`
}

// Create adds a todo task to a workspace board.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.WorkspaceID == 0 {
		Error(w, http.StatusBadRequest, "title and workspaceId are required")
		return
	}

	task, err := h.repo.CreateTask(r.Context(), req.Title, req.WorkspaceID)
	if err != nil {
		StoreError(w, err, "failed to create task")
		return
	}
	JSON(w, http.StatusCreated, task)
}

type taskStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves a task between board columns.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req taskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status != domain.TaskTodo && req.Status != domain.TaskCompleted {
		Error(w, http.StatusBadRequest, "status must be todo or completed")
		return
	}

	task, err := h.repo.UpdateTaskStatus(r.Context(), id, req.Status)
	if errors.Is(err, store.ErrNotFound) {
		Error(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		StoreError(w, err, "failed to update task")
		return
	}
	JSON(w, http.StatusOK, task)
}
