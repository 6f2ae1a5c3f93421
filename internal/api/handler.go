// Package api provides HTTP handlers for the DevMatch API.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/veeraj-singh/devmatch/internal/auth"
	"github.com/veeraj-singh/devmatch/internal/config"
	"github.com/veeraj-singh/devmatch/internal/domain"
	"github.com/veeraj-singh/devmatch/internal/shared"
	"github.com/veeraj-singh/devmatch/internal/store"
)

// Handler provides common handler utilities.
type Handler struct {
	repo store.Repository
	cfg  *config.Config
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(repo store.Repository, cfg *config.Config) *Handler {
	return &Handler{repo: repo, cfg: cfg}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// StoreError maps a repository failure to an HTTP error. SQLite
// concurrency errors surface as 503 so clients know to retry.
func StoreError(w http.ResponseWriter, err error, message string) {
	if shared.IsSQLiteConflictError(err) {
		slog.Warn("Database busy", "error", err)
		Error(w, http.StatusServiceUnavailable, "database busy, retry")
		return
	}
	slog.Error(message, "error", err)
	Error(w, http.StatusInternalServerError, message)
}

// currentUser resolves the request's verified identity to a stored
// user. A nil user with a nil error means the identity has no profile
// yet.
func (h *Handler) currentUser(r *http.Request) (*domain.User, error) {
	uid := auth.UIDFromContext(r.Context())
	if uid == "" {
		return nil, nil
	}
	return h.repo.GetUserByUID(r.Context(), uid)
}

// requireUser resolves the current user or writes the error response.
func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) *domain.User {
	user, err := h.currentUser(r)
	if err != nil {
		StoreError(w, err, "failed to load user")
		return nil
	}
	if user == nil {
		Error(w, http.StatusUnauthorized, "user not found")
		return nil
	}
	return user
}
