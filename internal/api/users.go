package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/veeraj-singh/devmatch/internal/auth"
	"github.com/veeraj-singh/devmatch/internal/store"
)

// UserHandler handles user profile endpoints.
type UserHandler struct {
	*Handler
}

// NewUserHandler creates a new user handler.
func NewUserHandler(base *Handler) *UserHandler {
	return &UserHandler{Handler: base}
}

// RegisterRoutes registers user routes.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/user", func(r chi.Router) {
		r.Post("/", h.EnsureUser)
		r.Get("/me", h.GetMe)
		r.Put("/profile", h.UpdateProfile)
		r.Get("/search", h.Search)
		r.Get("/{id}", h.GetByID)
	})
}

// EnsureUser creates the user record for a verified identity on first
// sign-in; later calls return the existing record.
func (h *UserHandler) EnsureUser(w http.ResponseWriter, r *http.Request) {
	uid := auth.UIDFromContext(r.Context())
	email := auth.EmailFromContext(r.Context())
	if uid == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.repo.GetUserByUID(r.Context(), uid)
	if err != nil {
		StoreError(w, err, "failed to load user")
		return
	}
	if user != nil {
		JSON(w, http.StatusOK, user)
		return
	}

	user, err = h.repo.CreateUser(r.Context(), uid, email)
	if err != nil {
		StoreError(w, err, "failed to create user")
		return
	}
	JSON(w, http.StatusCreated, user)
}

// GetMe returns the current user's profile.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}
	JSON(w, http.StatusOK, user)
}

type profileRequest struct {
	Name       string   `json:"name"`
	AvatarURL  string   `json:"avatarUrl"`
	Bio        string   `json:"bio"`
	Skills     []string `json:"skills"`
	Interests  []string `json:"interests"`
	Experience string   `json:"experience"`
	Location   string   `json:"location"`
}

// UpdateProfile replaces the editable profile fields.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid := auth.UIDFromContext(r.Context())
	if uid == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.repo.UpdateUserProfile(r.Context(), uid, store.ProfileUpdate{
		Name:       req.Name,
		AvatarURL:  req.AvatarURL,
		Bio:        req.Bio,
		Skills:     req.Skills,
		Interests:  req.Interests,
		Experience: req.Experience,
		Location:   req.Location,
	})
	if errors.Is(err, store.ErrNotFound) {
		Error(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		StoreError(w, err, "failed to update profile")
		return
	}
	JSON(w, http.StatusOK, user)
}

// Search finds users by name or email, paginated.
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	users, total, err := h.repo.SearchUsers(r.Context(), query, page, limit)
	if err != nil {
		StoreError(w, err, "failed to search users")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"total": total,
		"page":  page,
	})
}

// GetByID returns another user's public profile.
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.repo.GetUserByID(r.Context(), id)
	if err != nil {
		StoreError(w, err, "failed to load user")
		return
	}
	if user == nil {
		Error(w, http.StatusNotFound, "user not found")
		return
	}
	user.UID = ""
	JSON(w, http.StatusOK, user)
}

// queryInt reads a positive integer query parameter with a fallback.
func queryInt(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
