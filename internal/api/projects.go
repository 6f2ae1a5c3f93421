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

// ProjectHandler handles project, interest, and workspace endpoints.
type ProjectHandler struct {
	*Handler
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(base *Handler) *ProjectHandler {
	return &ProjectHandler{Handler: base}
}

// RegisterRoutes registers project routes.
func (h *ProjectHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/project", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.ListAll)
		r.Get("/my", h.ListMine)
		r.Get("/workspaces", h.ListWorkspaces)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/interest", h.ExpressInterest)
		r.Put("/{id}/interest/{interestId}", h.RespondInterest)
		r.Get("/{id}/interests", h.ListInterests)
		r.Get("/{id}/members", h.ListMembers)
	})
}

type projectRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
	Tags        []string `json:"tags"`
}

// Create stores a project; its workspace is created alongside with the
// caller as OWNER.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}

	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		Error(w, http.StatusBadRequest, "title is required")
		return
	}

	project := &domain.Project{
		Title:       req.Title,
		Description: req.Description,
		Skills:      req.Skills,
		Tags:        req.Tags,
		CreatedByID: user.ID,
	}
	if err := h.repo.CreateProject(r.Context(), project); err != nil {
		StoreError(w, err, "failed to create project")
		return
	}
	project.CreatedBy = &domain.UserSummary{ID: user.ID, Name: user.Name, Email: user.Email}
	JSON(w, http.StatusCreated, project)
}

// ListAll returns every project for the explore feed.
func (h *ProjectHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	projects, err := h.repo.ListAllProjects(r.Context())
	if err != nil {
		StoreError(w, err, "failed to list projects")
		return
	}
	JSON(w, http.StatusOK, projects)
}

// ListMine returns the caller's projects.
func (h *ProjectHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}
	projects, err := h.repo.ListProjectsByOwner(r.Context(), user.ID)
	if err != nil {
		StoreError(w, err, "failed to list projects")
		return
	}
	JSON(w, http.StatusOK, projects)
}

// ListWorkspaces returns every workspace the caller belongs to.
func (h *ProjectHandler) ListWorkspaces(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}
	workspaces, err := h.repo.ListUserWorkspaces(r.Context(), user.ID)
	if err != nil {
		StoreError(w, err, "failed to list workspaces")
		return
	}
	JSON(w, http.StatusOK, workspaces)
}

// Update replaces the editable project fields. Only the owner may
// update.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}
	id, err := projectID(r)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid project id")
		return
	}

	if !h.ownsProject(w, r, user.ID, id) {
		return
	}

	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	project, err := h.repo.UpdateProject(r.Context(), id, store.ProjectUpdate{
		Title:       req.Title,
		Description: req.Description,
		Skills:      req.Skills,
		Tags:        req.Tags,
	})
	if errors.Is(err, store.ErrNotFound) {
		Error(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		StoreError(w, err, "failed to update project")
		return
	}
	JSON(w, http.StatusOK, project)
}

// Delete removes a project and everything attached to it. Only the
// owner may delete.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}
	id, err := projectID(r)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid project id")
		return
	}

	if !h.ownsProject(w, r, user.ID, id) {
		return
	}

	if err := h.repo.DeleteProject(r.Context(), id); err != nil {
		StoreError(w, err, "failed to delete project")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ExpressInterest records the caller asking to join a project.
func (h *ProjectHandler) ExpressInterest(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}
	id, err := projectID(r)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid project id")
		return
	}

	interest, err := h.repo.CreateProjectInterest(r.Context(), id, user.ID)
	if errors.Is(err, store.ErrInterestExists) {
		Error(w, http.StatusConflict, "interest already expressed")
		return
	}
	if err != nil {
		StoreError(w, err, "failed to record interest")
		return
	}
	JSON(w, http.StatusCreated, interest)
}

type interestResponseRequest struct {
	Status string `json:"status"`
}

// RespondInterest accepts or rejects a join request. Accepting adds the
// requester to the project's workspace.
func (h *ProjectHandler) RespondInterest(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}
	id, err := projectID(r)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid project id")
		return
	}
	interestID, err := strconv.ParseInt(chi.URLParam(r, "interestId"), 10, 64)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid interest id")
		return
	}

	if !h.ownsProject(w, r, user.ID, id) {
		return
	}

	var req interestResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status != domain.InterestAccepted && req.Status != domain.InterestRejected {
		Error(w, http.StatusBadRequest, "status must be ACCEPTED or REJECTED")
		return
	}

	interest, err := h.repo.RespondProjectInterest(r.Context(), id, interestID, req.Status)
	if errors.Is(err, store.ErrNotFound) {
		Error(w, http.StatusNotFound, "interest not found")
		return
	}
	if err != nil {
		StoreError(w, err, "failed to respond to interest")
		return
	}
	JSON(w, http.StatusOK, interest)
}

// ListInterests returns a project's join requests, optionally filtered
// by ?status=.
func (h *ProjectHandler) ListInterests(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}
	id, err := projectID(r)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid project id")
		return
	}

	if !h.ownsProject(w, r, user.ID, id) {
		return
	}

	interests, err := h.repo.ListProjectInterests(r.Context(), id, r.URL.Query().Get("status"))
	if err != nil {
		StoreError(w, err, "failed to list interests")
		return
	}
	JSON(w, http.StatusOK, interests)
}

// ListMembers returns the members of a project's workspace.
func (h *ProjectHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid project id")
		return
	}

	members, err := h.repo.ListWorkspaceMembers(r.Context(), id)
	if err != nil {
		StoreError(w, err, "failed to list members")
		return
	}
	JSON(w, http.StatusOK, members)
}

// ownsProject checks that userID created the project; writes the error
// response and returns false otherwise.
func (h *ProjectHandler) ownsProject(w http.ResponseWriter, r *http.Request, userID, projectID int64) bool {
	projects, err := h.repo.ListProjectsByOwner(r.Context(), userID)
	if err != nil {
		StoreError(w, err, "failed to verify ownership")
		return false
	}
	for _, p := range projects {
		if p.ID == projectID {
			return true
		}
	}
	Error(w, http.StatusForbidden, "not the project owner")
	return false
}

func projectID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
