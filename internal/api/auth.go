package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/veeraj-singh/devmatch/internal/auth"
)

// AuthHandler issues the signed tokens the rest of the API verifies.
type AuthHandler struct {
	*Handler
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *Handler) *AuthHandler {
	return &AuthHandler{Handler: base}
}

// RegisterRoutes registers auth routes. These are public: everything
// else under /api sits behind the token middleware.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/auth/token", h.IssueToken)
}

type tokenRequest struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// IssueToken mints a signed token for an identity. The uid is the
// caller's external identity string; no password check happens here,
// the deployment fronts this with its identity provider.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UID == "" || req.Email == "" {
		Error(w, http.StatusBadRequest, "uid and email are required")
		return
	}

	token, err := auth.GenerateToken(req.UID, req.Email, h.cfg.JWTSecret, h.cfg.TokenTTL)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to sign token")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"token": token})
}
