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

// MatchHandler handles match request and friends endpoints.
type MatchHandler struct {
	*Handler
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(base *Handler) *MatchHandler {
	return &MatchHandler{Handler: base}
}

// RegisterRoutes registers match routes.
func (h *MatchHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/match", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Put("/{id}", h.Respond)
		r.Put("/{id}/read", h.MarkRead)
		r.Get("/pending", h.ListPending)
		r.Get("/received", h.ListReceived)
		r.Get("/friends", h.ListFriends)
		r.Get("/active-chats", h.ListActiveChats)
	})
}

type matchRequest struct {
	ReceiverID int64 `json:"receiverId"`
}

// Create sends a match request to another user. At most one match may
// exist per user pair, in either direction.
func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}

	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ReceiverID == 0 || req.ReceiverID == user.ID {
		Error(w, http.StatusBadRequest, "invalid receiver")
		return
	}

	receiver, err := h.repo.GetUserByID(r.Context(), req.ReceiverID)
	if err != nil {
		StoreError(w, err, "failed to load receiver")
		return
	}
	if receiver == nil {
		Error(w, http.StatusNotFound, "receiver not found")
		return
	}

	// A pending request in the opposite direction means both users want
	// the match: accept it instead of creating a duplicate.
	reverse, err := h.repo.GetMatchFrom(r.Context(), req.ReceiverID, user.ID)
	if err != nil {
		StoreError(w, err, "failed to check existing match")
		return
	}
	if reverse != nil {
		if reverse.ReceiverStatus == domain.MatchPending {
			accepted, err := h.repo.UpdateMatchStatus(r.Context(), reverse.ID, domain.MatchAccepted, domain.MatchAccepted)
			if err != nil {
				StoreError(w, err, "failed to accept match")
				return
			}
			JSON(w, http.StatusOK, accepted)
			return
		}
		Error(w, http.StatusConflict, "match already exists")
		return
	}

	existing, err := h.repo.GetMatchFrom(r.Context(), user.ID, req.ReceiverID)
	if err != nil {
		StoreError(w, err, "failed to check existing match")
		return
	}
	if existing != nil {
		Error(w, http.StatusConflict, "match already exists")
		return
	}

	match, err := h.repo.CreateMatch(r.Context(), user.ID, req.ReceiverID)
	if err != nil {
		StoreError(w, err, "failed to create match")
		return
	}
	JSON(w, http.StatusCreated, match)
}

type matchResponseRequest struct {
	Status string `json:"status"`
}

// Respond accepts or rejects a received match request. Only the
// receiver may respond; accepting makes the match mutual.
func (h *MatchHandler) Respond(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid match id")
		return
	}

	var req matchResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status != domain.MatchAccepted && req.Status != domain.MatchRejected {
		Error(w, http.StatusBadRequest, "status must be accepted or rejected")
		return
	}

	// The caller must be the receiver of a still-pending request.
	matches, err := h.repo.ListReceivedMatches(r.Context(), user.ID)
	if err != nil {
		StoreError(w, err, "failed to load match")
		return
	}
	var target *domain.Match
	for _, m := range matches {
		if m.ID == id {
			target = m
			break
		}
	}
	if target == nil {
		Error(w, http.StatusNotFound, "pending match not found")
		return
	}

	// Accepting sets both sides; the sender accepted implicitly when
	// sending the request.
	updated, err := h.repo.UpdateMatchStatus(r.Context(), id, req.Status, req.Status)
	if err != nil {
		StoreError(w, err, "failed to update match")
		return
	}
	JSON(w, http.StatusOK, updated)
}

// ListPending returns requests the caller sent that still await a
// response.
func (h *MatchHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}
	matches, err := h.repo.ListPendingMatches(r.Context(), user.ID)
	if err != nil {
		StoreError(w, err, "failed to list pending matches")
		return
	}
	JSON(w, http.StatusOK, matches)
}

// ListReceived returns requests awaiting the caller's response.
func (h *MatchHandler) ListReceived(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}
	matches, err := h.repo.ListReceivedMatches(r.Context(), user.ID)
	if err != nil {
		StoreError(w, err, "failed to list received matches")
		return
	}
	JSON(w, http.StatusOK, matches)
}

// ListFriends returns the caller's mutual matches as flattened
// counterpart profiles.
func (h *MatchHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}
	matches, err := h.repo.ListAcceptedMatches(r.Context(), user.ID)
	if err != nil {
		StoreError(w, err, "failed to list friends")
		return
	}

	profiles := make([]*domain.MatchProfile, 0, len(matches))
	for _, m := range matches {
		other := m.Receiver
		if m.ReceiverID == user.ID {
			other = m.Sender
		}
		if other == nil {
			continue
		}
		profiles = append(profiles, &domain.MatchProfile{
			ID:         other.ID,
			MatchID:    m.ID,
			Email:      other.Email,
			Name:       other.Name,
			AvatarURL:  other.AvatarURL,
			Bio:        other.Bio,
			Skills:     other.Skills,
			Interests:  other.Interests,
			Experience: other.Experience,
			Location:   other.Location,
		})
	}
	JSON(w, http.StatusOK, profiles)
}

// ListActiveChats returns the caller's direct-message conversations
// with last-message previews and unread counts.
func (h *MatchHandler) ListActiveChats(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}
	chats, err := h.repo.ListActiveChats(r.Context(), user.ID)
	if err != nil {
		StoreError(w, err, "failed to list chats")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"res":    chats,
		"userId": user.ID,
	})
}

// MarkRead zeroes the caller's unread counter for a match, called when
// the chat is opened.
func (h *MatchHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid match id")
		return
	}

	if err := h.repo.ResetUnread(r.Context(), id, user.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			Error(w, http.StatusNotFound, "match not found")
			return
		}
		StoreError(w, err, "failed to mark chat read")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "read"})
}
