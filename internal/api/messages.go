package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/veeraj-singh/devmatch/internal/domain"
)

// MessageHandler handles chat history endpoints. Live messages travel
// over the websocket; these routes page through what was persisted.
type MessageHandler struct {
	*Handler
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(base *Handler) *MessageHandler {
	return &MessageHandler{Handler: base}
}

// RegisterRoutes registers message history routes.
func (h *MessageHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/message", func(r chi.Router) {
		r.Get("/match/{matchId}", h.MatchHistory)
		r.Get("/workspace/{workspaceId}", h.WorkspaceHistory)
	})
}

// MatchHistory pages through a direct-message conversation, newest
// first. Page 0 is the most recent.
func (h *MessageHandler) MatchHistory(w http.ResponseWriter, r *http.Request) {
	h.history(w, r, "match-"+chi.URLParam(r, "matchId"))
}

// WorkspaceHistory pages through a workspace conversation.
func (h *MessageHandler) WorkspaceHistory(w http.ResponseWriter, r *http.Request) {
	h.history(w, r, "workspace-"+chi.URLParam(r, "workspaceId"))
}

func (h *MessageHandler) history(w http.ResponseWriter, r *http.Request, roomName string) {
	conv, ok := domain.ParseRoomName(roomName)
	if !ok {
		Error(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	page := queryInt(r, "page", 1) - 1
	limit := queryInt(r, "limit", h.cfg.Chat.HistoryPageSize)

	messages, hasMore, err := h.repo.ListMessages(r.Context(), conv, page, limit)
	if err != nil {
		StoreError(w, err, "failed to load messages")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"hasMore":  hasMore,
	})
}
