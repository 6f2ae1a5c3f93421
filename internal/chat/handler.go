package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/veeraj-singh/devmatch/internal/auth"
)

// Handler upgrades HTTP requests to chat websocket sessions and runs
// the per-connection event loop.
type Handler struct {
	manager       *Manager
	dispatcher    *Dispatcher
	jwtSecret     string
	allowedOrigin string
	isDev         bool
	pingInterval  time.Duration
}

// NewHandler creates a new chat websocket handler.
func NewHandler(manager *Manager, dispatcher *Dispatcher, jwtSecret, allowedOrigin string, isDev bool, pingInterval time.Duration) *Handler {
	return &Handler{
		manager:       manager,
		dispatcher:    dispatcher,
		jwtSecret:     jwtSecret,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
		pingInterval:  pingInterval,
	}
}

// ServeHTTP implements http.Handler for the websocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "ip", r.RemoteAddr)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	sess := h.manager.OnConnect(ws)
	defer h.manager.OnDisconnect(sess)

	// Optional auth handshake: a verified token binds the session to a
	// user; guest sessions stay unbound (the client has a guest mode).
	if token := r.URL.Query().Get("token"); token != "" {
		claims, err := auth.VerifyToken(token, h.jwtSecret)
		if err != nil {
			slog.Warn("Chat token rejected, continuing as guest", "session_id", sess.ID, "error", err)
		} else {
			sess.BindUser(claims.UID)
		}
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		defer cancel()
		sess.writeLoop(ctx)
	}()

	// Liveness probe: an abrupt network drop must end in the same
	// disconnect path as a clean close, or the session would dangle in
	// its rooms.
	go func() {
		defer wg.Done()
		defer cancel()
		h.pingLoop(ctx, ws, sess)
	}()

	h.readLoop(ctx, ws, sess)
	cancel()
	wg.Wait()
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *Handler) readLoop(ctx context.Context, ws *websocket.Conn, sess *Session) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "session_id", sess.ID)
			} else if ctx.Err() == nil {
				slog.Warn("WebSocket read error", "error", err, "session_id", sess.ID)
			}
			return
		}

		var evt clientEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			h.notify(sess, errorEvent(CodeBadRequest, "invalid event payload"))
			continue
		}

		switch evt.Event {
		case EventJoinRoom:
			h.handleJoin(sess, evt.RoomID)
		case EventSendMessage:
			h.handleSend(ctx, sess, evt)
		case EventPing:
			if payload, err := marshalEvent(EventPong, nil); err == nil {
				h.notify(sess, payload)
			}
		default:
			h.notify(sess, errorEvent(CodeBadRequest, "unknown event"))
		}
	}
}

func (h *Handler) handleJoin(sess *Session, roomID string) {
	if _, err := h.manager.OnJoinRequest(sess, roomID); err != nil {
		h.notify(sess, errorEvent(CodeInvalidRoom, "unrecognized room name"))
	}
}

func (h *Handler) handleSend(ctx context.Context, sess *Session, evt clientEvent) {
	// Attribution follows the client-supplied senderId; guest sessions
	// have no bound user to check it against. A bound session sending
	// under a different id is worth a trace.
	if bound := sess.UserID(); bound != "" && evt.SenderID != bound {
		slog.Warn("Chat sender mismatch", "session_id", sess.ID, "user_id", bound, "sender_id", evt.SenderID)
	}

	msg, err := h.dispatcher.Dispatch(ctx, evt.RoomID, evt.SenderID, evt.Message)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRoom):
			h.notify(sess, errorEvent(CodeInvalidRoom, "unrecognized room name"))
		case errors.Is(err, ErrEmptyMessage):
			h.notify(sess, errorEvent(CodeEmptyMessage, "message body is empty"))
		case errors.Is(err, ErrStoreUnavailable):
			slog.Error("Chat persistence failed", "session_id", sess.ID, "room", evt.RoomID, "error", err)
			h.notify(sess, errorEvent(CodeStoreUnavailable, "message could not be stored"))
		default:
			h.notify(sess, errorEvent(CodeBadRequest, "send failed"))
		}
		return
	}

	// Confirm the fate of the sender's own message; everyone in the
	// room, sender included, already got the receive-message echo.
	if payload, err := marshalEvent(EventMessageStatus, statusPayload{MessageID: msg.ID, Status: "delivered"}); err == nil {
		h.notify(sess, payload)
	}
}

// notify queues an event for one session; failures only cost that
// session the notification.
func (h *Handler) notify(sess *Session, payload []byte) {
	if err := sess.Deliver(payload); err != nil {
		slog.Debug("Chat notification dropped", "session_id", sess.ID, "error", err)
	}
}

func (h *Handler) pingLoop(ctx context.Context, ws *websocket.Conn, sess *Session) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := ws.Ping(pingCtx)
			cancel()
			if err != nil {
				slog.Debug("Chat heartbeat failed", "session_id", sess.ID, "error", err)
				return
			}
		}
	}
}
