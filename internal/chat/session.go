// Package chat implements the real-time message broadcast layer: room
// membership, the send-message dispatch pipeline, and session lifecycle
// over a single websocket connection per client.
package chat

import (
	"context"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/veeraj-singh/devmatch/internal/domain"
)

// Session is one client's live connection. It tracks the rooms the
// connection joined and owns the outbound delivery queue. A session
// never survives its connection: reconnecting clients get a fresh
// session and must reissue their join requests.
type Session struct {
	ID   string
	conn *websocket.Conn

	mu     sync.Mutex
	userID string
	joined map[domain.ConversationID]struct{}

	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(conn *websocket.Conn, queueSize int) *Session {
	return &Session{
		ID:     uuid.NewString(),
		conn:   conn,
		joined: make(map[domain.ConversationID]struct{}),
		out:    make(chan []byte, queueSize),
		done:   make(chan struct{}),
	}
}

// BindUser attaches a verified user identity to the session.
func (s *Session) BindUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
}

// UserID returns the bound user identity, or "" for guest sessions.
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *Session) rememberRoom(conv domain.ConversationID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joined[conv] = struct{}{}
}

func (s *Session) forgetRoom(conv domain.ConversationID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.joined, conv)
}

// Rooms returns the conversations this session currently occupies.
func (s *Session) Rooms() []domain.ConversationID {
	s.mu.Lock()
	defer s.mu.Unlock()
	rooms := make([]domain.ConversationID, 0, len(s.joined))
	for conv := range s.joined {
		rooms = append(rooms, conv)
	}
	return rooms
}

// InRoom reports whether the session has joined the conversation.
func (s *Session) InRoom(conv domain.ConversationID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.joined[conv]
	return ok
}

// Deliver queues a payload for the session without blocking. A closed
// session or a full buffer fails only this one delivery; the caller
// logs and moves on.
func (s *Session) Deliver(payload []byte) error {
	select {
	case <-s.done:
		return errSessionClosed
	default:
	}

	select {
	case s.out <- payload:
		return nil
	case <-s.done:
		return errSessionClosed
	default:
		return errSendBufferFull
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// writeLoop drains the outbound queue onto the websocket until the
// connection context ends or the session is closed.
func (s *Session) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case payload := <-s.out:
			if err := s.conn.Write(ctx, websocket.MessageText, payload); err != nil {
				slog.Debug("Chat write failed", "session_id", s.ID, "error", err)
				return
			}
		}
	}
}
