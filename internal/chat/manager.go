package chat

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
	"github.com/veeraj-singh/devmatch/internal/domain"
)

// Manager owns session lifecycle: it creates sessions on connect,
// mediates join requests, and tears sessions down on disconnect. The
// registry never outlives a session's transport: the disconnect path
// is the only way a session leaves the session table, and it always
// clears room membership first.
type Manager struct {
	registry  *Registry
	queueSize int

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session lifecycle manager over the registry.
// queueSize bounds each session's outbound delivery buffer.
func NewManager(registry *Registry, queueSize int) *Manager {
	return &Manager{
		registry:  registry,
		queueSize: queueSize,
		sessions:  make(map[string]*Session),
	}
}

// OnConnect allocates a session for a newly accepted connection.
func (m *Manager) OnConnect(conn *websocket.Conn) *Session {
	s := newSession(conn, m.queueSize)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	slog.Info("Chat session connected", "session_id", s.ID)
	return s
}

// OnJoinRequest parses the room name and subscribes the session. An
// unparseable name fails with ErrInvalidRoom and changes nothing.
func (m *Manager) OnJoinRequest(s *Session, roomName string) (domain.ConversationID, error) {
	conv, ok := domain.ParseRoomName(roomName)
	if !ok {
		return domain.ConversationID{}, fmt.Errorf("%w: %q", ErrInvalidRoom, roomName)
	}
	m.registry.Join(s, conv)
	slog.Info("Chat session joined room", "session_id", s.ID, "user_id", s.UserID(), "room", conv.RoomName())
	return conv, nil
}

// OnDisconnect removes the session from every room and discards it.
// Reconnection is a brand-new session; clients reissue join requests.
func (m *Manager) OnDisconnect(s *Session) {
	m.registry.LeaveAll(s)
	m.mu.Lock()
	delete(m.sessions, s.ID)
	m.mu.Unlock()
	s.close()
	slog.Info("Chat session disconnected", "session_id", s.ID, "user_id", s.UserID())
}

// Session looks up a live session by id.
func (m *Manager) Session(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// SessionCount returns the number of live sessions.
func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
