package chat

import (
	"log/slog"
	"sync"

	"github.com/veeraj-singh/devmatch/internal/domain"
)

// Registry maintains the live mapping from conversations to the member
// sessions subscribed to them. Rooms exist only while occupied: the
// first join creates a room, removing the last member deletes it.
// Membership is never persisted; it is rebuilt from live sessions.
//
// Every method is atomic with respect to the others, so a MembersOf
// snapshot reflects all joins and leaves that completed before the
// call.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.ConversationID]map[string]*Session
}

// NewRegistry creates an empty room registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[domain.ConversationID]map[string]*Session),
	}
}

// Join adds the session to the conversation's room, creating the room
// if absent. Joining a room twice has no additional effect.
func (r *Registry) Join(s *Session, conv domain.ConversationID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[conv]
	if !ok {
		room = make(map[string]*Session)
		r.rooms[conv] = room
	}
	if _, ok := room[s.ID]; ok {
		return
	}
	room[s.ID] = s
	s.rememberRoom(conv)
	slog.Debug("Session joined room", "session_id", s.ID, "room", conv.RoomName(), "members", len(room))
}

// Leave removes the session from the conversation's room, deleting the
// room if it is left empty.
func (r *Registry) Leave(s *Session, conv domain.ConversationID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(s, conv)
}

// LeaveAll removes the session from every room it occupies. Called on
// disconnect so a dead transport never lingers in a member set.
func (r *Registry) LeaveAll(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, conv := range s.Rooms() {
		r.removeLocked(s, conv)
	}
}

func (r *Registry) removeLocked(s *Session, conv domain.ConversationID) {
	room, ok := r.rooms[conv]
	if !ok {
		return
	}
	if _, ok := room[s.ID]; !ok {
		return
	}
	delete(room, s.ID)
	s.forgetRoom(conv)
	if len(room) == 0 {
		delete(r.rooms, conv)
	}
	slog.Debug("Session left room", "session_id", s.ID, "room", conv.RoomName(), "members", len(room))
}

// MembersOf returns the sessions currently in the conversation's room.
// The result is a snapshot; a join completing after the call simply
// misses broadcasts that observed the earlier membership.
func (r *Registry) MembersOf(conv domain.ConversationID) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[conv]
	if !ok {
		return nil
	}
	members := make([]*Session, 0, len(room))
	for _, s := range room {
		members = append(members, s)
	}
	return members
}

// MemberCount returns how many sessions occupy the conversation's room.
func (r *Registry) MemberCount(conv domain.ConversationID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[conv])
}

// RoomCount returns the number of occupied rooms.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
