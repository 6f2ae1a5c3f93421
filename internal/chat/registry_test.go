package chat

import (
	"testing"

	"github.com/veeraj-singh/devmatch/internal/domain"
)

func mustConv(t *testing.T, name string) domain.ConversationID {
	t.Helper()
	conv, ok := domain.ParseRoomName(name)
	if !ok {
		t.Fatalf("Expected %q to parse", name)
	}
	return conv
}

func TestRegistry_JoinCreatesRoom(t *testing.T) {
	r := NewRegistry()
	s := newSession(nil, 4)
	conv := mustConv(t, "match-1")

	r.Join(s, conv)

	if got := r.MemberCount(conv); got != 1 {
		t.Errorf("Expected 1 member, got %d", got)
	}
	if !s.InRoom(conv) {
		t.Error("Expected session to record joined room")
	}
	if r.RoomCount() != 1 {
		t.Errorf("Expected 1 room, got %d", r.RoomCount())
	}
}

func TestRegistry_JoinIdempotent(t *testing.T) {
	r := NewRegistry()
	s := newSession(nil, 4)
	conv := mustConv(t, "workspace-7")

	r.Join(s, conv)
	r.Join(s, conv)

	if got := r.MemberCount(conv); got != 1 {
		t.Errorf("Expected 1 member after double join, got %d", got)
	}
}

func TestRegistry_LeaveDeletesEmptyRoom(t *testing.T) {
	r := NewRegistry()
	a := newSession(nil, 4)
	b := newSession(nil, 4)
	conv := mustConv(t, "match-5")

	r.Join(a, conv)
	r.Join(b, conv)
	r.Leave(a, conv)

	if got := r.MemberCount(conv); got != 1 {
		t.Errorf("Expected 1 member, got %d", got)
	}
	if a.InRoom(conv) {
		t.Error("Expected session to forget left room")
	}

	r.Leave(b, conv)
	if r.RoomCount() != 0 {
		t.Errorf("Expected empty room to be deleted, got %d rooms", r.RoomCount())
	}
}

func TestRegistry_LeaveUnknownRoomIsNoop(t *testing.T) {
	r := NewRegistry()
	s := newSession(nil, 4)

	r.Leave(s, mustConv(t, "match-9"))

	if r.RoomCount() != 0 {
		t.Errorf("Expected no rooms, got %d", r.RoomCount())
	}
}

func TestRegistry_LeaveAll(t *testing.T) {
	r := NewRegistry()
	s := newSession(nil, 4)
	other := newSession(nil, 4)
	match := mustConv(t, "match-1")
	workspace := mustConv(t, "workspace-2")

	r.Join(s, match)
	r.Join(s, workspace)
	r.Join(other, match)

	r.LeaveAll(s)

	if s.InRoom(match) || s.InRoom(workspace) {
		t.Error("Expected session to be out of every room")
	}
	if got := r.MemberCount(match); got != 1 {
		t.Errorf("Expected other session to remain, got %d members", got)
	}
	if got := r.MemberCount(workspace); got != 0 {
		t.Errorf("Expected workspace room gone, got %d members", got)
	}
	if len(s.Rooms()) != 0 {
		t.Errorf("Expected no joined rooms, got %v", s.Rooms())
	}
}

func TestRegistry_MembersOfSnapshot(t *testing.T) {
	r := NewRegistry()
	a := newSession(nil, 4)
	b := newSession(nil, 4)
	conv := mustConv(t, "match-3")

	r.Join(a, conv)
	r.Join(b, conv)

	members := r.MembersOf(conv)
	if len(members) != 2 {
		t.Fatalf("Expected 2 members, got %d", len(members))
	}

	// Mutating after the snapshot must not affect it.
	r.Leave(b, conv)
	if len(members) != 2 {
		t.Errorf("Expected snapshot to stay at 2 members, got %d", len(members))
	}
	if got := r.MemberCount(conv); got != 1 {
		t.Errorf("Expected 1 live member, got %d", got)
	}
}

func TestRegistry_SeparateRoomsPerConversation(t *testing.T) {
	r := NewRegistry()
	s := newSession(nil, 4)

	// match-1 and workspace-1 are distinct conversations.
	r.Join(s, mustConv(t, "match-1"))

	if got := r.MemberCount(mustConv(t, "workspace-1")); got != 0 {
		t.Errorf("Expected workspace-1 to be empty, got %d", got)
	}
}
