package domain

import "strings"

// ConversationKind distinguishes the two chat contexts: pairwise match
// chats and multi-member workspace chats.
type ConversationKind string

const (
	ConversationMatch     ConversationKind = "match"
	ConversationWorkspace ConversationKind = "workspace"
)

// ConversationID identifies a single chat room. The Kind selects which
// message log the conversation persists into; ID is the opaque match or
// workspace identifier understood by the CRUD layer.
type ConversationID struct {
	Kind ConversationKind
	ID   string
}

const (
	matchRoomPrefix     = "match-"
	workspaceRoomPrefix = "workspace-"
)

// ParseRoomName maps a client-supplied room name onto a ConversationID.
// The grammar is "match-<id>" or "workspace-<id>" with a non-empty id;
// anything else is rejected.
func ParseRoomName(name string) (ConversationID, bool) {
	switch {
	case strings.HasPrefix(name, matchRoomPrefix):
		id := strings.TrimPrefix(name, matchRoomPrefix)
		if id == "" {
			return ConversationID{}, false
		}
		return ConversationID{Kind: ConversationMatch, ID: id}, true
	case strings.HasPrefix(name, workspaceRoomPrefix):
		id := strings.TrimPrefix(name, workspaceRoomPrefix)
		if id == "" {
			return ConversationID{}, false
		}
		return ConversationID{Kind: ConversationWorkspace, ID: id}, true
	default:
		return ConversationID{}, false
	}
}

// RoomName serializes the conversation back to its room-name form.
// ParseRoomName(c.RoomName()) always yields c for valid conversations.
func (c ConversationID) RoomName() string {
	if c.Kind == ConversationWorkspace {
		return workspaceRoomPrefix + c.ID
	}
	return matchRoomPrefix + c.ID
}
