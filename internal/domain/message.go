package domain

import (
	"encoding/json"
	"time"
)

// Message is one persisted chat message. Messages are immutable once
// stored; ids are assigned by the store and strictly increase within a
// conversation's log.
type Message struct {
	ID           int64
	Conversation ConversationID
	SenderID     string
	Body         string
	CreatedAt    time.Time
}

// messageWire is the JSON shape clients consume, both over the chat
// socket (receive-message) and from the history endpoints. The match or
// workspace id field is chosen by the conversation kind.
type messageWire struct {
	ID          int64     `json:"id"`
	MatchID     string    `json:"matchId,omitempty"`
	WorkspaceID string    `json:"workspaceId,omitempty"`
	SenderID    string    `json:"senderId"`
	Body        string    `json:"message"`
	CreatedAt   time.Time `json:"timestamp"`
}

// MarshalJSON renders the message with a matchId or workspaceId field
// depending on which conversation the message belongs to.
func (m Message) MarshalJSON() ([]byte, error) {
	w := messageWire{
		ID:        m.ID,
		SenderID:  m.SenderID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
	if m.Conversation.Kind == ConversationWorkspace {
		w.WorkspaceID = m.Conversation.ID
	} else {
		w.MatchID = m.Conversation.ID
	}
	return json.Marshal(w)
}
