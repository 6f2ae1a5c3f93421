package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/veeraj-singh/devmatch/internal/domain"
)

// MessageStore is the persistence capability the dispatcher needs: a
// durable append that assigns ids and timestamps. The store routes the
// write to the match or workspace log by the conversation's kind.
type MessageStore interface {
	AppendMessage(ctx context.Context, conv domain.ConversationID, senderID, body string) (*domain.Message, error)
}

// Dispatcher handles one inbound send-message event end to end: parse
// the room name, validate the body, persist, then fan out to the room's
// current members.
type Dispatcher struct {
	store    MessageStore
	registry *Registry
}

// NewDispatcher creates a dispatcher over the given store and registry.
func NewDispatcher(store MessageStore, registry *Registry) *Dispatcher {
	return &Dispatcher{store: store, registry: registry}
}

// Dispatch processes a send event from one session. The message is
// durably stored before anyone sees it; a persistence failure aborts
// with nothing broadcast. On success the stored message (with its
// server-assigned id and timestamp) is delivered to every current room
// member, the sender included; the sender's own UI renders from this
// echo. Individual deliveries are best-effort: a dead or backed-up
// member is skipped and logged without affecting the rest.
//
// All returned errors concern only the triggering session; callers
// report them to the sender and nothing else.
func (d *Dispatcher) Dispatch(ctx context.Context, roomName, senderID, body string) (*domain.Message, error) {
	conv, ok := domain.ParseRoomName(roomName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRoom, roomName)
	}

	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyMessage
	}

	msg, err := d.store.AppendMessage(ctx, conv, senderID, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	payload, err := marshalEvent(EventReceiveMessage, msg)
	if err != nil {
		// The message is persisted; only the live fan-out is lost.
		slog.Error("Chat broadcast encode failed", "room", conv.RoomName(), "message_id", msg.ID, "error", err)
		return msg, nil
	}

	for _, member := range d.registry.MembersOf(conv) {
		if err := member.Deliver(payload); err != nil {
			slog.Warn("Chat delivery skipped",
				"session_id", member.ID, "room", conv.RoomName(), "message_id", msg.ID, "error", err)
		}
	}

	return msg, nil
}
