package chat

import "errors"

// Errors surfaced to the session that triggered the failing event. None
// of these abort processing for any other session.
var (
	// ErrInvalidRoom marks a room name that does not follow the
	// match-<id> / workspace-<id> grammar.
	ErrInvalidRoom = errors.New("invalid room name")

	// ErrEmptyMessage marks a send with a blank or whitespace-only body.
	ErrEmptyMessage = errors.New("empty message body")

	// ErrStoreUnavailable marks a persistence failure; the message was
	// not stored and nothing was broadcast.
	ErrStoreUnavailable = errors.New("message store unavailable")
)

// Per-recipient delivery failures. Logged, never propagated to the
// sender; a dead or slow member must not fail the broadcast for others.
var (
	errSessionClosed  = errors.New("session closed")
	errSendBufferFull = errors.New("send buffer full")
)
