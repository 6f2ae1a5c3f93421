package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/veeraj-singh/devmatch/internal/domain"
)

// fakeStore is an in-memory MessageStore with per-log monotonic ids.
type fakeStore struct {
	mu       sync.Mutex
	nextID   map[domain.ConversationKind]int64
	appended []*domain.Message
	fail     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: make(map[domain.ConversationKind]int64)}
}

func (f *fakeStore) AppendMessage(_ context.Context, conv domain.ConversationID, senderID, body string) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.nextID[conv.Kind]++
	msg := &domain.Message{
		ID:           f.nextID[conv.Kind],
		Conversation: conv,
		SenderID:     senderID,
		Body:         body,
		CreatedAt:    time.Now(),
	}
	f.appended = append(f.appended, msg)
	return msg, nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.appended)
}

type recvEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type recvMessage struct {
	ID          int64  `json:"id"`
	MatchID     string `json:"matchId"`
	WorkspaceID string `json:"workspaceId"`
	SenderID    string `json:"senderId"`
	Body        string `json:"message"`
}

// takeDelivery pops one queued payload from the session, failing if
// none is pending.
func takeDelivery(t *testing.T, s *Session) recvEnvelope {
	t.Helper()
	select {
	case payload := <-s.out:
		var env recvEnvelope
		if err := json.Unmarshal(payload, &env); err != nil {
			t.Fatalf("Failed to decode delivery: %v", err)
		}
		return env
	default:
		t.Fatal("Expected a queued delivery")
		return recvEnvelope{}
	}
}

func takeMessage(t *testing.T, s *Session) recvMessage {
	t.Helper()
	env := takeDelivery(t, s)
	if env.Event != EventReceiveMessage {
		t.Fatalf("Expected %s event, got %s", EventReceiveMessage, env.Event)
	}
	var msg recvMessage
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		t.Fatalf("Failed to decode message: %v", err)
	}
	return msg
}

func assertNoDelivery(t *testing.T, s *Session) {
	t.Helper()
	select {
	case payload := <-s.out:
		t.Fatalf("Expected no delivery, got %s", payload)
	default:
	}
}

func TestDispatcher_PersistThenBroadcast(t *testing.T) {
	store := newFakeStore()
	registry := NewRegistry()
	d := NewDispatcher(store, registry)

	a := newSession(nil, 4)
	b := newSession(nil, 4)
	conv := mustConv(t, "match-42")
	registry.Join(a, conv)
	registry.Join(b, conv)

	msg, err := d.Dispatch(context.Background(), "match-42", "7", "hi")
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if msg.ID == 0 {
		t.Error("Expected a server-assigned id")
	}
	if store.count() != 1 {
		t.Fatalf("Expected 1 persisted message, got %d", store.count())
	}

	// Broadcast is inclusive: the sender's session gets the echo too.
	for _, s := range []*Session{a, b} {
		got := takeMessage(t, s)
		if got.Body != "hi" {
			t.Errorf("Expected body hi, got %q", got.Body)
		}
		if got.MatchID != "42" {
			t.Errorf("Expected matchId 42, got %q", got.MatchID)
		}
		if got.WorkspaceID != "" {
			t.Errorf("Expected no workspaceId, got %q", got.WorkspaceID)
		}
		if got.SenderID != "7" {
			t.Errorf("Expected senderId 7, got %q", got.SenderID)
		}
	}
}

func TestDispatcher_InvalidRoom(t *testing.T) {
	store := newFakeStore()
	registry := NewRegistry()
	d := NewDispatcher(store, registry)

	s := newSession(nil, 4)
	registry.Join(s, mustConv(t, "match-99"))

	_, err := d.Dispatch(context.Background(), "foo-99", "7", "hi")
	if !errors.Is(err, ErrInvalidRoom) {
		t.Fatalf("Expected ErrInvalidRoom, got %v", err)
	}
	if store.count() != 0 {
		t.Errorf("Expected no persisted record, got %d", store.count())
	}
	assertNoDelivery(t, s)
}

func TestDispatcher_EmptyMessage(t *testing.T) {
	store := newFakeStore()
	registry := NewRegistry()
	d := NewDispatcher(store, registry)

	s := newSession(nil, 4)
	conv := mustConv(t, "workspace-7")
	registry.Join(s, conv)

	for _, body := range []string{"", "   ", "\t\n"} {
		_, err := d.Dispatch(context.Background(), "workspace-7", "7", body)
		if !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("Expected ErrEmptyMessage for %q, got %v", body, err)
		}
	}
	if store.count() != 0 {
		t.Errorf("Expected no persisted record, got %d", store.count())
	}
	assertNoDelivery(t, s)
}

func TestDispatcher_StoreFailureAbortsBroadcast(t *testing.T) {
	store := newFakeStore()
	store.fail = errors.New("disk on fire")
	registry := NewRegistry()
	d := NewDispatcher(store, registry)

	a := newSession(nil, 4)
	b := newSession(nil, 4)
	conv := mustConv(t, "match-1")
	registry.Join(a, conv)
	registry.Join(b, conv)

	_, err := d.Dispatch(context.Background(), "match-1", "7", "hello")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Expected ErrStoreUnavailable, got %v", err)
	}
	assertNoDelivery(t, a)
	assertNoDelivery(t, b)
}

func TestDispatcher_MonotonicIDsPerConversation(t *testing.T) {
	store := newFakeStore()
	registry := NewRegistry()
	d := NewDispatcher(store, registry)

	s := newSession(nil, 8)
	registry.Join(s, mustConv(t, "match-5"))

	var lastID int64
	for _, body := range []string{"one", "two", "three"} {
		msg, err := d.Dispatch(context.Background(), "match-5", "7", body)
		if err != nil {
			t.Fatalf("Dispatch failed: %v", err)
		}
		if msg.ID <= lastID {
			t.Errorf("Expected id > %d, got %d", lastID, msg.ID)
		}
		lastID = msg.ID
	}
}

func TestDispatcher_DisconnectedMemberNotDelivered(t *testing.T) {
	store := newFakeStore()
	registry := NewRegistry()
	manager := NewManager(registry, 4)
	d := NewDispatcher(store, registry)

	a := manager.OnConnect(nil)
	b := manager.OnConnect(nil)
	conv := mustConv(t, "match-1")
	registry.Join(a, conv)
	registry.Join(b, conv)

	manager.OnDisconnect(b)

	if _, err := d.Dispatch(context.Background(), "match-1", "7", "ping"); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	got := takeMessage(t, a)
	if got.Body != "ping" {
		t.Errorf("Expected body ping, got %q", got.Body)
	}
	assertNoDelivery(t, b)
}

func TestDispatcher_SlowMemberSkippedOthersStillDelivered(t *testing.T) {
	store := newFakeStore()
	registry := NewRegistry()
	d := NewDispatcher(store, registry)

	slow := newSession(nil, 1)
	healthy := newSession(nil, 8)
	conv := mustConv(t, "workspace-3")
	registry.Join(slow, conv)
	registry.Join(healthy, conv)

	// Fill the slow session's buffer so the next delivery is skipped.
	if err := slow.Deliver([]byte(`{"event":"filler"}`)); err != nil {
		t.Fatalf("Priming delivery failed: %v", err)
	}

	msg, err := d.Dispatch(context.Background(), "workspace-3", "7", "big news")
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if msg == nil || store.count() != 1 {
		t.Fatal("Expected the message to be persisted despite the slow member")
	}

	got := takeMessage(t, healthy)
	if got.WorkspaceID != "3" {
		t.Errorf("Expected workspaceId 3, got %q", got.WorkspaceID)
	}

	// The slow session only ever got the filler.
	<-slow.out
	assertNoDelivery(t, slow)
}

func TestDispatcher_SendWithoutRoomMembersStillPersists(t *testing.T) {
	store := newFakeStore()
	registry := NewRegistry()
	d := NewDispatcher(store, registry)

	msg, err := d.Dispatch(context.Background(), "match-77", "7", "anyone here?")
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if msg.ID == 0 || store.count() != 1 {
		t.Error("Expected persistence even with an empty room")
	}
}
