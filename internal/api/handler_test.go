package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/veeraj-singh/devmatch/internal/auth"
	"github.com/veeraj-singh/devmatch/internal/config"
	"github.com/veeraj-singh/devmatch/internal/domain"
	"github.com/veeraj-singh/devmatch/internal/store"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Port:      "5000",
		DBPath:    "unused",
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
		Chat: config.ChatConfig{
			SendQueueSize:   16,
			PingInterval:    30 * time.Second,
			HistoryPageSize: 20,
		},
	}
}

// newTestRouter wires every handler over a throwaway database.
func newTestRouter(t *testing.T) (chi.Router, *store.SQLiteStore) {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	base := NewHandler(repo, testConfig())
	r := chi.NewRouter()
	NewHealthHandler(repo).RegisterHealth(r)
	NewAuthHandler(base).RegisterRoutes(r)
	NewUserHandler(base).RegisterRoutes(r)
	NewProjectHandler(base).RegisterRoutes(r)
	NewMatchHandler(base).RegisterRoutes(r)
	NewTaskHandler(base).RegisterRoutes(r)
	NewMessageHandler(base).RegisterRoutes(r)
	return r, repo
}

// doAs performs a request with a verified identity already attached,
// bypassing the token middleware the way the real router layers it.
func doAs(t *testing.T, r chi.Router, uid, email, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if uid != "" {
		req = req.WithContext(auth.WithIdentity(req.Context(), uid, email))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return v
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doAs(t, r, "", "", http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	got := decode[map[string]interface{}](t, w)
	if got["status"] != "healthy" {
		t.Errorf("Expected healthy, got %v", got["status"])
	}
}

func TestIssueTokenRoundTrip(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doAs(t, r, "", "", http.MethodPost, "/api/auth/token",
		map[string]string{"uid": "u-1", "email": "a@b.c"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	got := decode[map[string]string](t, w)

	claims, err := auth.VerifyToken(got["token"], "test-secret")
	if err != nil {
		t.Fatalf("Issued token failed verification: %v", err)
	}
	if claims.UID != "u-1" || claims.Email != "a@b.c" {
		t.Errorf("Unexpected claims: %+v", claims)
	}
}

func TestEnsureUserCreatesOnce(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doAs(t, r, "uid-1", "ada@example.com", http.MethodPost, "/api/user", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decode[domain.User](t, w)
	if created.Email != "ada@example.com" {
		t.Errorf("Unexpected user: %+v", created)
	}

	// Second call returns the existing record.
	w = doAs(t, r, "uid-1", "ada@example.com", http.MethodPost, "/api/user", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on repeat, got %d", w.Code)
	}
	again := decode[domain.User](t, w)
	if again.ID != created.ID {
		t.Errorf("Expected same user id, got %d and %d", created.ID, again.ID)
	}
}

func TestUpdateProfileAndSearch(t *testing.T) {
	r, _ := newTestRouter(t)
	doAs(t, r, "uid-1", "ada@example.com", http.MethodPost, "/api/user", nil)

	w := doAs(t, r, "uid-1", "ada@example.com", http.MethodPut, "/api/user/profile",
		map[string]any{"name": "Ada", "skills": []string{"go"}})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doAs(t, r, "uid-1", "ada@example.com", http.MethodGet, "/api/user/search?query=ada", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	got := decode[map[string]json.RawMessage](t, w)
	var total int
	if err := json.Unmarshal(got["total"], &total); err != nil || total != 1 {
		t.Errorf("Expected 1 result, got %s", got["total"])
	}
}

func TestProjectLifecycleOverHTTP(t *testing.T) {
	r, _ := newTestRouter(t)
	doAs(t, r, "owner", "owner@example.com", http.MethodPost, "/api/user", nil)
	doAs(t, r, "joiner", "joiner@example.com", http.MethodPost, "/api/user", nil)

	w := doAs(t, r, "owner", "owner@example.com", http.MethodPost, "/api/project",
		map[string]any{"title": "DevMatch", "skills": []string{"go"}})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	project := decode[domain.Project](t, w)

	// A non-owner cannot update.
	w = doAs(t, r, "joiner", "joiner@example.com", http.MethodPut,
		"/api/project/"+itoa(project.ID), map[string]any{"title": "hijacked"})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for non-owner, got %d", w.Code)
	}

	// Interest flow: express, then owner accepts.
	w = doAs(t, r, "joiner", "joiner@example.com", http.MethodPost,
		"/api/project/"+itoa(project.ID)+"/interest", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	interest := decode[domain.ProjectInterest](t, w)

	// Duplicate interest conflicts.
	w = doAs(t, r, "joiner", "joiner@example.com", http.MethodPost,
		"/api/project/"+itoa(project.ID)+"/interest", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate interest, got %d", w.Code)
	}

	w = doAs(t, r, "owner", "owner@example.com", http.MethodPut,
		"/api/project/"+itoa(project.ID)+"/interest/"+itoa(interest.ID),
		map[string]string{"status": domain.InterestAccepted})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doAs(t, r, "owner", "owner@example.com", http.MethodGet,
		"/api/project/"+itoa(project.ID)+"/members", nil)
	members := decode[[]domain.WorkspaceMember](t, w)
	if len(members) != 2 {
		t.Errorf("Expected owner plus accepted member, got %d", len(members))
	}

	// The joiner now sees the workspace.
	w = doAs(t, r, "joiner", "joiner@example.com", http.MethodGet, "/api/project/workspaces", nil)
	workspaces := decode[[]domain.WorkspaceSummary](t, w)
	if len(workspaces) != 1 || workspaces[0].Role != domain.RoleMember {
		t.Errorf("Unexpected workspaces: %+v", workspaces)
	}
}

func TestMatchFlowOverHTTP(t *testing.T) {
	r, repo := newTestRouter(t)
	doAs(t, r, "alice", "alice@example.com", http.MethodPost, "/api/user", nil)
	doAs(t, r, "bob", "bob@example.com", http.MethodPost, "/api/user", nil)
	bob, err := repo.GetUserByUID(context.Background(), "bob")
	if err != nil || bob == nil {
		t.Fatalf("Failed to load bob: %v", err)
	}

	w := doAs(t, r, "alice", "alice@example.com", http.MethodPost, "/api/match",
		map[string]int64{"receiverId": bob.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	match := decode[domain.Match](t, w)

	// A second request in either direction conflicts.
	w = doAs(t, r, "alice", "alice@example.com", http.MethodPost, "/api/match",
		map[string]int64{"receiverId": bob.ID})
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409, got %d", w.Code)
	}

	// Only the receiver may respond.
	w = doAs(t, r, "alice", "alice@example.com", http.MethodPut,
		"/api/match/"+itoa(match.ID), map[string]string{"status": domain.MatchAccepted})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for the sender responding, got %d", w.Code)
	}

	w = doAs(t, r, "bob", "bob@example.com", http.MethodPut,
		"/api/match/"+itoa(match.ID), map[string]string{"status": domain.MatchAccepted})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doAs(t, r, "alice", "alice@example.com", http.MethodGet, "/api/match/friends", nil)
	friends := decode[[]domain.MatchProfile](t, w)
	if len(friends) != 1 || friends[0].ID != bob.ID || friends[0].MatchID != match.ID {
		t.Errorf("Unexpected friends list: %+v", friends)
	}
}

func TestMatchMutualRequestAutoAccepts(t *testing.T) {
	r, repo := newTestRouter(t)
	doAs(t, r, "alice", "alice@example.com", http.MethodPost, "/api/user", nil)
	doAs(t, r, "bob", "bob@example.com", http.MethodPost, "/api/user", nil)
	alice, _ := repo.GetUserByUID(context.Background(), "alice")
	bob, _ := repo.GetUserByUID(context.Background(), "bob")

	w := doAs(t, r, "alice", "alice@example.com", http.MethodPost, "/api/match",
		map[string]int64{"receiverId": bob.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", w.Code)
	}

	// Bob requesting alice back accepts the existing match.
	w = doAs(t, r, "bob", "bob@example.com", http.MethodPost, "/api/match",
		map[string]int64{"receiverId": alice.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	match := decode[domain.Match](t, w)
	if !match.IsAccepted() {
		t.Errorf("Expected mutual requests to auto-accept, got %+v", match)
	}
}

func TestActiveChatsAndMarkRead(t *testing.T) {
	r, repo := newTestRouter(t)
	doAs(t, r, "alice", "alice@example.com", http.MethodPost, "/api/user", nil)
	doAs(t, r, "bob", "bob@example.com", http.MethodPost, "/api/user", nil)
	doAs(t, r, "eve", "eve@example.com", http.MethodPost, "/api/user", nil)
	alice, _ := repo.GetUserByUID(context.Background(), "alice")
	bob, _ := repo.GetUserByUID(context.Background(), "bob")

	match, err := repo.CreateMatch(context.Background(), alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("CreateMatch failed: %v", err)
	}
	conv, _ := domain.ParseRoomName("match-" + itoa(match.ID))
	if _, err := repo.AppendMessage(context.Background(), conv, itoa(alice.ID), "hey"); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	type chatList struct {
		Res []domain.ActiveChat `json:"res"`
		UID int64               `json:"userId"`
	}

	w := doAs(t, r, "bob", "bob@example.com", http.MethodGet, "/api/match/active-chats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	got := decode[chatList](t, w)
	if got.UID != bob.ID {
		t.Errorf("Expected userId %d, got %d", bob.ID, got.UID)
	}
	if len(got.Res) != 1 || got.Res[0].UnreadCount != 1 {
		t.Fatalf("Expected 1 chat with 1 unread, got %+v", got.Res)
	}

	// A non-participant cannot mark the chat read.
	w = doAs(t, r, "eve", "eve@example.com", http.MethodPut,
		"/api/match/"+itoa(match.ID)+"/read", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for a non-participant, got %d", w.Code)
	}

	// Opening the chat zeroes the reader's counter.
	w = doAs(t, r, "bob", "bob@example.com", http.MethodPut,
		"/api/match/"+itoa(match.ID)+"/read", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doAs(t, r, "bob", "bob@example.com", http.MethodGet, "/api/match/active-chats", nil)
	got = decode[chatList](t, w)
	if len(got.Res) != 1 || got.Res[0].UnreadCount != 0 {
		t.Errorf("Expected 0 unread after marking read, got %+v", got.Res)
	}
}

func TestMessageHistoryPagination(t *testing.T) {
	r, repo := newTestRouter(t)
	doAs(t, r, "alice", "alice@example.com", http.MethodPost, "/api/user", nil)

	conv, _ := domain.ParseRoomName("workspace-1")
	for i := 0; i < 3; i++ {
		if _, err := repo.AppendMessage(context.Background(), conv, "1", "hello"); err != nil {
			t.Fatalf("Failed to seed message: %v", err)
		}
	}

	w := doAs(t, r, "alice", "alice@example.com", http.MethodGet,
		"/api/message/workspace/1?page=1&limit=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	got := decode[struct {
		Messages []domain.Message `json:"messages"`
		HasMore  bool             `json:"hasMore"`
	}](t, w)
	if len(got.Messages) != 2 || !got.HasMore {
		t.Errorf("Expected 2 messages with more remaining, got %d hasMore=%v", len(got.Messages), got.HasMore)
	}
}

func TestTaskEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)
	doAs(t, r, "owner", "owner@example.com", http.MethodPost, "/api/user", nil)
	w := doAs(t, r, "owner", "owner@example.com", http.MethodPost, "/api/project",
		map[string]any{"title": "Board"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", w.Code)
	}

	w = doAs(t, r, "owner", "owner@example.com", http.MethodGet, "/api/project/workspaces", nil)
	workspaces := decode[[]domain.WorkspaceSummary](t, w)
	if len(workspaces) != 1 {
		t.Fatalf("Expected 1 workspace, got %d", len(workspaces))
	}
	wsID := workspaces[0].WorkspaceID

	w = doAs(t, r, "owner", "owner@example.com", http.MethodPost, "/api/task",
		map[string]any{"title": "ship it", "workspaceId": wsID})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	task := decode[domain.Task](t, w)

	w = doAs(t, r, "owner", "owner@example.com", http.MethodPut,
		"/api/task/"+itoa(task.ID), map[string]string{"status": domain.TaskCompleted})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	updated := decode[domain.Task](t, w)
	if updated.Status != domain.TaskCompleted {
		t.Errorf("Expected completed, got %s", updated.Status)
	}
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, path := range []string{"/api/user/me", "/api/project/my", "/api/match/friends"} {
		w := doAs(t, r, "", "", http.MethodGet, path, nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401 for %s, got %d", path, w.Code)
		}
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
