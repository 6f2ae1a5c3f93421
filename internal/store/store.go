// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/veeraj-singh/devmatch/internal/domain"
)

// ErrNotFound is returned by updates that target a missing row.
var ErrNotFound = errors.New("not found")

// ErrInterestExists is returned when a user expresses interest in a
// project twice.
var ErrInterestExists = errors.New("interest already expressed")

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Name       string
	AvatarURL  string
	Bio        string
	Skills     []string
	Interests  []string
	Experience string
	Location   string
}

// ProjectUpdate carries the editable project fields.
type ProjectUpdate struct {
	Title       string
	Description string
	Skills      []string
	Tags        []string
}

// Repository defines the interface for persisting DevMatch data.
type Repository interface {
	// GetUserByUID retrieves a user by their external auth identity.
	GetUserByUID(ctx context.Context, uid string) (*domain.User, error)

	// GetUserByID retrieves a user by database id.
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)

	// CreateUser registers a new user from a verified token identity.
	CreateUser(ctx context.Context, uid, email string) (*domain.User, error)

	// UpdateUserProfile replaces the editable profile fields.
	UpdateUserProfile(ctx context.Context, uid string, update ProfileUpdate) (*domain.User, error)

	// SearchUsers finds users by name or email, paginated. Returns the
	// page of users and the total match count.
	SearchUsers(ctx context.Context, query string, page, limit int) ([]*domain.User, int, error)

	// CreateProject stores a project and, in the same transaction, its
	// workspace with the creator as OWNER. The project's ID is set on
	// return.
	CreateProject(ctx context.Context, project *domain.Project) error

	// ListProjectsByOwner returns the projects a user created.
	ListProjectsByOwner(ctx context.Context, userID int64) ([]*domain.Project, error)

	// ListAllProjects returns every project for the explore feed.
	ListAllProjects(ctx context.Context) ([]*domain.Project, error)

	// UpdateProject replaces the editable project fields.
	UpdateProject(ctx context.Context, id int64, update ProjectUpdate) (*domain.Project, error)

	// DeleteProject removes a project together with its interests,
	// workspace, workspace members, and workspace tasks.
	DeleteProject(ctx context.Context, id int64) error

	// ListUserWorkspaces returns every workspace the user belongs to.
	ListUserWorkspaces(ctx context.Context, userID int64) ([]*domain.WorkspaceSummary, error)

	// CreateProjectInterest records a join request; ErrInterestExists if
	// the user already expressed interest in the project.
	CreateProjectInterest(ctx context.Context, projectID, userID int64) (*domain.ProjectInterest, error)

	// RespondProjectInterest sets the interest status; ACCEPTED also adds
	// the user to the project's workspace as MEMBER.
	RespondProjectInterest(ctx context.Context, projectID, interestID int64, status string) (*domain.ProjectInterest, error)

	// ListProjectInterests returns a project's interests, optionally
	// filtered by status.
	ListProjectInterests(ctx context.Context, projectID int64, status string) ([]*domain.ProjectInterest, error)

	// ListWorkspaceMembers returns the members of a project's workspace.
	ListWorkspaceMembers(ctx context.Context, projectID int64) ([]*domain.WorkspaceMember, error)

	// CreateMatch stores a new pending match request.
	CreateMatch(ctx context.Context, senderID, receiverID int64) (*domain.Match, error)

	// GetMatchBetween finds a match between two users in either
	// direction. Returns nil when none exists.
	GetMatchBetween(ctx context.Context, userA, userB int64) (*domain.Match, error)

	// GetMatchFrom finds a match with the given sender and receiver.
	GetMatchFrom(ctx context.Context, senderID, receiverID int64) (*domain.Match, error)

	// UpdateMatchStatus sets both status columns of a match.
	UpdateMatchStatus(ctx context.Context, id int64, senderStatus, receiverStatus string) (*domain.Match, error)

	// ListPendingMatches returns requests the user sent that are still
	// awaiting a response, with the receiver profile attached.
	ListPendingMatches(ctx context.Context, userID int64) ([]*domain.Match, error)

	// ListReceivedMatches returns requests awaiting the user's response,
	// with the sender profile attached.
	ListReceivedMatches(ctx context.Context, userID int64) ([]*domain.Match, error)

	// ListAcceptedMatches returns mutual matches with both profiles
	// attached.
	ListAcceptedMatches(ctx context.Context, userID int64) ([]*domain.Match, error)

	// ListActiveChats returns the user's direct-message conversations
	// with counterpart info and unread counts.
	ListActiveChats(ctx context.Context, userID int64) ([]*domain.ActiveChat, error)

	// ResetUnread zeroes the user's side of a match's unread counter,
	// marking the conversation as read.
	ResetUnread(ctx context.Context, matchID, userID int64) error

	// ListTasks returns a workspace's tasks, optionally filtered by
	// status, newest first.
	ListTasks(ctx context.Context, workspaceID int64, status string) ([]*domain.Task, error)

	// CreateTask adds a todo task to a workspace board.
	CreateTask(ctx context.Context, title string, workspaceID int64) (*domain.Task, error)

	// UpdateTaskStatus moves a task between board columns.
	UpdateTaskStatus(ctx context.Context, taskID int64, status string) (*domain.Task, error)

	// AppendMessage durably stores a chat message in the log selected by
	// the conversation kind and returns it with its server-assigned id
	// and timestamp. Ids within one log strictly increase in persistence
	// order. Appending to a match conversation also refreshes that
	// match's last-message metadata and unread counters.
	AppendMessage(ctx context.Context, conv domain.ConversationID, senderID, body string) (*domain.Message, error)

	// ListMessages reads a page of a conversation's history, newest
	// first. The bool result reports whether older pages remain.
	ListMessages(ctx context.Context, conv domain.ConversationID, page, limit int) ([]*domain.Message, bool, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
