package domain

import "time"

// Project is a proposed collaboration. Every project owns exactly one
// workspace, created alongside it with the creator as OWNER.
type Project struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Skills      []string     `json:"skills"`
	Tags        []string     `json:"tags"`
	CreatedByID int64        `json:"createdById"`
	CreatedBy   *UserSummary `json:"createdBy,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// Project interest statuses.
const (
	InterestPending  = "PENDING"
	InterestAccepted = "ACCEPTED"
	InterestRejected = "REJECTED"
)

// ProjectInterest records a user asking to join a project. Accepting it
// adds the user to the project's workspace.
type ProjectInterest struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"projectId"`
	UserID    int64     `json:"userId"`
	Status    string    `json:"status"`
	User      *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
