package domain

// Workspace member roles.
const (
	RoleOwner  = "OWNER"
	RoleMember = "MEMBER"
)

// Workspace is the shared working area attached to a project.
type Workspace struct {
	ID        int64 `json:"id"`
	ProjectID int64 `json:"projectId"`
}

// WorkspaceMember links a user to a workspace with a role.
type WorkspaceMember struct {
	WorkspaceID int64  `json:"workspaceId"`
	UserID      int64  `json:"userId"`
	Role        string `json:"role"`
	User        *User  `json:"user,omitempty"`
}

// WorkspaceSummary is the per-user workspace listing shape used by the
// workspace picker in the client.
type WorkspaceSummary struct {
	WorkspaceID  int64  `json:"workspaceId"`
	ProjectID    int64  `json:"projectId"`
	ProjectTitle string `json:"projectTitle"`
	Role         string `json:"role"`
}
