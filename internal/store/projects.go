package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/veeraj-singh/devmatch/internal/domain"
)

// CreateProject stores a project and its workspace with the creator as
// OWNER in one transaction.
func (s *SQLiteStore) CreateProject(ctx context.Context, project *domain.Project) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin project transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO projects (title, description, skills, tags, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		project.Title, project.Description,
		marshalStrings(project.Skills), marshalStrings(project.Tags),
		project.CreatedByID, now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	projectID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("project insert id: %w", err)
	}

	res, err = tx.ExecContext(ctx, `INSERT INTO workspaces (project_id) VALUES (?)`, projectID)
	if err != nil {
		return fmt.Errorf("insert workspace: %w", err)
	}
	workspaceID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("workspace insert id: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workspace_members (workspace_id, user_id, role)
		VALUES (?, ?, ?)`,
		workspaceID, project.CreatedByID, domain.RoleOwner,
	)
	if err != nil {
		return fmt.Errorf("insert workspace owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit project transaction: %w", err)
	}

	project.ID = projectID
	project.CreatedAt = now
	return nil
}

const projectColumns = `p.id, p.title, p.description, p.skills, p.tags, p.created_by, p.created_at,
	u.id, u.name, u.email`

func scanProject(row interface{ Scan(...any) error }) (*domain.Project, error) {
	var project domain.Project
	var skills, tags string
	var createdAt int64
	var creator domain.UserSummary

	err := row.Scan(
		&project.ID, &project.Title, &project.Description, &skills, &tags,
		&project.CreatedByID, &createdAt,
		&creator.ID, &creator.Name, &creator.Email,
	)
	if err != nil {
		return nil, err
	}

	project.Skills = unmarshalStrings(skills)
	project.Tags = unmarshalStrings(tags)
	project.CreatedAt = time.Unix(createdAt, 0)
	project.CreatedBy = &creator
	return &project, nil
}

func (s *SQLiteStore) queryProjects(ctx context.Context, where string, args ...any) ([]*domain.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects p JOIN users u ON u.id = p.created_by`
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY p.id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*domain.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project row: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// ListProjectsByOwner returns the projects a user created.
func (s *SQLiteStore) ListProjectsByOwner(ctx context.Context, userID int64) ([]*domain.Project, error) {
	return s.queryProjects(ctx, "p.created_by = ?", userID)
}

// ListAllProjects returns every project for the explore feed.
func (s *SQLiteStore) ListAllProjects(ctx context.Context) ([]*domain.Project, error) {
	return s.queryProjects(ctx, "")
}

// UpdateProject replaces the editable project fields.
func (s *SQLiteStore) UpdateProject(ctx context.Context, id int64, update ProjectUpdate) (*domain.Project, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE projects SET title = ?, description = ?, skills = ?, tags = ?
		WHERE id = ?`,
		update.Title, update.Description,
		marshalStrings(update.Skills), marshalStrings(update.Tags), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	projects, err := s.queryProjects(ctx, "p.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, ErrNotFound
	}
	return projects[0], nil
}

// DeleteProject removes a project with its interests, workspace,
// workspace members, and workspace tasks.
func (s *SQLiteStore) DeleteProject(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM project_interests WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("delete project interests: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM workspace_members
		WHERE workspace_id IN (SELECT id FROM workspaces WHERE project_id = ?)`, id); err != nil {
		return fmt.Errorf("delete workspace members: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM tasks
		WHERE workspace_id IN (SELECT id FROM workspaces WHERE project_id = ?)`, id); err != nil {
		return fmt.Errorf("delete workspace tasks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM workspaces WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete transaction: %w", err)
	}
	return nil
}

// ListUserWorkspaces returns every workspace the user belongs to.
func (s *SQLiteStore) ListUserWorkspaces(ctx context.Context, userID int64) ([]*domain.WorkspaceSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT w.id, p.id, p.title, m.role
		FROM workspace_members m
		JOIN workspaces w ON w.id = m.workspace_id
		JOIN projects p ON p.id = w.project_id
		WHERE m.user_id = ?
		ORDER BY w.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query user workspaces: %w", err)
	}
	defer rows.Close()

	workspaces := make([]*domain.WorkspaceSummary, 0)
	for rows.Next() {
		var ws domain.WorkspaceSummary
		if err := rows.Scan(&ws.WorkspaceID, &ws.ProjectID, &ws.ProjectTitle, &ws.Role); err != nil {
			return nil, fmt.Errorf("scan workspace row: %w", err)
		}
		workspaces = append(workspaces, &ws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workspaces: %w", err)
	}
	return workspaces, nil
}

// CreateProjectInterest records a join request.
func (s *SQLiteStore) CreateProjectInterest(ctx context.Context, projectID, userID int64) (*domain.ProjectInterest, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO project_interests (project_id, user_id, status, created_at)
		VALUES (?, ?, ?, ?)`,
		projectID, userID, domain.InterestPending, now.Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrInterestExists
		}
		return nil, fmt.Errorf("insert project interest: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("interest insert id: %w", err)
	}
	return &domain.ProjectInterest{
		ID:        id,
		ProjectID: projectID,
		UserID:    userID,
		Status:    domain.InterestPending,
		CreatedAt: now,
	}, nil
}

// RespondProjectInterest sets the interest status; ACCEPTED also adds
// the user to the project's workspace.
func (s *SQLiteStore) RespondProjectInterest(ctx context.Context, projectID, interestID int64, status string) (*domain.ProjectInterest, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin interest transaction: %w", err)
	}
	defer tx.Rollback()

	var interest domain.ProjectInterest
	var createdAt int64
	err = tx.QueryRowContext(ctx, `
		SELECT id, project_id, user_id, status, created_at
		FROM project_interests WHERE id = ? AND project_id = ?`,
		interestID, projectID,
	).Scan(&interest.ID, &interest.ProjectID, &interest.UserID, &interest.Status, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan interest row: %w", err)
	}
	interest.CreatedAt = time.Unix(createdAt, 0)

	if _, err := tx.ExecContext(ctx, `
		UPDATE project_interests SET status = ? WHERE id = ?`, status, interestID); err != nil {
		return nil, fmt.Errorf("update interest status: %w", err)
	}
	interest.Status = status

	if status == domain.InterestAccepted {
		var workspaceID int64
		err = tx.QueryRowContext(ctx, `SELECT id FROM workspaces WHERE project_id = ?`, projectID).Scan(&workspaceID)
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("find workspace: %w", err)
		}
		if err == nil {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO workspace_members (workspace_id, user_id, role)
				VALUES (?, ?, ?)
				ON CONFLICT(workspace_id, user_id) DO NOTHING`,
				workspaceID, interest.UserID, domain.RoleMember,
			)
			if err != nil {
				return nil, fmt.Errorf("add workspace member: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit interest transaction: %w", err)
	}
	return &interest, nil
}

// ListProjectInterests returns a project's interests, optionally
// filtered by status.
func (s *SQLiteStore) ListProjectInterests(ctx context.Context, projectID int64, status string) ([]*domain.ProjectInterest, error) {
	query := `
		SELECT i.id, i.project_id, i.user_id, i.status, i.created_at, ` + prefixedUserColumns("u") + `
		FROM project_interests i JOIN users u ON u.id = i.user_id
		WHERE i.project_id = ?`
	args := []any{projectID}
	if status != "" {
		query += " AND i.status = ?"
		args = append(args, status)
	}
	query += " ORDER BY i.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query project interests: %w", err)
	}
	defer rows.Close()

	interests := make([]*domain.ProjectInterest, 0)
	for rows.Next() {
		var interest domain.ProjectInterest
		var createdAt int64
		var user domain.User
		var skills, interestsRaw string
		var userCreated, userUpdated int64

		err := rows.Scan(
			&interest.ID, &interest.ProjectID, &interest.UserID, &interest.Status, &createdAt,
			&user.ID, &user.UID, &user.Email, &user.Name, &user.AvatarURL,
			&user.Bio, &skills, &interestsRaw, &user.Experience, &user.Location,
			&userCreated, &userUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("scan interest row: %w", err)
		}
		interest.CreatedAt = time.Unix(createdAt, 0)
		user.Skills = unmarshalStrings(skills)
		user.Interests = unmarshalStrings(interestsRaw)
		user.CreatedAt = time.Unix(userCreated, 0)
		user.UpdatedAt = time.Unix(userUpdated, 0)
		interest.User = &user
		interests = append(interests, &interest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interests: %w", err)
	}
	return interests, nil
}

// ListWorkspaceMembers returns the members of a project's workspace.
func (s *SQLiteStore) ListWorkspaceMembers(ctx context.Context, projectID int64) ([]*domain.WorkspaceMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.workspace_id, m.user_id, m.role, `+prefixedUserColumns("u")+`
		FROM workspace_members m
		JOIN workspaces w ON w.id = m.workspace_id
		JOIN users u ON u.id = m.user_id
		WHERE w.project_id = ?
		ORDER BY m.user_id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query workspace members: %w", err)
	}
	defer rows.Close()

	members := make([]*domain.WorkspaceMember, 0)
	for rows.Next() {
		var member domain.WorkspaceMember
		var user domain.User
		var skills, interests string
		var userCreated, userUpdated int64

		err := rows.Scan(
			&member.WorkspaceID, &member.UserID, &member.Role,
			&user.ID, &user.UID, &user.Email, &user.Name, &user.AvatarURL,
			&user.Bio, &skills, &interests, &user.Experience, &user.Location,
			&userCreated, &userUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("scan member row: %w", err)
		}
		user.Skills = unmarshalStrings(skills)
		user.Interests = unmarshalStrings(interests)
		user.CreatedAt = time.Unix(userCreated, 0)
		user.UpdatedAt = time.Unix(userUpdated, 0)
		member.User = &user
		members = append(members, &member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return members, nil
}

func prefixedUserColumns(alias string) string {
	cols := []string{"id", "uid", "email", "name", "avatar_url", "bio", "skills", "interests", "experience", "location", "created_at", "updated_at"}
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}
