package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/veeraj-singh/devmatch/internal/domain"
)

const userColumns = `id, uid, email, name, avatar_url, bio, skills, interests, experience, location, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var user domain.User
	var skills, interests string
	var createdAt, updatedAt int64

	err := row.Scan(
		&user.ID, &user.UID, &user.Email, &user.Name, &user.AvatarURL,
		&user.Bio, &skills, &interests, &user.Experience, &user.Location,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Skills = unmarshalStrings(skills)
	user.Interests = unmarshalStrings(interests)
	user.CreatedAt = time.Unix(createdAt, 0)
	user.UpdatedAt = time.Unix(updatedAt, 0)
	return &user, nil
}

// GetUserByUID retrieves a user by their external auth identity.
func (s *SQLiteStore) GetUserByUID(ctx context.Context, uid string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE uid = ?`, uid)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by database id.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}
	return user, nil
}

// CreateUser registers a new user from a verified token identity.
func (s *SQLiteStore) CreateUser(ctx context.Context, uid, email string) (*domain.User, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (uid, email, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		uid, email, now.Unix(), now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user insert id: %w", err)
	}
	return &domain.User{
		ID:        id,
		UID:       uid,
		Email:     email,
		Skills:    []string{},
		Interests: []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpdateUserProfile replaces the editable profile fields.
func (s *SQLiteStore) UpdateUserProfile(ctx context.Context, uid string, update ProfileUpdate) (*domain.User, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			name = ?, avatar_url = ?, bio = ?, skills = ?, interests = ?,
			experience = ?, location = ?, updated_at = ?
		WHERE uid = ?`,
		update.Name, update.AvatarURL, update.Bio,
		marshalStrings(update.Skills), marshalStrings(update.Interests),
		update.Experience, update.Location, time.Now().Unix(), uid,
	)
	if err != nil {
		return nil, fmt.Errorf("update user profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update user profile: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.GetUserByUID(ctx, uid)
}

// SearchUsers finds users by name or email, paginated.
func (s *SQLiteStore) SearchUsers(ctx context.Context, query string, page, limit int) ([]*domain.User, int, error) {
	pattern := "%" + query + "%"

	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users
		WHERE name LIKE ? COLLATE NOCASE OR email LIKE ? COLLATE NOCASE`,
		pattern, pattern,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	offset := (page - 1) * limit
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE name LIKE ? COLLATE NOCASE OR email LIKE ? COLLATE NOCASE
		ORDER BY id LIMIT ? OFFSET ?`,
		pattern, pattern, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}
	return users, total, nil
}
