package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/veeraj-singh/devmatch/internal/domain"
)

const matchColumns = `id, sender_id, receiver_id, sender_status, receiver_status,
	last_message, last_message_at, unread_sender, unread_receiver, created_at`

func scanMatch(row interface{ Scan(...any) error }) (*domain.Match, error) {
	var match domain.Match
	var lastMessageAt sql.NullInt64
	var createdAt int64

	err := row.Scan(
		&match.ID, &match.SenderID, &match.ReceiverID,
		&match.SenderStatus, &match.ReceiverStatus,
		&match.LastMessage, &lastMessageAt,
		&match.UnreadSender, &match.UnreadReceiver, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if lastMessageAt.Valid {
		match.LastMessageAt = time.UnixMilli(lastMessageAt.Int64)
	}
	match.CreatedAt = time.Unix(createdAt, 0)
	return &match, nil
}

// CreateMatch stores a new pending match request.
func (s *SQLiteStore) CreateMatch(ctx context.Context, senderID, receiverID int64) (*domain.Match, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO matches (sender_id, receiver_id, sender_status, receiver_status, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		senderID, receiverID, domain.MatchPending, domain.MatchPending, now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert match: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("match insert id: %w", err)
	}
	return &domain.Match{
		ID:             id,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		SenderStatus:   domain.MatchPending,
		ReceiverStatus: domain.MatchPending,
		CreatedAt:      now,
	}, nil
}

// GetMatchBetween finds a match between two users in either direction.
func (s *SQLiteStore) GetMatchBetween(ctx context.Context, userA, userB int64) (*domain.Match, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)`,
		userA, userB, userB, userA,
	)
	match, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan match row: %w", err)
	}
	return match, nil
}

// GetMatchFrom finds a match with the given sender and receiver.
func (s *SQLiteStore) GetMatchFrom(ctx context.Context, senderID, receiverID int64) (*domain.Match, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE sender_id = ? AND receiver_id = ?`,
		senderID, receiverID,
	)
	match, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan match row: %w", err)
	}
	return match, nil
}

// UpdateMatchStatus sets both status columns of a match.
func (s *SQLiteStore) UpdateMatchStatus(ctx context.Context, id int64, senderStatus, receiverStatus string) (*domain.Match, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE matches SET sender_status = ?, receiver_status = ? WHERE id = ?`,
		senderStatus, receiverStatus, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update match status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update match status: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = ?`, id)
	match, err := scanMatch(row)
	if err != nil {
		return nil, fmt.Errorf("scan match row: %w", err)
	}
	return match, nil
}

// queryMatchesWithUser runs a match query and attaches the user joined
// under alias u to the field selected by pick.
func (s *SQLiteStore) queryMatchesWithUser(ctx context.Context, query string, pick func(*domain.Match, *domain.User), args ...any) ([]*domain.Match, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*domain.Match, 0)
	for rows.Next() {
		var match domain.Match
		var lastMessageAt sql.NullInt64
		var createdAt int64
		var user domain.User
		var skills, interests string
		var userCreated, userUpdated int64

		err := rows.Scan(
			&match.ID, &match.SenderID, &match.ReceiverID,
			&match.SenderStatus, &match.ReceiverStatus,
			&match.LastMessage, &lastMessageAt,
			&match.UnreadSender, &match.UnreadReceiver, &createdAt,
			&user.ID, &user.UID, &user.Email, &user.Name, &user.AvatarURL,
			&user.Bio, &skills, &interests, &user.Experience, &user.Location,
			&userCreated, &userUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		if lastMessageAt.Valid {
			match.LastMessageAt = time.UnixMilli(lastMessageAt.Int64)
		}
		match.CreatedAt = time.Unix(createdAt, 0)
		user.Skills = unmarshalStrings(skills)
		user.Interests = unmarshalStrings(interests)
		user.CreatedAt = time.Unix(userCreated, 0)
		user.UpdatedAt = time.Unix(userUpdated, 0)
		pick(&match, &user)
		matches = append(matches, &match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}

const matchColumnsPrefixed = `m.id, m.sender_id, m.receiver_id, m.sender_status, m.receiver_status,
	m.last_message, m.last_message_at, m.unread_sender, m.unread_receiver, m.created_at`

// ListPendingMatches returns requests the user sent that are still
// awaiting a response, with the receiver profile attached.
func (s *SQLiteStore) ListPendingMatches(ctx context.Context, userID int64) ([]*domain.Match, error) {
	query := `
		SELECT ` + matchColumnsPrefixed + `, ` + prefixedUserColumns("u") + `
		FROM matches m JOIN users u ON u.id = m.receiver_id
		WHERE m.sender_id = ? AND m.receiver_status = ?
		ORDER BY m.id DESC`
	return s.queryMatchesWithUser(ctx, query, func(m *domain.Match, u *domain.User) {
		m.Receiver = u
	}, userID, domain.MatchPending)
}

// ListReceivedMatches returns requests awaiting the user's response,
// with the sender profile attached.
func (s *SQLiteStore) ListReceivedMatches(ctx context.Context, userID int64) ([]*domain.Match, error) {
	query := `
		SELECT ` + matchColumnsPrefixed + `, ` + prefixedUserColumns("u") + `
		FROM matches m JOIN users u ON u.id = m.sender_id
		WHERE m.receiver_id = ? AND m.receiver_status = ?
		ORDER BY m.id DESC`
	return s.queryMatchesWithUser(ctx, query, func(m *domain.Match, u *domain.User) {
		m.Sender = u
	}, userID, domain.MatchPending)
}

// ListAcceptedMatches returns mutual matches with the counterpart
// profile attached on the correct side.
func (s *SQLiteStore) ListAcceptedMatches(ctx context.Context, userID int64) ([]*domain.Match, error) {
	query := `
		SELECT ` + matchColumnsPrefixed + `, ` + prefixedUserColumns("u") + `
		FROM matches m JOIN users u ON u.id = CASE WHEN m.sender_id = ? THEN m.receiver_id ELSE m.sender_id END
		WHERE (m.sender_id = ? OR m.receiver_id = ?)
		  AND m.sender_status = ? AND m.receiver_status = ?
		ORDER BY m.id DESC`
	return s.queryMatchesWithUser(ctx, query, func(m *domain.Match, u *domain.User) {
		if m.SenderID == userID {
			m.Receiver = u
		} else {
			m.Sender = u
		}
	}, userID, userID, userID, domain.MatchAccepted, domain.MatchAccepted)
}

// ResetUnread zeroes the user's side of a match's unread counter,
// called when the user opens the chat. ErrNotFound if the match does
// not exist or the user is not a participant.
func (s *SQLiteStore) ResetUnread(ctx context.Context, matchID, userID int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE matches SET
			unread_sender = CASE WHEN sender_id = ? THEN 0 ELSE unread_sender END,
			unread_receiver = CASE WHEN receiver_id = ? THEN 0 ELSE unread_receiver END
		WHERE id = ? AND (sender_id = ? OR receiver_id = ?)`,
		userID, userID, matchID, userID, userID,
	)
	if err != nil {
		return fmt.Errorf("reset unread count: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reset unread count: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActiveChats returns the user's direct-message conversations with
// counterpart info and unread counts.
func (s *SQLiteStore) ListActiveChats(ctx context.Context, userID int64) ([]*domain.ActiveChat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, u.id, u.name, u.avatar_url, m.last_message, m.last_message_at,
			CASE WHEN m.sender_id = ? THEN m.unread_sender ELSE m.unread_receiver END
		FROM matches m
		JOIN users u ON u.id = CASE WHEN m.sender_id = ? THEN m.receiver_id ELSE m.sender_id END
		WHERE m.sender_id = ? OR m.receiver_id = ?
		ORDER BY m.last_message_at DESC`,
		userID, userID, userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query active chats: %w", err)
	}
	defer rows.Close()

	chats := make([]*domain.ActiveChat, 0)
	for rows.Next() {
		var chat domain.ActiveChat
		var lastMessageAt sql.NullInt64
		err := rows.Scan(
			&chat.ID, &chat.OtherUserID, &chat.OtherUserName, &chat.OtherUserAvatar,
			&chat.LastMessage, &lastMessageAt, &chat.UnreadCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan chat row: %w", err)
		}
		if lastMessageAt.Valid {
			chat.LastMessageTimestamp = time.UnixMilli(lastMessageAt.Int64)
		}
		chats = append(chats, &chat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chats: %w", err)
	}
	return chats, nil
}
