package store

import (
	"context"
	"fmt"
	"time"

	"github.com/veeraj-singh/devmatch/internal/domain"
)

// messageTable selects the append log backing a conversation. Match and
// workspace chats persist into independent tables that share the same
// column scheme.
func messageTable(conv domain.ConversationID) (table, convColumn string) {
	if conv.Kind == domain.ConversationWorkspace {
		return "workspace_messages", "workspace_id"
	}
	return "match_messages", "match_id"
}

// AppendMessage durably stores a chat message and returns it with its
// server-assigned id and timestamp. Appends are serialized so ids within
// one log strictly increase in persistence order.
func (s *SQLiteStore) AppendMessage(ctx context.Context, conv domain.ConversationID, senderID, body string) (*domain.Message, error) {
	s.messageMu.Lock()
	defer s.messageMu.Unlock()

	table, convColumn := messageTable(conv)
	now := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin message transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO `+table+` (`+convColumn+`, sender_id, body, created_at)
		VALUES (?, ?, ?, ?)`,
		conv.ID, senderID, body, now.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("message insert id: %w", err)
	}

	// Direct-message conversations carry last-message metadata on the
	// match row and count unread messages for the side that did not
	// send.
	if conv.Kind == domain.ConversationMatch {
		_, err = tx.ExecContext(ctx, `
			UPDATE matches SET
				last_message = ?,
				last_message_at = ?,
				unread_receiver = unread_receiver + (CASE WHEN CAST(sender_id AS TEXT) = ? THEN 1 ELSE 0 END),
				unread_sender = unread_sender + (CASE WHEN CAST(receiver_id AS TEXT) = ? THEN 1 ELSE 0 END)
			WHERE id = ?`,
			body, now.UnixMilli(), senderID, senderID, conv.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("update match metadata: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit message transaction: %w", err)
	}

	return &domain.Message{
		ID:           id,
		Conversation: conv,
		SenderID:     senderID,
		Body:         body,
		CreatedAt:    time.UnixMilli(now.UnixMilli()),
	}, nil
}

// ListMessages reads a page of a conversation's history, newest first.
// The bool result reports whether older pages remain.
func (s *SQLiteStore) ListMessages(ctx context.Context, conv domain.ConversationID, page, limit int) ([]*domain.Message, bool, error) {
	table, convColumn := messageTable(conv)

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+table+` WHERE `+convColumn+` = ?`, conv.ID,
	).Scan(&total)
	if err != nil {
		return nil, false, fmt.Errorf("count messages: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_id, body, created_at
		FROM `+table+` WHERE `+convColumn+` = ?
		ORDER BY id DESC LIMIT ? OFFSET ?`,
		conv.ID, limit, page*limit,
	)
	if err != nil {
		return nil, false, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*domain.Message, 0)
	for rows.Next() {
		var msg domain.Message
		var createdAt int64
		if err := rows.Scan(&msg.ID, &msg.SenderID, &msg.Body, &createdAt); err != nil {
			return nil, false, fmt.Errorf("scan message row: %w", err)
		}
		msg.Conversation = conv
		msg.CreatedAt = time.UnixMilli(createdAt)
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate messages: %w", err)
	}

	hasMore := (page+1)*limit < total
	return messages, hasMore, nil
}
