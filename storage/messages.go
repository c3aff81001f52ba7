package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"peerchat/message"
)

// SaveMessage inserts a plaintext message row and assigns its database ID.
func (s *Store) SaveMessage(m *message.Plain) error {
	if m == nil {
		return errors.New("message is required")
	}
	if m.HasDatabaseID() {
		return fmt.Errorf("message already stored with id %d", m.DatabaseID())
	}

	isCommand := 0
	if m.IsCommand() {
		isCommand = 1
	}

	res, err := s.db.Exec(
		`INSERT INTO messages (
			conversation_id,
			sender_id,
			timestamp,
			is_command,
			content,
			sent
		) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ConversationID(),
		m.SenderID(),
		m.Timestamp().Unix(),
		isCommand,
		m.Content(),
		m.Sent(),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read inserted message id: %w", err)
	}
	m.SetDatabaseID(id)

	return nil
}

// GetConversationMessages returns a conversation's messages in timeline
// order: timestamp ascending, then sender identifier.
func (s *Store) GetConversationMessages(conversationID string, limits message.Limits) ([]*message.Plain, error) {
	if conversationID == "" {
		return nil, errors.New("conversation_id is required")
	}

	rows, err := s.db.Query(
		`SELECT id, conversation_id, sender_id, timestamp, is_command, content, sent
		FROM messages
		WHERE conversation_id = ?
		ORDER BY timestamp ASC, sender_id ASC, id ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("get messages for conversation %q: %w", conversationID, err)
	}
	defer rows.Close()

	messages := make([]*message.Plain, 0)
	for rows.Next() {
		m, err := scanMessage(rows, limits)
		if err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message rows: %w", err)
	}

	return messages, nil
}

// GetMessageByID fetches one message by its database ID.
func (s *Store) GetMessageByID(id int64, limits message.Limits) (*message.Plain, error) {
	if id < 0 {
		return nil, errors.New("database id is required")
	}

	row := s.db.QueryRow(
		`SELECT id, conversation_id, sender_id, timestamp, is_command, content, sent
		FROM messages
		WHERE id = ?`,
		id,
	)

	m, err := scanMessage(row, limits)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get message %d: %w", id, err)
	}
	return m, nil
}

// UpdateSent stores a message's transmission counter, clamped to zero.
func (s *Store) UpdateSent(id int64, sent int) error {
	if id < 0 {
		return errors.New("database id is required")
	}
	if sent < 0 {
		sent = 0
	}

	res, err := s.db.Exec(
		`UPDATE messages SET sent = ? WHERE id = ?`,
		sent,
		id,
	)
	if err != nil {
		return fmt.Errorf("update sent counter for message %d: %w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected for sent update %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteMessage removes one message by its database ID.
func (s *Store) DeleteMessage(id int64) error {
	if id < 0 {
		return errors.New("database id is required")
	}

	res, err := s.db.Exec(`DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete message %d: %w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected for delete %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(row scanner, limits message.Limits) (*message.Plain, error) {
	var (
		id             int64
		conversationID string
		senderID       string
		timestamp      int64
		isCommand      int
		content        string
		sent           int
	)

	if err := row.Scan(&id, &conversationID, &senderID, &timestamp, &isCommand, &content, &sent); err != nil {
		return nil, err
	}

	m, err := message.Restore(content, conversationID, senderID, isCommand == 1,
		time.Unix(timestamp, 0), id, sent, limits)
	if err != nil {
		return nil, fmt.Errorf("restore message %d: %w", id, err)
	}

	return m, nil
}
