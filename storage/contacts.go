package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"peerchat/models"
)

// AddContact inserts a new contact row.
func (s *Store) AddContact(contact models.Contact) error {
	if contact.ContactID == "" {
		return errors.New("contact_id is required")
	}
	if contact.PublicKeyBase64 == "" {
		return errors.New("public_key is required")
	}

	_, err := s.db.Exec(
		`INSERT INTO contacts (
			contact_id,
			nickname,
			public_key,
			key_fingerprint,
			added_timestamp,
			last_seen_timestamp
		) VALUES (?, ?, ?, ?, ?, ?)`,
		contact.ContactID,
		contact.Nickname,
		contact.PublicKeyBase64,
		contact.KeyFingerprint,
		contact.AddedTimestamp,
		nullableTimestamp(contact.LastSeenTimestamp),
	)
	if err != nil {
		return fmt.Errorf("insert contact %q: %w", contact.ContactID, err)
	}

	return nil
}

// GetContact fetches one contact by ID.
func (s *Store) GetContact(contactID string) (*models.Contact, error) {
	if contactID == "" {
		return nil, errors.New("contact_id is required")
	}

	row := s.db.QueryRow(
		`SELECT contact_id, nickname, public_key, key_fingerprint, added_timestamp, last_seen_timestamp
		FROM contacts
		WHERE contact_id = ?`,
		contactID,
	)

	contact, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get contact %q: %w", contactID, err)
	}
	return contact, nil
}

// ListContacts returns all contacts ordered by nickname.
func (s *Store) ListContacts() ([]models.Contact, error) {
	rows, err := s.db.Query(
		`SELECT contact_id, nickname, public_key, key_fingerprint, added_timestamp, last_seen_timestamp
		FROM contacts
		ORDER BY nickname ASC, contact_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]models.Contact, 0)
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact row: %w", err)
		}
		contacts = append(contacts, *contact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact rows: %w", err)
	}

	return contacts, nil
}

// UpdateContactLastSeen records when a contact was last heard from.
func (s *Store) UpdateContactLastSeen(contactID string, lastSeen int64) error {
	if contactID == "" {
		return errors.New("contact_id is required")
	}

	res, err := s.db.Exec(
		`UPDATE contacts SET last_seen_timestamp = ? WHERE contact_id = ?`,
		lastSeen,
		contactID,
	)
	if err != nil {
		return fmt.Errorf("update last seen for contact %q: %w", contactID, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected for last seen update %q: %w", contactID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// AddConversation inserts a new conversation row.
func (s *Store) AddConversation(conversation models.Conversation) error {
	if conversation.ConversationID == "" {
		return errors.New("conversation_id is required")
	}

	contactIDs, err := json.Marshal(conversation.ContactIDs)
	if err != nil {
		return fmt.Errorf("encode participants for conversation %q: %w", conversation.ConversationID, err)
	}

	_, err = s.db.Exec(
		`INSERT INTO conversations (conversation_id, title, contact_ids, created_timestamp)
		VALUES (?, ?, ?, ?)`,
		conversation.ConversationID,
		conversation.Title,
		string(contactIDs),
		conversation.CreatedTimestamp,
	)
	if err != nil {
		return fmt.Errorf("insert conversation %q: %w", conversation.ConversationID, err)
	}

	return nil
}

// GetConversation fetches one conversation by ID.
func (s *Store) GetConversation(conversationID string) (*models.Conversation, error) {
	if conversationID == "" {
		return nil, errors.New("conversation_id is required")
	}

	var (
		conversation models.Conversation
		contactIDs   string
	)
	err := s.db.QueryRow(
		`SELECT conversation_id, title, contact_ids, created_timestamp
		FROM conversations
		WHERE conversation_id = ?`,
		conversationID,
	).Scan(&conversation.ConversationID, &conversation.Title, &contactIDs, &conversation.CreatedTimestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get conversation %q: %w", conversationID, err)
	}

	if err := json.Unmarshal([]byte(contactIDs), &conversation.ContactIDs); err != nil {
		return nil, fmt.Errorf("decode participants for conversation %q: %w", conversationID, err)
	}

	return &conversation, nil
}

func scanContact(row scanner) (*models.Contact, error) {
	var (
		contact  models.Contact
		lastSeen sql.NullInt64
	)

	if err := row.Scan(
		&contact.ContactID,
		&contact.Nickname,
		&contact.PublicKeyBase64,
		&contact.KeyFingerprint,
		&contact.AddedTimestamp,
		&lastSeen,
	); err != nil {
		return nil, err
	}

	if lastSeen.Valid {
		contact.LastSeenTimestamp = lastSeen.Int64
	}

	return &contact, nil
}

func nullableTimestamp(ts int64) sql.NullInt64 {
	if ts == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: ts, Valid: true}
}
