package storage

import (
	"errors"
	"fmt"
	"time"

	"peerchat/message"
)

// MarkSeen records a message's canonical-encoding digest for duplicate
// detection of re-delivered messages.
func (s *Store) MarkSeen(m message.Message, receivedAt int64) error {
	if m == nil {
		return errors.New("message is required")
	}
	if receivedAt == 0 {
		receivedAt = time.Now().Unix()
	}

	hash := message.Hash(m)
	_, err := s.db.Exec(
		`INSERT INTO seen_messages (encoding_hash, received_at)
		VALUES (?, ?)
		ON CONFLICT(encoding_hash) DO UPDATE SET received_at = excluded.received_at`,
		hash,
		receivedAt,
	)
	if err != nil {
		return fmt.Errorf("insert seen message %q: %w", hash, err)
	}

	return nil
}

// HasSeen returns true if an equal message has already been recorded.
// Equality follows the canonical encoding, so a re-decoded duplicate matches
// even when it carries a different sent counter or database ID.
func (s *Store) HasSeen(m message.Message) (bool, error) {
	if m == nil {
		return false, errors.New("message is required")
	}

	var exists int
	if err := s.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM seen_messages WHERE encoding_hash = ?)`,
		message.Hash(m),
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check seen message: %w", err)
	}

	return exists == 1, nil
}

// PruneSeen removes seen_messages rows older than the cutoff timestamp.
func (s *Store) PruneSeen(cutoffTimestamp int64) (int64, error) {
	if cutoffTimestamp <= 0 {
		return 0, errors.New("cutoff timestamp must be > 0")
	}

	res, err := s.db.Exec(`DELETE FROM seen_messages WHERE received_at < ?`, cutoffTimestamp)
	if err != nil {
		return 0, fmt.Errorf("prune seen messages: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read rows affected for seen prune: %w", err)
	}

	return rowsAffected, nil
}
