package message

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// UnassignedDatabaseID marks a message that has no persistence handle yet.
const UnassignedDatabaseID int64 = -1

// Message is the capability set shared by the plaintext, encrypted and
// command variants of a chat message.
//
// Conversions return new values; no conversion mutates its receiver.
type Message interface {
	// Content returns the clear text for plaintext variants and an opaque
	// ciphertext rendering for encrypted ones.
	Content() string
	ConversationID() string
	SenderID() string
	// Timestamp is the creation time at second resolution.
	Timestamp() time.Time
	DatabaseID() int64

	IsCommand() bool
	IsSent() bool
	HasDatabaseID() bool

	// Encode returns the canonical wire encoding. Two messages are equal
	// iff their encodings are equal.
	Encode() string

	// ToEncrypted seals the message for the holder of the recipient private
	// key. The raw public key material is validated before any session key
	// is generated; structurally invalid material yields crypto.ErrInvalidKey.
	ToEncrypted(recipientPublicKey []byte, sessionKeyBits int) (*Encrypted, error)

	// ToPlain recovers the plaintext variant. Plaintext variants ignore the
	// key; the encrypted variant requires the matching private key.
	ToPlain(recipientPrivateKey []byte) (*Plain, error)

	// ToCommand parses the content into a command. Valid only when
	// IsCommand reports true.
	ToCommand() (*Command, error)
}

// Plain is a decrypted chat message. It must never leave the local process
// unencrypted.
type Plain struct {
	content        string
	conversationID string
	senderID       string
	timestamp      time.Time
	command        bool
	sent           int
	databaseID     int64
	limits         Limits
}

// New constructs a plaintext message stamped with the current time. The
// command flag is derived from a leading '/'.
func New(content, conversationID, senderID string, limits Limits) (*Plain, error) {
	return Restore(content, conversationID, senderID, strings.HasPrefix(content, "/"),
		time.Now(), UnassignedDatabaseID, 0, limits)
}

// Restore reconstructs a plaintext message from explicit fields, for example
// rows loaded from storage. All construction-time invariants are re-checked
// against the supplied limits.
func Restore(content, conversationID, senderID string, command bool, timestamp time.Time, databaseID int64, sent int, limits Limits) (*Plain, error) {
	if err := validateContent(content, limits); err != nil {
		return nil, err
	}
	if err := validateID("conversation id", conversationID); err != nil {
		return nil, err
	}
	if err := validateID("sender id", senderID); err != nil {
		return nil, err
	}
	if command && !strings.HasPrefix(content, "/") {
		return nil, formatErrorf("command flag set but content does not start with '/'")
	}
	if timestamp.Unix() < 0 {
		return nil, formatErrorf("timestamp precedes the Unix epoch")
	}

	m := &Plain{
		content:        content,
		conversationID: conversationID,
		senderID:       senderID,
		command:        command,
		timestamp:      time.Unix(timestamp.Unix(), 0),
		databaseID:     clampDatabaseID(databaseID),
		sent:           clampSent(sent),
		limits:         limits,
	}

	if err := validateHeader(m.header(), limits); err != nil {
		return nil, err
	}

	return m, nil
}

func clampDatabaseID(id int64) int64 {
	if id < 0 {
		return UnassignedDatabaseID
	}
	return id
}

func clampSent(sent int) int {
	if sent < 0 {
		return 0
	}
	return sent
}

func (m *Plain) header() string {
	encoded := m.Encode()
	return encoded[:strings.LastIndexByte(encoded, Delimiter)]
}

// Content returns the clear message text.
func (m *Plain) Content() string { return m.content }

// ConversationID returns the conversation this message belongs to.
func (m *Plain) ConversationID() string { return m.conversationID }

// SenderID returns the sender's identifier.
func (m *Plain) SenderID() string { return m.senderID }

// Timestamp returns the creation time at second resolution.
func (m *Plain) Timestamp() time.Time { return m.timestamp }

// DatabaseID returns the storage handle, or UnassignedDatabaseID.
func (m *Plain) DatabaseID() int64 { return m.databaseID }

// Sent returns the transmission counter.
func (m *Plain) Sent() int { return m.sent }

// Limits returns the validation bounds this message was constructed with.
func (m *Plain) Limits() Limits { return m.limits }

// IsCommand reports whether the message is a command.
func (m *Plain) IsCommand() bool { return m.command }

// IsSent reports whether the message has been transmitted at least once.
func (m *Plain) IsSent() bool { return m.sent > 0 }

// HasDatabaseID reports whether a storage handle has been assigned.
func (m *Plain) HasDatabaseID() bool { return m.databaseID > UnassignedDatabaseID }

// Encode returns the canonical wire encoding of the message.
func (m *Plain) Encode() string {
	return encodeWire(m.timestamp, m.conversationID, m.senderID, m.command, m.content)
}

// SetContent replaces the content, validating it against the message limits.
func (m *Plain) SetContent(content string) error {
	if err := validateContent(content, m.limits); err != nil {
		return err
	}
	if m.command && !strings.HasPrefix(content, "/") {
		return formatErrorf("command flag set but content does not start with '/'")
	}

	m.content = content
	return nil
}

// SetCommand updates the command flag. Setting it requires content starting
// with '/'.
func (m *Plain) SetCommand(command bool) error {
	if command && !strings.HasPrefix(m.content, "/") {
		return formatErrorf("command flag set but content does not start with '/'")
	}

	m.command = command
	return nil
}

// SetSent updates the transmission counter, clamped to zero.
func (m *Plain) SetSent(sent int) {
	m.sent = clampSent(sent)
}

// SetDatabaseID updates the storage handle. Negative values mean unassigned.
func (m *Plain) SetDatabaseID(id int64) {
	m.databaseID = clampDatabaseID(id)
}

// SetSenderID replaces the sender identifier, re-checking the header bounds.
func (m *Plain) SetSenderID(senderID string) error {
	if err := validateID("sender id", senderID); err != nil {
		return err
	}

	candidate := encodeWire(m.timestamp, m.conversationID, senderID, m.command, m.content)
	header := candidate[:strings.LastIndexByte(candidate, Delimiter)]
	if err := validateHeader(header, m.limits); err != nil {
		return err
	}

	m.senderID = senderID
	return nil
}

// ToPlain returns the message itself.
func (m *Plain) ToPlain(_ []byte) (*Plain, error) {
	return m, nil
}

// Equal reports whether two messages have identical canonical encodings.
// Encoding is the sole equality witness; sent counters and storage handles
// do not participate.
func Equal(a, b Message) bool {
	return a.Encode() == b.Encode()
}

// Hash returns the hex SHA-256 digest of the canonical encoding, usable as a
// deduplication key.
func Hash(m Message) string {
	sum := sha256.Sum256([]byte(m.Encode()))
	return hex.EncodeToString(sum[:])
}
