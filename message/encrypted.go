package message

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"peerchat/crypto"
)

// envelopeVersion tags the encrypted envelope layout. A decode failure after
// successful authentication indicates a version mismatch or tampering and is
// always reported.
const envelopeVersion = 1

// Encrypted is a message sealed for a single recipient. The sender,
// conversation and timestamp stay in cleartext so the message can be routed
// without decryption; content and command flag live inside the ciphertext.
type Encrypted struct {
	conversationID string
	senderID       string
	timestamp      time.Time
	wrappedKey     crypto.WrappedKey
	nonce          []byte
	ciphertext     []byte
	sent           int
	databaseID     int64
	limits         Limits
}

type encryptedEnvelope struct {
	Version        int               `json:"version"`
	ConversationID string            `json:"conversation_id"`
	SenderID       string            `json:"sender_id"`
	Timestamp      int64             `json:"timestamp"`
	WrappedKey     crypto.WrappedKey `json:"wrapped_key"`
	Nonce          []byte            `json:"nonce"`
	Ciphertext     []byte            `json:"ciphertext"`
}

// DecodeEncrypted parses an encrypted envelope received from a peer. The
// limits are applied when the payload is later decrypted and decoded.
func DecodeEncrypted(envelope string, limits Limits) (*Encrypted, error) {
	var env encryptedEnvelope
	if err := json.Unmarshal([]byte(envelope), &env); err != nil {
		return nil, formatErrorf("envelope is not valid JSON: %v", err)
	}
	if env.Version != envelopeVersion {
		return nil, formatErrorf("unsupported envelope version %d", env.Version)
	}
	if err := validateID("conversation id", env.ConversationID); err != nil {
		return nil, err
	}
	if err := validateID("sender id", env.SenderID); err != nil {
		return nil, err
	}
	if env.Timestamp < 0 {
		return nil, formatErrorf("timestamp precedes the Unix epoch")
	}
	if len(env.Ciphertext) == 0 {
		return nil, formatErrorf("envelope carries no ciphertext")
	}

	return &Encrypted{
		conversationID: env.ConversationID,
		senderID:       env.SenderID,
		timestamp:      time.Unix(env.Timestamp, 0),
		wrappedKey:     env.WrappedKey,
		nonce:          env.Nonce,
		ciphertext:     env.Ciphertext,
		databaseID:     UnassignedDatabaseID,
		limits:         limits,
	}, nil
}

// Content returns the ciphertext in base64. The clear text is only reachable
// through ToPlain with the matching private key.
func (e *Encrypted) Content() string {
	return base64.StdEncoding.EncodeToString(e.ciphertext)
}

// ConversationID returns the cleartext routing conversation identifier.
func (e *Encrypted) ConversationID() string { return e.conversationID }

// SenderID returns the cleartext routing sender identifier.
func (e *Encrypted) SenderID() string { return e.senderID }

// Timestamp returns the cleartext routing timestamp at second resolution.
func (e *Encrypted) Timestamp() time.Time { return e.timestamp }

// DatabaseID returns the storage handle, or UnassignedDatabaseID.
func (e *Encrypted) DatabaseID() int64 { return e.databaseID }

// IsCommand always reports false; the command flag is part of the sealed
// payload and unknown without decryption.
func (e *Encrypted) IsCommand() bool { return false }

// IsSent reports whether the message has been transmitted at least once.
func (e *Encrypted) IsSent() bool { return e.sent > 0 }

// HasDatabaseID reports whether a storage handle has been assigned.
func (e *Encrypted) HasDatabaseID() bool { return e.databaseID > UnassignedDatabaseID }

// SetSent updates the transmission counter, clamped to zero.
func (e *Encrypted) SetSent(sent int) {
	e.sent = clampSent(sent)
}

// SetDatabaseID updates the storage handle. Negative values mean unassigned.
func (e *Encrypted) SetDatabaseID(id int64) {
	e.databaseID = clampDatabaseID(id)
}

// Encode returns the canonical envelope encoding of the encrypted message.
func (e *Encrypted) Encode() string {
	raw, err := json.Marshal(encryptedEnvelope{
		Version:        envelopeVersion,
		ConversationID: e.conversationID,
		SenderID:       e.senderID,
		Timestamp:      e.timestamp.Unix(),
		WrappedKey:     e.wrappedKey,
		Nonce:          e.nonce,
		Ciphertext:     e.ciphertext,
	})
	if err != nil {
		// Marshaling a plain struct of strings and byte slices cannot fail.
		panic("message: encode encrypted envelope: " + err.Error())
	}

	return string(raw)
}

// ToEncrypted returns the message itself; an encrypted message cannot be
// re-sealed for another recipient without the plaintext.
func (e *Encrypted) ToEncrypted(_ []byte, _ int) (*Encrypted, error) {
	return e, nil
}

// ToCommand fails; the command flag is unknown until decryption.
func (e *Encrypted) ToCommand() (*Command, error) {
	return nil, formatErrorf("message is not a command")
}
