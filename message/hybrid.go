package message

import (
	"fmt"

	"peerchat/crypto"
)

// ToEncrypted seals the message for the recipient. A fresh session key of
// sessionKeyBits (128, 192 or 256) encrypts the canonical wire payload under
// AES-GCM; the session key is wrapped under the recipient X25519 public key.
// No session key is ever reused across calls.
func (m *Plain) ToEncrypted(recipientPublicKey []byte, sessionKeyBits int) (*Encrypted, error) {
	// Key material is validated before any session key exists, so a
	// key-format failure cannot be confused with a cipher failure.
	recipient, err := crypto.ParsePublicKey(recipientPublicKey)
	if err != nil {
		return nil, err
	}
	if !crypto.ValidSessionKeyBits(sessionKeyBits) {
		return nil, fmt.Errorf("invalid session key length: %d bits", sessionKeyBits)
	}

	sessionKey, err := crypto.NewSessionKey(sessionKeyBits)
	if err != nil {
		return nil, err
	}

	ciphertext, nonce, err := crypto.Encrypt(sessionKey, []byte(m.Encode()))
	if err != nil {
		return nil, fmt.Errorf("encrypt payload: %w", err)
	}

	wrapped, err := crypto.WrapSessionKey(recipient, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("wrap session key: %w", err)
	}

	return &Encrypted{
		conversationID: m.conversationID,
		senderID:       m.senderID,
		timestamp:      m.timestamp,
		wrappedKey:     wrapped,
		nonce:          nonce,
		ciphertext:     ciphertext,
		sent:           m.sent,
		databaseID:     UnassignedDatabaseID,
		limits:         m.limits,
	}, nil
}

// ToPlain unwraps the session key with the recipient private key, then
// authenticates and decrypts the payload. Authentication failure surfaces as
// crypto.ErrIntegrity before any byte of the payload is parsed; a payload
// that authenticates but does not decode signals a protocol mismatch or
// tampering and is reported as a FormatError.
func (e *Encrypted) ToPlain(recipientPrivateKey []byte) (*Plain, error) {
	recipient, err := crypto.ParsePrivateKey(recipientPrivateKey)
	if err != nil {
		return nil, err
	}

	sessionKey, err := crypto.UnwrapSessionKey(recipient, e.wrappedKey)
	if err != nil {
		return nil, err
	}

	payload, err := crypto.Decrypt(sessionKey, e.nonce, e.ciphertext)
	if err != nil {
		return nil, err
	}

	plain, err := Decode(string(payload), e.limits)
	if err != nil {
		return nil, formatErrorf("decrypted payload does not decode: %v", err)
	}

	// Cleartext routing metadata must agree with the sealed payload.
	if plain.senderID != e.senderID || plain.conversationID != e.conversationID || !plain.timestamp.Equal(e.timestamp) {
		return nil, formatErrorf("routing metadata does not match sealed payload")
	}

	return plain, nil
}
