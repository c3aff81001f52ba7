package models

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"

	"peerchat/crypto"
)

// Contact represents a known remote user and the public key messages to them
// are sealed under.
type Contact struct {
	ContactID         string `json:"contact_id"`
	Nickname          string `json:"nickname"`
	PublicKeyBase64   string `json:"public_key"`
	KeyFingerprint    string `json:"key_fingerprint"`
	AddedTimestamp    int64  `json:"added_timestamp"`
	LastSeenTimestamp int64  `json:"last_seen_timestamp"`
}

// NewContact registers a contact under a fresh identifier, validating and
// fingerprinting the supplied X25519 public key.
func NewContact(nickname string, publicKey []byte) (*Contact, error) {
	parsed, err := crypto.ParsePublicKey(publicKey)
	if err != nil {
		return nil, fmt.Errorf("contact %q: %w", nickname, err)
	}

	return &Contact{
		ContactID:       uuid.NewString(),
		Nickname:        nickname,
		PublicKeyBase64: base64.StdEncoding.EncodeToString(publicKey),
		KeyFingerprint:  crypto.KeyFingerprint(parsed),
		AddedTimestamp:  time.Now().Unix(),
	}, nil
}

// PublicKey returns the contact's raw public key bytes, the input to sealing
// a message for this contact.
func (c *Contact) PublicKey() ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(c.PublicKeyBase64)
	if err != nil {
		return nil, fmt.Errorf("decode public key for contact %q: %w", c.ContactID, err)
	}
	return raw, nil
}
