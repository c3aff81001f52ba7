package models

import (
	"bytes"
	"errors"
	"testing"

	"peerchat/crypto"
)

func TestNewContactValidatesAndFingerprintsKey(t *testing.T) {
	key, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}

	contact, err := NewContact("alice", key.PublicKey().Bytes())
	if err != nil {
		t.Fatalf("NewContact failed: %v", err)
	}
	if contact.ContactID == "" {
		t.Fatalf("expected a generated contact id")
	}
	if contact.KeyFingerprint != crypto.KeyFingerprint(key.PublicKey()) {
		t.Fatalf("fingerprint does not match the supplied key")
	}

	raw, err := contact.PublicKey()
	if err != nil {
		t.Fatalf("PublicKey failed: %v", err)
	}
	if !bytes.Equal(raw, key.PublicKey().Bytes()) {
		t.Fatalf("public key accessor does not round trip")
	}
}

func TestNewContactRejectsInvalidKey(t *testing.T) {
	if _, err := NewContact("mallory", make([]byte, 16)); !errors.Is(err, crypto.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestIdentityExposesKeyMaterial(t *testing.T) {
	key, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}

	identity, err := NewIdentity("own-id", "me", key)
	if err != nil {
		t.Fatalf("NewIdentity failed: %v", err)
	}

	if !bytes.Equal(identity.PrivateKey(), key.Bytes()) {
		t.Fatalf("private key accessor does not match the supplied key")
	}
	if !bytes.Equal(identity.PublicKey(), key.PublicKey().Bytes()) {
		t.Fatalf("public key accessor does not match the supplied key")
	}

	if _, err := NewIdentity("", "me", key); err == nil {
		t.Fatalf("expected empty id to be rejected")
	}
	if _, err := NewIdentity("own-id", "me", nil); err == nil {
		t.Fatalf("expected nil key to be rejected")
	}
}
