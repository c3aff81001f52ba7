package models

import (
	"crypto/ecdh"
	"errors"
)

// Identity is the local user: the identifier other peers address messages to
// and the private key that opens messages sealed for this user.
type Identity struct {
	OwnID    string
	Nickname string

	privateKey *ecdh.PrivateKey
}

// NewIdentity binds a user identifier to its X25519 private key.
func NewIdentity(ownID, nickname string, privateKey *ecdh.PrivateKey) (*Identity, error) {
	if ownID == "" {
		return nil, errors.New("models: identity requires an id")
	}
	if privateKey == nil {
		return nil, errors.New("models: identity requires a private key")
	}

	return &Identity{
		OwnID:      ownID,
		Nickname:   nickname,
		privateKey: privateKey,
	}, nil
}

// PrivateKey returns the raw private key bytes, the input to opening a
// message sealed for this identity.
func (i *Identity) PrivateKey() []byte {
	return i.privateKey.Bytes()
}

// PublicKey returns the raw public key bytes peers seal messages under.
func (i *Identity) PublicKey() []byte {
	return i.privateKey.PublicKey().Bytes()
}
