package crypto

import (
	"crypto/ecdh"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// wrapKeyInfo binds derived wrapping keys to this protocol and version.
const wrapKeyInfo = "peerchat session key wrap v1"

// WrappedKey is a session key sealed for a single recipient. A fresh
// ephemeral X25519 keypair is used per wrap, so two wraps of the same session
// key never produce related output.
type WrappedKey struct {
	EphemeralPublicKey []byte `json:"ephemeral_public_key"`
	Nonce              []byte `json:"nonce"`
	Sealed             []byte `json:"sealed"`
}

func deriveWrappingKey(sharedSecret, ephemeralPublic, recipientPublic []byte) ([]byte, error) {
	salt := append(append([]byte{}, ephemeralPublic...), recipientPublic...)
	reader := hkdf.New(sha256.New, sharedSecret, salt, []byte(wrapKeyInfo))

	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive wrapping key: %w", err)
	}

	return key, nil
}

// WrapSessionKey seals a session key for the holder of the recipient private key.
func WrapSessionKey(recipient *ecdh.PublicKey, sessionKey []byte) (WrappedKey, error) {
	if err := validSessionKey(sessionKey); err != nil {
		return WrappedKey{}, err
	}

	ephemeral, err := GenerateKeyPair()
	if err != nil {
		return WrappedKey{}, err
	}

	sharedSecret, err := ephemeral.ECDH(recipient)
	if err != nil {
		return WrappedKey{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	wrappingKey, err := deriveWrappingKey(sharedSecret, ephemeral.PublicKey().Bytes(), recipient.Bytes())
	if err != nil {
		return WrappedKey{}, err
	}

	sealed, nonce, err := Encrypt(wrappingKey, sessionKey)
	if err != nil {
		return WrappedKey{}, fmt.Errorf("seal session key: %w", err)
	}

	return WrappedKey{
		EphemeralPublicKey: ephemeral.PublicKey().Bytes(),
		Nonce:              nonce,
		Sealed:             sealed,
	}, nil
}

// UnwrapSessionKey recovers a wrapped session key using the recipient private
// key. A wrong private key or corrupted wrapped key yields ErrInvalidKey.
func UnwrapSessionKey(recipient *ecdh.PrivateKey, wrapped WrappedKey) ([]byte, error) {
	ephemeralPublic, err := ParsePublicKey(wrapped.EphemeralPublicKey)
	if err != nil {
		return nil, err
	}

	sharedSecret, err := recipient.ECDH(ephemeralPublic)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	wrappingKey, err := deriveWrappingKey(sharedSecret, wrapped.EphemeralPublicKey, recipient.PublicKey().Bytes())
	if err != nil {
		return nil, err
	}

	sessionKey, err := Decrypt(wrappingKey, wrapped.Nonce, wrapped.Sealed)
	if err != nil {
		return nil, fmt.Errorf("%w: unwrap session key: %v", ErrInvalidKey, err)
	}

	return sessionKey, nil
}
