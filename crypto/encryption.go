package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
)

// Supported session key lengths in bits.
const (
	SessionKeyBits128 = 128
	SessionKeyBits192 = 192
	SessionKeyBits256 = 256
)

// ValidSessionKeyBits reports whether bits is a supported AES key length.
func ValidSessionKeyBits(bits int) bool {
	switch bits {
	case SessionKeyBits128, SessionKeyBits192, SessionKeyBits256:
		return true
	default:
		return false
	}
}

// NewSessionKey generates a fresh random symmetric key of the given bit length.
func NewSessionKey(bits int) ([]byte, error) {
	if !ValidSessionKeyBits(bits) {
		return nil, fmt.Errorf("invalid session key length: %d bits", bits)
	}

	key := make([]byte, bits/8)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate session key: %w", err)
	}

	return key, nil
}

func validSessionKey(key []byte) error {
	switch len(key) {
	case 16, 24, 32:
		return nil
	default:
		return fmt.Errorf("invalid session key length: got %d bytes", len(key))
	}
}

// Encrypt encrypts plaintext with AES-GCM under the session key and returns
// ciphertext and nonce. The session key must be 16, 24 or 32 bytes.
func Encrypt(sessionKey, plaintext []byte) (ciphertext, nonce []byte, err error) {
	if err := validSessionKey(sessionKey); err != nil {
		return nil, nil, err
	}

	block, err := aes.NewCipher(sessionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("create AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, fmt.Errorf("create GCM: %w", err)
	}

	nonce = make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext = aead.Seal(nil, nonce, plaintext, nil)
	return ciphertext, nonce, nil
}

// Decrypt authenticates and decrypts AES-GCM ciphertext using the provided
// nonce. Authentication failure is reported as ErrIntegrity and the payload
// is never returned.
func Decrypt(sessionKey, nonce, ciphertext []byte) ([]byte, error) {
	if err := validSessionKey(sessionKey); err != nil {
		return nil, err
	}
	if len(ciphertext) == 0 {
		return nil, errors.New("ciphertext is required")
	}

	block, err := aes.NewCipher(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("invalid nonce length: got %d want %d", len(nonce), aead.NonceSize())
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}

	return plaintext, nil
}
