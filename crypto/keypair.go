package crypto

import (
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

const (
	x25519PrivatePEMType = "X25519 PRIVATE KEY"
	x25519PublicPEMType  = "X25519 PUBLIC KEY"

	// X25519KeySize is the raw byte length of X25519 public and private keys.
	X25519KeySize = 32
)

var (
	// ErrInvalidKey indicates asymmetric key material is structurally wrong for X25519.
	ErrInvalidKey = errors.New("crypto: invalid key material")

	// ErrIntegrity indicates an authenticated payload failed verification.
	ErrIntegrity = errors.New("crypto: message authentication failed")
)

var x25519Curve = ecdh.X25519()

// GenerateKeyPair creates a new X25519 private key.
func GenerateKeyPair() (*ecdh.PrivateKey, error) {
	privateKey, err := x25519Curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate X25519 private key: %w", err)
	}
	return privateKey, nil
}

// ParsePublicKey validates raw public key bytes and returns the parsed key.
func ParsePublicKey(raw []byte) (*ecdh.PublicKey, error) {
	if len(raw) != X25519KeySize {
		return nil, fmt.Errorf("%w: public key size %d, want %d", ErrInvalidKey, len(raw), X25519KeySize)
	}

	publicKey, err := x25519Curve.NewPublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	return publicKey, nil
}

// ParsePrivateKey validates raw private key bytes and returns the parsed key.
func ParsePrivateKey(raw []byte) (*ecdh.PrivateKey, error) {
	if len(raw) != X25519KeySize {
		return nil, fmt.Errorf("%w: private key size %d, want %d", ErrInvalidKey, len(raw), X25519KeySize)
	}

	privateKey, err := x25519Curve.NewPrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	return privateKey, nil
}

// EnsurePrivateKey loads an X25519 private key from disk, generating it if absent.
func EnsurePrivateKey(path string) (*ecdh.PrivateKey, error) {
	privateKey, err := LoadPrivateKey(path)
	if err == nil {
		return privateKey, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	privateKey, err = GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	if err := SavePrivateKey(path, privateKey); err != nil {
		return nil, err
	}

	return privateKey, nil
}

// LoadPrivateKey reads an X25519 private key from PEM.
func LoadPrivateKey(path string) (*ecdh.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read X25519 private key: %w", err)
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("decode X25519 private PEM: no PEM block")
	}
	if block.Type != x25519PrivatePEMType {
		return nil, fmt.Errorf("decode X25519 private PEM: unexpected type %q", block.Type)
	}

	return ParsePrivateKey(block.Bytes)
}

// SavePrivateKey writes an X25519 private key PEM file with 0600 permissions.
func SavePrivateKey(path string, key *ecdh.PrivateKey) error {
	block := &pem.Block{
		Type:  x25519PrivatePEMType,
		Bytes: key.Bytes(),
	}

	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		return fmt.Errorf("write X25519 private key: %w", err)
	}

	return nil
}

// LoadPublicKey reads an X25519 public key from PEM.
func LoadPublicKey(path string) (*ecdh.PublicKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read X25519 public key: %w", err)
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("decode X25519 public PEM: no PEM block")
	}
	if block.Type != x25519PublicPEMType {
		return nil, fmt.Errorf("decode X25519 public PEM: unexpected type %q", block.Type)
	}

	return ParsePublicKey(block.Bytes)
}

// SavePublicKey writes an X25519 public key PEM file.
func SavePublicKey(path string, key *ecdh.PublicKey) error {
	block := &pem.Block{
		Type:  x25519PublicPEMType,
		Bytes: key.Bytes(),
	}

	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o644); err != nil {
		return fmt.Errorf("write X25519 public key: %w", err)
	}

	return nil
}

// KeyFingerprint returns the truncated SHA-256 hex fingerprint of a public key.
func KeyFingerprint(publicKey *ecdh.PublicKey) string {
	sum := sha256.Sum256(publicKey.Bytes())
	return hex.EncodeToString(sum[:16])
}

// FormatFingerprint returns fingerprint text grouped in chunks of 4 uppercase chars.
func FormatFingerprint(fingerprint string) string {
	clean := strings.ToUpper(strings.ReplaceAll(fingerprint, " ", ""))
	if clean == "" {
		return ""
	}

	var b strings.Builder
	for i := 0; i < len(clean); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}

		end := i + 4
		if end > len(clean) {
			end = len(clean)
		}
		b.WriteString(clean[i:end])
	}

	return b.String()
}
