package keyring

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

const (
	sealedSaltLen = 16

	// scrypt parameters. Interactive-strength: the passphrase is entered
	// once per machine, not per request.
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// Sealed wraps a Keyring and encrypts values at rest.
//
// Each value is sealed independently with XChaCha20-Poly1305 under a key
// derived from the passphrase via scrypt with a per-value random salt.
// Stored format: base64(salt || nonce || ciphertext).
//
// Keys (the names) stay in plaintext; only values are sealed.
type Sealed struct {
	inner      Keyring
	passphrase []byte
}

// NewSealed wraps inner with value encryption under passphrase.
func NewSealed(inner Keyring, passphrase string) (*Sealed, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("sealed keyring: empty passphrase")
	}
	return &Sealed{inner: inner, passphrase: []byte(passphrase)}, nil
}

// Get reads and unseals the value for key.
func (s *Sealed) Get(ctx context.Context, key string) (string, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}
	plain, err := s.open(sealed)
	if err != nil {
		return "", err
	}
	return plain, nil
}

// Set seals value and stores it under key.
func (s *Sealed) Set(ctx context.Context, key, value string) error {
	sealed, err := s.seal(value)
	if err != nil {
		return err
	}
	return s.inner.Set(ctx, key, sealed)
}

// Delete removes key from the underlying keyring.
func (s *Sealed) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

// Close closes the underlying keyring.
func (s *Sealed) Close() error {
	return s.inner.Close()
}

func (s *Sealed) seal(plain string) (string, error) {
	salt := make([]byte, sealedSaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	aead, err := s.aead(salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	out := make([]byte, 0, len(salt)+len(nonce)+len(plain)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, []byte(plain), nil)

	return base64.RawStdEncoding.EncodeToString(out), nil
}

func (s *Sealed) open(sealed string) (string, error) {
	raw, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrSealed
	}

	if len(raw) < sealedSaltLen {
		return "", ErrSealed
	}
	salt := raw[:sealedSaltLen]

	aead, err := s.aead(salt)
	if err != nil {
		return "", err
	}

	rest := raw[sealedSaltLen:]
	if len(rest) < aead.NonceSize() {
		return "", ErrSealed
	}
	nonce := rest[:aead.NonceSize()]
	ciphertext := rest[aead.NonceSize():]

	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrSealed
	}
	return string(plain), nil
}

func (s *Sealed) aead(salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(s.passphrase, salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	return chacha20poly1305.NewX(key)
}
