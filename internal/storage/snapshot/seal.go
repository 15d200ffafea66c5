package snapshot

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Sealing errors.
var (
	ErrInvalidKey        = errors.New("snapshot: sealing key must be 32 bytes")
	ErrPassphraseTooWeak = errors.New("snapshot: passphrase too weak (minimum 8 characters)")
	ErrDecryptionFailed  = errors.New("snapshot: decryption failed - wrong key or corrupted data")
)

const (
	// KeySize is the length of a raw sealing key.
	KeySize = chacha20poly1305.KeySize

	// MinPassphraseLength is the minimum passphrase length.
	MinPassphraseLength = 8

	// SaltLength is the salt length used for passphrase derivation.
	SaltLength = 16

	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
)

// SealConfig selects how snapshot bodies are sealed. Key takes precedence
// over Passphrase; with neither set, snapshots are written in the clear.
type SealConfig struct {
	// Key is a raw 32-byte master key.
	Key []byte

	// Passphrase derives the master key with Argon2id and a per-snapshot salt.
	Passphrase []byte
}

// Enabled reports whether sealing is configured.
func (c SealConfig) Enabled() bool {
	return len(c.Key) > 0 || len(c.Passphrase) > 0
}

// Validate checks key and passphrase lengths.
func (c SealConfig) Validate() error {
	if len(c.Key) > 0 {
		if len(c.Key) != KeySize {
			return ErrInvalidKey
		}
		return nil
	}
	if len(c.Passphrase) > 0 && len(c.Passphrase) < MinPassphraseLength {
		return ErrPassphraseTooWeak
	}
	return nil
}

// newSalt returns a fresh salt when a passphrase is configured, nil otherwise.
func (c SealConfig) newSalt() ([]byte, error) {
	if len(c.Key) > 0 || len(c.Passphrase) == 0 {
		return nil, nil
	}
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("snapshot: generate salt: %w", err)
	}
	return salt, nil
}

// boxKey derives the key of one snapshot from the master secret and the
// snapshot id.
func (c SealConfig) boxKey(id string, salt []byte) ([]byte, error) {
	master := c.Key
	if len(master) == 0 {
		if len(salt) != SaltLength {
			return nil, fmt.Errorf("snapshot: invalid salt length %d", len(salt))
		}
		master = argon2.IDKey(c.Passphrase, salt, argon2Time, argon2Memory, argon2Threads, KeySize)
		defer ZeroKey(master)
	}

	key := make([]byte, KeySize)
	r := hkdf.New(sha256.New, master, salt, []byte("fastutil-snapshot/"+id))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("snapshot: derive key: %w", err)
	}
	return key, nil
}

// seal encrypts body, authenticating header with it. The nonce is prepended.
func seal(key, header, body []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(body)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("snapshot: generate nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, body, header), nil
}

func open(key, header, box []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if len(box) < aead.NonceSize() {
		return nil, ErrDecryptionFailed
	}
	nonce, ct := box[:aead.NonceSize()], box[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ct, header)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plain, nil
}

// GenerateKey returns a random 32-byte sealing key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("snapshot: generate key: %w", err)
	}
	return key, nil
}

// ZeroKey overwrites key with zeros.
func ZeroKey(key []byte) {
	clear(key)
}
