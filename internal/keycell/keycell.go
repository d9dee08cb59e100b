// Package keycell owns the daemon's symmetric key and performs all AEAD
// operations with it.
//
// The key is handed to the process once at startup, already decrypted, by
// whatever provisions credentials (systemd LoadCredentialEncrypted in
// production, a plain file in development). The cell copies the key into
// memory it controls and zeroes that copy on Close; the raw key never
// leaves the package — callers only get Seal and Open.
//
// Every Seal uses a fresh random 12-byte nonce:
//
//	[ 12-byte nonce ][ ciphertext + 16-byte Poly1305 tag ]
//
// stored separately by the buffer, never on persistent storage.
package keycell

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// KeySize is the required key length in bytes.
	KeySize = chacha20poly1305.KeySize // 32

	// NonceSize is the ChaCha20-Poly1305 nonce length in bytes.
	NonceSize = chacha20poly1305.NonceSize // 12
)

// ErrAuthentication is returned by Open when a ciphertext fails tag
// verification. It indicates corruption or a key mismatch, never a
// condition to retry past.
var ErrAuthentication = errors.New("authentication failed")

// ErrClosed is returned by Seal and Open after Close.
var ErrClosed = errors.New("key cell closed")

// Cell holds the symmetric key. Safe for concurrent use.
type Cell struct {
	mu     sync.RWMutex
	key    []byte
	closed bool
}

// New builds a Cell from raw key material, which must be exactly KeySize
// bytes. The bytes are copied; the caller should zero its own slice.
func New(raw []byte) (*Cell, error) {
	if len(raw) != KeySize {
		return nil, fmt.Errorf("key must be exactly %d bytes, got %d", KeySize, len(raw))
	}
	key := make([]byte, KeySize)
	copy(key, raw)
	return &Cell{key: key}, nil
}

// Seal encrypts plaintext under a freshly generated random nonce.
func (c *Cell) Seal(plaintext []byte) (nonce [NonceSize]byte, ciphertext []byte, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nonce, nil, ErrClosed
	}

	aead, err := chacha20poly1305.New(c.key)
	if err != nil {
		return nonce, nil, fmt.Errorf("aead init: %w", err)
	}
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nonce, nil, fmt.Errorf("nonce generation: %w", err)
	}
	return nonce, aead.Seal(nil, nonce[:], plaintext, nil), nil
}

// Open decrypts ciphertext, verifying its authentication tag. A failed
// tag yields ErrAuthentication, never a wrong plaintext.
func (c *Cell) Open(nonce [NonceSize]byte, ciphertext []byte) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrClosed
	}

	aead, err := chacha20poly1305.New(c.key)
	if err != nil {
		return nil, fmt.Errorf("aead init: %w", err)
	}
	plaintext, err := aead.Open(nil, nonce[:], ciphertext, nil)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}

// Close zeroes the key copy. Subsequent Seal/Open return ErrClosed.
// Safe to call more than once.
func (c *Cell) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	Zero(c.key)
	c.closed = true
}

// Zero overwrites b with zeros.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
