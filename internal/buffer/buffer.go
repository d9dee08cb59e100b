// Package buffer implements the daemon's single clipboard slot.
//
// The slot only ever holds ciphertext: a Write seals the plaintext through
// the key cell and replaces the stored (nonce, ciphertext) pair atomically;
// a Read opens it back up. There is no history — each Write discards the
// previous contents. One mutex serializes everything, so a Read observes
// either the state before or after any concurrent Write, never a mixture.
package buffer

import (
	"errors"
	"sync"

	"go.klb.dev/clipd/internal/keycell"
)

// ErrEmpty is returned by Read before anything has been written.
// Paste-before-any-copy is a normal condition, not a fault.
var ErrEmpty = errors.New("clipboard is empty")

// Buffer is the shared clipboard slot. Safe for concurrent use.
type Buffer struct {
	cell *keycell.Cell

	mu         sync.Mutex
	nonce      [keycell.NonceSize]byte
	ciphertext []byte
	set        bool
}

// New returns an empty Buffer backed by cell.
func New(cell *keycell.Cell) *Buffer {
	return &Buffer{cell: cell}
}

// Write seals plaintext and replaces the stored pair.
func (b *Buffer) Write(plaintext []byte) error {
	nonce, ciphertext, err := b.cell.Seal(plaintext)
	if err != nil {
		return err
	}

	b.mu.Lock()
	keycell.Zero(b.ciphertext)
	b.nonce = nonce
	b.ciphertext = ciphertext
	b.set = true
	b.mu.Unlock()
	return nil
}

// Read opens the stored pair and returns the plaintext. Returns ErrEmpty
// before the first Write, or keycell.ErrAuthentication if the stored
// ciphertext no longer verifies.
func (b *Buffer) Read() ([]byte, error) {
	b.mu.Lock()
	if !b.set {
		b.mu.Unlock()
		return nil, ErrEmpty
	}
	nonce := b.nonce
	ciphertext := make([]byte, len(b.ciphertext))
	copy(ciphertext, b.ciphertext)
	b.mu.Unlock()

	return b.cell.Open(nonce, ciphertext)
}
