package keycell

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

func testCell(t *testing.T) *Cell {
	t.Helper()
	raw := make([]byte, KeySize)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("rand: %v", err)
	}
	cell, err := New(raw)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return cell
}

func TestNewRejectsWrongLength(t *testing.T) {
	for _, n := range []int{0, 16, 31, 33, 64} {
		if _, err := New(make([]byte, n)); err == nil {
			t.Errorf("New accepted a %d-byte key", n)
		}
	}
}

func TestNewCopiesKey(t *testing.T) {
	raw := make([]byte, KeySize)
	for i := range raw {
		raw[i] = byte(i)
	}
	cell, err := New(raw)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	Zero(raw) // caller zeroes its own copy

	if _, _, err := cell.Seal([]byte("still works")); err != nil {
		t.Fatalf("Seal after zeroing caller slice: %v", err)
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	cell := testCell(t)
	for _, plaintext := range [][]byte{
		[]byte("hello"),
		{},
		[]byte{0x00, 0xff, 0x7f, 0x80},
		bytes.Repeat([]byte("x"), 1<<20),
	} {
		nonce, ct, err := cell.Seal(plaintext)
		if err != nil {
			t.Fatalf("Seal failed: %v", err)
		}
		got, err := cell.Open(nonce, ct)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if !bytes.Equal(got, plaintext) {
			t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(plaintext))
		}
	}
}

func TestSealUsesFreshNonce(t *testing.T) {
	cell := testCell(t)
	plaintext := []byte("same input twice")

	n1, ct1, err := cell.Seal(plaintext)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	n2, ct2, err := cell.Seal(plaintext)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	if n1 == n2 {
		t.Fatal("two Seal calls produced the same nonce")
	}
	if bytes.Equal(ct1, ct2) {
		t.Fatal("two Seal calls produced the same ciphertext")
	}
}

func TestOpenRejectsTamper(t *testing.T) {
	cell := testCell(t)
	nonce, ct, err := cell.Seal([]byte("authenticated"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	tampered := make([]byte, len(ct))
	copy(tampered, ct)
	tampered[len(tampered)/2] ^= 0x01
	if _, err := cell.Open(nonce, tampered); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("flipped ciphertext bit: got %v, want ErrAuthentication", err)
	}

	badNonce := nonce
	badNonce[0] ^= 0x01
	if _, err := cell.Open(badNonce, ct); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("flipped nonce bit: got %v, want ErrAuthentication", err)
	}
}

func TestOpenRejectsWrongKey(t *testing.T) {
	nonce, ct, err := testCell(t).Seal([]byte("secret"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if _, err := testCell(t).Open(nonce, ct); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("wrong key: got %v, want ErrAuthentication", err)
	}
}

func TestCloseZeroesKey(t *testing.T) {
	cell := testCell(t)
	cell.Close()

	for i, b := range cell.key {
		if b != 0 {
			t.Fatalf("key byte %d not zeroed after Close", i)
		}
	}
	if _, _, err := cell.Seal([]byte("nope")); !errors.Is(err, ErrClosed) {
		t.Fatalf("Seal after Close: got %v, want ErrClosed", err)
	}
	if _, err := cell.Open([NonceSize]byte{}, nil); !errors.Is(err, ErrClosed) {
		t.Fatalf("Open after Close: got %v, want ErrClosed", err)
	}

	cell.Close() // idempotent
}
